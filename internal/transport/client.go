// Package transport provides the authenticated HTTP client used by the
// CardDAV source.
package transport

import (
	"net/http"

	"github.com/agentstation/nc2ldap/pkg/constants"
)

// DefaultHTTPTimeout is the default timeout for HTTP requests.
var DefaultHTTPTimeout = constants.DefaultHTTPTimeout

// UserAgent is sent with every request.
const UserAgent = "nc2ldap"

// Client provides HTTP client functionality with authentication.
// It satisfies the webdav.HTTPClient interface.
type Client struct {
	http *http.Client
	auth Authenticator
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// New creates a new transport client with the specified authenticator.
func New(auth Authenticator, opts ...Option) *Client {
	if auth == nil {
		auth = &NoAuth{}
	}
	c := &Client{
		http: &http.Client{Timeout: DefaultHTTPTimeout},
		auth: auth,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do performs an HTTP request with authentication applied. The request's
// context governs cancellation.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	c.auth.Apply(req)
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", UserAgent)
	}
	return c.http.Do(req)
}
