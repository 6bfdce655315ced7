// Package carddav reads vCards from a Nextcloud (or any CardDAV) address book.
package carddav

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/emersion/go-vcard"
	"github.com/emersion/go-webdav"
	"github.com/emersion/go-webdav/carddav"
	"github.com/rs/zerolog"

	"github.com/agentstation/nc2ldap/internal/transport"
	"github.com/agentstation/nc2ldap/pkg/constants"
	"github.com/agentstation/nc2ldap/pkg/errors"
	"github.com/agentstation/nc2ldap/pkg/logging"
)

const service = "carddav"

// Config identifies the address book.
type Config struct {
	URL         string // Nextcloud base URL, e.g. https://cloud.example.org
	User        string
	Token       string // app password
	AddressBook string // address book name, e.g. "contacts"
}

// AddressBook is a read-only CardDAV address book.
type AddressBook struct {
	client   *carddav.Client
	path     string
	endpoint string
	status   *statusRecorder
	logger   *zerolog.Logger
}

// Option configures an AddressBook.
type Option func(*options)

type options struct {
	httpClient *http.Client
	logger     *zerolog.Logger
}

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

// WithLogger sets the logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// New returns a client for the address book described by cfg. It does not
// contact the server.
func New(cfg Config, opts ...Option) (*AddressBook, error) {
	o := options{logger: logging.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logging.Default()
	}

	if cfg.URL == "" || cfg.User == "" || cfg.AddressBook == "" {
		return nil, errors.NewConfigError(service, "url, user and address book are required", nil)
	}

	auth := &transport.BasicAuth{Username: strings.ToLower(cfg.User), Password: cfg.Token}
	recorder := &statusRecorder{next: transport.New(auth, transport.WithHTTPClient(o.httpClient))}

	client, err := carddav.NewClient(recorder, cfg.URL)
	if err != nil {
		return nil, errors.NewConfigError(service, "invalid url "+cfg.URL, err)
	}

	return &AddressBook{
		client:   client,
		path:     Path(cfg.User, cfg.AddressBook),
		endpoint: cfg.URL,
		status:   recorder,
		logger:   o.logger,
	}, nil
}

// Path returns the Nextcloud DAV path of a user's address book.
func Path(user, addressBook string) string {
	return fmt.Sprintf("%s/%s/%s/", constants.CardDAVBasePath, user, strings.ToLower(addressBook))
}

// Cards fetches every card of the address book in one addressbook-query REPORT.
func (a *AddressBook) Cards(ctx context.Context) ([]vcard.Card, error) {
	a.status.reset()

	objects, err := a.client.QueryAddressBook(ctx, a.path, &carddav.AddressBookQuery{
		DataRequest: carddav.AddressDataRequest{AllProp: true},
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.WrapContext("fetch cards", ctx.Err())
		}
		return nil, &errors.APIError{
			Service:    service,
			StatusCode: a.status.last(),
			Message:    err.Error(),
			Endpoint:   a.endpoint + a.path,
			Err:        err,
		}
	}

	cards := make([]vcard.Card, 0, len(objects))
	for _, obj := range objects {
		a.logger.Debug().Str("path", obj.Path).Msg("read card")
		cards = append(cards, obj.Card)
	}
	a.logger.Info().Int("cards", len(cards)).Str("address_book", a.path).Msg("fetched address book")
	return cards, nil
}

// ParseCards decodes a .vcf stream holding any number of cards. Input with
// content but no BEGIN:VCARD is an error rather than an empty address book.
func ParseCards(r io.Reader) ([]vcard.Card, error) {
	content := &contentReader{r: r}
	dec := vcard.NewDecoder(content)
	var cards []vcard.Card
	for {
		card, err := dec.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.WrapParse("vcard", "", err)
		}
		cards = append(cards, card)
	}
	if len(cards) == 0 && content.seen {
		return nil, errors.NewParseError("vcard", "", "no BEGIN:VCARD found", nil)
	}
	return cards, nil
}

// contentReader records whether anything but whitespace was read.
type contentReader struct {
	r    io.Reader
	seen bool
}

func (c *contentReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if !c.seen && len(bytes.TrimSpace(p[:n])) > 0 {
		c.seen = true
	}
	return n, err
}

// statusRecorder remembers the last error status seen, since the CardDAV
// client reports HTTP failures as plain errors.
type statusRecorder struct {
	next   webdav.HTTPClient
	status atomic.Int32
}

func (s *statusRecorder) Do(req *http.Request) (*http.Response, error) {
	resp, err := s.next.Do(req)
	if err == nil && resp.StatusCode >= http.StatusBadRequest {
		s.status.Store(int32(resp.StatusCode))
	}
	return resp, err
}

func (s *statusRecorder) reset() { s.status.Store(0) }

func (s *statusRecorder) last() int { return int(s.status.Load()) }
