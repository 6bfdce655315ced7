package transport

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoAuth(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://dav.example", nil)
	(&NoAuth{}).Apply(req)
	assert.Empty(t, req.Header.Get("Authorization"))
}

func TestBasicAuth(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://dav.example", nil)
	(&BasicAuth{Username: "joey", Password: "app-token"}).Apply(req)

	user, pass, ok := req.BasicAuth()
	require.True(t, ok)
	assert.Equal(t, "joey", user)
	assert.Equal(t, "app-token", pass)
}

func TestClientDo(t *testing.T) {
	var gotUser, gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, _, _ = r.BasicAuth()
		gotAgent = r.UserAgent()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(&BasicAuth{Username: "joey", Password: "x"}, WithHTTPClient(srv.Client()))
	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	resp, err := c.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "joey", gotUser)
	assert.Equal(t, UserAgent, gotAgent)
}

func TestNewDefaultsToNoAuth(t *testing.T) {
	c := New(nil)
	assert.IsType(t, &NoAuth{}, c.auth)
	assert.Equal(t, DefaultHTTPTimeout, c.http.Timeout)
}
