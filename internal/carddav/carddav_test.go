package carddav_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/emersion/go-vcard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/nc2ldap/internal/carddav"
	"github.com/agentstation/nc2ldap/pkg/errors"
	"github.com/agentstation/nc2ldap/pkg/logging"
)

const multistatus = `<?xml version="1.0" encoding="utf-8"?>
<d:multistatus xmlns:d="DAV:" xmlns:card="urn:ietf:params:xml:ns:carddav">
  <d:response>
    <d:href>/remote.php/dav/addressbooks/users/Joey/contacts/joey.vcf</d:href>
    <d:propstat>
      <d:prop>
        <d:getetag>"1"</d:getetag>
        <card:address-data>BEGIN:VCARD
VERSION:3.0
FN:Joey Doe
N:Doe;Joey;;;
TEL;TYPE=cell,voice:+49 5555 234
END:VCARD
</card:address-data>
      </d:prop>
      <d:status>HTTP/1.1 200 OK</d:status>
    </d:propstat>
  </d:response>
</d:multistatus>`

func newServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestPath(t *testing.T) {
	assert.Equal(t, "/remote.php/dav/addressbooks/users/Joey/contacts/", carddav.Path("Joey", "Contacts"))
}

func TestNewValidatesConfig(t *testing.T) {
	_, err := carddav.New(carddav.Config{URL: "https://cloud.example.org"})
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}

func TestCards(t *testing.T) {
	var method, path, user string
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		user, _, _ = r.BasicAuth()
		w.Header().Set("Content-Type", "application/xml; charset=utf-8")
		w.WriteHeader(http.StatusMultiStatus)
		fmt.Fprint(w, multistatus)
	})

	book, err := carddav.New(carddav.Config{
		URL:         srv.URL,
		User:        "Joey",
		Token:       "app-token",
		AddressBook: "Contacts",
	}, carddav.WithHTTPClient(srv.Client()), carddav.WithLogger(logging.NewNopLogger()))
	require.NoError(t, err)

	cards, err := book.Cards(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "REPORT", method)
	assert.Equal(t, "/remote.php/dav/addressbooks/users/Joey/contacts/", path)
	assert.Equal(t, "joey", user)

	require.Len(t, cards, 1)
	assert.Equal(t, "Joey Doe", cards[0].PreferredValue(vcard.FieldFormattedName))
	assert.Equal(t, "Doe", cards[0].Name().FamilyName)
}

func TestCardsUnauthorized(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	})

	book, err := carddav.New(carddav.Config{URL: srv.URL, User: "joey", AddressBook: "contacts"},
		carddav.WithHTTPClient(srv.Client()), carddav.WithLogger(logging.NewNopLogger()))
	require.NoError(t, err)

	_, err = book.Cards(context.Background())
	require.Error(t, err)

	var apiErr *errors.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.True(t, errors.IsUnauthorized(err))
}

func TestParseCards(t *testing.T) {
	cards, err := carddav.ParseCards(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, cards)

	cards, err = carddav.ParseCards(strings.NewReader("BEGIN:VCARD\r\nVERSION:3.0\r\nFN:Joey Doe\r\nN:Doe;Joey;;;\r\nEND:VCARD\r\n"))
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, "Joey", cards[0].Name().GivenName)
}

func TestParseCardsRejectsOtherContent(t *testing.T) {
	cards, err := carddav.ParseCards(strings.NewReader("this is not a vcard\n"))
	require.Error(t, err)
	assert.Nil(t, cards)

	var parseErr *errors.ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, "vcard", parseErr.Format)
}

func TestFileSourceRejectsOtherContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("call Joey back\n"), 0o600))

	_, err := carddav.File{Path: path}.Cards(context.Background())
	require.Error(t, err)

	var parseErr *errors.ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, path, parseErr.File)
}

func TestCardsCanceled(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusMultiStatus)
	})

	book, err := carddav.New(carddav.Config{URL: srv.URL, User: "joey", AddressBook: "contacts"},
		carddav.WithHTTPClient(srv.Client()), carddav.WithLogger(logging.NewNopLogger()))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = book.Cards(ctx)
	require.Error(t, err)
	assert.True(t, errors.IsCanceled(err))
	assert.False(t, errors.IsTimeout(err))
}

func TestFileSource(t *testing.T) {
	cards, err := carddav.File{Path: filepath.Join("testdata", "contacts.vcf")}.Cards(context.Background())
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, "Black Cat & Paws Inc.", cards[1].Value(vcard.FieldOrganization))

	_, err = carddav.File{Path: filepath.Join("testdata", "missing.vcf")}.Cards(context.Background())
	assert.Error(t, err)
}
