package ldap

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/go-ldap/ldap/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/nc2ldap/pkg/contact"
	"github.com/agentstation/nc2ldap/pkg/directory"
	"github.com/agentstation/nc2ldap/pkg/errors"
	"github.com/agentstation/nc2ldap/pkg/logging"
	"github.com/agentstation/nc2ldap/pkg/phone"
)

const baseDN = "ou=phonebook,dc=example,dc=org"

// fakeConn is an in-memory directory holding entries directly below baseDN.
type fakeConn struct {
	entries map[string]*ldap.Entry
	hasBase bool
	added   []*ldap.AddRequest
	deleted []string
	addErr  error
}

func newFakeConn() *fakeConn {
	return &fakeConn{entries: make(map[string]*ldap.Entry), hasBase: true}
}

func (f *fakeConn) Bind(string, string) error { return nil }

func (f *fakeConn) Search(req *ldap.SearchRequest) (*ldap.SearchResult, error) {
	if !f.hasBase {
		return nil, ldap.NewError(ldap.LDAPResultNoSuchObject, fmt.Errorf("no such object"))
	}
	res := &ldap.SearchResult{}
	if req.Scope == ldap.ScopeBaseObject {
		res.Entries = append(res.Entries, ldap.NewEntry(req.BaseDN, nil))
		return res, nil
	}
	for _, e := range f.entries {
		res.Entries = append(res.Entries, e)
	}
	return res, nil
}

func (f *fakeConn) Add(req *ldap.AddRequest) error {
	if f.addErr != nil {
		return f.addErr
	}
	if req.DN == baseDN {
		f.hasBase = true
	}
	f.added = append(f.added, req)
	attrs := make(map[string][]string, len(req.Attributes))
	for _, a := range req.Attributes {
		attrs[a.Type] = a.Vals
	}
	f.entries[req.DN] = ldap.NewEntry(req.DN, attrs)
	return nil
}

func (f *fakeConn) Del(req *ldap.DelRequest) error {
	if _, ok := f.entries[req.DN]; !ok {
		return ldap.NewError(ldap.LDAPResultNoSuchObject, fmt.Errorf("no such object"))
	}
	delete(f.entries, req.DN)
	f.deleted = append(f.deleted, req.DN)
	return nil
}

func (f *fakeConn) put(dn string, attrs map[string][]string) {
	f.entries[dn] = ldap.NewEntry(dn, attrs)
}

func attribute(req *ldap.AddRequest, name string) []string {
	for _, a := range req.Attributes {
		if a.Type == name {
			return a.Vals
		}
	}
	return nil
}

func TestEnsure(t *testing.T) {
	t.Run("existing phone book", func(t *testing.T) {
		conn := newFakeConn()
		require.NoError(t, New(conn, baseDN).Ensure(context.Background()))
		assert.Empty(t, conn.added)
	})

	t.Run("creates missing phone book", func(t *testing.T) {
		conn := newFakeConn()
		conn.hasBase = false

		require.NoError(t, New(conn, baseDN).Ensure(context.Background()))
		require.Len(t, conn.added, 1)
		assert.Equal(t, baseDN, conn.added[0].DN)
		assert.Equal(t, []string{"top", "organizationalUnit"}, attribute(conn.added[0], "objectClass"))
		assert.Equal(t, []string{"phonebook"}, attribute(conn.added[0], "ou"))
	})
}

func TestAdd(t *testing.T) {
	conn := newFakeConn()
	pb := New(conn, baseDN)

	c := contact.New("Tribbiani",
		contact.WithFirstName("Joey"),
		contact.WithPhoneMobile(phone.MustParse("0170 1234567", "DE")),
	)
	require.NoError(t, pb.Add(context.Background(), c))

	require.Len(t, conn.added, 1)
	req := conn.added[0]
	assert.Equal(t, "cn=Joey Tribbiani,"+baseDN, req.DN)
	assert.Equal(t, []string{"top", "inetOrgPerson"}, attribute(req, "objectClass"))
	assert.Equal(t, []string{"Joey Tribbiani"}, attribute(req, "cn"))
	assert.Equal(t, []string{"Tribbiani"}, attribute(req, directory.AttrSurname))
	assert.Equal(t, []string{directory.Encode(c)[directory.AttrMobile]}, attribute(req, directory.AttrMobile))
	assert.Equal(t, []string{"+49 170 1234567"}, attribute(req, directory.AttrMobile), "numbers are stored in international notation")
	assert.Nil(t, attribute(req, directory.AttrMail), "empty attributes are not sent")
}

func TestAddLogsWithDN(t *testing.T) {
	bookLogger := logging.NewTestLogger(t)
	pb := New(newFakeConn(), baseDN, WithLogger(bookLogger.Logger))

	require.NoError(t, pb.Add(context.Background(), contact.New("Geller", contact.WithFirstName("Ross"))))
	assert.True(t, bookLogger.Contains(`"dn":"cn=Ross Geller,`+baseDN+`"`))

	callerLogger := logging.NewTestLogger(t)
	ctx := logging.WithOperation(logging.WithLogger(context.Background(), callerLogger.Logger), "sync")
	require.NoError(t, pb.Add(ctx, contact.New("Green", contact.WithFirstName("Rachel"))))

	assert.True(t, callerLogger.Contains(`"operation":"sync"`))
	assert.True(t, callerLogger.Contains(`"dn":"cn=Rachel Green,`+baseDN+`"`))
	assert.False(t, bookLogger.Contains("Rachel Green"), "a logger on the context wins")
}

func TestAddAlreadyExists(t *testing.T) {
	conn := newFakeConn()
	conn.addErr = ldap.NewError(ldap.LDAPResultEntryAlreadyExists, fmt.Errorf("exists"))

	err := New(conn, baseDN).Add(context.Background(), contact.New("Geller"))
	require.Error(t, err)
	assert.True(t, errors.IsAlreadyExists(err))

	var resErr *errors.ResourceError
	require.True(t, errors.As(err, &resErr))
	assert.Equal(t, "add", resErr.Operation)
}

func TestDNEscapesSpecialCharacters(t *testing.T) {
	pb := New(newFakeConn(), baseDN)
	dn := pb.DN("Buffay, Phoebe")
	assert.True(t, strings.HasPrefix(dn, `cn=Buffay\, Phoebe,`), dn)
}

func TestEntries(t *testing.T) {
	conn := newFakeConn()
	conn.put("cn=Rachel Green,"+baseDN, map[string][]string{
		"cn":        {"Rachel Green"},
		"givenName": {"Rachel"},
		"sn":        {"Green"},
		"mail":      {"rachel@example.org"},
	})
	conn.put("cn=broken,"+baseDN, map[string][]string{
		"cn": {"broken"},
		"sn": {},
	})

	entries, err := New(conn, baseDN).Entries(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)

	contacts := directory.NewDecoder().DecodeAll(entries)
	require.Len(t, contacts, 1)
	assert.Equal(t, "Green", contacts[0].LastName)
	assert.Equal(t, "rachel@example.org", contacts[0].Email)
}

func TestEntriesMissingPhoneBook(t *testing.T) {
	conn := newFakeConn()
	conn.hasBase = false

	entries, err := New(conn, baseDN).Entries(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDeleteUsesListedDN(t *testing.T) {
	conn := newFakeConn()
	// Stored under a name that differs from the contact's display name.
	dn := "cn=Monica (legacy)," + baseDN
	conn.put(dn, map[string][]string{"sn": {"Geller"}, "givenName": {"Monica"}})

	pb := New(conn, baseDN)
	_, err := pb.Entries(context.Background())
	require.NoError(t, err)

	require.NoError(t, pb.Delete(context.Background(), contact.New("Geller", contact.WithFirstName("Monica"))))
	assert.Equal(t, []string{dn}, conn.deleted)
}

func TestDeleteDuplicates(t *testing.T) {
	conn := newFakeConn()
	conn.put("cn=Ross Geller,"+baseDN, map[string][]string{"sn": {"Geller"}, "givenName": {"Ross"}})
	conn.put("cn=Ross Geller 2,"+baseDN, map[string][]string{"sn": {"Geller"}, "givenName": {"Ross"}})

	pb := New(conn, baseDN)
	_, err := pb.Entries(context.Background())
	require.NoError(t, err)

	require.NoError(t, pb.Delete(context.Background(), contact.New("Geller", contact.WithFirstName("Ross"))))
	assert.Len(t, conn.deleted, 2)
	assert.Empty(t, conn.entries)
}

func TestDeleteAfterAdd(t *testing.T) {
	conn := newFakeConn()
	pb := New(conn, baseDN)
	c := contact.New("Bing", contact.WithFirstName("Chandler"))

	require.NoError(t, pb.Add(context.Background(), c))
	require.NoError(t, pb.Delete(context.Background(), c))
	assert.Equal(t, []string{"cn=Chandler Bing," + baseDN}, conn.deleted)
}

func TestDeleteMissing(t *testing.T) {
	err := New(newFakeConn(), baseDN).Delete(context.Background(), contact.New("Nobody"))
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	conn := newFakeConn()
	pb := New(conn, baseDN)

	_, err := pb.Entries(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, errors.IsCanceled(err))

	err = pb.Add(ctx, contact.New("Geller"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, errors.IsCanceled(err))
	assert.True(t, errors.IsCanceled(pb.Delete(ctx, contact.New("Geller"))))
	assert.Empty(t, conn.added)
	assert.Empty(t, conn.deleted)
}
