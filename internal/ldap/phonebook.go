// Package ldap stores contacts as inetOrgPerson entries below one
// organizationalUnit of an LDAP directory.
package ldap

import (
	"context"
	"net"
	"sync"

	"github.com/go-ldap/ldap/v3"
	"github.com/rs/zerolog"

	"github.com/agentstation/nc2ldap/pkg/constants"
	"github.com/agentstation/nc2ldap/pkg/contact"
	"github.com/agentstation/nc2ldap/pkg/directory"
	"github.com/agentstation/nc2ldap/pkg/errors"
	"github.com/agentstation/nc2ldap/pkg/logging"
)

const service = "ldap"

// Conn is the part of *ldap.Conn the phone book uses.
type Conn interface {
	Bind(username, password string) error
	Search(req *ldap.SearchRequest) (*ldap.SearchResult, error)
	Add(req *ldap.AddRequest) error
	Del(req *ldap.DelRequest) error
}

// Config describes the directory connection.
type Config struct {
	URL      string // ldap://host:389 or ldaps://host:636
	BaseDN   string // DN of the phone book organizationalUnit
	BindDN   string
	Password string
}

// PhoneBook reads and writes phone book entries.
type PhoneBook struct {
	conn    Conn
	closer  func()
	baseDN  string
	region  string
	logger  *zerolog.Logger
	decoder *directory.Decoder

	mu  sync.Mutex
	dns map[contact.Contact][]string // where each known contact is stored
}

// Option configures a PhoneBook.
type Option func(*PhoneBook)

// WithLogger sets the logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(p *PhoneBook) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithRegion sets the region used to index stored numbers lacking a country code.
func WithRegion(region string) Option {
	return func(p *PhoneBook) {
		if region != "" {
			p.region = region
		}
	}
}

// New wraps an already bound connection.
func New(conn Conn, baseDN string, opts ...Option) *PhoneBook {
	p := &PhoneBook{
		conn:   conn,
		closer: func() {},
		baseDN: baseDN,
		region: constants.DefaultRegion,
		logger: logging.Default(),
		dns:    make(map[contact.Contact][]string),
	}
	for _, opt := range opts {
		opt(p)
	}
	// Indexing must not repeat the field warnings the sync decode already logs.
	p.decoder = directory.NewDecoder(directory.WithRegion(p.region), directory.WithLogger(logging.NewNopLogger()))
	return p
}

// Dial connects and binds to the directory.
func Dial(ctx context.Context, cfg Config, opts ...Option) (*PhoneBook, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	conn, err := ldap.DialURL(cfg.URL, ldap.DialWithDialer(&net.Dialer{Timeout: constants.DialTimeout}))
	if err != nil {
		return nil, errors.WrapResource("connect", "directory", cfg.URL, err)
	}

	if err := conn.Bind(cfg.BindDN, cfg.Password); err != nil {
		conn.Close()
		if ldap.IsErrorWithCode(err, ldap.LDAPResultInvalidCredentials) {
			return nil, errors.NewAuthenticationError(service, "simple-bind", "invalid credentials for "+cfg.BindDN, err)
		}
		return nil, errors.WrapResource("bind", "directory", cfg.BindDN, err)
	}

	p := New(conn, cfg.BaseDN, opts...)
	p.closer = func() { conn.Close() }
	p.logger.Info().Str("server", cfg.URL).Str("phonebook", cfg.BaseDN).Msg("connected to directory")
	return p, nil
}

// Close releases the connection.
func (p *PhoneBook) Close() {
	p.closer()
}

// Ensure creates the phone book organizationalUnit if it does not exist.
func (p *PhoneBook) Ensure(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := p.conn.Search(ldap.NewSearchRequest(
		p.baseDN, ldap.ScopeBaseObject, ldap.NeverDerefAliases, 0, 0, false,
		"(objectClass=*)", []string{"dn"}, nil,
	))
	if err == nil {
		return nil
	}
	if !ldap.IsErrorWithCode(err, ldap.LDAPResultNoSuchObject) {
		return errors.WrapResource("search", "phonebook", p.baseDN, err)
	}

	dn, err := ldap.ParseDN(p.baseDN)
	if err != nil || len(dn.RDNs) == 0 || len(dn.RDNs[0].Attributes) == 0 {
		return errors.NewConfigError(service, "invalid phone book DN "+p.baseDN, err)
	}

	req := ldap.NewAddRequest(p.baseDN, nil)
	req.Attribute("objectClass", []string{"top", constants.ObjectClassUnit})
	req.Attribute("ou", []string{dn.RDNs[0].Attributes[0].Value})
	if err := p.conn.Add(req); err != nil {
		return errors.WrapResource("create", "phonebook", p.baseDN, err)
	}

	p.logger.Info().Str("phonebook", p.baseDN).Msg("created phone book")
	return nil
}

// Entries lists every contact entry directly below the phone book.
func (p *PhoneBook) Entries(ctx context.Context) ([]directory.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WrapContext("list phonebook", err)
	}

	res, err := p.conn.Search(ldap.NewSearchRequest(
		p.baseDN, ldap.ScopeSingleLevel, ldap.NeverDerefAliases, 0, 0, false,
		constants.EntryFilter, append(directory.AttributeNames(), "cn"), nil,
	))
	if ldap.IsErrorWithCode(err, ldap.LDAPResultNoSuchObject) {
		// Ensure has not run yet; the phone book is empty.
		p.logger.Debug().Str("phonebook", p.baseDN).Msg("phone book does not exist")
		p.mu.Lock()
		p.dns = make(map[contact.Contact][]string)
		p.mu.Unlock()
		return nil, nil
	}
	if err != nil {
		return nil, errors.WrapResource("search", "phonebook", p.baseDN, err)
	}

	entries := make([]directory.Entry, 0, len(res.Entries))
	index := make(map[contact.Contact][]string, len(res.Entries))
	for _, e := range res.Entries {
		rec := make(directory.Record, len(e.Attributes))
		for _, attr := range e.Attributes {
			rec[attr.Name] = directory.Multi(attr.Values...)
		}
		entry := directory.Entry{DN: e.DN, Attributes: rec}
		entries = append(entries, entry)

		if c, err := p.decoder.DecodeEntry(entry); err == nil {
			index[c] = append(index[c], e.DN)
		}
	}

	p.mu.Lock()
	p.dns = index
	p.mu.Unlock()

	p.logger.Debug().Int("entries", len(entries)).Msg("listed phone book")
	return entries, nil
}

// Add stores c as a new entry named after its display name.
func (p *PhoneBook) Add(ctx context.Context, c contact.Contact) error {
	if err := ctx.Err(); err != nil {
		return errors.WrapContext("add entry", err)
	}

	name := c.DisplayName()
	dn := p.DN(name)
	ctx = logging.WithDN(logging.EnsureLogger(ctx, p.logger), dn)

	req := ldap.NewAddRequest(dn, nil)
	req.Attribute("objectClass", []string{"top", constants.ObjectClassPerson})
	req.Attribute("cn", []string{name})
	for attr, value := range directory.Encode(c) {
		// LDAP rejects empty attribute values.
		if value != "" {
			req.Attribute(attr, []string{value})
		}
	}

	if err := p.conn.Add(req); err != nil {
		if ldap.IsErrorWithCode(err, ldap.LDAPResultEntryAlreadyExists) {
			err = errors.Join(errors.ErrAlreadyExists, err)
		}
		logging.FromContext(logging.WithError(ctx, err)).Debug().Msg("ldap add rejected")
		return errors.NewResourceError("add", "entry", dn, err)
	}

	p.mu.Lock()
	p.dns[c] = append(p.dns[c], dn)
	p.mu.Unlock()

	logging.FromContext(ctx).Debug().Msg("added entry")
	return nil
}

// Delete removes every entry known to hold c. Contacts never listed by
// Entries are looked up by their display name.
func (p *PhoneBook) Delete(ctx context.Context, c contact.Contact) error {
	if err := ctx.Err(); err != nil {
		return errors.WrapContext("delete entry", err)
	}

	p.mu.Lock()
	dns := p.dns[c]
	p.mu.Unlock()
	if len(dns) == 0 {
		dns = []string{p.DN(c.DisplayName())}
	}

	ctx = logging.EnsureLogger(ctx, p.logger)
	var errs []error
	for _, dn := range dns {
		log := logging.FromContext(logging.WithDN(ctx, dn))
		if err := p.conn.Del(ldap.NewDelRequest(dn, nil)); err != nil {
			if ldap.IsErrorWithCode(err, ldap.LDAPResultNoSuchObject) {
				err = errors.Join(errors.NewNotFoundError("entry", dn), err)
			}
			log.Debug().Err(err).Msg("ldap delete rejected")
			errs = append(errs, errors.NewResourceError("delete", "entry", dn, err))
			continue
		}
		log.Debug().Msg("deleted entry")
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	p.mu.Lock()
	delete(p.dns, c)
	p.mu.Unlock()
	return nil
}

// DN returns the distinguished name of an entry with the given common name.
func (p *PhoneBook) DN(commonName string) string {
	return "cn=" + ldap.EscapeDN(commonName) + "," + p.baseDN
}
