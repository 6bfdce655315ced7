// Package contact defines the canonical, comparable contact shared by the
// CardDAV and LDAP codecs.
//
// Contact is a plain value: every field is a string or another comparable
// value, so == is structural equality and a Contact can be used directly as a
// map key. Optional text fields use "" as the absent marker and phone fields
// use the zero phone.Number.
package contact

import (
	"strings"

	"github.com/google/uuid"

	"github.com/agentstation/nc2ldap/pkg/phone"
)

// UnknownSurname is stored when a card carries no family name.
const UnknownSurname = "<unknown>"

// Address is a postal address reduced to the two lines the phone book stores.
type Address struct {
	Street   string
	Locality string // "<postal code> <city>"
}

// IsZero reports whether neither line is set.
func (a Address) IsZero() bool {
	return a.Street == "" && a.Locality == ""
}

// Contact is one person or organization in the phone book.
type Contact struct {
	FirstName      string
	LastName       string
	Address        Address
	Email          string
	Company        string
	Title          string
	PhonePrivate   phone.Number
	PhoneMobile    phone.Number
	PhoneBusiness1 phone.Number
	PhoneBusiness2 phone.Number
}

// Option sets an optional field in New.
type Option func(*Contact)

// New returns a contact with the given surname and every other field absent
// unless set by opts.
func New(lastName string, opts ...Option) Contact {
	c := Contact{LastName: lastName}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// WithFirstName sets the given name.
func WithFirstName(name string) Option {
	return func(c *Contact) { c.FirstName = name }
}

// WithAddress sets both address lines.
func WithAddress(street, locality string) Option {
	return func(c *Contact) { c.Address = Address{Street: street, Locality: locality} }
}

// WithEmail sets the e-mail address.
func WithEmail(email string) Option {
	return func(c *Contact) { c.Email = email }
}

// WithCompany sets the organization.
func WithCompany(company string) Option {
	return func(c *Contact) { c.Company = company }
}

// WithTitle sets the honorific prefix, e.g. "Dr.".
func WithTitle(title string) Option {
	return func(c *Contact) { c.Title = title }
}

// WithPhonePrivate sets the home number.
func WithPhonePrivate(n phone.Number) Option {
	return func(c *Contact) { c.PhonePrivate = n }
}

// WithPhoneMobile sets the mobile number.
func WithPhoneMobile(n phone.Number) Option {
	return func(c *Contact) { c.PhoneMobile = n }
}

// WithPhoneBusiness1 sets the main business number.
func WithPhoneBusiness1(n phone.Number) Option {
	return func(c *Contact) { c.PhoneBusiness1 = n }
}

// WithPhoneBusiness2 sets the secondary business number (stored as fax in LDAP).
func WithPhoneBusiness2(n phone.Number) Option {
	return func(c *Contact) { c.PhoneBusiness2 = n }
}

// DisplayName builds "<title> <first> <last> (<company>)" from the parts
// that are set. When nothing identifies the contact a random UUID is
// returned, so the result is never empty.
func (c Contact) DisplayName() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{c.Title, c.FirstName, c.LastName} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if company := strings.TrimSpace(c.Company); company != "" {
		parts = append(parts, "("+company+")")
	}

	if name := strings.Join(parts, " "); name != "" {
		return name
	}
	return uuid.NewString()
}

// String implements fmt.Stringer for log output.
func (c Contact) String() string {
	return "Contact(" + c.DisplayName() + ")"
}

// Key returns a deterministic string over every field. Distinct contacts
// have distinct keys; sorting by Key orders contacts by surname first.
func (c Contact) Key() string {
	const sep = "\x1f"
	return strings.Join([]string{
		c.LastName,
		c.FirstName,
		c.Title,
		c.Company,
		c.Address.Street,
		c.Address.Locality,
		c.Email,
		c.PhonePrivate.E164(),
		c.PhoneMobile.E164(),
		c.PhoneBusiness1.E164(),
		c.PhoneBusiness2.E164(),
	}, sep)
}
