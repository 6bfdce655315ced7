// Package directory converts contacts to and from LDAP attribute records.
//
// Encode writes every present field and always writes sn, because the
// inetOrgPerson schema requires a surname. Decode is lenient on field-level
// problems (it logs a warning and drops the field) and strict on structural
// ones (it returns a *errors.DecodeError so the caller can skip the record).
package directory

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/nc2ldap/pkg/constants"
	"github.com/agentstation/nc2ldap/pkg/contact"
	"github.com/agentstation/nc2ldap/pkg/errors"
	"github.com/agentstation/nc2ldap/pkg/logging"
	"github.com/agentstation/nc2ldap/pkg/phone"
)

// Encode renders c as flat LDAP attributes. Absent fields are omitted and
// phone numbers use the international format.
func Encode(c contact.Contact) Attributes {
	attrs := Attributes{AttrSurname: c.LastName}

	setText := func(name, value string) {
		if value != "" {
			attrs[name] = value
		}
	}
	setPhone := func(name string, n phone.Number) {
		if !n.IsZero() {
			attrs[name] = n.International()
		}
	}

	setText(AttrGivenName, c.FirstName)
	setPhone(AttrTelephone, c.PhoneBusiness1)
	setPhone(AttrFax, c.PhoneBusiness2)
	setPhone(AttrMobile, c.PhoneMobile)
	setPhone(AttrHomePhone, c.PhonePrivate)
	setText(AttrOrganization, c.Company)
	setText(AttrStreet, c.Address.Street)
	setText(AttrLocality, c.Address.Locality)
	setText(AttrTitle, c.Title)
	setText(AttrMail, c.Email)

	return attrs
}

// Decoder turns directory records back into contacts.
type Decoder struct {
	region string
	logger *zerolog.Logger
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithLogger sets the logger for field and record diagnostics.
func WithLogger(logger *zerolog.Logger) Option {
	return func(d *Decoder) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithRegion sets the region for stored numbers that lack a country code.
func WithRegion(region string) Option {
	return func(d *Decoder) {
		if region != "" {
			d.region = region
		}
	}
}

// NewDecoder returns a Decoder.
func NewDecoder(opts ...Option) *Decoder {
	d := &Decoder{region: constants.DefaultRegion, logger: logging.Default()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Decode converts one record. A missing sn decodes to the empty surname.
func (d *Decoder) Decode(rec Record) (contact.Contact, error) {
	for _, name := range AttributeNames() {
		v, ok := rec.lookup(name)
		if !ok {
			continue
		}
		switch {
		case v.kind == kindInvalid:
			return contact.Contact{}, errors.NewDecodeError(name, "value is neither a string nor a list")
		case len(v.values) == 0:
			return contact.Contact{}, errors.NewDecodeError(name, "empty value list")
		}
	}

	text := func(name string) string {
		v, ok := rec.lookup(name)
		if !ok {
			return ""
		}
		if len(v.values) > 1 {
			d.logger.Warn().
				Str("attribute", name).
				Strs("values", v.values).
				Msg("multi-valued attribute, using the first value")
		}
		return v.values[0]
	}
	number := func(name string) phone.Number {
		raw := text(name)
		if raw == "" {
			return phone.Number{}
		}
		n, err := phone.Parse(raw, d.region)
		if err != nil {
			d.logger.Warn().Err(err).Str("attribute", name).Str("value", raw).Msg("dropping unparsable phone number")
			return phone.Number{}
		}
		return n
	}

	return contact.Contact{
		FirstName:      text(AttrGivenName),
		LastName:       text(AttrSurname),
		Address:        contact.Address{Street: text(AttrStreet), Locality: text(AttrLocality)},
		Email:          text(AttrMail),
		Company:        text(AttrOrganization),
		Title:          text(AttrTitle),
		PhonePrivate:   number(AttrHomePhone),
		PhoneMobile:    number(AttrMobile),
		PhoneBusiness1: number(AttrTelephone),
		PhoneBusiness2: number(AttrFax),
	}, nil
}

// DecodeEntry decodes e and attaches the DN to any decode error.
func (d *Decoder) DecodeEntry(e Entry) (contact.Contact, error) {
	c, err := d.Decode(e.Attributes)
	var decErr *errors.DecodeError
	if errors.As(err, &decErr) && decErr.DN == "" {
		decErr.DN = e.DN
	}
	return c, err
}

// DecodeAll decodes entries, logging and skipping malformed records.
func (d *Decoder) DecodeAll(entries []Entry) []contact.Contact {
	contacts := make([]contact.Contact, 0, len(entries))
	for _, e := range entries {
		c, err := d.DecodeEntry(e)
		if err != nil {
			d.logger.Error().Err(err).Str("dn", e.DN).Msg("skipping malformed directory record")
			continue
		}
		contacts = append(contacts, c)
	}
	return contacts
}
