// Package card decodes vCard records into canonical contacts.
//
// A card may carry several TEL, EMAIL, ADR or ORG properties. For every
// contact field the decoder applies a selection policy over the TYPE tags:
// an entry carrying all preferred tags wins, otherwise the first entry that
// does not belong to a competing field is used. Ambiguities and dropped
// values are logged as warnings; decoding a card never fails.
package card

import (
	"strings"

	"github.com/emersion/go-vcard"
	"github.com/rs/zerolog"

	"github.com/agentstation/nc2ldap/pkg/constants"
	"github.com/agentstation/nc2ldap/pkg/contact"
	"github.com/agentstation/nc2ldap/pkg/logging"
	"github.com/agentstation/nc2ldap/pkg/phone"
)

var (
	phoneDistractor = NewTagSet("fax")
	phoneCategories = NewTagSet("home", "cell", "work")

	privatePolicy = policy{
		field:     "PhonePrivate",
		preferred: NewTagSet("voice", "home"),
		competing: NewTagSet("cell", "work"),
	}
	mobilePolicy = policy{
		field:     "PhoneMobile",
		preferred: NewTagSet("voice", "cell"),
		competing: NewTagSet("home", "work"),
	}
	business1Policy = policy{
		field:     "PhoneBusiness1",
		preferred: NewTagSet("voice", "work"),
		competing: NewTagSet("home", "cell"),
	}
	emailPolicy   = policy{field: "Email", preferred: NewTagSet("home")}
	addressPolicy = policy{field: "Address", preferred: NewTagSet("home")}
	companyPolicy = policy{field: "Company"}
)

// phoneSlot binds a phone policy to the contact field it fills.
type phoneSlot struct {
	policy policy
	set    func(*contact.Contact, phone.Number)
}

var phoneSlots = []phoneSlot{
	{privatePolicy, func(c *contact.Contact, n phone.Number) { c.PhonePrivate = n }},
	{mobilePolicy, func(c *contact.Contact, n phone.Number) { c.PhoneMobile = n }},
	{business1Policy, func(c *contact.Contact, n phone.Number) { c.PhoneBusiness1 = n }},
}

// Decoder turns vCards into contacts.
type Decoder struct {
	region string
	logger *zerolog.Logger
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithLogger sets the logger that receives field-level warnings.
func WithLogger(logger *zerolog.Logger) Option {
	return func(d *Decoder) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewDecoder returns a decoder that parses national phone numbers for region.
// An empty region means constants.DefaultRegion.
func NewDecoder(region string, opts ...Option) *Decoder {
	if region == "" {
		region = constants.DefaultRegion
	}
	d := &Decoder{region: region, logger: logging.Default()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DecodeAll decodes every card in order.
func (d *Decoder) DecodeAll(cards []vcard.Card) []contact.Contact {
	contacts := make([]contact.Contact, 0, len(cards))
	for _, c := range cards {
		contacts = append(contacts, d.Decode(c))
	}
	return contacts
}

// Decode converts one card into exactly one contact.
func (d *Decoder) Decode(card vcard.Card) contact.Contact {
	log := d.logger.With().Str("card", label(card)).Logger()

	var c contact.Contact
	d.decodeName(&log, card, &c)

	if email, ok := choose(&log, emailPolicy, textEntries(card, vcard.FieldEmail)); ok {
		c.Email = email
	}
	if addr, ok := choose(&log, addressPolicy, addressEntries(card)); ok {
		c.Address = addr
	}
	if org, ok := choose(&log, companyPolicy, organizationEntries(card)); ok {
		c.Company = org
	}
	d.decodePhones(&log, card, &c)

	return c
}

func (d *Decoder) decodeName(log *zerolog.Logger, card vcard.Card, c *contact.Contact) {
	c.LastName = contact.UnknownSurname

	name := card.Name()
	if name == nil {
		log.Warn().Str("field", "LastName").Str("placeholder", contact.UnknownSurname).Msg("card has no structured name")
		return
	}

	c.FirstName = strings.TrimSpace(name.GivenName)
	c.Title = strings.TrimSpace(name.HonorificPrefix)

	var family []string
	for _, part := range strings.Split(name.FamilyName, ",") {
		if part = strings.TrimSpace(part); part != "" {
			family = append(family, part)
		}
	}
	if len(family) == 0 {
		log.Warn().Str("field", "LastName").Str("placeholder", contact.UnknownSurname).Msg("card has no family name")
		return
	}
	c.LastName = strings.Join(family, ", ")
}

// decodePhones resolves preferred matches for every phone field before any
// fallback, and never assigns one card entry to two fields.
func (d *Decoder) decodePhones(log *zerolog.Logger, card vcard.Card, c *contact.Contact) {
	entries := phoneEntries(log, card)
	if len(entries) == 0 {
		return
	}

	taken := make(map[int]bool, len(entries))
	available := func(i int) bool { return !taken[i] }
	chosen := make([]int, len(phoneSlots))

	for s, slot := range phoneSlots {
		chosen[s] = choosePreferred(log, slot.policy, entries, available)
		if chosen[s] >= 0 {
			taken[chosen[s]] = true
		}
	}
	for s, slot := range phoneSlots {
		if chosen[s] >= 0 {
			continue
		}
		chosen[s] = chooseFallback(log, slot.policy, entries, available)
		if chosen[s] >= 0 {
			taken[chosen[s]] = true
		}
	}

	for s, slot := range phoneSlots {
		if chosen[s] < 0 {
			continue
		}
		raw := entries[chosen[s]].Value
		n, err := phone.Parse(raw, d.region)
		if err != nil {
			log.Warn().Err(err).Str("field", slot.policy.field).Str("value", raw).Msg("dropping unparsable phone number")
			continue
		}
		slot.set(c, n)
	}
}

// phoneEntries collects TEL properties that are contactable voice lines.
func phoneEntries(log *zerolog.Logger, card vcard.Card) []Entry[string] {
	var entries []Entry[string]
	for _, f := range card[vcard.FieldTelephone] {
		tags := tagsOf(f)
		value := strings.TrimSpace(strings.TrimPrefix(f.Value, "tel:"))
		if tags.hasAny(phoneDistractor) || (tags.has("voice") && !tags.hasAny(phoneCategories)) {
			log.Debug().Str("field", vcard.FieldTelephone).Str("value", value).Msg("ignoring non-personal phone entry")
			continue
		}
		entries = append(entries, Entry[string]{Tags: tags, Value: value})
	}
	return entries
}

func textEntries(card vcard.Card, key string) []Entry[string] {
	var entries []Entry[string]
	for _, f := range card[key] {
		entries = append(entries, Entry[string]{Tags: tagsOf(f), Value: strings.TrimSpace(f.Value)})
	}
	return entries
}

// addressEntries maps ADR to (street, "<postal code> <locality>").
func addressEntries(card vcard.Card) []Entry[contact.Address] {
	var entries []Entry[contact.Address]
	for _, a := range card.Addresses() {
		entries = append(entries, Entry[contact.Address]{
			Tags: tagsOf(a.Field),
			Value: contact.Address{
				Street:   strings.TrimSpace(a.StreetAddress),
				Locality: joinNonEmpty(" ", a.PostalCode, a.Locality),
			},
		})
	}
	return entries
}

// organizationEntries joins the ";"-separated ORG components with a space.
func organizationEntries(card vcard.Card) []Entry[string] {
	var entries []Entry[string]
	for _, f := range card[vcard.FieldOrganization] {
		entries = append(entries, Entry[string]{
			Tags:  tagsOf(f),
			Value: joinNonEmpty(" ", strings.Split(f.Value, ";")...),
		})
	}
	return entries
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

// label identifies a card in log output.
func label(card vcard.Card) string {
	if fn := card.PreferredValue(vcard.FieldFormattedName); fn != "" {
		return fn
	}
	return card.Value(vcard.FieldUID)
}
