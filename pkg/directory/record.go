package directory

import "strings"

// LDAP attribute names of an inetOrgPerson phone book entry.
const (
	AttrGivenName    = "givenName"
	AttrSurname      = "sn"
	AttrTelephone    = "telephoneNumber"
	AttrFax          = "facsimileTelephoneNumber"
	AttrMobile       = "mobile"
	AttrHomePhone    = "homePhone"
	AttrOrganization = "o"
	AttrStreet       = "street"
	AttrLocality     = "l"
	AttrTitle        = "title"
	AttrMail         = "mail"
)

// AttributeNames lists every attribute the codec reads or writes.
func AttributeNames() []string {
	return []string{
		AttrGivenName, AttrSurname, AttrTelephone, AttrFax, AttrMobile, AttrHomePhone,
		AttrOrganization, AttrStreet, AttrLocality, AttrTitle, AttrMail,
	}
}

type valueKind uint8

const (
	kindInvalid valueKind = iota
	kindScalar
	kindMulti
)

// Value is one attribute value as returned by a directory: either a single
// string or a list of strings. The zero Value is neither and is rejected by
// the decoder.
type Value struct {
	kind   valueKind
	values []string
}

// Scalar returns a single-string value.
func Scalar(s string) Value {
	return Value{kind: kindScalar, values: []string{s}}
}

// Multi returns a list value.
func Multi(values ...string) Value {
	return Value{kind: kindMulti, values: append([]string(nil), values...)}
}

// IsMulti reports whether v is a list value.
func (v Value) IsMulti() bool {
	return v.kind == kindMulti
}

// Values returns the strings held by v.
func (v Value) Values() []string {
	return append([]string(nil), v.values...)
}

// Record maps attribute names to values.
type Record map[string]Value

// lookup finds an attribute, matching names case-insensitively as LDAP does.
func (r Record) lookup(name string) (Value, bool) {
	if v, ok := r[name]; ok {
		return v, true
	}
	for k, v := range r {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return Value{}, false
}

// Entry is one directory record with its distinguished name.
type Entry struct {
	DN         string
	Attributes Record
}

// Attributes is the flat attribute map produced by Encode.
type Attributes map[string]string

// Record converts a to the Record shape, one Scalar per attribute.
func (a Attributes) Record() Record {
	r := make(Record, len(a))
	for k, v := range a {
		r[k] = Scalar(v)
	}
	return r
}
