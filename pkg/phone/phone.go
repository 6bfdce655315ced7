// Package phone normalizes telephone numbers into a comparable E.164 value.
//
// Two numbers are equal exactly when their E.164 renderings are equal, no matter
// how the raw input was spaced or prefixed, so a Number can sit inside a
// comparable struct and take part in map-key set difference.
package phone

import (
	"fmt"
	"strings"

	"github.com/nyaruka/phonenumbers"
	"golang.org/x/text/language"

	"github.com/agentstation/nc2ldap/pkg/errors"
)

// Number is a parsed telephone number. The zero value means "no number".
type Number struct {
	e164 string
}

// FormatError reports a string that cannot be interpreted as a telephone number.
type FormatError struct {
	Raw    string
	Region string
	Err    error
}

// Error implements the error interface
func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid phone number %q (region %s): %v", e.Raw, e.Region, e.Err)
	}
	return fmt.Sprintf("invalid phone number %q (region %s)", e.Raw, e.Region)
}

// Unwrap implements errors.Unwrap
func (e *FormatError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *FormatError) Is(target error) bool {
	return target == errors.ErrInvalidInput
}

// Parse interprets raw as a telephone number. region is the ISO-3166 alpha-2
// code assumed when raw carries no leading "+" country code.
func Parse(raw, region string) (Number, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Number{}, &FormatError{Raw: raw, Region: region, Err: errors.New("empty")}
	}

	num, err := phonenumbers.Parse(trimmed, strings.ToUpper(region))
	if err != nil {
		return Number{}, &FormatError{Raw: raw, Region: region, Err: err}
	}
	return Number{e164: phonenumbers.Format(num, phonenumbers.E164)}, nil
}

// MustParse is like Parse but panics on error. Intended for tests and fixed tables.
func MustParse(raw, region string) Number {
	n, err := Parse(raw, region)
	if err != nil {
		panic(err)
	}
	return n
}

// IsZero reports whether n holds no number.
func (n Number) IsZero() bool {
	return n.e164 == ""
}

// E164 returns the canonical "+<country><national>" form.
func (n Number) E164() string {
	return n.e164
}

// International returns the human-readable international format,
// e.g. "+49 5555 345". The zero Number renders as "".
func (n Number) International() string {
	if n.IsZero() {
		return ""
	}
	num, err := phonenumbers.Parse(n.e164, "")
	if err != nil {
		return n.e164
	}
	return phonenumbers.Format(num, phonenumbers.INTERNATIONAL)
}

// String implements fmt.Stringer.
func (n Number) String() string {
	return n.International()
}

// ValidRegion checks that region is an ISO-3166 region with a calling code.
func ValidRegion(region string) error {
	r, err := language.ParseRegion(region)
	if err != nil {
		return errors.NewValidationError("region", region, "not an ISO-3166 region code")
	}
	if phonenumbers.GetCountryCodeForRegion(r.String()) == 0 {
		return errors.NewValidationError("region", region, "no telephone numbering plan for region")
	}
	return nil
}
