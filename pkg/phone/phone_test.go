package phone_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/agentstation/nc2ldap/pkg/errors"
	"github.com/agentstation/nc2ldap/pkg/phone"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		region string
		e164   string
	}{
		{"national with region", "05555 345", "DE", "+495555345"},
		{"international ignores region", "+49 5555 123", "US", "+495555123"},
		{"surrounding whitespace", "  +4915170080598 ", "DE", "+4915170080598"},
		{"lower-case region", "030 1234567", "de", "+49301234567"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := phone.Parse(tt.raw, tt.region)
			require.NoError(t, err)
			assert.False(t, n.IsZero())
			assert.Equal(t, tt.e164, n.E164())
			assert.True(t, strings.HasPrefix(n.International(), "+49 "), n.International())
			assert.Equal(t, n.International(), n.String())
		})
	}
}

func TestInternational(t *testing.T) {
	assert.Equal(t, "+49 30 1234567", phone.MustParse("030/1234567", "DE").International())
	assert.Equal(t, "+1 202-555-0143", phone.MustParse("(202) 555-0143", "US").International())
}

func TestParseEqualityIgnoresSpelling(t *testing.T) {
	a := phone.MustParse("+49 5555 345", "DE")
	b := phone.MustParse("05555345", "DE")
	c := phone.MustParse(a.International(), "US")

	assert.Equal(t, a, b)
	assert.Equal(t, a, c)
	assert.True(t, a == b)
}

func TestParseFailures(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		region string
	}{
		{"empty", "", "DE"},
		{"blank", "   ", "DE"},
		{"letters", "call me maybe", "DE"},
		{"national without usable region", "0555 123", "ZZ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := phone.Parse(tt.raw, tt.region)
			require.Error(t, err)
			assert.True(t, n.IsZero())

			var fe *phone.FormatError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, tt.raw, fe.Raw)
			assert.True(t, pkgerrors.IsValidationError(err))
		})
	}
}

func TestMustParsePanics(t *testing.T) {
	assert.Panics(t, func() { phone.MustParse("nope", "DE") })
}

func TestZeroNumber(t *testing.T) {
	var n phone.Number
	assert.True(t, n.IsZero())
	assert.Empty(t, n.E164())
	assert.Empty(t, n.International())
}

func TestValidRegion(t *testing.T) {
	assert.NoError(t, phone.ValidRegion("DE"))
	assert.NoError(t, phone.ValidRegion("us"))
	assert.Error(t, phone.ValidRegion(""))
	assert.Error(t, phone.ValidRegion("Germany"))
	assert.True(t, pkgerrors.IsValidationError(phone.ValidRegion("XYZ")))
}
