package table

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/nc2ldap/pkg/contact"
	"github.com/agentstation/nc2ldap/pkg/phone"
	"github.com/agentstation/nc2ldap/pkg/reconcile"
	"github.com/agentstation/nc2ldap/pkg/sync"
)

func TestChangesetToTableData(t *testing.T) {
	joey := contact.New("Tribbiani",
		contact.WithFirstName("Joey"),
		contact.WithPhoneMobile(phone.MustParse("0170 1234567", "DE")),
		contact.WithEmail("joey@example.org"),
	)
	ross := contact.New("Geller", contact.WithFirstName("Ross"), contact.WithCompany("Museum"))

	cs := reconcile.Reconcile([]contact.Contact{joey}, []contact.Contact{ross})

	data := ChangesetToTableData(cs, false)
	require.Len(t, data.Rows, 2)
	assert.Len(t, data.Headers, 6)
	assert.Len(t, data.ColumnAlignment, len(data.Headers))

	assert.Equal(t, MarkRemoved, data.Rows[0][0], "removals come first")
	assert.Equal(t, "Ross Geller (Museum)", data.Rows[0][1])
	assert.Equal(t, "-", data.Rows[0][2])

	assert.Equal(t, MarkAdded, data.Rows[1][0])
	assert.Equal(t, "Joey Tribbiani", data.Rows[1][1])
	assert.Equal(t, joey.PhoneMobile.International(), data.Rows[1][2])
	assert.Equal(t, "joey@example.org", data.Rows[1][5])
}

func TestChangesetToTableDataWide(t *testing.T) {
	c := contact.New("Green", contact.WithAddress("Central Perk 1", "10012 New York"), contact.WithTitle("Ms."))
	data := ChangesetToTableData(reconcile.Reconcile([]contact.Contact{c}, nil), true)

	require.Len(t, data.Rows, 1)
	assert.Len(t, data.Rows[0], len(data.Headers))
	assert.Contains(t, data.Rows[0], "Central Perk 1")
	assert.Contains(t, data.Rows[0], "10012 New York")
	assert.Contains(t, data.Rows[0], "Ms.")
}

func TestResultToTableData(t *testing.T) {
	r := &sync.Result{
		Added:          []contact.Contact{contact.New("Bing")},
		SourceCount:    3,
		DirectoryCount: 2,
		Skipped:        1,
		Duration:       1500 * time.Microsecond,
	}

	data := ResultToTableData(r)
	values := make(map[string]string, len(data.Rows))
	for _, row := range data.Rows {
		values[row[0]] = row[1]
	}

	assert.Equal(t, "3", values["Source contacts"])
	assert.Equal(t, "1", values["Added"])
	assert.Equal(t, "0", values["Removed"])
	assert.Equal(t, "1", values["Removals skipped"])
	assert.Equal(t, "2ms", values["Duration"])
}

func TestFormatPhone(t *testing.T) {
	assert.Equal(t, "-", FormatPhone(phone.Number{}))
	assert.Equal(t, "+49 30 1234567", FormatPhone(phone.MustParse("030/1234567", "DE")))
}
