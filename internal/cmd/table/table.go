// Package table converts changesets and sync results into table rows.
package table

import (
	"strconv"
	"time"

	"github.com/agentstation/nc2ldap/pkg/contact"
	"github.com/agentstation/nc2ldap/pkg/phone"
	"github.com/agentstation/nc2ldap/pkg/reconcile"
	"github.com/agentstation/nc2ldap/pkg/sync"
)

// Align represents column alignment in tables.
type Align int

const (
	// AlignDefault uses the default alignment (skip).
	AlignDefault Align = iota
	// AlignLeft aligns content to the left.
	AlignLeft
	// AlignCenter centers content.
	AlignCenter
	// AlignRight aligns content to the right.
	AlignRight
)

// Data represents table formatting data to avoid import cycles.
type Data struct {
	Headers         []string
	Rows            [][]string
	ColumnAlignment []Align // Optional: column alignment
}

// Change markers.
const (
	MarkAdded   = "+"
	MarkRemoved = "-"
)

const none = "-"

// ChangesetToTableData lists removals first, then additions.
// Wide output adds the address, company and title columns.
func ChangesetToTableData(cs *reconcile.Changeset, wide bool) Data {
	headers := []string{"", "Name", "Mobile", "Private", "Business", "Email"}
	align := []Align{AlignCenter, AlignLeft, AlignLeft, AlignLeft, AlignLeft, AlignLeft}
	if wide {
		headers = append(headers, "Business 2", "Street", "Locality", "Company", "Title")
		align = append(align, AlignLeft, AlignLeft, AlignLeft, AlignLeft, AlignLeft)
	}

	rows := make([][]string, 0, cs.Summary.TotalChanges)
	for _, c := range cs.Removed {
		rows = append(rows, contactRow(MarkRemoved, c, wide))
	}
	for _, c := range cs.Added {
		rows = append(rows, contactRow(MarkAdded, c, wide))
	}

	return Data{Headers: headers, Rows: rows, ColumnAlignment: align}
}

func contactRow(mark string, c contact.Contact, wide bool) []string {
	row := []string{
		mark,
		c.DisplayName(),
		FormatPhone(c.PhoneMobile),
		FormatPhone(c.PhonePrivate),
		FormatPhone(c.PhoneBusiness1),
		orNone(c.Email),
	}
	if wide {
		row = append(row,
			FormatPhone(c.PhoneBusiness2),
			orNone(c.Address.Street),
			orNone(c.Address.Locality),
			orNone(c.Company),
			orNone(c.Title),
		)
	}
	return row
}

// ResultToTableData summarizes a sync cycle as key/value rows.
func ResultToTableData(r *sync.Result) Data {
	rows := [][]string{
		{"Source contacts", strconv.Itoa(r.SourceCount)},
		{"Directory contacts", strconv.Itoa(r.DirectoryCount)},
		{"Added", strconv.Itoa(len(r.Added))},
		{"Removed", strconv.Itoa(len(r.Removed))},
		{"Failed", strconv.Itoa(r.Failed)},
	}
	if r.Skipped > 0 {
		rows = append(rows, []string{"Removals skipped", strconv.Itoa(r.Skipped)})
	}
	rows = append(rows,
		[]string{"Dry run", strconv.FormatBool(r.DryRun)},
		[]string{"Duration", r.Duration.Round(time.Millisecond).String()},
	)

	return Data{
		Headers:         []string{"Property", "Value"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignRight},
	}
}

// FormatPhone renders a number in international notation.
func FormatPhone(n phone.Number) string {
	if n.IsZero() {
		return none
	}
	return n.International()
}

func orNone(s string) string {
	if s == "" {
		return none
	}
	return s
}
