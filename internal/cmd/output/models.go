package output

import (
	"io"

	"github.com/agentstation/nc2ldap/internal/cmd/table"
	"github.com/agentstation/nc2ldap/pkg/contact"
	"github.com/agentstation/nc2ldap/pkg/phone"
	"github.com/agentstation/nc2ldap/pkg/reconcile"
	"github.com/agentstation/nc2ldap/pkg/sync"
)

// Contact is the serialized form of a contact. Phone numbers are written in
// international notation, the way the phone book stores them.
type Contact struct {
	Name           string `json:"name" yaml:"name"`
	FirstName      string `json:"first_name,omitempty" yaml:"first_name,omitempty"`
	LastName       string `json:"last_name" yaml:"last_name"`
	Title          string `json:"title,omitempty" yaml:"title,omitempty"`
	Company        string `json:"company,omitempty" yaml:"company,omitempty"`
	Email          string `json:"email,omitempty" yaml:"email,omitempty"`
	Street         string `json:"street,omitempty" yaml:"street,omitempty"`
	Locality       string `json:"locality,omitempty" yaml:"locality,omitempty"`
	PhonePrivate   string `json:"phone_private,omitempty" yaml:"phone_private,omitempty"`
	PhoneMobile    string `json:"phone_mobile,omitempty" yaml:"phone_mobile,omitempty"`
	PhoneBusiness1 string `json:"phone_business1,omitempty" yaml:"phone_business1,omitempty"`
	PhoneBusiness2 string `json:"phone_business2,omitempty" yaml:"phone_business2,omitempty"`
}

// Changeset is the serialized form of a changeset.
type Changeset struct {
	Added     []Contact `json:"added" yaml:"added"`
	Removed   []Contact `json:"removed" yaml:"removed"`
	Unchanged int       `json:"unchanged" yaml:"unchanged"`
}

// Result is the serialized form of a sync result.
type Result struct {
	Added          []Contact `json:"added" yaml:"added"`
	Removed        []Contact `json:"removed" yaml:"removed"`
	Failed         int       `json:"failed" yaml:"failed"`
	SourceCount    int       `json:"source_contacts" yaml:"source_contacts"`
	DirectoryCount int       `json:"directory_contacts" yaml:"directory_contacts"`
	Skipped        int       `json:"removals_skipped,omitempty" yaml:"removals_skipped,omitempty"`
	DryRun         bool      `json:"dry_run" yaml:"dry_run"`
	Duration       string    `json:"duration" yaml:"duration"`
	Errors         string    `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// NewContact converts a contact for serialization.
func NewContact(c contact.Contact) Contact {
	return Contact{
		Name:           c.DisplayName(),
		FirstName:      c.FirstName,
		LastName:       c.LastName,
		Title:          c.Title,
		Company:        c.Company,
		Email:          c.Email,
		Street:         c.Address.Street,
		Locality:       c.Address.Locality,
		PhonePrivate:   international(c.PhonePrivate),
		PhoneMobile:    international(c.PhoneMobile),
		PhoneBusiness1: international(c.PhoneBusiness1),
		PhoneBusiness2: international(c.PhoneBusiness2),
	}
}

func international(n phone.Number) string {
	if n.IsZero() {
		return ""
	}
	return n.International()
}

func contacts(cs []contact.Contact) []Contact {
	out := make([]Contact, 0, len(cs))
	for _, c := range cs {
		out = append(out, NewContact(c))
	}
	return out
}

// NewChangeset converts a changeset for serialization.
func NewChangeset(cs *reconcile.Changeset) Changeset {
	return Changeset{
		Added:     contacts(cs.Added),
		Removed:   contacts(cs.Removed),
		Unchanged: cs.Summary.Unchanged,
	}
}

// NewResult converts a sync result for serialization.
func NewResult(r *sync.Result) Result {
	out := Result{
		Added:          contacts(r.Added),
		Removed:        contacts(r.Removed),
		Failed:         r.Failed,
		SourceCount:    r.SourceCount,
		DirectoryCount: r.DirectoryCount,
		Skipped:        r.Skipped,
		DryRun:         r.DryRun,
		Duration:       r.Duration.String(),
	}
	if r.Errors != nil {
		out.Errors = r.Errors.Error()
	}
	return out
}

// FormatChangeset writes a changeset in the given format.
func FormatChangeset(w io.Writer, cs *reconcile.Changeset, format Format) error {
	if format.IsTable() {
		return NewFormatter(format).Format(w, table.ChangesetToTableData(cs, format == FormatWide))
	}
	return NewFormatter(format).Format(w, NewChangeset(cs))
}

// FormatResult writes a sync result in the given format.
func FormatResult(w io.Writer, r *sync.Result, format Format) error {
	if format.IsTable() {
		return NewFormatter(format).Format(w, table.ResultToTableData(r))
	}
	return NewFormatter(format).Format(w, NewResult(r))
}

// FormatAny writes any value in the given format.
func FormatAny(w io.Writer, data any, format Format) error {
	return NewFormatter(format).Format(w, data)
}
