// Package reconcile computes the directory operations that bring a
// directory in line with a contact source.
//
// Contacts are compared by value. Anything present in the directory but not
// in the source is removed, anything present in the source but not in the
// directory is added, and nothing is patched in place. Duplicates inside one
// input collapse to a single contact.
package reconcile

import (
	"slices"
	"strings"

	"github.com/agentstation/nc2ldap/pkg/contact"
)

// Reconcile diffs source against current. Both result lists are sorted by
// contact.Contact.Key so output is stable between runs.
func Reconcile(source, current []contact.Contact) *Changeset {
	want := toSet(source)
	have := toSet(current)

	removed := difference(have, want)
	added := difference(want, have)

	return &Changeset{
		Removed: removed,
		Added:   added,
		Summary: summarize(added, removed, len(have)-len(removed)),
	}
}

type set map[contact.Contact]struct{}

func toSet(contacts []contact.Contact) set {
	s := make(set, len(contacts))
	for _, c := range contacts {
		s[c] = struct{}{}
	}
	return s
}

// difference returns a - b in Key order.
func difference(a, b set) []contact.Contact {
	var out []contact.Contact
	for c := range a {
		if _, ok := b[c]; !ok {
			out = append(out, c)
		}
	}
	slices.SortFunc(out, func(x, y contact.Contact) int {
		return strings.Compare(x.Key(), y.Key())
	})
	return out
}
