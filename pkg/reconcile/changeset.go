package reconcile

import (
	"fmt"
	"strings"

	"github.com/agentstation/nc2ldap/pkg/contact"
)

// Changeset is the set of directory operations that makes the directory
// equal to the source. A changed contact shows up in both lists: its old
// version is removed and its new version added.
type Changeset struct {
	Removed []contact.Contact // in the directory but not in the source
	Added   []contact.Contact // in the source but not in the directory
	Summary Summary
}

// Summary provides summary statistics for a changeset.
type Summary struct {
	Added        int
	Removed      int
	Unchanged    int
	TotalChanges int
}

func summarize(added, removed []contact.Contact, unchanged int) Summary {
	return Summary{
		Added:        len(added),
		Removed:      len(removed),
		Unchanged:    unchanged,
		TotalChanges: len(added) + len(removed),
	}
}

// HasChanges returns true if the changeset contains any changes.
func (c *Changeset) HasChanges() bool {
	return c.Summary.TotalChanges > 0
}

// IsEmpty returns true if the changeset contains no changes.
func (c *Changeset) IsEmpty() bool {
	return c.Summary.TotalChanges == 0
}

// String returns a one-line summary.
func (c *Changeset) String() string {
	if c.IsEmpty() {
		return fmt.Sprintf("No changes detected (%d unchanged)", c.Summary.Unchanged)
	}

	var parts []string
	if c.Summary.Added > 0 {
		parts = append(parts, fmt.Sprintf("%d added", c.Summary.Added))
	}
	if c.Summary.Removed > 0 {
		parts = append(parts, fmt.Sprintf("%d removed", c.Summary.Removed))
	}
	return fmt.Sprintf("Changeset: %s, %d unchanged (Total: %d changes)",
		strings.Join(parts, ", "), c.Summary.Unchanged, c.Summary.TotalChanges)
}

// Filter returns the part of the changeset that strategy allows to apply.
func (c *Changeset) Filter(strategy ApplyStrategy) *Changeset {
	switch strategy {
	case ApplyAdditive:
		return &Changeset{
			Added:   c.Added,
			Summary: summarize(c.Added, nil, c.Summary.Unchanged),
		}
	default:
		return c
	}
}
