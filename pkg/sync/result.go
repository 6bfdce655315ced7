package sync

import (
	"fmt"
	"strings"
	"time"

	"github.com/agentstation/nc2ldap/pkg/contact"
	"github.com/agentstation/nc2ldap/pkg/reconcile"
)

// Result represents the outcome of one sync cycle.
type Result struct {
	Added   []contact.Contact // Contacts written to the directory
	Removed []contact.Contact // Contacts deleted from the directory
	Failed  int               // Operations that returned an error

	SourceCount    int // Contacts decoded from the source
	DirectoryCount int // Contacts decoded from the directory before the cycle
	Skipped        int // Removals withheld by the apply strategy

	DryRun   bool
	Duration time.Duration
	Errors   error // Per-operation failures, joined
}

// NewResult seeds a result from the changeset that will be applied.
// In dry-run mode the planned operations are reported as if applied.
func NewResult(planned, full *reconcile.Changeset, sourceCount, directoryCount int, dryRun bool) *Result {
	r := &Result{
		SourceCount:    sourceCount,
		DirectoryCount: directoryCount,
		Skipped:        len(full.Removed) - len(planned.Removed),
		DryRun:         dryRun,
	}
	if dryRun {
		r.Added = planned.Added
		r.Removed = planned.Removed
	}
	return r
}

// HasChanges returns true if the cycle changed (or would change) the directory.
func (r *Result) HasChanges() bool {
	return len(r.Added) > 0 || len(r.Removed) > 0
}

// Summary returns a human-readable summary of the sync result.
func (r *Result) Summary() string {
	var s string
	if !r.HasChanges() && r.Failed == 0 {
		s = fmt.Sprintf("No changes detected (%d source, %d directory contacts)", r.SourceCount, r.DirectoryCount)
	} else {
		parts := []string{
			fmt.Sprintf("%d added", len(r.Added)),
			fmt.Sprintf("%d removed", len(r.Removed)),
		}
		if r.Failed > 0 {
			parts = append(parts, fmt.Sprintf("%d failed", r.Failed))
		}
		if r.Skipped > 0 {
			parts = append(parts, fmt.Sprintf("%d removals skipped", r.Skipped))
		}
		s = strings.Join(parts, ", ")
	}
	if r.DryRun {
		s += " (Dry run)"
	}
	return s
}
