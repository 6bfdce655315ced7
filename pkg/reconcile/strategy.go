package reconcile

import (
	"strings"

	"github.com/agentstation/nc2ldap/pkg/errors"
)

// ApplyStrategy represents how to apply changes.
type ApplyStrategy string

const (
	// ApplyAll applies all changes including removals.
	ApplyAll ApplyStrategy = "all"

	// ApplyAdditive only applies additions, never removes.
	ApplyAdditive ApplyStrategy = "additive"
)

// ParseApplyStrategy parses "all" or "additive". The empty string means ApplyAll.
func ParseApplyStrategy(s string) (ApplyStrategy, error) {
	switch ApplyStrategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", ApplyAll:
		return ApplyAll, nil
	case ApplyAdditive:
		return ApplyAdditive, nil
	}
	return "", errors.NewValidationError("strategy", s, "must be 'all' or 'additive'")
}

// Valid reports whether s is a known strategy.
func (s ApplyStrategy) Valid() bool {
	return s == ApplyAll || s == ApplyAdditive
}
