// Package sync holds the options and result types of one phone book sync cycle.
package sync

import (
	"time"

	"github.com/agentstation/nc2ldap/pkg/errors"
	"github.com/agentstation/nc2ldap/pkg/reconcile"
)

// Options controls one sync cycle.
type Options struct {
	DryRun   bool                    // Plan and report without writing to the directory
	Strategy reconcile.ApplyStrategy // ApplyAll, or ApplyAdditive to never delete
	Timeout  time.Duration           // Timeout for the whole cycle (0 means none)
}

// Option is a function that configures sync Options.
type Option func(*Options)

// Defaults returns the default sync options.
func Defaults() *Options {
	return &Options{Strategy: reconcile.ApplyAll}
}

// Apply applies the given options to the sync options.
func (s *Options) Apply(opts ...Option) *Options {
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Validate checks if the sync options are valid.
func (s *Options) Validate() error {
	if s.Timeout < 0 {
		return &errors.ValidationError{
			Field:   "Timeout",
			Value:   s.Timeout,
			Message: "timeout must be non-negative",
		}
	}
	if !s.Strategy.Valid() {
		return &errors.ValidationError{
			Field:   "Strategy",
			Value:   s.Strategy,
			Message: "unknown apply strategy",
		}
	}
	return nil
}

// WithDryRun configures dry run mode.
func WithDryRun(dryRun bool) Option {
	return func(opts *Options) {
		opts.DryRun = dryRun
	}
}

// WithStrategy configures which parts of the changeset are applied.
func WithStrategy(strategy reconcile.ApplyStrategy) Option {
	return func(opts *Options) {
		opts.Strategy = strategy
	}
}

// WithTimeout configures the sync timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(opts *Options) {
		opts.Timeout = timeout
	}
}
