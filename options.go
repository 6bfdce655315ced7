package nc2ldap

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/nc2ldap/internal/metrics"
	"github.com/agentstation/nc2ldap/pkg/constants"
	"github.com/agentstation/nc2ldap/pkg/logging"
)

// options holds the client configuration.
type options struct {
	region           string
	logger           *zerolog.Logger
	autoSyncInterval time.Duration
	metrics          *metrics.Metrics
}

// Option is a function that configures a Client.
type Option func(*options)

func defaults() *options {
	return &options{
		region:           constants.DefaultRegion,
		logger:           logging.Default(),
		autoSyncInterval: constants.DefaultSyncInterval,
	}
}

func (o *options) apply(opts ...Option) *options {
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithRegion sets the region used for numbers written without a country code.
func WithRegion(region string) Option {
	return func(o *options) {
		o.region = region
	}
}

// WithLogger sets the logger for the client and its decoders.
func WithLogger(logger *zerolog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithAutoSyncInterval configures how often AutoSyncOn runs a cycle.
func WithAutoSyncInterval(interval time.Duration) Option {
	return func(o *options) {
		o.autoSyncInterval = interval
	}
}

// WithMetrics records cycle outcomes and directory writes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}
