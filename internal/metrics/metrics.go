// Package metrics exposes Prometheus collectors for sync cycles.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "nc2ldap"

// Sync outcomes.
const (
	OutcomeSuccess = "success"
	OutcomePartial = "partial" // completed with failed operations
	OutcomeFailure = "failure"
	OutcomeSkipped = "skipped" // another cycle was running
)

// Directory operations.
const (
	OperationAdd    = "add"
	OperationDelete = "delete"
)

// Metrics holds the sync collectors.
type Metrics struct {
	SyncRuns          *prometheus.CounterVec
	SyncDuration      prometheus.Histogram
	ContactsAdded     prometheus.Counter
	ContactsRemoved   prometheus.Counter
	OperationFailures *prometheus.CounterVec
	SourceContacts    prometheus.Gauge
	DirectoryContacts prometheus.Gauge
	LastSync          prometheus.Gauge
}

// New creates the collectors and registers them on reg.
// A nil registerer leaves them unregistered.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		SyncRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sync_runs_total",
				Help:      "Total number of sync cycles by outcome",
			},
			[]string{"outcome"},
		),
		SyncDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "sync_duration_seconds",
				Help:      "Duration of sync cycles",
				Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12), // 50ms to ~100s
			},
		),
		ContactsAdded: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "contacts_added_total",
				Help:      "Total number of contacts written to the directory",
			},
		),
		ContactsRemoved: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "contacts_removed_total",
				Help:      "Total number of contacts removed from the directory",
			},
		),
		OperationFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operation_failures_total",
				Help:      "Total number of failed directory operations",
			},
			[]string{"operation"},
		),
		SourceContacts: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "source_contacts",
				Help:      "Number of contacts decoded from the address book in the last cycle",
			},
		),
		DirectoryContacts: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "directory_contacts",
				Help:      "Number of contacts decoded from the phone book in the last cycle",
			},
		),
		LastSync: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_sync_timestamp_seconds",
				Help:      "Unix time of the last completed sync cycle",
			},
		),
	}
}

// ObserveSync records a finished cycle.
func (m *Metrics) ObserveSync(outcome string, started time.Time) {
	if m == nil {
		return
	}
	m.SyncRuns.WithLabelValues(outcome).Inc()
	if outcome == OutcomeSkipped {
		return
	}
	m.SyncDuration.Observe(time.Since(started).Seconds())
	if outcome != OutcomeFailure {
		m.LastSync.SetToCurrentTime()
	}
}

// ObserveSizes records the size of both sides of a cycle.
func (m *Metrics) ObserveSizes(source, directory int) {
	if m == nil {
		return
	}
	m.SourceContacts.Set(float64(source))
	m.DirectoryContacts.Set(float64(directory))
}

// Added counts a written contact.
func (m *Metrics) Added() {
	if m != nil {
		m.ContactsAdded.Inc()
	}
}

// Removed counts a deleted contact.
func (m *Metrics) Removed() {
	if m != nil {
		m.ContactsRemoved.Inc()
	}
}

// Failed counts a failed directory operation.
func (m *Metrics) Failed(operation string) {
	if m != nil {
		m.OperationFailures.WithLabelValues(operation).Inc()
	}
}
