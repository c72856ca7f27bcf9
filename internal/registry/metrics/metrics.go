package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for write attempts.
const (
	OutcomeApplied       = "applied"
	OutcomeNotAuthorized = "not_authorized"
	OutcomeInvalidScore  = "invalid_score"
	OutcomeSkipped       = "skipped"
	OutcomeError         = "error"
)

// Metrics provides observability for the verification registry.
type Metrics struct {
	// Write attempts by outcome, one sample per entry
	Verifications *prometheus.CounterVec

	// Entries per batch call, including skipped ones
	BatchSize prometheus.Histogram

	// Read-cache lookups by result ("hit", "miss")
	CacheLookups *prometheus.CounterVec

	// Service operation latency by operation name
	OperationLatency *prometheus.HistogramVec

	// Outbox rows delivered to the broker
	OutboxPublished prometheus.Counter

	// Relay passes that stopped on a publish or database error
	OutboxFailures prometheus.Counter

	// Notifications a post-commit sink failed to accept
	NotificationFailures prometheus.Counter

	// Cache entries dropped by source ("write", "notify", "purge")
	CacheInvalidations *prometheus.CounterVec
}

// New registers all registry metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Verifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "walletreg_verifications_total",
			Help: "Wallet verification write attempts by outcome",
		}, []string{"outcome"}),

		BatchSize: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "walletreg_batch_entries",
			Help:    "Number of entries submitted per batch verification",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500},
		}),

		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "walletreg_cache_lookups_total",
			Help: "Verification read-cache lookups by result",
		}, []string{"result"}),

		OperationLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "walletreg_operation_duration_seconds",
			Help:    "Duration of registry operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),

		OutboxPublished: factory.NewCounter(prometheus.CounterOpts{
			Name: "walletreg_outbox_published_total",
			Help: "Outbox notifications published to the broker",
		}),

		OutboxFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "walletreg_outbox_failures_total",
			Help: "Outbox relay passes that failed",
		}),

		NotificationFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "walletreg_notification_failures_total",
			Help: "Committed writes whose notification a sink rejected",
		}),

		CacheInvalidations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "walletreg_cache_invalidations_total",
			Help: "Verification cache invalidations by source",
		}, []string{"source"}),
	}
}

// IncrementOutcome records n write attempts with the given outcome.
func (m *Metrics) IncrementOutcome(outcome string, n int) {
	if m != nil && n > 0 {
		m.Verifications.WithLabelValues(outcome).Add(float64(n))
	}
}

func (m *Metrics) ObserveBatchSize(n int) {
	if m != nil {
		m.BatchSize.Observe(float64(n))
	}
}

func (m *Metrics) RecordCacheHit() {
	if m != nil {
		m.CacheLookups.WithLabelValues("hit").Inc()
	}
}

func (m *Metrics) RecordCacheMiss() {
	if m != nil {
		m.CacheLookups.WithLabelValues("miss").Inc()
	}
}

// ObserveLatency records how long operation took since start.
func (m *Metrics) ObserveLatency(operation string, start time.Time) {
	if m != nil {
		m.OperationLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) AddOutboxPublished(n int) {
	if m != nil && n > 0 {
		m.OutboxPublished.Add(float64(n))
	}
}

func (m *Metrics) IncOutboxFailures() {
	if m != nil {
		m.OutboxFailures.Inc()
	}
}

func (m *Metrics) IncNotificationFailures() {
	if m != nil {
		m.NotificationFailures.Inc()
	}
}

func (m *Metrics) RecordCacheInvalidation(source string) {
	if m != nil {
		m.CacheInvalidations.WithLabelValues(source).Inc()
	}
}
