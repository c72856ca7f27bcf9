package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNilMetricsAreNoOps(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncrementOutcome(OutcomeApplied, 1)
		m.ObserveBatchSize(3)
		m.RecordCacheHit()
		m.RecordCacheMiss()
		m.ObserveLatency("verify_wallet", time.Now())
		m.AddOutboxPublished(2)
		m.IncOutboxFailures()
		m.IncNotificationFailures()
		m.RecordCacheInvalidation("write")
	})
}

func TestIncrementOutcome(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.IncrementOutcome(OutcomeApplied, 2)
	m.IncrementOutcome(OutcomeSkipped, 1)
	m.IncrementOutcome(OutcomeSkipped, 0)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.Verifications.WithLabelValues(OutcomeApplied)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Verifications.WithLabelValues(OutcomeSkipped)))
}

func TestCacheLookups(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RecordCacheHit()
	m.RecordCacheHit()
	m.RecordCacheMiss()

	assert.Equal(t, float64(2), testutil.ToFloat64(m.CacheLookups.WithLabelValues("hit")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CacheLookups.WithLabelValues("miss")))
}

func TestOutboxCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.AddOutboxPublished(3)
	m.AddOutboxPublished(0)
	m.IncOutboxFailures()

	assert.Equal(t, float64(3), testutil.ToFloat64(m.OutboxPublished))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.OutboxFailures))
}
