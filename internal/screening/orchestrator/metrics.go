package orchestrator

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"walletreg/internal/screening/providers"
)

// Metrics covers provider calls and screening outcomes.
type Metrics struct {
	// Provider calls by provider and outcome ("ok" or an error category)
	ProviderCalls *prometheus.CounterVec

	ProviderLatency *prometheus.HistogramVec

	// Screenings by result ("clean", "sanctioned", "failed")
	Screenings *prometheus.CounterVec

	ReportCacheHits prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ProviderCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "walletreg_screening_provider_calls_total",
			Help: "Screening provider calls by provider and outcome",
		}, []string{"provider", "outcome"}),

		ProviderLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "walletreg_screening_provider_duration_seconds",
			Help:    "Duration of screening provider calls",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"provider"}),

		Screenings: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "walletreg_screenings_total",
			Help: "Completed wallet screenings by result",
		}, []string{"result"}),

		ReportCacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "walletreg_screening_cache_hits_total",
			Help: "Screenings answered from the report cache",
		}),
	}
}

func (m *Metrics) ObserveProvider(providerID string, start time.Time, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = string(providers.GetCategory(err))
	}
	m.ProviderCalls.WithLabelValues(providerID, outcome).Inc()
	m.ProviderLatency.WithLabelValues(providerID).Observe(time.Since(start).Seconds())
}

func (m *Metrics) RecordScreening(result string) {
	if m != nil {
		m.Screenings.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) RecordCacheHit() {
	if m != nil {
		m.ReportCacheHits.Inc()
	}
}
