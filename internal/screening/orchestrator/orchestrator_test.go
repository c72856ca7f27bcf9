package orchestrator

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"walletreg/internal/registry/models"
	"walletreg/internal/screening/providers"
	id "walletreg/pkg/domain"
	dErrors "walletreg/pkg/domain-errors"
)

var wallet = id.MustWalletAddress("0x" + strings.Repeat("a", 40))

type stubProvider struct {
	id      string
	kind    providers.Kind
	finding providers.Finding
	err     error
	delay   time.Duration
	calls   atomic.Int32
}

func (s *stubProvider) ID() string           { return s.id }
func (s *stubProvider) Kind() providers.Kind { return s.kind }

func (s *stubProvider) Screen(ctx context.Context, _ id.WalletAddress) (*providers.Finding, error) {
	s.calls.Add(1)
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, providers.TransportError(s.id, ctx.Err())
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	f := s.finding
	f.ProviderID = s.id
	return &f, nil
}

func newOrchestrator(t *testing.T, opts []Option, ps ...providers.Provider) *Orchestrator {
	t.Helper()
	reg := providers.NewRegistry()
	for _, p := range ps {
		require.NoError(t, reg.Register(p))
	}
	o, err := New(reg, opts...)
	require.NoError(t, err)
	return o
}

func TestNewRequiresRegistry(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "registry is required")
}

func TestScreenCombinesFindings(t *testing.T) {
	t.Run("highest score wins and findings keep registration order", func(t *testing.T) {
		o := newOrchestrator(t, nil,
			&stubProvider{id: "ofac", kind: providers.KindSanctions},
			&stubProvider{id: "alchemy", kind: providers.KindAnalytics, finding: providers.Finding{RiskScore: 45}},
			&stubProvider{id: "chainalysis", kind: providers.KindAnalytics, finding: providers.Finding{RiskScore: 20}},
		)

		report, err := o.Screen(context.Background(), wallet)
		require.NoError(t, err)
		assert.Equal(t, wallet, report.Address)
		assert.False(t, report.Sanctioned)
		assert.Equal(t, 45, report.RiskScore)
		assert.Equal(t, models.RiskLevelMedium, report.RiskLevel)
		require.Len(t, report.Findings, 3)
		assert.Equal(t, "ofac", report.Findings[0].ProviderID)
		assert.Equal(t, "alchemy", report.Findings[1].ProviderID)
		assert.Equal(t, "chainalysis", report.Findings[2].ProviderID)
		assert.Empty(t, report.Failures)
	})

	t.Run("any sanctions hit makes the report sanctioned", func(t *testing.T) {
		o := newOrchestrator(t, nil,
			&stubProvider{id: "ofac", finding: providers.Finding{Sanctioned: true}},
			&stubProvider{id: "alchemy", finding: providers.Finding{RiskScore: 5}},
		)

		report, err := o.Screen(context.Background(), wallet)
		require.NoError(t, err)
		assert.True(t, report.Sanctioned)
		assert.Equal(t, models.MaxRiskScore, report.RiskScore)
		assert.Equal(t, models.RiskLevelHigh, report.RiskLevel)

		req := report.VerifyRequest()
		assert.Equal(t, models.VerifyRequest{
			Address:      wallet,
			RiskScore:    models.MaxRiskScore,
			RiskLevel:    models.RiskLevelHigh,
			IsSanctioned: true,
		}, req)
	})

	t.Run("out of range scores are clamped", func(t *testing.T) {
		o := newOrchestrator(t, nil, &stubProvider{id: "x", finding: providers.Finding{RiskScore: 250}})

		report, err := o.Screen(context.Background(), wallet)
		require.NoError(t, err)
		assert.Equal(t, models.MaxRiskScore, report.RiskScore)
	})
}

func TestScreenToleratesProviderFailures(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	o := newOrchestrator(t, []Option{WithMetrics(m)},
		&stubProvider{id: "ofac"},
		&stubProvider{id: "alchemy", err: providers.NewProviderError(providers.ErrorRateLimited, "alchemy", "slow down", nil)},
	)

	report, err := o.Screen(context.Background(), wallet)
	require.NoError(t, err)
	require.Len(t, report.Findings, 1)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "alchemy", report.Failures[0].ProviderID)
	assert.Equal(t, providers.ErrorRateLimited, report.Failures[0].Category)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ProviderCalls.WithLabelValues("ofac", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ProviderCalls.WithLabelValues("alchemy", "rate_limited")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Screenings.WithLabelValues("clean")))
}

func TestScreenBoundsEachProvider(t *testing.T) {
	slow := &stubProvider{id: "slow", delay: time.Second}
	o := newOrchestrator(t, []Option{WithProviderTimeout(20 * time.Millisecond)},
		&stubProvider{id: "fast", finding: providers.Finding{RiskScore: 10}},
		slow,
	)

	start := time.Now()
	report, err := o.Screen(context.Background(), wallet)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "slow", report.Failures[0].ProviderID)
	assert.Equal(t, providers.ErrorTimeout, report.Failures[0].Category)
}

func TestScreenFailsWhenNothingAnswers(t *testing.T) {
	t.Run("no providers", func(t *testing.T) {
		o := newOrchestrator(t, nil)
		_, err := o.Screen(context.Background(), wallet)
		require.Error(t, err)
		assert.ErrorIs(t, err, providers.ErrNoProviders)
	})

	t.Run("every provider failed", func(t *testing.T) {
		m := NewMetrics(prometheus.NewRegistry())
		outage := providers.NewProviderError(providers.ErrorProviderOutage, "a", "down", nil)
		o := newOrchestrator(t, []Option{WithMetrics(m)},
			&stubProvider{id: "a", err: outage},
			&stubProvider{id: "b", err: providers.NewProviderError(providers.ErrorBadData, "b", "garbage", nil)},
		)

		_, err := o.Screen(context.Background(), wallet)
		require.Error(t, err)
		assert.ErrorIs(t, err, providers.ErrAllProvidersFailed)
		assert.ErrorIs(t, err, outage)
		assert.Equal(t, dErrors.CodeInternal, dErrors.CodeOf(err))
		assert.Equal(t, float64(1), testutil.ToFloat64(m.Screenings.WithLabelValues("failed")))
	})
}

func TestScreenCachesCompleteReports(t *testing.T) {
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	p := &stubProvider{id: "ofac"}
	m := NewMetrics(prometheus.NewRegistry())
	o := newOrchestrator(t, []Option{WithCacheTTL(time.Minute), WithMetrics(m)}, p)
	o.now = func() time.Time { return now }

	first, err := o.Screen(context.Background(), wallet)
	require.NoError(t, err)
	second, err := o.Screen(context.Background(), wallet)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, int32(1), p.calls.Load())
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ReportCacheHits))

	now = now.Add(time.Minute)
	_, err = o.Screen(context.Background(), wallet)
	require.NoError(t, err)
	assert.Equal(t, int32(2), p.calls.Load(), "expired reports are refreshed")
}

func TestScreenDoesNotCachePartialReports(t *testing.T) {
	ok := &stubProvider{id: "ofac"}
	o := newOrchestrator(t, []Option{WithCacheTTL(time.Minute)},
		ok,
		&stubProvider{id: "alchemy", err: providers.NewProviderError(providers.ErrorTimeout, "alchemy", "timed out", nil)},
	)

	for range 2 {
		_, err := o.Screen(context.Background(), wallet)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(2), ok.calls.Load())
}

func TestScreenWith(t *testing.T) {
	o := newOrchestrator(t, nil,
		&stubProvider{id: "ofac", finding: providers.Finding{Sanctioned: true, RiskScore: 100}},
		&stubProvider{id: "limited", err: providers.NewProviderError(providers.ErrorRateLimited, "limited", "429", nil)},
		&stubProvider{id: "slow", err: providers.NewProviderError(providers.ErrorTimeout, "slow", "deadline", nil)},
		&stubProvider{id: "broken", err: errors.New("boom")},
	)
	assert.Equal(t, []string{"ofac", "limited", "slow", "broken"}, o.Providers())

	finding, err := o.ScreenWith(context.Background(), "ofac", wallet)
	require.NoError(t, err)
	assert.Equal(t, "ofac", finding.ProviderID)
	assert.True(t, finding.Sanctioned)

	tests := []struct {
		provider string
		code     dErrors.Code
	}{
		{"unknown", dErrors.CodeNotFound},
		{"limited", dErrors.CodeRateLimited},
		{"slow", dErrors.CodeTimeout},
		{"broken", dErrors.CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			_, err := o.ScreenWith(context.Background(), tt.provider, wallet)
			require.Error(t, err)
			assert.Equal(t, tt.code, dErrors.CodeOf(err))
		})
	}
}
