// Package orchestrator screens one address with every registered provider in
// parallel and folds the findings into a single report.
package orchestrator

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"walletreg/internal/registry/models"
	"walletreg/internal/screening/providers"
	id "walletreg/pkg/domain"
	dErrors "walletreg/pkg/domain-errors"
	"walletreg/pkg/requestcontext"
)

const defaultProviderTimeout = 5 * time.Second

var (
	ErrUnknownProvider = dErrors.Wrap(providers.ErrProviderNotFound, dErrors.CodeNotFound, "unknown screening provider")
	ErrNoProviders     = dErrors.Wrap(providers.ErrNoProviders, dErrors.CodeInternal, "screening is not configured")
)

// Failure is a provider that produced no finding.
type Failure struct {
	ProviderID string                  `json:"provider"`
	Category   providers.ErrorCategory `json:"category"`
	Message    string                  `json:"message"`
}

// Report is the combined screening outcome for one address.
//
// Sanctioned is true if any provider reported a hit. RiskScore is the highest
// provider score, 100 when sanctioned, and RiskLevel follows from both.
type Report struct {
	Address    id.WalletAddress    `json:"wallet_address"`
	Sanctioned bool                `json:"sanctioned"`
	RiskScore  int                 `json:"risk_score"`
	RiskLevel  models.RiskLevel    `json:"risk_level"`
	Findings   []providers.Finding `json:"findings"`
	Failures   []Failure           `json:"failures,omitempty"`
	CheckedAt  time.Time           `json:"checked_at"`
}

// VerifyRequest turns the report into the registry write that records it.
func (r *Report) VerifyRequest() models.VerifyRequest {
	return models.VerifyRequest{
		Address:      r.Address,
		RiskScore:    r.RiskScore,
		RiskLevel:    r.RiskLevel,
		IsSanctioned: r.Sanctioned,
	}
}

type Orchestrator struct {
	registry *providers.Registry
	timeout  time.Duration
	cache    *reportCache
	metrics  *Metrics
	logger   *slog.Logger
	now      func() time.Time
}

type Option func(*Orchestrator)

// WithProviderTimeout bounds each provider call.
func WithProviderTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithCacheTTL keeps complete reports for ttl. Zero disables caching.
func WithCacheTTL(ttl time.Duration) Option {
	return func(o *Orchestrator) {
		if ttl > 0 {
			o.cache = newReportCache(ttl)
		} else {
			o.cache = nil
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func New(registry *providers.Registry, opts ...Option) (*Orchestrator, error) {
	if registry == nil {
		return nil, errors.New("provider registry is required")
	}
	o := &Orchestrator{
		registry: registry,
		timeout:  defaultProviderTimeout,
		logger:   slog.New(slog.DiscardHandler),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Providers lists the registered provider IDs in registration order.
func (o *Orchestrator) Providers() []string {
	all := o.registry.All()
	ids := make([]string, len(all))
	for i, p := range all {
		ids[i] = p.ID()
	}
	return ids
}

// Screen runs every provider. Provider failures are listed in the report;
// the call fails only when no provider produced a finding.
func (o *Orchestrator) Screen(ctx context.Context, address id.WalletAddress) (*Report, error) {
	all := o.registry.All()
	if len(all) == 0 {
		return nil, ErrNoProviders
	}
	if report, ok := o.cache.get(address, o.now()); ok {
		o.metrics.RecordCacheHit()
		return report, nil
	}

	findings := make([]*providers.Finding, len(all))
	errs := make([]error, len(all))
	var g errgroup.Group
	for i, p := range all {
		g.Go(func() error {
			findings[i], errs[i] = o.call(ctx, p, address)
			return nil
		})
	}
	_ = g.Wait()

	report := &Report{Address: address, CheckedAt: o.now().UTC()}
	for i, p := range all {
		if errs[i] != nil {
			report.Failures = append(report.Failures, Failure{
				ProviderID: p.ID(),
				Category:   providers.GetCategory(errs[i]),
				Message:    errs[i].Error(),
			})
			continue
		}
		report.add(*findings[i])
	}
	if len(report.Findings) == 0 {
		o.metrics.RecordScreening("failed")
		return nil, dErrors.Wrap(errors.Join(append([]error{providers.ErrAllProvidersFailed}, errs...)...),
			dErrors.CodeInternal, "all screening providers failed")
	}
	report.RiskLevel = providers.LevelForScore(report.RiskScore, report.Sanctioned)

	if report.Sanctioned {
		o.metrics.RecordScreening("sanctioned")
	} else {
		o.metrics.RecordScreening("clean")
	}
	if len(report.Failures) == 0 {
		o.cache.put(address, report, o.now())
	}
	o.logger.InfoContext(ctx, "wallet screened",
		"wallet_address", address.String(),
		"risk_score", report.RiskScore,
		"sanctioned", report.Sanctioned,
		"findings", len(report.Findings),
		"failures", len(report.Failures),
		"request_id", requestcontext.RequestID(ctx),
	)
	return report, nil
}

// ScreenWith runs a single provider, bypassing the report cache.
func (o *Orchestrator) ScreenWith(ctx context.Context, providerID string, address id.WalletAddress) (*providers.Finding, error) {
	p, ok := o.registry.Get(providerID)
	if !ok {
		return nil, ErrUnknownProvider
	}
	finding, err := o.call(ctx, p, address)
	if err != nil {
		return nil, codeFor(err)
	}
	return finding, nil
}

func (o *Orchestrator) call(ctx context.Context, p providers.Provider, address id.WalletAddress) (*providers.Finding, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	start := time.Now()
	finding, err := p.Screen(ctx, address)
	o.metrics.ObserveProvider(p.ID(), start, err)
	if err != nil {
		o.logger.WarnContext(ctx, "screening provider failed",
			"provider", p.ID(),
			"category", string(providers.GetCategory(err)),
			"retryable", providers.IsRetryable(err),
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil, err
	}
	return finding, nil
}

func (r *Report) add(f providers.Finding) {
	r.Findings = append(r.Findings, f)
	if f.Sanctioned {
		r.Sanctioned = true
		r.RiskScore = models.MaxRiskScore
	}
	r.RiskScore = max(r.RiskScore, providers.ClampScore(f.RiskScore))
}

// codeFor maps a provider failure onto the error codes the HTTP layer knows.
func codeFor(err error) error {
	switch providers.GetCategory(err) {
	case providers.ErrorRateLimited:
		return dErrors.Wrap(err, dErrors.CodeRateLimited, "screening provider is rate limited")
	case providers.ErrorTimeout:
		return dErrors.Wrap(err, dErrors.CodeTimeout, "screening provider timed out")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "screening provider failed")
	}
}
