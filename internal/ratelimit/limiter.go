package ratelimit

import (
	"context"
	"errors"
	"log/slog"

	"walletreg/pkg/platform/circuit"
)

// Limiter checks keys against a primary store. When the primary is a shared
// store, repeated failures open a breaker and checks are answered by a
// per-process fallback until the primary recovers.
type Limiter struct {
	primary  Store
	fallback Store
	breaker  *circuit.Breaker
	logger   *slog.Logger
	metrics  *Metrics
}

type Option func(*Limiter)

func WithLogger(logger *slog.Logger) Option {
	return func(l *Limiter) {
		l.logger = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(l *Limiter) {
		l.metrics = m
	}
}

// WithFallback answers checks from fallback while breaker is open.
func WithFallback(fallback Store, breaker *circuit.Breaker) Option {
	return func(l *Limiter) {
		l.fallback = fallback
		l.breaker = breaker
	}
}

func New(primary Store, opts ...Option) (*Limiter, error) {
	if primary == nil {
		return nil, errors.New("primary store is required")
	}
	l := &Limiter{primary: primary}
	for _, opt := range opts {
		opt(l)
	}
	if (l.fallback == nil) != (l.breaker == nil) {
		return nil, errors.New("fallback store and breaker must be set together")
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	return l, nil
}

// Check records one request for key. An error means neither store could
// answer and the caller decides whether to fail open.
func (l *Limiter) Check(ctx context.Context, key string, policy Policy) (Result, error) {
	res, err := l.primary.Allow(ctx, key, policy)
	if l.breaker == nil {
		return res, err
	}

	if err == nil {
		if _, change := l.breaker.RecordSuccess(); change.Closed {
			l.logger.InfoContext(ctx, "rate limit store recovered", "breaker", l.breaker.Name())
			l.metrics.setDegraded(false)
		}
		return res, nil
	}

	useFallback, change := l.breaker.RecordFailure()
	if change.Opened {
		l.logger.WarnContext(ctx, "rate limit store failing, using in-memory fallback",
			"breaker", l.breaker.Name(),
			"error", err,
		)
		l.metrics.setDegraded(true)
	}
	if !useFallback {
		return Result{}, err
	}
	res, err = l.fallback.Allow(ctx, key, policy)
	res.Degraded = true
	return res, err
}
