package main

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"

	"walletreg/internal/platform/config"
	"walletreg/internal/ratelimit"
	"walletreg/pkg/platform/circuit"
)

// rateLimits caps every API request per client IP and authenticated writes
// per caller. With Redis the windows are shared across instances and an
// in-memory store takes over while Redis fails.
type rateLimits struct {
	limiter   *ratelimit.Limiter
	memory    *ratelimit.MemoryStore
	perIP     ratelimit.Policy
	perCaller ratelimit.Policy
}

func newRateLimits(cfg config.RateLimitConfig, client *goredis.Client, reg prometheus.Registerer, log *slog.Logger) (*rateLimits, error) {
	memory := ratelimit.NewMemoryStore()
	opts := []ratelimit.Option{
		ratelimit.WithLogger(log),
		ratelimit.WithMetrics(ratelimit.NewMetrics(reg)),
	}
	var primary ratelimit.Store = memory
	if client != nil {
		primary = ratelimit.NewRedisStore(client)
		opts = append(opts, ratelimit.WithFallback(memory, circuit.New("ratelimit-redis")))
	}
	limiter, err := ratelimit.New(primary, opts...)
	if err != nil {
		return nil, err
	}
	return &rateLimits{
		limiter:   limiter,
		memory:    memory,
		perIP:     ratelimit.Policy{Limit: cfg.PerIP, Window: cfg.Window},
		perCaller: ratelimit.Policy{Limit: cfg.PerCaller, Window: cfg.Window},
	}, nil
}

func (l *rateLimits) PerIP(next http.Handler) http.Handler {
	return l.limiter.Middleware("client_ip", l.perIP, ratelimit.ByClientIP)(next)
}

// AfterAuth runs requireAuth first so writes are keyed by caller.
func (l *rateLimits) AfterAuth(requireAuth func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	perCaller := l.limiter.Middleware("caller", l.perCaller, ratelimit.ByCaller)
	return func(next http.Handler) http.Handler {
		return requireAuth(perCaller(next))
	}
}

func (l *rateLimits) Sweep(ctx context.Context) {
	window := max(l.perIP.Window, l.perCaller.Window)
	if window <= 0 {
		return
	}
	l.memory.StartSweeper(ctx, window, window)
}
