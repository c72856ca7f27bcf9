package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	jwttoken "walletreg/internal/jwt_token"
	"walletreg/internal/platform/config"
	"walletreg/internal/platform/httpserver"
	"walletreg/internal/platform/logger"
	httpmetrics "walletreg/internal/platform/metrics"
	"walletreg/internal/registry/handler"
	regmetrics "walletreg/internal/registry/metrics"
	"walletreg/internal/registry/service"
	screeninghandler "walletreg/internal/screening/handler"
	id "walletreg/pkg/domain"
	dErrors "walletreg/pkg/domain-errors"
	"walletreg/pkg/platform/httputil"
	authmw "walletreg/pkg/platform/middleware/auth"
	"walletreg/pkg/platform/middleware/request"
	"walletreg/pkg/platform/middleware/requesttime"
	"walletreg/pkg/requestcontext"
)

const (
	requestTimeout = 30 * time.Second
	jwtAudience    = "walletreg"
)

// main wires dependencies, exposes the HTTP router, and keeps the process
// lifecycle small. Registry rules live in internal/registry/service.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("walletreg stopped", "error", err)
		os.Exit(1)
	}
	log.Info("walletreg stopped")
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	registryMetrics := regmetrics.New(reg)

	b, err := openBackends(ctx, cfg, log, registryMetrics)
	if err != nil {
		return err
	}
	defer b.Close()

	opts := []service.Option{
		service.WithLogger(log),
		service.WithMetrics(registryMetrics),
	}
	if b.cache != nil {
		opts = append(opts, service.WithCache(b.cache))
	}
	registry, err := service.New(b.store, b.sink, opts...)
	if err != nil {
		return fmt.Errorf("create registry service: %w", err)
	}

	if cfg.Registry.Deployer != "" {
		if err := constructAtStartup(ctx, registry, cfg.Registry.Deployer, log); err != nil {
			return err
		}
	}

	var redisClient *goredis.Client
	if b.redis != nil {
		redisClient = b.redis.Client
	}
	limits, err := newRateLimits(cfg.RateLimit, redisClient, reg, log)
	if err != nil {
		return fmt.Errorf("create rate limiter: %w", err)
	}

	screen, err := newScreening(ctx, cfg.Screening, reg, log)
	if err != nil {
		return err
	}
	defer screen.Close()

	jwt := jwttoken.NewJWTService(cfg.Server.JWTSigningKey, cfg.Server.JWTIssuer, jwtAudience,
		jwttoken.WithMaxLifetime(cfg.Server.TokenTTL),
	)
	requireAuth := authmw.RequireAuth(jwttoken.NewJWTServiceAdapter(jwt), log)
	routes := []routeRegistrar{
		handler.New(registry, log, limits.AfterAuth(requireAuth)),
		screeninghandler.New(screen.orchestrator, registry, log, limits.AfterAuth(requireAuth)),
	}
	router := newRouter(routes, httpmetrics.New(reg), reg, b, limits, log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return httpserver.Serve(gctx, httpserver.New(cfg.Server.Addr, router), log)
	})
	if b.relay != nil {
		g.Go(func() error {
			return b.relay.Run(gctx)
		})
	}
	g.Go(func() error {
		limits.Sweep(gctx)
		return nil
	})
	if b.memoryCache != nil {
		g.Go(func() error {
			b.memoryCache.StartCleanup(gctx, cfg.Registry.CacheTTL)
			return nil
		})
	}
	if b.invalidator != nil {
		g.Go(func() error {
			return b.invalidator.Run(gctx)
		})
	}
	return g.Wait()
}

// constructAtStartup makes the configured deployer the registry owner.
// Restarting with the same deployer is a no-op.
func constructAtStartup(ctx context.Context, registry *service.Service, deployer string, log *slog.Logger) error {
	owner, err := id.ParseAccountID(deployer)
	if err != nil {
		return fmt.Errorf("REGISTRY_DEPLOYER: %w", err)
	}
	state, err := registry.Construct(requestcontext.WithCaller(ctx, owner))
	if err != nil {
		return fmt.Errorf("construct registry: %w", err)
	}
	log.InfoContext(ctx, "registry ready",
		"owner", state.Owner.String(),
		"total_verifications", state.TotalVerifications,
	)
	return nil
}

// routeRegistrar mounts a feature's routes under the API prefix.
type routeRegistrar interface {
	Register(r chi.Router)
}

func newRouter(routes []routeRegistrar, m *httpmetrics.Metrics, gatherer prometheus.Gatherer, b *backends, limits *rateLimits, log *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(request.Recover(log))
	r.Use(request.Logger(log))
	r.Use(m.Middleware)
	r.Use(requesttime.Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := b.Health(r.Context()); err != nil {
			log.WarnContext(r.Context(), "health check failed", "error", err)
			httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route(id.CurrentAPIVersion().RoutePrefix(), func(api chi.Router) {
		api.Use(middleware.Timeout(requestTimeout))
		api.Use(limits.PerIP)
		for _, h := range routes {
			h.Register(api)
		}
	})
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "route not found"))
	})
	return r
}
