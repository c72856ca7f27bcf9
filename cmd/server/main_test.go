package main

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"walletreg/internal/platform/config"
	httpmetrics "walletreg/internal/platform/metrics"
	"walletreg/internal/registry/events"
	"walletreg/internal/registry/handler"
	regmetrics "walletreg/internal/registry/metrics"
	"walletreg/internal/registry/service"
	screeninghandler "walletreg/internal/screening/handler"
	"walletreg/pkg/testutil"
)

func newTestRouter(t *testing.T, limitCfg config.RateLimitConfig) (http.Handler, *service.Service) {
	t.Helper()
	log := slog.New(slog.DiscardHandler)
	reg := prometheus.NewRegistry()
	m := regmetrics.New(reg)

	b, err := openBackends(context.Background(), config.Config{}, log, m)
	require.NoError(t, err)
	t.Cleanup(b.Close)

	registry, err := service.New(b.store, b.sink, service.WithMetrics(m))
	require.NoError(t, err)

	deny := func(http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
	}
	limits, err := newRateLimits(limitCfg, nil, reg, log)
	require.NoError(t, err)
	screen, err := newScreening(context.Background(), config.ScreeningConfig{}, reg, log)
	require.NoError(t, err)
	t.Cleanup(screen.Close)

	routes := []routeRegistrar{
		handler.New(registry, log, limits.AfterAuth(deny)),
		screeninghandler.New(screen.orchestrator, registry, log, limits.AfterAuth(deny)),
	}
	return newRouter(routes, httpmetrics.New(reg), reg, b, limits, log), registry
}

func TestOpenBackendsInMemory(t *testing.T) {
	b, err := openBackends(context.Background(), config.Config{}, slog.New(slog.DiscardHandler), nil)
	require.NoError(t, err)
	defer b.Close()

	assert.NotNil(t, b.store)
	assert.NotNil(t, b.sink)
	assert.IsType(t, &events.LogSink{}, b.sink, "no unbounded in-process event buffer")
	assert.Nil(t, b.cache)
	assert.Nil(t, b.invalidator)
	assert.Nil(t, b.relay)
	assert.NoError(t, b.Health(context.Background()))
}

func TestRouter(t *testing.T) {
	router, _ := newTestRouter(t, config.RateLimitConfig{})

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/healthz"))
	testutil.AssertStatus(t, rr, http.StatusOK)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))

	rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/v1/registry/stats"))
	testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")

	rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/nope"))
	testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")

	rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/metrics"))
	testutil.AssertStatus(t, rr, http.StatusOK)
	assert.True(t, strings.Contains(rr.Body.String(), "walletreg_http_requests_total"))
}

func TestRouterRateLimitsPerClientIP(t *testing.T) {
	router, _ := newTestRouter(t, config.RateLimitConfig{PerIP: 2, PerCaller: 1, Window: time.Minute})

	for range 2 {
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/v1/registry/stats"))
		testutil.AssertStatus(t, rr, http.StatusNotFound)
	}
	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/v1/registry/stats"))
	testutil.AssertStatusAndError(t, rr, http.StatusTooManyRequests, "rate_limited")
	assert.NotEmpty(t, rr.Header().Get("Retry-After"))

	// health and metrics sit outside the API limit
	rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/healthz"))
	testutil.AssertStatus(t, rr, http.StatusOK)
}

func TestConstructAtStartup(t *testing.T) {
	_, registry := newTestRouter(t, config.RateLimitConfig{})
	ctx := context.Background()
	deployer := "0x" + strings.Repeat("0", 62) + "a1"
	log := slog.New(slog.DiscardHandler)

	require.NoError(t, constructAtStartup(ctx, registry, deployer, log))
	require.NoError(t, constructAtStartup(ctx, registry, deployer, log), "restart with same deployer")

	owner, err := registry.Owner(ctx)
	require.NoError(t, err)
	assert.Equal(t, deployer, owner.String())

	assert.Error(t, constructAtStartup(ctx, registry, "not-hex", log))
	assert.Error(t, constructAtStartup(ctx, registry, "0x"+strings.Repeat("0", 62)+"b2", log))
}

func TestNewScreeningDefaultsToTheSanctionsList(t *testing.T) {
	screen, err := newScreening(context.Background(), config.ScreeningConfig{}, prometheus.NewRegistry(), slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	defer screen.Close()

	assert.Equal(t, []string{"ofac"}, screen.orchestrator.Providers())
	assert.Nil(t, screen.alchemy)
}

func TestNewScreeningRejectsMissingListFile(t *testing.T) {
	_, err := newScreening(context.Background(), config.ScreeningConfig{SanctionsListFile: "/does/not/exist.json"},
		prometheus.NewRegistry(), slog.New(slog.DiscardHandler))
	assert.ErrorContains(t, err, "load sanctions list")
}

func TestRouterScreensAgainstTheSanctionsList(t *testing.T) {
	router, _ := newTestRouter(t, config.RateLimitConfig{})
	tornado := "0x8576acc5c05d6ce88f4e49bf65bdf0c62f91353c"

	rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/v1/screenings",
		map[string]any{"wallet_address": tornado}))
	testutil.AssertStatus(t, rr, http.StatusOK)
	report := testutil.UnmarshalResponse[map[string]any](t, rr)
	assert.Equal(t, true, (*report)["sanctioned"])
	assert.Equal(t, float64(100), (*report)["risk_score"])
	assert.Equal(t, "high", (*report)["risk_level"])

	rr = testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/v1/screenings/chainalysis",
		map[string]any{"wallet_address": tornado}))
	testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")

	// recording needs a caller; the test router denies every token
	rr = testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/v1/screenings/record",
		map[string]any{"wallet_address": tornado}))
	testutil.AssertStatus(t, rr, http.StatusUnauthorized)
}
