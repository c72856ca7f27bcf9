package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"walletreg/internal/platform/config"
	"walletreg/internal/screening/orchestrator"
	"walletreg/internal/screening/providers"
	"walletreg/internal/screening/providers/alchemy"
	"walletreg/internal/screening/providers/chainalysis"
	"walletreg/internal/screening/providers/etherscan"
	"walletreg/internal/screening/providers/sanctions"
)

// screening owns the provider clients that hold connections.
type screening struct {
	orchestrator *orchestrator.Orchestrator
	alchemy      *alchemy.Provider
}

// newScreening registers the sanctions list and whichever analytics
// providers have credentials.
func newScreening(ctx context.Context, cfg config.ScreeningConfig, reg prometheus.Registerer, log *slog.Logger) (*screening, error) {
	registry := providers.NewRegistry()

	listOpts := []sanctions.Option{}
	if cfg.SanctionsListFile != "" {
		listOpts = append(listOpts, sanctions.WithListFile(cfg.SanctionsListFile))
	}
	if cfg.OFACURL != "" {
		listOpts = append(listOpts, sanctions.WithUpstream(cfg.OFACURL, cfg.OFACAPIKey))
	}
	list, err := sanctions.New(listOpts...)
	if err != nil {
		return nil, fmt.Errorf("load sanctions list: %w", err)
	}
	if err := registry.Register(list); err != nil {
		return nil, err
	}

	s := &screening{}
	if cfg.AlchemyEnabled() {
		s.alchemy, err = alchemy.Dial(ctx, cfg.AlchemyURL,
			alchemy.WithSanctionsList(list.Listed),
			alchemy.WithLogger(log),
		)
		if err != nil {
			return nil, fmt.Errorf("connect alchemy: %w", err)
		}
		if err := registry.Register(s.alchemy); err != nil {
			s.Close()
			return nil, err
		}
	}
	if cfg.ChainalysisEnabled() {
		client, err := chainalysis.New(chainalysis.Config{URL: cfg.ChainalysisURL, APIKey: cfg.ChainalysisAPIKey})
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("create chainalysis client: %w", err)
		}
		if err := registry.Register(client); err != nil {
			s.Close()
			return nil, err
		}
	}

	if cfg.EtherscanEnabled() {
		client, err := etherscan.New(etherscan.Config{
			APIKey:  cfg.EtherscanAPIKey,
			BaseURL: cfg.EtherscanURL,
			Listed:  list.Listed,
		})
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("create etherscan client: %w", err)
		}
		if err := registry.Register(client); err != nil {
			s.Close()
			return nil, err
		}
	}

	s.orchestrator, err = orchestrator.New(registry,
		orchestrator.WithProviderTimeout(cfg.ProviderTimeout),
		orchestrator.WithCacheTTL(cfg.CacheTTL),
		orchestrator.WithMetrics(orchestrator.NewMetrics(reg)),
		orchestrator.WithLogger(log),
	)
	if err != nil {
		s.Close()
		return nil, err
	}
	log.InfoContext(ctx, "wallet screening ready",
		"providers", s.orchestrator.Providers(),
		"sanctioned_addresses", list.Len(),
		"ofac_upstream", list.HasUpstream(),
	)
	return s, nil
}

func (s *screening) Close() {
	if s.alchemy != nil {
		s.alchemy.Close()
	}
}
