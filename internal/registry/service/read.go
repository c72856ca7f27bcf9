package service

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"walletreg/internal/registry/models"
	id "walletreg/pkg/domain"
	"walletreg/pkg/platform/sentinel"
)

// GetVerification returns the stored record for address, or
// ErrWalletNotVerified. No authorization is required.
func (s *Service) GetVerification(ctx context.Context, address id.WalletAddress) (*models.VerificationRecord, error) {
	start := time.Now()
	defer s.metrics.ObserveLatency("get_verification", start)

	ctx, span := s.tracer.Start(ctx, "registry.GetVerification", trace.WithAttributes(walletAttr(address)))
	defer span.End()

	if record, ok := s.cached(ctx, address); ok {
		return record, nil
	}

	record, err := s.store.FindVerification(ctx, address)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, ErrWalletNotVerified
		}
		return nil, s.fail(span, translate(err, "failed to load verification"))
	}
	s.fill(ctx, address, *record)
	return record, nil
}

// IsVerified reports whether any record exists for address.
func (s *Service) IsVerified(ctx context.Context, address id.WalletAddress) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "registry.IsVerified", trace.WithAttributes(walletAttr(address)))
	defer span.End()

	if _, ok := s.cached(ctx, address); ok {
		return true, nil
	}
	found, err := s.store.HasVerification(ctx, address)
	if err != nil {
		return false, s.fail(span, translate(err, "failed to check verification"))
	}
	return found, nil
}

// GetVerifications returns the records present for up to
// models.MaxLookupAddresses wallets. Unknown wallets are absent from the map.
func (s *Service) GetVerifications(ctx context.Context, addresses []id.WalletAddress) (map[id.WalletAddress]models.VerificationRecord, error) {
	ctx, span := s.tracer.Start(ctx, "registry.GetVerifications", trace.WithAttributes(
		attribute.Int("lookup.size", len(addresses)),
	))
	defer span.End()

	if len(addresses) > models.MaxLookupAddresses {
		return nil, ErrTooManyAddresses
	}
	if len(addresses) == 0 {
		return map[id.WalletAddress]models.VerificationRecord{}, nil
	}
	records, err := s.store.FindVerifications(ctx, dedupeAddresses(addresses))
	if err != nil {
		return nil, s.fail(span, translate(err, "failed to load verifications"))
	}
	return records, nil
}

// TotalVerifications returns the number of writes applied since construction.
func (s *Service) TotalVerifications(ctx context.Context) (uint64, error) {
	state, err := s.loadState(ctx)
	if err != nil {
		return 0, err
	}
	return state.TotalVerifications, nil
}

// Owner returns the account fixed at construction.
func (s *Service) Owner(ctx context.Context) (id.AccountID, error) {
	state, err := s.loadState(ctx)
	if err != nil {
		return id.AccountID{}, err
	}
	return state.Owner, nil
}

func (s *Service) loadState(ctx context.Context) (*models.RegistryState, error) {
	state, err := s.store.LoadState(ctx)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, ErrNotConstructed
		}
		return nil, translate(err, "failed to load registry state")
	}
	return state, nil
}

func (s *Service) cached(ctx context.Context, address id.WalletAddress) (*models.VerificationRecord, bool) {
	if s.cache == nil {
		return nil, false
	}
	record, err := s.cache.FindVerification(ctx, address)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			s.logger.WarnContext(ctx, "verification cache lookup failed",
				"wallet_address", address.String(),
				"error", err,
			)
		}
		s.metrics.RecordCacheMiss()
		return nil, false
	}
	s.metrics.RecordCacheHit()
	return record, true
}

func dedupeAddresses(addresses []id.WalletAddress) []id.WalletAddress {
	seen := make(map[id.WalletAddress]struct{}, len(addresses))
	out := make([]id.WalletAddress, 0, len(addresses))
	for _, a := range addresses {
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	return out
}
