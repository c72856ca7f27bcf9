package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"walletreg/internal/registry/metrics"
	"walletreg/internal/registry/models"
	id "walletreg/pkg/domain"
	"walletreg/pkg/requestcontext"
)

// VerifyWallet records one verification outcome.
//
// Checks run in order before any mutation: the caller must be the owner
// (ErrNotAuthorized), then the score must be in [0, 100] (ErrInvalidRiskScore).
// On success the record replaces any earlier one for the wallet, the counter
// grows by one and exactly one WalletVerified is emitted. A failed call emits
// nothing.
func (s *Service) VerifyWallet(ctx context.Context, req models.VerifyRequest) (*models.VerificationRecord, error) {
	start := time.Now()
	defer s.metrics.ObserveLatency("verify_wallet", start)

	ctx, span := s.tracer.Start(ctx, "registry.VerifyWallet", trace.WithAttributes(
		walletAttr(req.Address),
		attribute.Int("risk.score", req.RiskScore),
	))
	defer span.End()

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var (
		record models.VerificationRecord
		scope  *writeScope
	)
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx TxStore) error {
		var err error
		scope, err = s.begin(ctx, tx)
		if err != nil {
			return err
		}
		if !models.ValidRiskScore(req.RiskScore) {
			return ErrInvalidRiskScore
		}
		record, err = s.apply(ctx, tx, scope, req)
		if err != nil {
			return err
		}
		return tx.AdvanceState(ctx, 1, scope.lastStamp)
	})
	if err != nil {
		s.metrics.IncrementOutcome(outcomeOf(err), 1)
		s.logger.WarnContext(ctx, "wallet verification rejected",
			"wallet_address", req.Address.String(),
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil, s.fail(span, translate(err, "failed to verify wallet"))
	}

	s.metrics.IncrementOutcome(metrics.OutcomeApplied, 1)
	s.deliver(ctx, scope.pending)
	s.invalidate(ctx, req.Address)
	s.logger.InfoContext(ctx, models.EventWalletVerified,
		"wallet_address", req.Address.String(),
		"risk_score", record.RiskScore,
		"risk_level", record.RiskLevel.String(),
		"is_sanctioned", record.IsSanctioned,
		"verified_by", record.VerifiedBy.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return &record, nil
}

// VerifyWalletsBatch records entries in input order and returns how many were
// applied.
//
// Authorization is checked once for the whole batch; a non-owner gets
// ErrNotAuthorized and nothing is applied. Entries with a score outside
// [0, 100] are skipped without error or notification. Every other entry is
// written exactly as VerifyWallet would, with notifications in input order.
// The counter grows by the applied count.
func (s *Service) VerifyWalletsBatch(ctx context.Context, entries []models.BatchEntry) (uint64, error) {
	start := time.Now()
	defer s.metrics.ObserveLatency("verify_wallets_batch", start)

	ctx, span := s.tracer.Start(ctx, "registry.VerifyWalletsBatch", trace.WithAttributes(
		attribute.Int("batch.size", len(entries)),
	))
	defer span.End()
	s.metrics.ObserveBatchSize(len(entries))

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var (
		applied []id.WalletAddress
		scope   *writeScope
	)
	skipped := 0

	err := s.store.RunInTx(ctx, func(ctx context.Context, tx TxStore) error {
		applied, skipped = applied[:0], 0

		var err error
		scope, err = s.begin(ctx, tx)
		if err != nil {
			return err
		}
		for i, entry := range entries {
			if !models.ValidRiskScore(entry.RiskScore) {
				skipped++
				s.logger.DebugContext(ctx, "skipping batch entry with invalid risk score",
					"index", i,
					"wallet_address", entry.Address.String(),
					"risk_score", entry.RiskScore,
				)
				continue
			}
			if _, err := s.apply(ctx, tx, scope, entry); err != nil {
				return err
			}
			applied = append(applied, entry.Address)
		}
		if len(applied) == 0 {
			return nil
		}
		return tx.AdvanceState(ctx, uint64(len(applied)), scope.lastStamp)
	})
	if err != nil {
		s.metrics.IncrementOutcome(outcomeOf(err), 1)
		s.logger.WarnContext(ctx, "batch verification rejected",
			"entries", len(entries),
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return 0, s.fail(span, translate(err, "failed to verify wallet batch"))
	}

	s.deliver(ctx, scope.pending)
	for _, address := range applied {
		s.invalidate(ctx, address)
	}
	s.metrics.IncrementOutcome(metrics.OutcomeApplied, len(applied))
	s.metrics.IncrementOutcome(metrics.OutcomeSkipped, skipped)
	span.SetAttributes(
		attribute.Int("batch.applied", len(applied)),
		attribute.Int("batch.skipped", skipped),
	)
	s.logger.InfoContext(ctx, "wallet_batch_verified",
		"entries", len(entries),
		"applied", len(applied),
		"skipped", skipped,
		"request_id", requestcontext.RequestID(ctx),
	)
	return uint64(len(applied)), nil
}
