package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"walletreg/internal/registry/metrics"
	"walletreg/internal/registry/models"
	id "walletreg/pkg/domain"
	dErrors "walletreg/pkg/domain-errors"
	"walletreg/pkg/platform/sentinel"
	"walletreg/pkg/requestcontext"
)

const tracerName = "walletreg/internal/registry/service"

// Service is the verification registry. It owns the address to verification
// mapping, the fixed owner and the write counter.
//
// Mutating calls are serialized: each runs to completion inside one store
// transaction before the next one starts. The owner is read from the store on
// every write and there is no operation that changes it.
type Service struct {
	store    Store
	sink     EventSink
	sinkInTx bool
	cache    Cache
	clock    Clock
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tracer   trace.Tracer

	// writeMu serializes this process's mutating calls. Across processes
	// the store's state row lock does the same.
	writeMu sync.Mutex
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithCache enables the read-through cache for GetVerification and IsVerified.
func WithCache(cache Cache) Option {
	return func(s *Service) {
		s.cache = cache
	}
}

// WithClock overrides the write timestamp source (defaults to requestcontext.Now).
func WithClock(clock Clock) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// New constructs a Service. store and sink are required.
func New(store Store, sink EventSink, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("store is required")
	}
	if sink == nil {
		return nil, errors.New("event sink is required")
	}
	s := &Service{
		store:  store,
		sink:   sink,
		clock:  requestcontext.Now,
		logger: slog.New(slog.DiscardHandler),
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	if txSink, ok := sink.(TxEventSink); ok {
		s.sinkInTx = txSink.JoinsTransaction()
	}
	return s, nil
}

// Construct binds the registry owner to the caller on ctx. It runs once per
// registry: a repeat call by the same caller returns the existing state, a
// call by anyone else fails with ErrAlreadyConstructed and changes nothing.
func (s *Service) Construct(ctx context.Context) (*models.RegistryState, error) {
	ctx, span := s.tracer.Start(ctx, "registry.Construct")
	defer span.End()

	caller, ok := requestcontext.Caller(ctx)
	if !ok {
		return nil, s.fail(span, ErrMissingCaller)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var state *models.RegistryState
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx TxStore) error {
		existing, err := tx.LoadState(ctx)
		switch {
		case err == nil:
			if existing.Owner != caller {
				return ErrAlreadyConstructed
			}
			state = existing
			return nil
		case !errors.Is(err, sentinel.ErrNotFound):
			return err
		}

		err = tx.CreateState(ctx, caller)
		if errors.Is(err, sentinel.ErrConflict) {
			// Lost a race with a concurrent Construct.
			existing, err = tx.LoadState(ctx)
			if err != nil {
				return err
			}
			if existing.Owner != caller {
				return ErrAlreadyConstructed
			}
			state = existing
			return nil
		}
		if err != nil {
			return err
		}
		state = &models.RegistryState{Owner: caller}
		return nil
	})
	if err != nil {
		return nil, s.fail(span, translate(err, "failed to construct registry"))
	}

	s.logger.InfoContext(ctx, "registry_constructed",
		"owner", state.Owner.String(),
		"total_verifications", state.TotalVerifications,
		"request_id", requestcontext.RequestID(ctx),
	)
	return state, nil
}

// writeScope is the state of one mutating call inside its transaction.
type writeScope struct {
	caller id.AccountID
	// lastStamp starts at the stored LastVerifiedAt and follows every stamp
	// handed out during the call.
	lastStamp time.Time
	// pending holds notifications for a sink that does not join the
	// transaction, in write order.
	pending []models.WalletVerified
}

// begin authorizes the caller against the locked state and opens a scope.
func (s *Service) begin(ctx context.Context, tx TxStore) (*writeScope, error) {
	state, err := tx.LoadState(ctx)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, ErrNotConstructed
		}
		return nil, err
	}
	caller, ok := requestcontext.Caller(ctx)
	if !ok || caller != state.Owner {
		return nil, ErrNotAuthorized
	}
	return &writeScope{caller: caller, lastStamp: state.LastVerifiedAt}, nil
}

// stamp returns the write timestamp, never earlier than any stamp already
// recorded in the store.
func (s *Service) stamp(ctx context.Context, w *writeScope) time.Time {
	now := s.clock(ctx).UTC()
	if now.Before(w.lastStamp) {
		now = w.lastStamp
	}
	w.lastStamp = now
	return now
}

// apply writes one validated entry and emits or queues its notification.
func (s *Service) apply(ctx context.Context, tx TxStore, w *writeScope, req models.VerifyRequest) (models.VerificationRecord, error) {
	record := models.NewVerificationRecord(req.RiskScore, req.RiskLevel, req.IsSanctioned, w.caller, s.stamp(ctx, w))
	if err := tx.SaveVerification(ctx, req.Address, record); err != nil {
		return models.VerificationRecord{}, err
	}
	event := models.NewWalletVerified(req.Address, record)
	if !s.sinkInTx {
		w.pending = append(w.pending, event)
		return record, nil
	}
	if err := s.sink.Emit(ctx, event); err != nil {
		return models.VerificationRecord{}, err
	}
	return record, nil
}

// deliver hands queued notifications to the sink once their writes are
// committed. The writes stand regardless, so failures are logged and counted
// rather than returned.
func (s *Service) deliver(ctx context.Context, pending []models.WalletVerified) {
	for _, event := range pending {
		if err := s.sink.Emit(ctx, event); err != nil {
			s.metrics.IncNotificationFailures()
			s.logger.ErrorContext(ctx, "failed to deliver wallet verification notification",
				"event_id", event.ID.String(),
				"wallet_address", event.WalletAddress.String(),
				"error", err,
				"request_id", requestcontext.RequestID(ctx),
			)
		}
	}
}

// invalidate drops the cached record for address after a committed write.
func (s *Service) invalidate(ctx context.Context, address id.WalletAddress) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteVerification(ctx, address); err != nil {
		s.logger.ErrorContext(ctx, "failed to invalidate verification cache",
			"wallet_address", address.String(),
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return
	}
	s.metrics.RecordCacheInvalidation("write")
}

// fill stores a record read from the store. Failures only cost a cache miss.
func (s *Service) fill(ctx context.Context, address id.WalletAddress, record models.VerificationRecord) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SaveVerification(ctx, address, record); err != nil {
		s.logger.WarnContext(ctx, "failed to fill verification cache",
			"wallet_address", address.String(),
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}

func (s *Service) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

// translate passes coded errors through and wraps anything else as internal.
func translate(err error, message string) error {
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, message)
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, ErrNotAuthorized):
		return metrics.OutcomeNotAuthorized
	case errors.Is(err, ErrInvalidRiskScore):
		return metrics.OutcomeInvalidScore
	default:
		return metrics.OutcomeError
	}
}

func walletAttr(address id.WalletAddress) attribute.KeyValue {
	return attribute.String("wallet.address", address.String())
}
