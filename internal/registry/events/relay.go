package events

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"walletreg/internal/registry/metrics"
)

const (
	defaultPollInterval = time.Second
	defaultBatchSize    = 100

	// relayLockKey is the advisory lock that keeps one relay active at a time,
	// so rows reach the broker in outbox order.
	relayLockKey int64 = 0x77616c6c6574
)

// Publisher delivers encoded notifications in order.
type Publisher interface {
	PublishAll(ctx context.Context, msgs []Message) error
}

// OutboxRelay moves committed outbox rows to the broker. Delivery is at least
// once: a row is marked published only after the broker acknowledged it.
type OutboxRelay struct {
	db           *sql.DB
	publisher    Publisher
	logger       *slog.Logger
	metrics      *metrics.Metrics
	pollInterval time.Duration
	batchSize    int
	now          func() time.Time
}

type RelayOption func(*OutboxRelay)

func WithRelayLogger(logger *slog.Logger) RelayOption {
	return func(r *OutboxRelay) {
		r.logger = logger
	}
}

func WithRelayMetrics(m *metrics.Metrics) RelayOption {
	return func(r *OutboxRelay) {
		r.metrics = m
	}
}

func WithPollInterval(d time.Duration) RelayOption {
	return func(r *OutboxRelay) {
		if d > 0 {
			r.pollInterval = d
		}
	}
}

func WithBatchSize(n int) RelayOption {
	return func(r *OutboxRelay) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

func NewOutboxRelay(db *sql.DB, publisher Publisher, opts ...RelayOption) (*OutboxRelay, error) {
	if db == nil {
		return nil, errors.New("database is required")
	}
	if publisher == nil {
		return nil, errors.New("publisher is required")
	}
	r := &OutboxRelay{
		db:           db,
		publisher:    publisher,
		logger:       slog.New(slog.DiscardHandler),
		pollInterval: defaultPollInterval,
		batchSize:    defaultBatchSize,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Run polls the outbox until ctx is cancelled. Failed passes are logged and
// retried on the next tick.
func (r *OutboxRelay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	r.logger.InfoContext(ctx, "outbox relay started",
		"poll_interval", r.pollInterval.String(),
		"batch_size", r.batchSize,
	)
	for {
		select {
		case <-ctx.Done():
			r.logger.InfoContext(ctx, "outbox relay stopped")
			return nil
		case <-ticker.C:
			r.drain(ctx)
		}
	}
}

// drain relays full batches until the outbox is empty or a pass fails.
func (r *OutboxRelay) drain(ctx context.Context) {
	for ctx.Err() == nil {
		n, err := r.RelayOnce(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			r.metrics.IncOutboxFailures()
			r.logger.ErrorContext(ctx, "outbox relay pass failed", "error", err)
			return
		}
		if n < r.batchSize {
			return
		}
	}
}

// RelayOnce publishes up to one batch of unpublished rows and returns how
// many were published. It returns 0 without error when another relay holds
// the lock.
func (r *OutboxRelay) RelayOnce(ctx context.Context) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin outbox transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var locked bool
	if err := tx.QueryRowContext(ctx, `SELECT pg_try_advisory_xact_lock($1)`, relayLockKey).Scan(&locked); err != nil {
		return 0, fmt.Errorf("acquire relay lock: %w", err)
	}
	if !locked {
		return 0, nil
	}

	ids, msgs, err := claimBatch(ctx, tx, r.batchSize)
	if err != nil {
		return 0, err
	}
	if len(msgs) == 0 {
		return 0, nil
	}

	if err := r.publisher.PublishAll(ctx, msgs); err != nil {
		return 0, fmt.Errorf("publish outbox batch: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE outbox
		SET published_at = $1
		WHERE id = ANY($2::uuid[])
	`, r.now(), pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("mark outbox published: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit outbox transaction: %w", err)
	}

	r.metrics.AddOutboxPublished(len(msgs))
	r.logger.DebugContext(ctx, "outbox batch published", "count", len(msgs))
	return len(msgs), nil
}

func claimBatch(ctx context.Context, tx *sql.Tx, limit int) ([]string, []Message, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT id, aggregate_id, event_type, payload
		FROM outbox
		WHERE published_at IS NULL
		ORDER BY seq
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`, limit)
	if err != nil {
		return nil, nil, fmt.Errorf("query outbox: %w", err)
	}
	defer rows.Close()

	var (
		ids  []string
		msgs []Message
	)
	for rows.Next() {
		var (
			entryID uuid.UUID
			msg     Message
		)
		if err := rows.Scan(&entryID, &msg.Key, &msg.EventType, &msg.Payload); err != nil {
			return nil, nil, fmt.Errorf("scan outbox entry: %w", err)
		}
		ids = append(ids, entryID.String())
		msgs = append(msgs, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate outbox: %w", err)
	}
	return ids, msgs, nil
}
