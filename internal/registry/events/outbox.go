package events

import (
	"context"
	"database/sql"
	"fmt"

	"walletreg/internal/registry/models"
	"walletreg/internal/registry/service"
	txcontext "walletreg/pkg/platform/tx"
	"walletreg/pkg/requestcontext"
)

var _ service.TxEventSink = (*OutboxSink)(nil)

// OutboxSink writes notifications to the outbox table. When the context
// carries a store transaction the row commits or rolls back with the writes
// that produced it.
type OutboxSink struct {
	db *sql.DB
}

func NewOutboxSink(db *sql.DB) *OutboxSink {
	return &OutboxSink{db: db}
}

// JoinsTransaction is always true: rows are written through the store
// transaction on the context.
func (s *OutboxSink) JoinsTransaction() bool { return true }

func (s *OutboxSink) Emit(ctx context.Context, event models.WalletVerified) error {
	msg, err := NewMessage(event)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO outbox (id, aggregate_type, aggregate_id, event_type, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = txcontext.ExecerFrom(ctx, s.db).ExecContext(ctx, query,
		event.ID,
		aggregateWallet,
		msg.Key,
		msg.EventType,
		msg.Payload,
		requestcontext.Now(ctx),
	)
	if err != nil {
		return fmt.Errorf("insert outbox entry: %w", err)
	}
	return nil
}
