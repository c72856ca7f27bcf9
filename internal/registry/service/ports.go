package service

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks Store,TxStore,EventSink,TxEventSink,Cache

import (
	"context"
	"time"

	"walletreg/internal/registry/models"
	id "walletreg/pkg/domain"
)

// Store is the persistent verification map plus the registry state row.
// Reads outside RunInTx never observe a partially applied call.
type Store interface {
	// RunInTx runs fn inside one transaction. Writes made through tx become
	// visible only if fn returns nil. The ctx passed to fn carries the
	// transaction so collaborators such as the event outbox can join it.
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx TxStore) error) error

	// LoadState returns sentinel.ErrNotFound before construction.
	LoadState(ctx context.Context) (*models.RegistryState, error)
	// FindVerification returns sentinel.ErrNotFound for unknown wallets.
	FindVerification(ctx context.Context, address id.WalletAddress) (*models.VerificationRecord, error)
	HasVerification(ctx context.Context, address id.WalletAddress) (bool, error)
	FindVerifications(ctx context.Context, addresses []id.WalletAddress) (map[id.WalletAddress]models.VerificationRecord, error)
}

// TxStore is the write view of the store inside one transaction.
type TxStore interface {
	// LoadState returns the state row locked for the rest of the transaction,
	// or sentinel.ErrNotFound before construction.
	LoadState(ctx context.Context) (*models.RegistryState, error)
	// CreateState returns sentinel.ErrConflict if the state row already exists.
	CreateState(ctx context.Context, owner id.AccountID) error
	// SaveVerification inserts or replaces the record for address.
	SaveVerification(ctx context.Context, address id.WalletAddress, record models.VerificationRecord) error
	// AdvanceState adds applied to the write counter and records
	// lastVerifiedAt as the newest stamp handed out.
	AdvanceState(ctx context.Context, applied uint64, lastVerifiedAt time.Time) error
}

// EventSink receives one notification per applied write. Unless the sink is
// also a TxEventSink, Emit is called only after the store transaction has
// committed, in write order.
type EventSink interface {
	Emit(ctx context.Context, event models.WalletVerified) error
}

// TxEventSink is an EventSink whose Emit writes through the store transaction
// carried on ctx. Its notifications commit or roll back with the write.
type TxEventSink interface {
	EventSink
	JoinsTransaction() bool
}

// Cache is an optional read-through cache for verification records. Reads
// fill it; writes invalidate it. FindVerification returns
// sentinel.ErrNotFound on a miss.
type Cache interface {
	FindVerification(ctx context.Context, address id.WalletAddress) (*models.VerificationRecord, error)
	SaveVerification(ctx context.Context, address id.WalletAddress, record models.VerificationRecord) error
	DeleteVerification(ctx context.Context, address id.WalletAddress) error
}

// Clock supplies the host timestamp for a write.
type Clock func(ctx context.Context) time.Time
