package store

import (
	"context"
	"sync"
	"time"

	"walletreg/internal/registry/models"
	"walletreg/internal/registry/service"
	id "walletreg/pkg/domain"
	"walletreg/pkg/platform/sentinel"
)

var _ service.Store = (*InMemoryStore)(nil)

// InMemoryStore keeps the registry in process memory.
//
// RunInTx holds the write lock for the whole callback and stages writes, so
// readers see either none or all of a call's effects. The callback must not
// call back into the store's read methods.
type InMemoryStore struct {
	mu            sync.RWMutex
	verifications map[id.WalletAddress]models.VerificationRecord
	state         *models.RegistryState
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{verifications: make(map[id.WalletAddress]models.VerificationRecord)}
}

func (s *InMemoryStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx service.TxStore) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memoryTx{pending: make(map[id.WalletAddress]models.VerificationRecord)}
	if s.state != nil {
		state := *s.state
		tx.state = &state
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}

	for addr, record := range tx.pending {
		s.verifications[addr] = record
	}
	s.state = tx.state
	return nil
}

func (s *InMemoryStore) LoadState(_ context.Context) (*models.RegistryState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state == nil {
		return nil, sentinel.ErrNotFound
	}
	state := *s.state
	return &state, nil
}

func (s *InMemoryStore) FindVerification(_ context.Context, address id.WalletAddress) (*models.VerificationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.verifications[address]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &record, nil
}

func (s *InMemoryStore) HasVerification(_ context.Context, address id.WalletAddress) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.verifications[address]
	return ok, nil
}

func (s *InMemoryStore) FindVerifications(_ context.Context, addresses []id.WalletAddress) (map[id.WalletAddress]models.VerificationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	found := make(map[id.WalletAddress]models.VerificationRecord, len(addresses))
	for _, addr := range addresses {
		if record, ok := s.verifications[addr]; ok {
			found[addr] = record
		}
	}
	return found, nil
}

// Count returns the number of distinct verified wallets.
func (s *InMemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.verifications)
}

// memoryTx stages writes until RunInTx commits them.
type memoryTx struct {
	state   *models.RegistryState
	pending map[id.WalletAddress]models.VerificationRecord
}

func (t *memoryTx) LoadState(_ context.Context) (*models.RegistryState, error) {
	if t.state == nil {
		return nil, sentinel.ErrNotFound
	}
	state := *t.state
	return &state, nil
}

func (t *memoryTx) CreateState(_ context.Context, owner id.AccountID) error {
	if t.state != nil {
		return sentinel.ErrConflict
	}
	t.state = &models.RegistryState{Owner: owner}
	return nil
}

func (t *memoryTx) SaveVerification(_ context.Context, address id.WalletAddress, record models.VerificationRecord) error {
	t.pending[address] = record
	return nil
}

func (t *memoryTx) AdvanceState(_ context.Context, applied uint64, lastVerifiedAt time.Time) error {
	if t.state == nil {
		return sentinel.ErrNotFound
	}
	t.state.TotalVerifications += applied
	if lastVerifiedAt.After(t.state.LastVerifiedAt) {
		t.state.LastVerifiedAt = lastVerifiedAt
	}
	return nil
}
