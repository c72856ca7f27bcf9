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

var _ service.Cache = (*InMemoryCache)(nil)

type cachedVerification struct {
	record   models.VerificationRecord
	storedAt time.Time
}

// InMemoryCache is a per-process verification cache with TTL expiration.
//
// In front of a store shared by several processes it must be paired with a
// CacheInvalidator, which drops entries other processes overwrite and
// suspends the cache while it cannot hear about those writes.
type InMemoryCache struct {
	mu        sync.RWMutex
	entries   map[id.WalletAddress]cachedVerification
	cacheTTL  time.Duration
	suspended bool
	now       func() time.Time
}

// NewInMemoryCache creates an active in-memory cache with the specified TTL.
func NewInMemoryCache(cacheTTL time.Duration) *InMemoryCache {
	return &InMemoryCache{
		entries:  make(map[id.WalletAddress]cachedVerification),
		cacheTTL: cacheTTL,
		now:      time.Now,
	}
}

// FindVerification returns sentinel.ErrNotFound if the entry is missing or
// older than the cache TTL.
func (c *InMemoryCache) FindVerification(_ context.Context, address id.WalletAddress) (*models.VerificationRecord, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.suspended {
		return nil, sentinel.ErrNotFound
	}
	if cached, ok := c.entries[address]; ok {
		if c.now().Sub(cached.storedAt) < c.cacheTTL {
			record := cached.record
			return &record, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

// SaveVerification is a no-op while the cache is suspended.
func (c *InMemoryCache) SaveVerification(_ context.Context, address id.WalletAddress, record models.VerificationRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.suspended {
		return nil
	}
	c.entries[address] = cachedVerification{record: record, storedAt: c.now()}
	return nil
}

func (c *InMemoryCache) DeleteVerification(_ context.Context, address id.WalletAddress) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, address)
	return nil
}

// Suspend empties the cache and turns every lookup into a miss until Resume.
func (c *InMemoryCache) Suspend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.suspended = true
	clear(c.entries)
}

// Resume empties the cache and starts serving from it again.
func (c *InMemoryCache) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.suspended = false
	clear(c.entries)
}

// Purge drops every entry.
func (c *InMemoryCache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
}

// StartCleanup evicts expired entries every interval until ctx is done.
func (c *InMemoryCache) StartCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.evictExpired()
		}
	}
}

func (c *InMemoryCache) evictExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for addr, cached := range c.entries {
		if now.Sub(cached.storedAt) >= c.cacheTTL {
			delete(c.entries, addr)
		}
	}
}
