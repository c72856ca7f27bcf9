package orchestrator

import (
	"sync"
	"time"

	id "walletreg/pkg/domain"
)

type cachedReport struct {
	report    *Report
	expiresAt time.Time
}

// reportCache is a TTL map of complete reports. A nil cache never hits.
type reportCache struct {
	ttl     time.Duration
	mu      sync.Mutex
	entries map[id.WalletAddress]cachedReport
}

func newReportCache(ttl time.Duration) *reportCache {
	return &reportCache{ttl: ttl, entries: make(map[id.WalletAddress]cachedReport)}
}

func (c *reportCache) get(address id.WalletAddress, now time.Time) (*Report, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[address]
	if !ok {
		return nil, false
	}
	if !now.Before(entry.expiresAt) {
		delete(c.entries, address)
		return nil, false
	}
	return entry.report, true
}

func (c *reportCache) put(address id.WalletAddress, report *Report, now time.Time) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, entry := range c.entries {
		if !now.Before(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
	c.entries[address] = cachedReport{report: report, expiresAt: now.Add(c.ttl)}
}
