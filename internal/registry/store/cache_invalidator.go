package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"

	"walletreg/internal/registry/metrics"
	id "walletreg/pkg/domain"
)

const (
	listenerMinReconnect = 100 * time.Millisecond
	listenerMaxReconnect = 30 * time.Second
	listenerPingInterval = 90 * time.Second
)

// notificationSource is the part of *pq.Listener the invalidator reads.
type notificationSource interface {
	NotificationChannel() <-chan *pq.Notification
	Ping() error
	Close() error
}

// CacheInvalidator keeps a per-process InMemoryCache coherent with a
// Postgres store shared by several processes. Every committed write
// notifies VerificationChannel; the invalidator drops the named entry.
// While the listener connection is down the cache is suspended, and it is
// emptied whenever notifications may have been missed.
type CacheInvalidator struct {
	cache   *InMemoryCache
	source  notificationSource
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewCacheInvalidator opens a LISTEN connection on dsn. The cache stays
// suspended until the listener reports its first connection.
func NewCacheInvalidator(dsn string, cache *InMemoryCache, logger *slog.Logger, m *metrics.Metrics) (*CacheInvalidator, error) {
	if cache == nil {
		return nil, errors.New("cache is required")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	inv := &CacheInvalidator{cache: cache, logger: logger, metrics: m}
	cache.Suspend()

	listener := pq.NewListener(dsn, listenerMinReconnect, listenerMaxReconnect, inv.handleEvent)
	if err := listener.Listen(VerificationChannel); err != nil {
		_ = listener.Close()
		return nil, fmt.Errorf("listen on %s: %w", VerificationChannel, err)
	}
	inv.source = listener
	return inv, nil
}

// handleEvent follows the listener connection state.
func (i *CacheInvalidator) handleEvent(event pq.ListenerEventType, err error) {
	switch event {
	case pq.ListenerEventConnected, pq.ListenerEventReconnected:
		i.cache.Resume()
		i.metrics.RecordCacheInvalidation("purge")
		i.logger.Info("verification cache listener connected")
	case pq.ListenerEventDisconnected:
		i.cache.Suspend()
		i.metrics.RecordCacheInvalidation("purge")
		i.logger.Warn("verification cache listener disconnected, cache suspended", "error", err)
	case pq.ListenerEventConnectionAttemptFailed:
		i.logger.Warn("verification cache listener reconnect failed", "error", err)
	}
}

// Run applies notifications until ctx is done, then closes the listener.
func (i *CacheInvalidator) Run(ctx context.Context) error {
	ticker := time.NewTicker(listenerPingInterval)
	defer ticker.Stop()
	defer func() {
		_ = i.source.Close()
	}()

	notifications := i.source.NotificationChannel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case n, ok := <-notifications:
			if !ok {
				return nil
			}
			i.apply(ctx, n)
		case <-ticker.C:
			// Ping surfaces a dead connection, which triggers a reconnect.
			if err := i.source.Ping(); err != nil {
				i.logger.WarnContext(ctx, "verification cache listener ping failed", "error", err)
			}
		}
	}
}

// Close releases the listener connection. Run also closes it on exit.
func (i *CacheInvalidator) Close() error {
	return i.source.Close()
}

// apply handles one notification. pq sends nil after re-establishing a lost
// connection, when notifications may have been missed.
func (i *CacheInvalidator) apply(ctx context.Context, n *pq.Notification) {
	if n == nil {
		i.cache.Purge()
		i.metrics.RecordCacheInvalidation("purge")
		return
	}
	address, err := id.ParseWalletAddress(n.Extra)
	if err != nil {
		i.cache.Purge()
		i.metrics.RecordCacheInvalidation("purge")
		i.logger.WarnContext(ctx, "unreadable verification notification, cache purged",
			"payload", n.Extra,
			"error", err,
		)
		return
	}
	_ = i.cache.DeleteVerification(ctx, address)
	i.metrics.RecordCacheInvalidation("notify")
}
