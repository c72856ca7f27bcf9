package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"

	"walletreg/internal/platform/config"
	"walletreg/internal/platform/kafka"
	"walletreg/internal/platform/postgres"
	"walletreg/internal/platform/redis"
	"walletreg/internal/registry/events"
	regmetrics "walletreg/internal/registry/metrics"
	"walletreg/internal/registry/service"
	"walletreg/internal/registry/store"
)

// backends holds the storage, cache and notification wiring chosen from
// config, plus the connections that must be closed on exit.
//
//	DATABASE_URL set:   PostgresStore + OutboxSink, relayed to Kafka when brokers are set
//	DATABASE_URL empty: InMemoryStore + KafkaSink when brokers are set, else LogSink
//
// Only a Postgres-backed registry is cached: through Redis when REDIS_URL is
// set, otherwise through a per-process cache kept coherent by LISTEN/NOTIFY.
type backends struct {
	store       service.Store
	sink        service.EventSink
	cache       service.Cache
	memoryCache *store.InMemoryCache
	invalidator *store.CacheInvalidator
	relay       *events.OutboxRelay

	db    *sql.DB
	redis *redis.Client
	kafka *kgo.Client
}

func openBackends(ctx context.Context, cfg config.Config, log *slog.Logger, m *regmetrics.Metrics) (_ *backends, err error) {
	b := &backends{}
	defer func() {
		if err != nil {
			b.Close()
		}
	}()

	if b.db, err = postgres.Open(ctx, cfg.Database); err != nil {
		return nil, err
	}
	if b.redis, err = redis.New(ctx, cfg.Redis); err != nil {
		return nil, err
	}
	if b.kafka, err = kafka.New(ctx, cfg.Kafka); err != nil {
		return nil, err
	}
	if b.kafka != nil {
		if err = kafka.EnsureTopic(ctx, b.kafka, cfg.Kafka, log); err != nil {
			return nil, err
		}
	}

	var kafkaSink *events.KafkaSink
	if b.kafka != nil {
		kafkaSink = events.NewKafkaSink(b.kafka, cfg.Kafka.Topic)
	}

	if b.db != nil {
		if err = store.Migrate(ctx, b.db); err != nil {
			return nil, fmt.Errorf("migrate registry schema: %w", err)
		}
		b.store = store.NewPostgresStore(b.db)
		b.sink = events.NewOutboxSink(b.db)
		if kafkaSink != nil {
			b.relay, err = events.NewOutboxRelay(b.db, kafkaSink,
				events.WithRelayLogger(log),
				events.WithRelayMetrics(m),
				events.WithPollInterval(cfg.Kafka.OutboxPollInterval),
			)
			if err != nil {
				return nil, err
			}
		}
		log.InfoContext(ctx, "registry storage: postgres", "outbox_relay", b.relay != nil)
	} else {
		b.store = store.NewInMemoryStore()
		if kafkaSink != nil {
			b.sink = kafkaSink
		} else {
			b.sink = events.NewLogSink(log)
		}
		log.InfoContext(ctx, "registry storage: memory", "kafka", kafkaSink != nil)
	}

	// Memory-backed registries read directly; Redis then only backs rate limits.
	switch {
	case b.db != nil && b.redis != nil:
		b.cache = store.NewRedisCache(b.redis.Client, cfg.Registry.CacheTTL)
	case b.db != nil:
		b.memoryCache = store.NewInMemoryCache(cfg.Registry.CacheTTL)
		b.invalidator, err = store.NewCacheInvalidator(cfg.Database.URL, b.memoryCache, log, m)
		if err != nil {
			return nil, err
		}
		b.cache = b.memoryCache
	}
	return b, nil
}

// Health pings every configured connection.
func (b *backends) Health(ctx context.Context) error {
	if b.db != nil {
		if err := b.db.PingContext(ctx); err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
	}
	if b.redis != nil {
		if err := b.redis.Health(ctx); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	if b.kafka != nil {
		if err := b.kafka.Ping(ctx); err != nil {
			return fmt.Errorf("kafka: %w", err)
		}
	}
	return nil
}

func (b *backends) Close() {
	if b.invalidator != nil {
		_ = b.invalidator.Close()
	}
	if b.kafka != nil {
		b.kafka.Close()
	}
	if b.redis != nil {
		_ = b.redis.Close()
	}
	if b.db != nil {
		_ = b.db.Close()
	}
}
