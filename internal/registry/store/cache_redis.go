package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"walletreg/internal/registry/models"
	"walletreg/internal/registry/service"
	id "walletreg/pkg/domain"
	"walletreg/pkg/platform/sentinel"
)

const verificationKeyPrefix = "walletreg:verification:"

var _ service.Cache = (*RedisCache)(nil)

// RedisCache is a read-through cache of verification records shared by all
// instances. Entries expire after the configured TTL.
type RedisCache struct {
	client   *redis.Client
	cacheTTL time.Duration
}

// NewRedisCache constructs a Redis-backed verification cache.
func NewRedisCache(client *redis.Client, cacheTTL time.Duration) *RedisCache {
	return &RedisCache{client: client, cacheTTL: cacheTTL}
}

// FindVerification returns sentinel.ErrNotFound on a miss.
func (c *RedisCache) FindVerification(ctx context.Context, address id.WalletAddress) (*models.VerificationRecord, error) {
	raw, err := c.client.Get(ctx, verificationKey(address)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get cached verification: %w", err)
	}

	var record models.VerificationRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("decode cached verification: %w", err)
	}
	return &record, nil
}

func (c *RedisCache) SaveVerification(ctx context.Context, address id.WalletAddress, record models.VerificationRecord) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode cached verification: %w", err)
	}
	return c.client.Set(ctx, verificationKey(address), raw, c.cacheTTL).Err()
}

func (c *RedisCache) DeleteVerification(ctx context.Context, address id.WalletAddress) error {
	if err := c.client.Del(ctx, verificationKey(address)).Err(); err != nil {
		return fmt.Errorf("delete cached verification: %w", err)
	}
	return nil
}

func verificationKey(address id.WalletAddress) string {
	return verificationKeyPrefix + address.String()
}
