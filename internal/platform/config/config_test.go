package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{
		"REGISTRY_ADDR", "DATABASE_URL", "REDIS_URL", "REGISTRY_CACHE_TTL",
		"KAFKA_BROKERS", "KAFKA_TOPIC", "OUTBOX_POLL_INTERVAL", "JWT_SIGNING_KEY",
		"REGISTRY_DEPLOYER", "LOG_LEVEL", "JWT_TOKEN_TTL", "KAFKA_PARTITIONS",
		"KAFKA_REPLICATION_FACTOR", "JWT_ISSUER", "RATE_LIMIT_PER_IP", "RATE_LIMIT_PER_CALLER",
		"RATE_LIMIT_WINDOW", "SANCTIONS_LIST_FILE", "OFAC_API_URL", "OFAC_API_KEY",
		"ALCHEMY_URL", "ALCHEMY_API_KEY", "CHAINALYSIS_API_URL", "CHAINALYSIS_API_KEY",
		"ETHERSCAN_API_URL", "ETHERSCAN_API_KEY", "SCREENING_TIMEOUT", "SCREENING_CACHE_TTL",
	} {
		t.Setenv(key, "")
	}

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.NotEmpty(t, cfg.Server.JWTSigningKey)
	assert.Equal(t, time.Hour, cfg.Server.TokenTTL)
	assert.Empty(t, cfg.Database.URL)
	assert.Empty(t, cfg.Redis.URL)
	assert.False(t, cfg.Kafka.Enabled())
	assert.Equal(t, "wallet-verifications", cfg.Kafka.Topic)
	assert.Equal(t, time.Second, cfg.Kafka.OutboxPollInterval)
	assert.Equal(t, 5*time.Minute, cfg.Registry.CacheTTL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, RateLimitConfig{PerIP: 600, PerCaller: 60, Window: time.Minute}, cfg.RateLimit)
	assert.Equal(t, ScreeningConfig{ProviderTimeout: 5 * time.Second, CacheTTL: 5 * time.Minute}, cfg.Screening)
	assert.False(t, cfg.Screening.AlchemyEnabled())
	assert.False(t, cfg.Screening.ChainalysisEnabled())
	assert.False(t, cfg.Screening.EtherscanEnabled())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("REGISTRY_ADDR", ":9090")
	t.Setenv("KAFKA_BROKERS", "broker-1:9092, broker-2:9092,,")
	t.Setenv("REGISTRY_CACHE_TTL", "30s")
	t.Setenv("OUTBOX_POLL_INTERVAL", "250ms")
	t.Setenv("KAFKA_PARTITIONS", "6")
	t.Setenv("REGISTRY_DEPLOYER", "0xabc")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Kafka.Enabled())
	assert.Equal(t, 30*time.Second, cfg.Registry.CacheTTL)
	assert.Equal(t, 250*time.Millisecond, cfg.Kafka.OutboxPollInterval)
	assert.Equal(t, int32(6), cfg.Kafka.Partitions)
	assert.Equal(t, "0xabc", cfg.Registry.Deployer)
}

func TestFromEnvScreening(t *testing.T) {
	t.Run("alchemy endpoint from api key", func(t *testing.T) {
		t.Setenv("ALCHEMY_URL", "")
		t.Setenv("ALCHEMY_API_KEY", "k3y")

		cfg, err := FromEnv()
		require.NoError(t, err)
		assert.Equal(t, "https://eth-mainnet.g.alchemy.com/v2/k3y", cfg.Screening.AlchemyURL)
		assert.True(t, cfg.Screening.AlchemyEnabled())
	})

	t.Run("explicit alchemy url wins", func(t *testing.T) {
		t.Setenv("ALCHEMY_URL", "http://localhost:8545")
		t.Setenv("ALCHEMY_API_KEY", "k3y")

		cfg, err := FromEnv()
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:8545", cfg.Screening.AlchemyURL)
	})

	t.Run("chainalysis needs url and key", func(t *testing.T) {
		t.Setenv("CHAINALYSIS_API_URL", "https://api.chainalysis.test/v2/entities")
		t.Setenv("CHAINALYSIS_API_KEY", "")

		cfg, err := FromEnv()
		require.NoError(t, err)
		assert.False(t, cfg.Screening.ChainalysisEnabled())

		t.Setenv("CHAINALYSIS_API_KEY", "secret")
		cfg, err = FromEnv()
		require.NoError(t, err)
		assert.True(t, cfg.Screening.ChainalysisEnabled())
	})

	t.Run("etherscan needs only a key", func(t *testing.T) {
		t.Setenv("ETHERSCAN_API_URL", "")
		t.Setenv("ETHERSCAN_API_KEY", "ekey")

		cfg, err := FromEnv()
		require.NoError(t, err)
		assert.True(t, cfg.Screening.EtherscanEnabled())
		assert.Equal(t, "ekey", cfg.Screening.EtherscanAPIKey)
	})

	t.Run("timeouts and cache", func(t *testing.T) {
		t.Setenv("SCREENING_TIMEOUT", "2s")
		t.Setenv("SCREENING_CACHE_TTL", "0")
		t.Setenv("SANCTIONS_LIST_FILE", "/etc/walletreg/sanctions.json")

		cfg, err := FromEnv()
		require.NoError(t, err)
		assert.Equal(t, 2*time.Second, cfg.Screening.ProviderTimeout)
		assert.Zero(t, cfg.Screening.CacheTTL)
		assert.Equal(t, "/etc/walletreg/sanctions.json", cfg.Screening.SanctionsListFile)
	})

	t.Run("bad screening timeout", func(t *testing.T) {
		t.Setenv("SCREENING_TIMEOUT", "0s")
		_, err := FromEnv()
		assert.ErrorContains(t, err, "SCREENING_TIMEOUT")
	})
}

func TestFromEnvRateLimitZeroDisables(t *testing.T) {
	t.Setenv("RATE_LIMIT_PER_IP", "0")
	t.Setenv("RATE_LIMIT_PER_CALLER", "10")
	t.Setenv("RATE_LIMIT_WINDOW", "10s")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.RateLimit.PerIP)
	assert.Equal(t, 10, cfg.RateLimit.PerCaller)
	assert.Equal(t, 10*time.Second, cfg.RateLimit.Window)
}

func TestFromEnvRejectsBadValues(t *testing.T) {
	t.Run("unparseable duration", func(t *testing.T) {
		t.Setenv("REGISTRY_CACHE_TTL", "soon")
		_, err := FromEnv()
		assert.ErrorContains(t, err, "REGISTRY_CACHE_TTL")
	})

	t.Run("non-positive duration", func(t *testing.T) {
		t.Setenv("OUTBOX_POLL_INTERVAL", "-1s")
		_, err := FromEnv()
		assert.ErrorContains(t, err, "OUTBOX_POLL_INTERVAL")
	})

	t.Run("negative rate limit", func(t *testing.T) {
		t.Setenv("RATE_LIMIT_PER_CALLER", "-5")
		_, err := FromEnv()
		assert.ErrorContains(t, err, "RATE_LIMIT_PER_CALLER")
	})

	t.Run("bad partition count", func(t *testing.T) {
		t.Setenv("KAFKA_PARTITIONS", "zero")
		_, err := FromEnv()
		assert.ErrorContains(t, err, "KAFKA_PARTITIONS")
	})
}
