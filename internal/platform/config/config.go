package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr          string
	JWTSigningKey string
	JWTIssuer     string
	// TokenTTL is the longest token lifetime (exp - iat) the server accepts.
	TokenTTL time.Duration
}

// DatabaseConfig selects the Postgres backend. An empty URL keeps the
// registry in memory.
type DatabaseConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
}

// RedisConfig configures the shared read cache. An empty URL disables Redis.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures notification delivery. No brokers disables Kafka.
type KafkaConfig struct {
	Brokers            []string
	Topic              string
	Partitions         int32
	ReplicationFactor  int16
	OutboxPollInterval time.Duration
}

// RegistryConfig holds registry behaviour settings.
type RegistryConfig struct {
	CacheTTL time.Duration
	// Deployer, when set, constructs the registry at startup with this owner.
	Deployer string
}

// RateLimitConfig caps requests per window. Zero disables a limit.
type RateLimitConfig struct {
	PerIP     int
	PerCaller int
	Window    time.Duration
}

// ScreeningConfig configures the wallet screening providers. The built-in
// sanctions list is always active; the other providers are enabled by their
// credentials.
type ScreeningConfig struct {
	// SanctionsListFile is a JSON list of extra sanctioned addresses.
	SanctionsListFile string
	OFACURL           string
	OFACAPIKey        string
	AlchemyURL        string
	ChainalysisURL    string
	ChainalysisAPIKey string
	EtherscanURL      string
	EtherscanAPIKey   string
	ProviderTimeout   time.Duration
	// CacheTTL keeps complete reports. Zero disables the report cache.
	CacheTTL time.Duration
}

type Config struct {
	Server    Server
	Database  DatabaseConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Registry  RegistryConfig
	RateLimit RateLimitConfig
	Screening ScreeningConfig
	LogLevel  string
}

// Enabled reports whether a broker is configured.
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

// AlchemyEnabled reports whether on-chain analytics is configured.
func (s ScreeningConfig) AlchemyEnabled() bool {
	return s.AlchemyURL != ""
}

// ChainalysisEnabled reports whether the Chainalysis provider is configured.
func (s ScreeningConfig) ChainalysisEnabled() bool {
	return s.ChainalysisURL != "" && s.ChainalysisAPIKey != ""
}

// EtherscanEnabled reports whether the Etherscan provider is configured.
func (s ScreeningConfig) EtherscanEnabled() bool {
	return s.EtherscanAPIKey != ""
}

// FromEnv builds the process config from environment variables so main stays lean.
func FromEnv() (Config, error) {
	cacheTTL, err := durationEnv("REGISTRY_CACHE_TTL", 5*time.Minute)
	if err != nil {
		return Config{}, err
	}
	pollInterval, err := durationEnv("OUTBOX_POLL_INTERVAL", time.Second)
	if err != nil {
		return Config{}, err
	}
	tokenTTL, err := durationEnv("JWT_TOKEN_TTL", time.Hour)
	if err != nil {
		return Config{}, err
	}
	partitions, err := intEnv("KAFKA_PARTITIONS", 1)
	if err != nil {
		return Config{}, err
	}
	replication, err := intEnv("KAFKA_REPLICATION_FACTOR", 1)
	if err != nil {
		return Config{}, err
	}

	ipLimit, err := limitEnv("RATE_LIMIT_PER_IP", 600)
	if err != nil {
		return Config{}, err
	}
	callerLimit, err := limitEnv("RATE_LIMIT_PER_CALLER", 60)
	if err != nil {
		return Config{}, err
	}
	limitWindow, err := durationEnv("RATE_LIMIT_WINDOW", time.Minute)
	if err != nil {
		return Config{}, err
	}

	screeningTimeout, err := durationEnv("SCREENING_TIMEOUT", 5*time.Second)
	if err != nil {
		return Config{}, err
	}
	screeningCacheTTL, err := ttlEnv("SCREENING_CACHE_TTL", 5*time.Minute)
	if err != nil {
		return Config{}, err
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	return Config{
		Server: Server{
			Addr:          getEnv("REGISTRY_ADDR", ":8080"),
			JWTSigningKey: jwtSigningKey,
			JWTIssuer:     getEnv("JWT_ISSUER", "walletreg"),
			TokenTTL:      tokenTTL,
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: 10,
			MaxIdleConns: 5,
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers:            splitList(os.Getenv("KAFKA_BROKERS")),
			Topic:              getEnv("KAFKA_TOPIC", "wallet-verifications"),
			Partitions:         int32(partitions),
			ReplicationFactor:  int16(replication),
			OutboxPollInterval: pollInterval,
		},
		Registry: RegistryConfig{
			CacheTTL: cacheTTL,
			Deployer: os.Getenv("REGISTRY_DEPLOYER"),
		},
		RateLimit: RateLimitConfig{
			PerIP:     ipLimit,
			PerCaller: callerLimit,
			Window:    limitWindow,
		},
		Screening: ScreeningConfig{
			SanctionsListFile: os.Getenv("SANCTIONS_LIST_FILE"),
			OFACURL:           os.Getenv("OFAC_API_URL"),
			OFACAPIKey:        os.Getenv("OFAC_API_KEY"),
			AlchemyURL:        alchemyURL(),
			ChainalysisURL:    os.Getenv("CHAINALYSIS_API_URL"),
			ChainalysisAPIKey: os.Getenv("CHAINALYSIS_API_KEY"),
			EtherscanURL:      os.Getenv("ETHERSCAN_API_URL"),
			EtherscanAPIKey:   os.Getenv("ETHERSCAN_API_KEY"),
			ProviderTimeout:   screeningTimeout,
			CacheTTL:          screeningCacheTTL,
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}, nil
}

// alchemyURL prefers an explicit ALCHEMY_URL and otherwise derives the
// mainnet endpoint from ALCHEMY_API_KEY.
func alchemyURL() string {
	if url := os.Getenv("ALCHEMY_URL"); url != "" {
		return url
	}
	if key := os.Getenv("ALCHEMY_API_KEY"); key != "" {
		return "https://eth-mainnet.g.alchemy.com/v2/" + key
	}
	return ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}
	return d, nil
}

// ttlEnv is durationEnv that also accepts 0.
func ttlEnv(key string, fallback time.Duration) (time.Duration, error) {
	if os.Getenv(key) == "0" {
		return 0, nil
	}
	return durationEnv(key, fallback)
}

func intEnv(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}
	return n, nil
}

// limitEnv is intEnv that also accepts 0.
func limitEnv(key string, fallback int) (int, error) {
	if os.Getenv(key) == "0" {
		return 0, nil
	}
	return intEnv(key, fallback)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
