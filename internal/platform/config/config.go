package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the complete runtime configuration, read once at startup so
// main stays lean.
type Config struct {
	Discovery   DiscoveryConfig
	Detection   DetectionConfig
	Redis       RedisConfig
	Postgres    PostgresConfig
	Kafka       KafkaConfig
	OpenAI      OpenAIConfig
	ObjectStore ObjectStoreConfig
	Log         LogConfig
	// OpsAddr serves /metrics and /healthz when non-empty.
	OpsAddr string
	// FingerprintKey keys the BLAKE2b digests that stand in for identifiers in logs.
	FingerprintKey string
}

type DiscoveryConfig struct {
	Workers          int
	ConnectorTimeout time.Duration
	RateLimit        int
	RateWindow       time.Duration
	BreakerFailures  int
	BreakerCooldown  time.Duration
}

type DetectionConfig struct {
	MaxContentBytes      int
	MaxMatchesPerPattern int
	CacheEntries         int
	CatalogFile          string
	EnableOCR            bool
	EnableLLM            bool
}

type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type PostgresConfig struct {
	URL      string
	MaxConns int32
}

type KafkaConfig struct {
	Brokers  []string
	ClientID string
	// CreateTopics makes the client ensure audit topics exist on startup.
	CreateTopics bool
}

type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

type ObjectStoreConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	UseSSL    bool
}

type LogConfig struct {
	Level  string
	Format string
}

// FromEnv builds a Config from DSAR_* environment variables.
func FromEnv() (Config, error) {
	var errs envErrors
	cfg := Config{
		Discovery: DiscoveryConfig{
			Workers:          errs.int("DSAR_WORKERS", 4),
			ConnectorTimeout: errs.duration("DSAR_CONNECTOR_TIMEOUT", 30*time.Second),
			RateLimit:        errs.int("DSAR_RATE_LIMIT", 20),
			RateWindow:       errs.duration("DSAR_RATE_WINDOW", time.Minute),
			BreakerFailures:  errs.int("DSAR_BREAKER_FAILURES", 5),
			BreakerCooldown:  errs.duration("DSAR_BREAKER_COOLDOWN", 30*time.Second),
		},
		Detection: DetectionConfig{
			MaxContentBytes:      errs.int("DSAR_MAX_CONTENT_BYTES", 512_000),
			MaxMatchesPerPattern: errs.int("DSAR_MAX_MATCHES_PER_PATTERN", 500),
			CacheEntries:         errs.int("DSAR_DETECTION_CACHE", 256),
			CatalogFile:          os.Getenv("DSAR_CATALOG_FILE"),
			EnableOCR:            errs.bool("DSAR_ENABLE_OCR", false),
			EnableLLM:            errs.bool("DSAR_ENABLE_LLM", false),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("DSAR_REDIS_URL"),
			PoolSize:     errs.int("DSAR_REDIS_POOL_SIZE", 10),
			MinIdleConns: errs.int("DSAR_REDIS_MIN_IDLE", 2),
			DialTimeout:  errs.duration("DSAR_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  errs.duration("DSAR_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: errs.duration("DSAR_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Postgres: PostgresConfig{
			URL:      os.Getenv("DSAR_POSTGRES_URL"),
			MaxConns: int32(errs.int("DSAR_POSTGRES_MAX_CONNS", 10)),
		},
		Kafka: KafkaConfig{
			Brokers:      splitList(os.Getenv("DSAR_KAFKA_BROKERS")),
			ClientID:     envOr("DSAR_KAFKA_CLIENT_ID", "dsar"),
			CreateTopics: errs.bool("DSAR_KAFKA_CREATE_TOPICS", false),
		},
		OpenAI: OpenAIConfig{
			APIKey:  os.Getenv("DSAR_OPENAI_API_KEY"),
			BaseURL: os.Getenv("DSAR_OPENAI_BASE_URL"),
			Model:   os.Getenv("DSAR_OPENAI_MODEL"),
		},
		ObjectStore: ObjectStoreConfig{
			Endpoint:  os.Getenv("DSAR_OBJECTSTORE_ENDPOINT"),
			AccessKey: os.Getenv("DSAR_OBJECTSTORE_ACCESS_KEY"),
			SecretKey: os.Getenv("DSAR_OBJECTSTORE_SECRET_KEY"),
			Region:    os.Getenv("DSAR_OBJECTSTORE_REGION"),
			UseSSL:    errs.bool("DSAR_OBJECTSTORE_SSL", true),
		},
		Log: LogConfig{
			Level:  envOr("DSAR_LOG_LEVEL", "info"),
			Format: envOr("DSAR_LOG_FORMAT", "json"),
		},
		OpsAddr:        os.Getenv("DSAR_OPS_ADDR"),
		FingerprintKey: os.Getenv("DSAR_FINGERPRINT_KEY"),
	}
	if err := errs.err(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the pipeline cannot run with.
func (c Config) Validate() error {
	switch {
	case c.Discovery.Workers < 1:
		return fmt.Errorf("DSAR_WORKERS must be at least 1, got %d", c.Discovery.Workers)
	case c.Discovery.ConnectorTimeout <= 0:
		return fmt.Errorf("DSAR_CONNECTOR_TIMEOUT must be positive")
	case c.Discovery.RateLimit < 1 || c.Discovery.RateWindow <= 0:
		return fmt.Errorf("DSAR_RATE_LIMIT and DSAR_RATE_WINDOW must be positive")
	case c.Detection.MaxContentBytes < 1 || c.Detection.MaxMatchesPerPattern < 1:
		return fmt.Errorf("detection limits must be positive")
	case c.Detection.EnableLLM && c.OpenAI.APIKey == "":
		return fmt.Errorf("DSAR_ENABLE_LLM requires DSAR_OPENAI_API_KEY")
	}
	return nil
}

type envErrors []error

func (e *envErrors) int(key string, def int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		*e = append(*e, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return v
}

func (e *envErrors) bool(key string, def bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		*e = append(*e, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return v
}

func (e *envErrors) duration(key string, def time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		*e = append(*e, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return v
}

func (e envErrors) err() error {
	if len(e) == 0 {
		return nil
	}
	return fmt.Errorf("invalid configuration: %w", e[0])
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
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
