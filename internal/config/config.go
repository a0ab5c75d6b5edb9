package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/light-bringer/inventory-service/internal/pkg/logger"
)

// Store drivers.
const (
	StoreMemory  = "memory"
	StoreSpanner = "spanner"
)

// Config holds application configuration.
type Config struct {
	Server  ServerConfig
	Logger  logger.Config
	Store   StoreConfig
	Spanner SpannerConfig
	Redis   RedisConfig
	Kafka   KafkaConfig
	Outbox  OutboxConfig
	Tracing TracingConfig
	Ledger  LedgerConfig
}

type ServerConfig struct {
	AppEnv          string
	HTTPPort        string
	GRPCPort        string
	ShutdownTimeout time.Duration
	RequestTimeout  time.Duration
}

type StoreConfig struct {
	Driver string
}

type SpannerConfig struct {
	Database string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	CacheTTL time.Duration
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

type OutboxConfig struct {
	RelaySchedule          string
	RelayBatchSize         int
	CleanupSchedule        string
	CompletedRetentionDays int
	FailedRetentionDays    int
	MaxRetries             int64
}

type TracingConfig struct {
	Endpoint    string
	Insecure    bool
	SampleRatio float64
}

// LedgerConfig tunes the optimistic retry loop of the Spanner ledger.
type LedgerConfig struct {
	MaxRetries   int
	RetryBackoff time.Duration
}

// Load reads an optional .env file, then environment variables with defaults.
func Load() (*Config, error) {
	// .env is optional; a missing file is not an error.
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			AppEnv:          getEnv("APP_ENV", "dev"),
			HTTPPort:        getEnv("HTTP_PORT", "8080"),
			GRPCPort:        getEnv("GRPC_PORT", "9090"),
			ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
			RequestTimeout:  getEnvDuration("REQUEST_TIMEOUT", 5*time.Second),
		},
		Logger: logger.Config{
			Level:             getEnv("LOGGER_LEVEL", "info"),
			Encoding:          getEnv("LOGGER_ENCODING", "json"),
			DisableCaller:     getEnvBool("LOGGER_DISABLE_CALLER", false),
			DisableStacktrace: getEnvBool("LOGGER_DISABLE_STACKTRACE", true),
		},
		Store: StoreConfig{
			Driver: getEnv("STORE_DRIVER", StoreMemory),
		},
		Spanner: SpannerConfig{
			// Default for local development with emulator
			Database: getEnv("SPANNER_DATABASE", "projects/test-project/instances/dev-instance/databases/inventory-db"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			CacheTTL: getEnvDuration("REDIS_CACHE_TTL", 5*time.Minute),
		},
		Kafka: KafkaConfig{
			Brokers: getEnvSlice("KAFKA_BROKERS", nil),
			Topic:   getEnv("KAFKA_TOPIC_INVENTORY", "inventory.events"),
		},
		Outbox: OutboxConfig{
			RelaySchedule:          getEnv("OUTBOX_RELAY_SCHEDULE", "@every 10s"),
			RelayBatchSize:         getEnvInt("OUTBOX_RELAY_BATCH_SIZE", 100),
			CleanupSchedule:        getEnv("OUTBOX_CLEANUP_SCHEDULE", "0 3 * * *"),
			CompletedRetentionDays: getEnvInt("OUTBOX_COMPLETED_RETENTION_DAYS", 30),
			FailedRetentionDays:    getEnvInt("OUTBOX_FAILED_RETENTION_DAYS", 90),
			MaxRetries:             int64(getEnvInt("OUTBOX_MAX_RETRIES", 5)),
		},
		Tracing: TracingConfig{
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Insecure:    getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", true),
			SampleRatio: getEnvFloat("OTEL_TRACES_SAMPLE_RATIO", 1),
		},
		Ledger: LedgerConfig{
			MaxRetries:   getEnvInt("LEDGER_MAX_RETRIES", 5),
			RetryBackoff: getEnvDuration("LEDGER_RETRY_BACKOFF", 10*time.Millisecond),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks combinations that cannot be defaulted.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case StoreMemory:
	case StoreSpanner:
		if c.Spanner.Database == "" {
			return fmt.Errorf("SPANNER_DATABASE is required for the spanner store")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver)
	}
	if c.Ledger.MaxRetries < 1 {
		return fmt.Errorf("LEDGER_MAX_RETRIES must be at least 1")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return fallback
}
