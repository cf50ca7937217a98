// Package config builds runtime configuration from the environment so main
// stays lean. Every knob has a default; invalid overrides fall back rather
// than failing startup.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr          string
	Environment   string
	JWTSigningKey string
	TokenIssuer   string
	TokenTTL      time.Duration
}

// Store selects and configures the persistence backend.
type Store struct {
	// Driver is "memory" or "postgres".
	Driver      string
	DatabaseURL string
	RedisURL    string
}

// RedisConfig tunes the optional redis client used for alert dedup.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Kafka configures the optional alert stream.
type Kafka struct {
	Brokers    string
	AlertTopic string
}

// Fraud carries the rule thresholds and the submission gate settings.
type Fraud struct {
	MaxDailyApplications int
	SharedDomainLimit    int
	MinAmount            decimal.Decimal
	MaxAmount            decimal.Decimal
	HighRiskAmount       decimal.Decimal
	HighRiskBirthYear    int
	CooldownWindow       time.Duration
}

// Alert configures fraud alert delivery.
type Alert struct {
	Recipients []string
	DedupTTL   time.Duration
}

// Audit configures the async audit publisher.
type Audit struct {
	BufferSize int
}

type Config struct {
	Server Server
	Store  Store
	Kafka  Kafka
	Fraud  Fraud
	Alert  Alert
	Audit  Audit
	Seed   bool
}

// FromEnv builds the full configuration from FIDES_* environment variables.
func FromEnv() Config {
	return Config{
		Server: Server{
			Addr:          envOr("FIDES_ADDR", ":8080"),
			Environment:   envOr("FIDES_ENV", "development"),
			JWTSigningKey: envOr("FIDES_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
			TokenIssuer:   envOr("FIDES_TOKEN_ISSUER", "fides"),
			TokenTTL:      envDuration("FIDES_TOKEN_TTL", 15*time.Minute),
		},
		Store: Store{
			Driver:      envOr("FIDES_STORE", "memory"),
			DatabaseURL: os.Getenv("FIDES_DATABASE_URL"),
			RedisURL:    os.Getenv("FIDES_REDIS_URL"),
		},
		Kafka: Kafka{
			Brokers:    os.Getenv("FIDES_KAFKA_BROKERS"),
			AlertTopic: envOr("FIDES_KAFKA_ALERT_TOPIC", "fides.fraud.alerts"),
		},
		Fraud: Fraud{
			MaxDailyApplications: envInt("FIDES_FRAUD_MAX_DAILY_APPLICATIONS", 3),
			SharedDomainLimit:    envInt("FIDES_FRAUD_SHARED_DOMAIN_LIMIT", 10),
			MinAmount:            envDecimal("FIDES_LOAN_MIN_AMOUNT", decimal.New(1000, 0)),
			MaxAmount:            envDecimal("FIDES_FRAUD_MAX_AMOUNT", decimal.New(5_000_000, 0)),
			HighRiskAmount:       envDecimal("FIDES_FRAUD_HIGH_RISK_AMOUNT", decimal.New(1_000_000, 0)),
			HighRiskBirthYear:    envInt("FIDES_FRAUD_HIGH_RISK_BIRTH_YEAR", 2000),
			CooldownWindow:       envDuration("FIDES_LOAN_COOLDOWN_WINDOW", 24*time.Hour),
		},
		Alert: Alert{
			Recipients: envList("FIDES_ALERT_RECIPIENTS"),
			DedupTTL:   envDuration("FIDES_ALERT_DEDUP_TTL", time.Hour),
		},
		Audit: Audit{
			BufferSize: envInt("FIDES_AUDIT_BUFFER_SIZE", 256),
		},
		Seed: os.Getenv("FIDES_SEED") == "true",
	}
}

// Redis expands the store settings into redis client configuration.
func (c Config) Redis() RedisConfig {
	return RedisConfig{
		URL:          c.Store.RedisURL,
		PoolSize:     envInt("FIDES_REDIS_POOL_SIZE", 10),
		MinIdleConns: envInt("FIDES_REDIS_MIN_IDLE_CONNS", 2),
		DialTimeout:  envDuration("FIDES_REDIS_DIAL_TIMEOUT", 5*time.Second),
		ReadTimeout:  envDuration("FIDES_REDIS_READ_TIMEOUT", 3*time.Second),
		WriteTimeout: envDuration("FIDES_REDIS_WRITE_TIMEOUT", 3*time.Second),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDecimal(key string, fallback decimal.Decimal) decimal.Decimal {
	if v := os.Getenv(key); v != "" {
		if d, err := decimal.NewFromString(v); err == nil {
			return d
		}
	}
	return fallback
}

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
