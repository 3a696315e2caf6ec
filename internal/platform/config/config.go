// Package config builds the service configuration from the environment once
// at startup. The resulting struct is passed into constructors; nothing reads
// the environment after boot.
package config

import (
	"os"
	"strings"
	"time"
)

// Config captures everything the server needs.
type Config struct {
	Addr          string
	DatabaseURL   string
	JWTSigningKey string

	IncomeSourceURL     string
	IncomeSourceAPIKey  string
	IncomeSourceTimeout time.Duration

	KafkaBrokers []string
	UsageTopic   string
	UsageGroup   string
	UsageGrace   time.Duration

	Retention       time.Duration
	JanitorInterval time.Duration
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	return Config{
		Addr:          envOr("INNTEKTLAGER_ADDR", ":8080"),
		DatabaseURL:   envOr("DATABASE_URL", "postgres://localhost:5432/inntektlager?sslmode=disable"),
		JWTSigningKey: envOr("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),

		IncomeSourceURL:     envOr("INCOME_SOURCE_URL", "http://localhost:8090"),
		IncomeSourceAPIKey:  os.Getenv("INCOME_SOURCE_API_KEY"),
		IncomeSourceTimeout: durationOr("INCOME_SOURCE_TIMEOUT", 15*time.Second),

		KafkaBrokers: strings.Split(envOr("KAFKA_BROKERS", "localhost:9092"), ","),
		UsageTopic:   envOr("USAGE_TOPIC", "teamdagpenger.inntektbruk.v1"),
		UsageGroup:   envOr("USAGE_GROUP", "inntektlager-v1"),
		UsageGrace:   durationOr("USAGE_GRACE", 3*time.Hour),

		Retention:       durationOr("RECORD_RETENTION", 180*24*time.Hour),
		JanitorInterval: durationOr("JANITOR_INTERVAL", 12*time.Hour),
	}
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}
