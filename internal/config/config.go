package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins []string

	// BaseURL is the client-facing URL used to build deep links in emails,
	// not necessarily the address the server listens on.
	BaseURL string

	RedisURL string

	MeiliSearchHost string
	MeiliMasterKey  string

	EmailFromAddress string
	EmailAPIKey      string

	// JanitorSchedule is a cron expression; NotificationTTL is how long
	// notification rows are kept before the sweep deletes them.
	JanitorSchedule string
	NotificationTTL time.Duration

	RateLimitApply time.Duration
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:3000"), ","),

		BaseURL: getEnv("BASE_URL", "http://localhost:3000"),

		RedisURL: os.Getenv("REDIS_URL"),

		MeiliSearchHost: getEnv("MEILISEARCH_HOST", "http://localhost:7700"),
		MeiliMasterKey:  os.Getenv("MEILI_MASTER_KEY"),

		EmailFromAddress: getEnv("EMAIL_FROM_ADDRESS", "Hirewire <no-reply@example.com>"),
		EmailAPIKey:      os.Getenv("EMAIL_API_KEY"),

		JanitorSchedule: getEnv("JANITOR_SCHEDULE", "0 0 * * *"),
	}

	var err error
	cfg.NotificationTTL, err = time.ParseDuration(getEnv("NOTIFICATION_TTL", "96h"))
	if err != nil {
		return nil, fmt.Errorf("invalid NOTIFICATION_TTL: %w", err)
	}
	cfg.RateLimitApply, err = time.ParseDuration(getEnv("RATE_LIMIT_APPLY", "1m"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_APPLY: %w", err)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
