package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv string

	// Client core
	BackendBaseURL  string
	HTTPTimeout     time.Duration
	LocationTimeout time.Duration
	PollInterval    time.Duration
	SweepInterval   time.Duration

	// Mock backend
	Port              string
	DBDriver          string
	DSN               string
	JWTSecret         string
	RedisURL          string
	AlertTTL          time.Duration
	BatchWidenAfter   time.Duration
	IdempotencyWindow time.Duration
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv: getEnv("APP_ENV", "development"),

		BackendBaseURL: getEnv("BACKEND_BASE_URL", "http://localhost:8080/api"),

		Port:      getEnv("PORT", "8080"),
		DBDriver:  getEnv("DB_DRIVER", "sqlite"),
		DSN:       getEnv("DSN", "alertmock.db"),
		JWTSecret: getEnv("JWT_SECRET", "dev-secret"),
		RedisURL:  os.Getenv("REDIS_URL"),
	}

	// Parsing durations
	for _, d := range []struct {
		dst      *time.Duration
		key, def string
	}{
		{&cfg.HTTPTimeout, "HTTP_TIMEOUT", "10s"},
		{&cfg.LocationTimeout, "LOCATION_TIMEOUT", "5s"},
		{&cfg.PollInterval, "POLL_INTERVAL", "15s"},
		{&cfg.SweepInterval, "SWEEP_INTERVAL", "30s"},
		{&cfg.AlertTTL, "ALERT_TTL", "30m"},
		{&cfg.BatchWidenAfter, "BATCH_WIDEN_AFTER", "5m"},
		{&cfg.IdempotencyWindow, "IDEMPOTENCY_WINDOW", "1h"},
	} {
		v, err := time.ParseDuration(getEnv(d.key, d.def))
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", d.key, err)
		}
		*d.dst = v
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
