package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the process settings read from the environment.
type Config struct {
	Port         string
	Environment  string
	LogLevel     slog.Level
	DatabaseURL  string
	RedisURL     string
	CacheTTL     time.Duration
	ProfileDir   string
	BatchWorkers int
}

// Load reads the server configuration from the environment.
// An empty DatabaseURL selects the in-memory store; an empty RedisURL
// disables the map cache.
func Load() (*Config, error) {
	ttl, err := time.ParseDuration(getEnv("CACHE_TTL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_TTL: %w", err)
	}
	workers, err := strconv.Atoi(getEnv("BATCH_WORKERS", "4"))
	if err != nil || workers < 1 {
		return nil, fmt.Errorf("invalid BATCH_WORKERS %q", os.Getenv("BATCH_WORKERS"))
	}

	return &Config{
		Port:         getEnv("PORT", "3000"),
		Environment:  getEnv("ENVIRONMENT", "development"),
		LogLevel:     parseLogLevel(getEnv("LOG_LEVEL", "info")),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		RedisURL:     os.Getenv("REDIS_URL"),
		CacheTTL:     ttl,
		ProfileDir:   os.Getenv("PROFILE_DIR"),
		BatchWorkers: workers,
	}, nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
