package logger

import (
	"log/slog"
	"os"

	"github.com/meikuraledutech/waymap/internal/config"
)

// Setup configures the global slog logger based on environment
func Setup(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.Environment == "production" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// WithMapID scopes a logger to one map.
func WithMapID(logger *slog.Logger, mapID string) *slog.Logger {
	return logger.With("map_id", mapID)
}
