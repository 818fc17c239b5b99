package main

import (
	"context"
	"log/slog"
	"maps"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/meikuraledutech/waymap"
	"github.com/meikuraledutech/waymap/api"
	"github.com/meikuraledutech/waymap/cache"
	"github.com/meikuraledutech/waymap/internal/config"
	"github.com/meikuraledutech/waymap/internal/logger"
	"github.com/meikuraledutech/waymap/memory"
	"github.com/meikuraledutech/waymap/postgres"
	"github.com/meikuraledutech/waymap/profile"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	log := logger.Setup(cfg)
	ctx := context.Background()

	// ── Store ─────────────────────────────────────────────────────────
	var store waymap.Store
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		pg := postgres.New(pool)
		if err := pg.CreateSchema(ctx); err != nil {
			log.Error("Failed to create schema", "error", err)
			os.Exit(1)
		}
		store = pg
		log.Info("Using PostgreSQL store")
	} else {
		store = memory.New()
		log.Info("DATABASE_URL not set, using in-memory store")
	}

	// ── Cache ─────────────────────────────────────────────────────────
	opts := api.Options{
		Store:   store,
		Workers: cfg.BatchWorkers,
		Logger:  log,
	}
	if cfg.RedisURL != "" {
		mc, err := cache.Dial(cfg.RedisURL, cfg.CacheTTL, log)
		if err != nil {
			log.Error("Failed to configure cache", "error", err)
			os.Exit(1)
		}
		defer mc.Close()

		if err := mc.Ping(ctx); err != nil {
			log.Warn("Redis unreachable, continuing without cache", "error", err)
		} else {
			opts.Cache = mc
			log.Info("Map cache enabled", "ttl", cfg.CacheTTL)
		}
	}

	// ── Profiles ──────────────────────────────────────────────────────
	profiles := profile.Builtin()
	if cfg.ProfileDir != "" {
		loaded, err := profile.LoadDir(cfg.ProfileDir)
		if err != nil {
			log.Error("Failed to load profiles", "dir", cfg.ProfileDir, "error", err)
			os.Exit(1)
		}
		maps.Copy(profiles, loaded)
	}
	opts.Profiles = profiles
	log.Info("Profiles loaded", "count", len(profiles))

	app := api.New(opts)

	log.Info("Starting server", "port", cfg.Port, "environment", cfg.Environment)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}
