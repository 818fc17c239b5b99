// Package cache keeps recently generated or fetched maps in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/meikuraledutech/waymap"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "waymap:map:"

// MapCache stores whole maps as JSON under waymap:map:<id>.
type MapCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// New wraps an existing client. A zero ttl keeps entries until evicted.
func New(client *redis.Client, ttl time.Duration, logger *slog.Logger) *MapCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &MapCache{client: client, ttl: ttl, logger: logger}
}

// Dial creates a client for redisURL (redis://host:port/db).
func Dial(redisURL string, ttl time.Duration, logger *slog.Logger) (*MapCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("waymap: parse redis url: %w", err)
	}
	return New(redis.NewClient(opts), ttl, logger), nil
}

func key(mapID string) string { return keyPrefix + mapID }

// Ping checks that Redis is reachable.
func (c *MapCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("waymap: redis ping failed: %w", err)
	}
	return nil
}

// Get returns nil, nil on a cache miss.
func (c *MapCache) Get(ctx context.Context, mapID string) (*waymap.Map, error) {
	raw, err := c.client.Get(ctx, key(mapID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			c.logger.Debug("Map cache miss", "map_id", mapID)
			return nil, nil
		}
		c.logger.Error("Redis GET failed", "map_id", mapID, "error", err)
		return nil, fmt.Errorf("waymap: cache get: %w", err)
	}

	var m waymap.Map
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("waymap: cache decode: %w", err)
	}
	c.logger.Debug("Map cache hit", "map_id", mapID)
	return &m, nil
}

// Put stores m under its ID with the configured TTL.
func (c *MapCache) Put(ctx context.Context, m *waymap.Map) error {
	raw, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("waymap: cache encode: %w", err)
	}
	if err := c.client.Set(ctx, key(m.ID), raw, c.ttl).Err(); err != nil {
		c.logger.Error("Redis SET failed", "map_id", m.ID, "error", err)
		return fmt.Errorf("waymap: cache put: %w", err)
	}
	return nil
}

// Invalidate drops the cached copy of a map. Missing keys are not an error.
func (c *MapCache) Invalidate(ctx context.Context, mapID string) error {
	if err := c.client.Del(ctx, key(mapID)).Err(); err != nil {
		c.logger.Error("Redis DEL failed", "map_id", mapID, "error", err)
		return fmt.Errorf("waymap: cache invalidate: %w", err)
	}
	return nil
}

// Close closes the underlying client.
func (c *MapCache) Close() error {
	if err := c.client.Close(); err != nil {
		c.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	return nil
}
