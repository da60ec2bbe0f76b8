// Package cache provides a Redis-backed read-through cache for single tasks.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"taskflow/internal/models"
)

const keyPrefix = "task:"

// Cache stores serialized tasks under a key prefix with a fixed TTL. All failures
// are logged and treated as misses; the cache never breaks a request.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// New connects to Redis and verifies the connection.
func New(ctx context.Context, addr string, ttl time.Duration, logger *slog.Logger) (*Cache, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	return &Cache{client: client, ttl: ttl, logger: logger}, nil
}

// Close releases the Redis connection.
func (c *Cache) Close() error {
	return c.client.Close()
}

func taskKey(id int64) string {
	return keyPrefix + strconv.FormatInt(id, 10)
}

// GetTask returns the cached task and whether it was a hit.
func (c *Cache) GetTask(ctx context.Context, id int64) (models.Task, bool) {
	data, err := c.client.Get(ctx, taskKey(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("cache get failed", slog.Int64("id", id), slog.String("error", err.Error()))
		}
		return models.Task{}, false
	}

	var t models.Task
	if err := json.Unmarshal(data, &t); err != nil {
		c.logger.Warn("cache entry corrupt", slog.Int64("id", id), slog.String("error", err.Error()))
		return models.Task{}, false
	}
	return t, true
}

// SetTask stores a task under its id.
func (c *Cache) SetTask(ctx context.Context, t models.Task) {
	data, err := json.Marshal(t)
	if err != nil {
		c.logger.Warn("cache marshal failed", slog.Int64("id", t.ID), slog.String("error", err.Error()))
		return
	}
	if err := c.client.Set(ctx, taskKey(t.ID), data, c.ttl).Err(); err != nil {
		c.logger.Warn("cache set failed", slog.Int64("id", t.ID), slog.String("error", err.Error()))
	}
}

// InvalidateTask drops a task from the cache after a write.
func (c *Cache) InvalidateTask(ctx context.Context, id int64) {
	if err := c.client.Del(ctx, taskKey(id)).Err(); err != nil {
		c.logger.Warn("cache invalidate failed", slog.Int64("id", id), slog.String("error", err.Error()))
	}
}
