package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ncobase/recruit/data/metrics"
	"github.com/redis/go-redis/v9"
)

// ICache defines a general caching interface
type ICache[T any] interface {
	Get(context.Context, string) (*T, error)
	Set(context.Context, string, *T, ...time.Duration) error
	Delete(context.Context, string) error
}

// Cache stores JSON encoded values under a key prefix. A nil redis client
// turns every operation into a miss or a no-op.
type Cache[T any] struct {
	rc        *redis.Client
	prefix    string
	ttl       time.Duration
	collector metrics.Collector
}

// NewCache creates a new Cache instance
func NewCache[T any](rc *redis.Client, prefix string, ttl time.Duration, collector metrics.Collector) *Cache[T] {
	if collector == nil {
		collector = metrics.NoOpCollector{}
	}
	return &Cache[T]{rc: rc, prefix: prefix, ttl: ttl, collector: collector}
}

// Key returns the full redis key for field.
func (c *Cache[T]) Key(field string) string {
	return fmt.Sprintf("%s:%s", c.prefix, field)
}

// Enabled reports whether a redis client is attached.
func (c *Cache[T]) Enabled() bool {
	return c != nil && c.rc != nil
}

// Get retrieves a single item. A miss returns nil without error.
func (c *Cache[T]) Get(ctx context.Context, field string) (*T, error) {
	if !c.Enabled() {
		return nil, nil
	}

	result, err := c.rc.Get(ctx, c.Key(field)).Result()
	if errors.Is(err, redis.Nil) {
		c.collector.RedisCommand("get", nil)
		return nil, nil
	}
	c.collector.RedisCommand("get", err)
	if err != nil {
		return nil, fmt.Errorf("failed to get cache: %w", err)
	}

	var row T
	if err = json.Unmarshal([]byte(result), &row); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache data: %w", err)
	}
	return &row, nil
}

// Set saves a single item, expire overrides the default ttl.
func (c *Cache[T]) Set(ctx context.Context, field string, data *T, expire ...time.Duration) error {
	if !c.Enabled() {
		return nil
	}

	bytes, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}
	exp := c.ttl
	if len(expire) > 0 {
		exp = expire[0]
	}

	err = c.rc.Set(ctx, c.Key(field), bytes, exp).Err()
	c.collector.RedisCommand("set", err)
	if err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Delete removes an item
func (c *Cache[T]) Delete(ctx context.Context, field string) error {
	if !c.Enabled() {
		return nil
	}
	err := c.rc.Del(ctx, c.Key(field)).Err()
	c.collector.RedisCommand("del", err)
	if err != nil {
		return fmt.Errorf("failed to delete cache: %w", err)
	}
	return nil
}
