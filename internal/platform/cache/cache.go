package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const versionKey = "gatehouse:cache:version"

// ErrMiss indicates the key was absent or could not be decoded.
var ErrMiss = errors.New("cache: miss")

// Cache is a versioned JSON cache. Bumping the version invalidates every
// key at once, which is how the partner backfill drops stale supplier
// listings without enumerating keys. A nil Cache is a no-op.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache wraps a Redis client with default TTL behaviour.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Version returns the current cache version, initialising it when missing.
func (c *Cache) Version(ctx context.Context) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, versionKey).Int64()
	if err == redis.Nil {
		if err := c.client.Set(ctx, versionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	return ver, nil
}

// Bump invalidates all cached entries by advancing the version.
func (c *Cache) Bump(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Incr(ctx, versionKey).Err()
}

// BuildKey composes a cache key including the current version.
func (c *Cache) BuildKey(ctx context.Context, parts ...string) (string, error) {
	joined := strings.Join(parts, ":")
	if c == nil || c.client == nil {
		return joined, nil
	}
	ver, err := c.Version(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:%d", joined, ver), nil
}

// GetJSON loads a key and decodes it into target. Returns ErrMiss when absent.
func (c *Cache) GetJSON(ctx context.Context, key string, target any) error {
	if c == nil || c.client == nil {
		return ErrMiss
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return ErrMiss
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return ErrMiss
	}
	return nil
}

// SetJSON stores a value under key with the configured TTL.
func (c *Cache) SetJSON(ctx context.Context, key string, value any) error {
	if c == nil || c.client == nil {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, raw, c.ttl).Err()
}
