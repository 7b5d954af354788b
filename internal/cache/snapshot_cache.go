// Package cache keeps the active configuration snapshot in Redis so that
// several API replicas share one copy instead of each re-reading every
// configuration table on boot.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shakespeare-advisor/advisor-engine/internal/scoring"
)

// SnapshotKey is the Redis key holding the JSON-encoded snapshot.
const SnapshotKey = "advisor:snapshot"

// DefaultTTL applies when NewSnapshotCache is given a non-positive ttl.
const DefaultTTL = 10 * time.Minute

// SnapshotCache handles Redis operations for the configuration snapshot.
type SnapshotCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSnapshotCache creates a snapshot cache over client.
func NewSnapshotCache(client *redis.Client, ttl time.Duration) *SnapshotCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &SnapshotCache{client: client, ttl: ttl}
}

// Connect parses a redis:// URL, opens a client and pings it.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("cache: parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("cache: ping redis: %w", err)
	}
	return client, nil
}

// Get returns the cached snapshot data, or nil without error on a miss.
func (c *SnapshotCache) Get(ctx context.Context) (*scoring.SnapshotData, error) {
	b, err := c.client.Get(ctx, SnapshotKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache: get snapshot: %w", err)
	}
	var data scoring.SnapshotData
	if err := json.Unmarshal(b, &data); err != nil {
		return nil, fmt.Errorf("cache: decode snapshot: %w", err)
	}
	return &data, nil
}

// Set stores data under SnapshotKey with the cache TTL.
func (c *SnapshotCache) Set(ctx context.Context, data scoring.SnapshotData) error {
	b, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("cache: encode snapshot: %w", err)
	}
	if err := c.client.Set(ctx, SnapshotKey, b, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache: set snapshot: %w", err)
	}
	return nil
}

// Invalidate drops the cached snapshot. Deleting a missing key is not an
// error.
func (c *SnapshotCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, SnapshotKey).Err(); err != nil {
		return fmt.Errorf("cache: invalidate snapshot: %w", err)
	}
	return nil
}
