// Package cache provides an optional Redis-backed verdict cache.
// Scoring is deterministic for a given URL, trust configuration and
// model version, so repeated scans of the same URL can be served from
// cache without changing any observable result.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/phishguard/phishguard/pkg/engine"
)

// DefaultTTL bounds verdict staleness. Trust lists and models change
// rarely; an hour is a comfortable ceiling.
const DefaultTTL = time.Hour

// VerdictCache stores scan reports keyed by URL.
type VerdictCache struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to the Redis instance at addr. ttl <= 0 selects
// DefaultTTL.
func New(addr, password string, db int, ttl time.Duration) *VerdictCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &VerdictCache{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
		ttl: ttl,
	}
}

// Ping verifies connectivity.
func (c *VerdictCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func key(url string) string {
	sum := sha256.Sum256([]byte(url))
	return "phishguard:verdict:" + hex.EncodeToString(sum[:16])
}

// Get returns the cached report for url, or nil on miss or any
// backend error. Cache trouble degrades to a fresh scan, never to a
// failed request.
func (c *VerdictCache) Get(ctx context.Context, url string) *engine.Report {
	data, err := c.client.Get(ctx, key(url)).Bytes()
	if err != nil {
		return nil
	}
	var r engine.Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil
	}
	return &r
}

// Set stores the report. Failures are ignored.
func (c *VerdictCache) Set(ctx context.Context, url string, r *engine.Report) {
	data, err := json.Marshal(r)
	if err != nil {
		return
	}
	c.client.Set(ctx, key(url), data, c.ttl)
}

// Close releases the Redis connection.
func (c *VerdictCache) Close() error {
	return c.client.Close()
}
