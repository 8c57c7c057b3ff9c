package reports

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hospitaldao/appointments-api/pkg/logging"
)

// Cache keeps report payloads in Redis for a short TTL; the aggregates scan
// the appointments table so repeated dashboard polls shouldn't hit Postgres.
// A nil *Cache disables caching entirely.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger *logging.Logger
}

// NewCache creates a report cache. Returns nil when no client is configured,
// which callers treat as cache-off.
func NewCache(client *redis.Client, ttl time.Duration, logger *logging.Logger) *Cache {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Cache{client: client, ttl: ttl, logger: logger}
}

// Get loads a cached payload into dest. Returns false on miss or any cache
// error; the caller falls through to the store.
func (c *Cache) Get(ctx context.Context, key string, dest any) bool {
	if c == nil {
		return false
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("report cache read failed", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		c.logger.Warn("report cache payload corrupt", "key", key, "error", err)
		return false
	}
	return true
}

// Set stores a payload under the cache TTL. Failures are logged only; the
// response was already computed.
func (c *Cache) Set(ctx context.Context, key string, payload any) {
	if c == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		c.logger.Warn("report cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("report cache write failed", "key", key, "error", err)
	}
}
