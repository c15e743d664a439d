package flightinfo

import (
	"context"
	"encoding/json"
	"time"

	"github.com/flightops/groundboard/internal/core/domain"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const cacheKey = "flightinfo:list"

// Cache holds a short-lived snapshot of the flight list in Redis so the
// per-candidate nearest queries inside one discovery tick don't re-fetch the
// whole list from the panel. A cache failure is never an error: callers fall
// through to the live client.
type Cache struct {
	client redis.UniversalClient
	ttl    time.Duration
	log    *zap.Logger
}

// NewCache creates a flight list cache with the given snapshot TTL
func NewCache(client redis.UniversalClient, ttl time.Duration, log *zap.Logger) *Cache {
	if ttl <= 0 {
		ttl = 3 * time.Second
	}
	return &Cache{client: client, ttl: ttl, log: log}
}

// Get returns the cached snapshot and whether it was usable
func (c *Cache) Get(ctx context.Context) ([]domain.Flight, bool) {
	val, err := c.client.Get(ctx, cacheKey).Result()
	if err != nil {
		if err != redis.Nil {
			c.log.Debug("Flight cache read failed", zap.Error(err))
		}
		return nil, false
	}

	var flights []domain.Flight
	if err := json.Unmarshal([]byte(val), &flights); err != nil {
		c.log.Warn("Discarding unparsable flight cache entry", zap.Error(err))
		return nil, false
	}
	return flights, true
}

// Set stores a fresh snapshot under the TTL
func (c *Cache) Set(ctx context.Context, flights []domain.Flight) {
	data, err := json.Marshal(flights)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, cacheKey, data, c.ttl).Err(); err != nil {
		c.log.Debug("Flight cache write failed", zap.Error(err))
	}
}
