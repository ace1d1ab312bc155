package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"goride/internal/observability"
	"goride/internal/types"
)

const cacheKeyPrefix = "goride:oracle:"

// Cache memoises address lookups in Redis. Fare quotes are never cached: each
// catalog request must be priced fresh. Redis failures degrade to a direct call.
type Cache struct {
	next Oracle
	rdb  *redis.Client
	ttl  time.Duration
	log  *slog.Logger
}

func NewCache(next Oracle, rdb *redis.Client, ttl time.Duration, log *slog.Logger) *Cache {
	return &Cache{next: next, rdb: rdb, ttl: ttl, log: log}
}

func (c *Cache) Suggest(ctx context.Context, query string, near types.Point) ([]string, error) {
	key := fmt.Sprintf("%ssuggest:%.3f,%.3f:%s", cacheKeyPrefix, near.Lat, near.Lng, strings.ToLower(strings.TrimSpace(query)))

	var cached []string
	if c.get(ctx, key, &cached) {
		observability.OracleCacheHits.WithLabelValues("suggest").Inc()
		return cached, nil
	}

	out, err := c.next.Suggest(ctx, query, near)
	if err != nil {
		return nil, err
	}
	c.set(ctx, key, out)
	return out, nil
}

func (c *Cache) ReverseGeocode(ctx context.Context, at types.Point) (string, error) {
	key := fmt.Sprintf("%sreverse:%.5f,%.5f", cacheKeyPrefix, at.Lat, at.Lng)

	var cached string
	if c.get(ctx, key, &cached) {
		observability.OracleCacheHits.WithLabelValues("reverse_geocode").Inc()
		return cached, nil
	}

	out, err := c.next.ReverseGeocode(ctx, at)
	if err != nil {
		return "", err
	}
	c.set(ctx, key, out)
	return out, nil
}

func (c *Cache) PriceFares(ctx context.Context, pickup, dropoff string) ([]FareQuote, error) {
	return c.next.PriceFares(ctx, pickup, dropoff)
}

func (c *Cache) get(ctx context.Context, key string, dst any) bool {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("oracle cache read failed", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		c.log.Warn("oracle cache entry corrupt", "key", key, "error", err)
		return false
	}
	return true
}

func (c *Cache) set(ctx context.Context, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.log.Warn("oracle cache write failed", "key", key, "error", err)
	}
}
