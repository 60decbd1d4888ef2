// internal/dataaccess/cache.go
package dataaccess

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"support-chatbot/internal/common/logger"
	"support-chatbot/internal/common/metrics"
	"support-chatbot/internal/models"
)

// CachedStore wraps a DataAccess and keeps the aggregate queries in Redis.
// Per-order, per-product and conversation calls pass straight through.
type CachedStore struct {
	DataAccess
	redis  *redis.Client
	ttl    time.Duration
	prefix string
	logger logger.Logger
}

func NewCachedStore(next DataAccess, client *redis.Client, ttl time.Duration, prefix string, log logger.Logger) *CachedStore {
	return &CachedStore{
		DataAccess: next,
		redis:      client,
		ttl:        ttl,
		prefix:     prefix,
		logger:     log.WithFields(map[string]interface{}{"component": "cached-store"}),
	}
}

func (c *CachedStore) TopProducts(ctx context.Context, limit int) ([]models.ProductView, error) {
	limit = topProductsLimit(limit)
	return readThrough(ctx, c, "top_products", fmt.Sprintf("top_products:%d", limit), func() ([]models.ProductView, error) {
		return c.DataAccess.TopProducts(ctx, limit)
	})
}

func (c *CachedStore) LowStock(ctx context.Context, threshold int) ([]models.ProductView, error) {
	return readThrough(ctx, c, "low_stock", fmt.Sprintf("low_stock:%d", threshold), func() ([]models.ProductView, error) {
		return c.DataAccess.LowStock(ctx, threshold)
	})
}

func (c *CachedStore) SalesAnalytics(ctx context.Context) (*models.AnalyticsView, error) {
	return readThrough(ctx, c, "sales_analytics", "sales_analytics", func() (*models.AnalyticsView, error) {
		return c.DataAccess.SalesAnalytics(ctx)
	})
}

// readThrough serves key from Redis when present, otherwise calls load and
// stores the result. Redis errors only cost the cache; they never fail the call.
func readThrough[T any](ctx context.Context, c *CachedStore, kind, key string, load func() (T, error)) (T, error) {
	fullKey := c.prefix + key

	if val, err := c.redis.Get(ctx, fullKey).Result(); err == nil {
		var cached T
		if jsonErr := json.Unmarshal([]byte(val), &cached); jsonErr == nil {
			metrics.CacheRequestsTotal.WithLabelValues(kind, "hit").Inc()
			return cached, nil
		}
		c.logger.Warn("discarding undecodable cache entry", map[string]interface{}{"key": fullKey})
	} else if !errors.Is(err, redis.Nil) {
		metrics.CacheRequestsTotal.WithLabelValues(kind, "error").Inc()
		c.logger.Warn("cache read failed", map[string]interface{}{"key": fullKey, "error": err.Error()})
	}
	metrics.CacheRequestsTotal.WithLabelValues(kind, "miss").Inc()

	result, err := load()
	if err != nil {
		return result, err
	}

	data, err := json.Marshal(result)
	if err != nil {
		return result, nil
	}
	if err := c.redis.Set(ctx, fullKey, data, c.ttl).Err(); err != nil {
		c.logger.Warn("cache write failed", map[string]interface{}{"key": fullKey, "error": err.Error()})
	}
	return result, nil
}
