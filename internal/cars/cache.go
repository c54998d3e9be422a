package cars

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/carmarket/pkg/logger"
	"github.com/richxcame/carmarket/pkg/metrics"
	redisClient "github.com/richxcame/carmarket/pkg/redis"
	"go.uber.org/zap"
)

const carCachePrefix = "car:"

// carCache caches listing details. A nil client disables caching; cache
// failures are logged and fall through to the database.
type carCache struct {
	client *redisClient.Client
	ttl    time.Duration
}

func newCarCache(client *redisClient.Client, ttl time.Duration) *carCache {
	return &carCache{client: client, ttl: ttl}
}

func carCacheKey(id uuid.UUID) string {
	return carCachePrefix + id.String()
}

func (c *carCache) get(ctx context.Context, id uuid.UUID) (*Car, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}

	var car Car
	err := c.client.GetJSON(ctx, carCacheKey(id), &car)
	if errors.Is(err, redisClient.ErrCacheMiss) {
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return nil, false
	}
	if err != nil {
		metrics.CacheLookups.WithLabelValues("error").Inc()
		logger.WithContext(ctx).Warn("Car cache read failed", zap.String("car_id", id.String()), zap.Error(err))
		return nil, false
	}

	metrics.CacheLookups.WithLabelValues("hit").Inc()
	return &car, true
}

func (c *carCache) set(ctx context.Context, car *Car) {
	if c == nil || c.client == nil || c.ttl <= 0 {
		return
	}
	if err := c.client.SetJSON(ctx, carCacheKey(car.ID), car, c.ttl); err != nil {
		logger.WithContext(ctx).Warn("Car cache write failed", zap.String("car_id", car.ID.String()), zap.Error(err))
	}
}

func (c *carCache) invalidate(ctx context.Context, id uuid.UUID) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Delete(ctx, carCacheKey(id)); err != nil {
		logger.WithContext(ctx).Warn("Car cache invalidation failed", zap.String("car_id", id.String()), zap.Error(err))
	}
}
