package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

const productsKey = "products:all"

type HitRecorder interface {
	CacheLookup(hit bool)
}

// ProductCache keeps the full product listing in redis as JSON. A nil
// client turns every call into a miss or a no-op, and redis errors degrade to a miss.
type ProductCache struct {
	RDB     *redis.Client
	TTL     time.Duration
	Metrics HitRecorder
}

func NewClient(addr, password string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})
}

func (c *ProductCache) record(hit bool) {
	if c.Metrics != nil {
		c.Metrics.CacheLookup(hit)
	}
}

func (c *ProductCache) GetProducts(ctx context.Context) ([]models.Product, bool) {
	if c.RDB == nil {
		return nil, false
	}

	val, err := c.RDB.Get(ctx, productsKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			logging.FromContext(ctx).Warn("cache_get_failed", "key", productsKey, "error", err)
		}
		c.record(false)
		return nil, false
	}

	var items []models.Product
	if err := json.Unmarshal(val, &items); err != nil {
		c.record(false)
		return nil, false
	}
	c.record(true)
	return items, true
}

func (c *ProductCache) SetProducts(ctx context.Context, items []models.Product) {
	if c.RDB == nil {
		return
	}
	data, err := json.Marshal(items)
	if err != nil {
		return
	}
	if err := c.RDB.Set(ctx, productsKey, data, c.TTL).Err(); err != nil {
		logging.FromContext(ctx).Warn("cache_set_failed", "key", productsKey, "error", err)
	}
}

func (c *ProductCache) InvalidateProducts(ctx context.Context) {
	if c.RDB == nil {
		return
	}
	if err := c.RDB.Del(ctx, productsKey).Err(); err != nil {
		logging.FromContext(ctx).Warn("cache_invalidate_failed", "key", productsKey, "error", err)
	}
}
