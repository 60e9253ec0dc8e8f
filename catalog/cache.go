package catalog

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"shonar/models"

	"github.com/redis/go-redis/v9"
)

const (
	productsKey     = "catalog:products"
	filtersKey      = "catalog:filters"
	announcementKey = "catalog:announcement"
	cacheTTL        = time.Minute
)

// Cached wraps a Reader with a short-lived Redis cache. Cache misses
// and Redis errors fall through to the inner reader, so the cache can
// only ever make reads faster, never wronger.
type Cached struct {
	inner Reader
	conn  *redis.Client
}

func NewCached(inner Reader, conn *redis.Client) *Cached {
	return &Cached{inner: inner, conn: conn}
}

func (c *Cached) Products(ctx context.Context) ([]models.Product, error) {
	var cached []models.Product
	if c.fetch(ctx, productsKey, &cached) {
		return cached, nil
	}
	products, err := c.inner.Products(ctx)
	if err == nil {
		c.store(ctx, productsKey, products)
	}
	return products, err
}

func (c *Cached) ProductByID(ctx context.Context, id string) (models.Product, bool) {
	// single lookups ride the cached list when present
	var cached []models.Product
	if c.fetch(ctx, productsKey, &cached) {
		for _, p := range cached {
			if p.ProductID == id {
				return p, true
			}
		}
	}
	return c.inner.ProductByID(ctx, id)
}

func (c *Cached) Filters(ctx context.Context) ([]models.FilterOption, error) {
	var cached []models.FilterOption
	if c.fetch(ctx, filtersKey, &cached) {
		return cached, nil
	}
	filters, err := c.inner.Filters(ctx)
	if err == nil {
		c.store(ctx, filtersKey, filters)
	}
	return filters, err
}

func (c *Cached) Announcement(ctx context.Context) (models.Announcement, error) {
	var cached models.Announcement
	if c.fetch(ctx, announcementKey, &cached) {
		return cached, nil
	}
	a, err := c.inner.Announcement(ctx)
	if err == nil {
		c.store(ctx, announcementKey, a)
	}
	return a, err
}

// Invalidate drops all cached catalog keys, e.g. after an admin edit.
func (c *Cached) Invalidate(ctx context.Context) {
	if err := c.conn.Del(ctx, productsKey, filtersKey, announcementKey).Err(); err != nil {
		log.Println("catalog cache invalidate error:", err)
	}
}

func (c *Cached) fetch(ctx context.Context, key string, dest any) bool {
	data, err := c.conn.Get(ctx, key).Result()
	if err != nil || data == "" {
		return false
	}
	if err := json.Unmarshal([]byte(data), dest); err != nil {
		log.Println("catalog cache decode error, dropping key:", err)
		c.conn.Del(ctx, key)
		return false
	}
	return true
}

func (c *Cached) store(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.conn.Set(ctx, key, data, cacheTTL).Err(); err != nil {
		log.Println("catalog cache write error:", err)
	}
}
