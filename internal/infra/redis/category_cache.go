package redis

import (
	"cmp"
	"context"
	"math/rand"
	"slices"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"trivia-service/internal/domain"
)

// CategoryLoader fetches categories from the backing store.
type CategoryLoader interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)
}

// CategoryCache caches the category list in Redis and falls back to a loader on miss.
// Categories are stored as: HSET trivia:categories {id} {type}
type CategoryCache struct {
	client *redis.Client
	loader CategoryLoader
	ttl    time.Duration
	sf     singleflight.Group
}

const categoriesKey = "trivia:categories"

func NewCategoryCache(client *redis.Client, loader CategoryLoader, ttl time.Duration) *CategoryCache {
	return &CategoryCache{client: client, loader: loader, ttl: ttl}
}

func (c *CategoryCache) ListCategories(ctx context.Context) ([]domain.Category, error) {
	if cached, ok := c.cached(ctx); ok {
		return cached, nil
	}

	result, err, _ := c.sf.Do(categoriesKey, func() (interface{}, error) {
		// Re-check cache in case another caller filled it.
		if cached, ok := c.cached(ctx); ok {
			return cached, nil
		}

		categories, err := c.loader.ListCategories(ctx)
		if err != nil {
			return nil, err
		}
		if len(categories) == 0 {
			return categories, nil
		}

		fields := make(map[string]interface{}, len(categories))
		for _, cat := range categories {
			fields[strconv.Itoa(cat.ID)] = cat.Type
		}
		pipe := c.client.TxPipeline()
		pipe.Del(ctx, categoriesKey)
		pipe.HSet(ctx, categoriesKey, fields)
		if ttl := c.ttlWithJitter(); ttl > 0 {
			pipe.Expire(ctx, categoriesKey, ttl)
		}
		// A failed write only costs a later miss.
		_, _ = pipe.Exec(ctx)

		return categories, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Category), nil
}

// Invalidate drops the cached list so the next read goes to the loader.
func (c *CategoryCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, categoriesKey).Err()
}

func (c *CategoryCache) cached(ctx context.Context) ([]domain.Category, bool) {
	fields, err := c.client.HGetAll(ctx, categoriesKey).Result()
	if err != nil || len(fields) == 0 {
		return nil, false
	}
	out := make([]domain.Category, 0, len(fields))
	for rawID, typ := range fields {
		id, err := strconv.Atoi(rawID)
		if err != nil {
			return nil, false
		}
		out = append(out, domain.Category{ID: id, Type: typ})
	}
	slices.SortFunc(out, func(a, b domain.Category) int { return cmp.Compare(a.ID, b.ID) })
	return out, true
}

func (c *CategoryCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(rand.Int63n(jitterMax+1))
}
