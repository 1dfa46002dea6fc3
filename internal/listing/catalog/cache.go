package catalog

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"listing-workers/internal/common/logger"
	"listing-workers/internal/common/metrics"
	"listing-workers/internal/listing"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "listings:catalog:"

// CachedSource is a read-through redis cache in front of another source.
// Cache failures are logged and fall through to the origin.
type CachedSource struct {
	origin Source
	client redis.Cmdable
	key    string
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedSource(origin Source, client redis.Cmdable, name string, ttl time.Duration, log logger.Logger) *CachedSource {
	if name == "" {
		name = "default"
	}
	return &CachedSource{
		origin: origin,
		client: client,
		key:    CacheKey(name),
		ttl:    ttl,
		logger: log,
	}
}

// CacheKey is the redis key holding the named catalog.
func CacheKey(name string) string {
	return cacheKeyPrefix + name
}

func (c *CachedSource) Load(ctx context.Context) ([]listing.Listing, error) {
	if listings, ok := c.get(ctx); ok {
		return listings, nil
	}

	listings, err := c.origin.Load(ctx)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(listings)
	if err != nil {
		c.logger.Warn("catalog cache encode failed", map[string]interface{}{"key": c.key, "error": err})
		return listings, nil
	}
	if err := c.client.Set(ctx, c.key, string(payload), c.ttl).Err(); err != nil {
		c.logger.Warn("catalog cache write failed", map[string]interface{}{"key": c.key, "error": err})
	}
	return listings, nil
}

func (c *CachedSource) get(ctx context.Context) ([]listing.Listing, bool) {
	data, err := c.client.Get(ctx, c.key).Bytes()
	switch {
	case stderrors.Is(err, redis.Nil):
		metrics.CatalogCacheRequests.WithLabelValues("miss").Inc()
		return nil, false
	case err != nil:
		metrics.CatalogCacheRequests.WithLabelValues("error").Inc()
		c.logger.Warn("catalog cache read failed, loading from origin", map[string]interface{}{
			"key":   c.key,
			"error": err,
		})
		return nil, false
	}

	var listings []listing.Listing
	if err := json.Unmarshal(data, &listings); err != nil {
		metrics.CatalogCacheRequests.WithLabelValues("error").Inc()
		c.logger.Warn("catalog cache entry is corrupt, loading from origin", map[string]interface{}{
			"key":   c.key,
			"error": err,
		})
		return nil, false
	}
	metrics.CatalogCacheRequests.WithLabelValues("hit").Inc()
	return listings, true
}

// Invalidate drops the cached catalog.
func (c *CachedSource) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, c.key).Err()
}
