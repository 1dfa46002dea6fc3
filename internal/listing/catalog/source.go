// Package catalog loads the full listing collection the filter evaluates.
// Sources return every listing in display order; none of them filters.
package catalog

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"math"
	"time"

	"listing-workers/internal/common/config"
	"listing-workers/internal/common/errors"
	"listing-workers/internal/common/logger"
	"listing-workers/internal/listing"
	"listing-workers/internal/listing/markup"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"
)

// Source loads a listing catalog.
type Source interface {
	Load(ctx context.Context) ([]listing.Listing, error)
}

// Deps are the clients a configured source may need.
type Deps struct {
	DB            *sql.DB
	Elasticsearch *elasticsearch.Client
	Redis         redis.Cmdable
}

// FromConfig builds the source selected by cfg.Source, wrapped in the redis
// cache when cfg.CacheTTL is positive.
func FromConfig(cfg config.CatalogConfig, deps Deps, log logger.Logger) (Source, error) {
	var src Source
	switch cfg.Source {
	case config.SourcePostgres:
		if deps.DB == nil {
			return nil, fmt.Errorf("catalog source %q needs a postgres connection", cfg.Source)
		}
		src = NewPostgresSource(deps.DB, cfg.Table, log)
	case config.SourceElasticsearch:
		if deps.Elasticsearch == nil {
			return nil, fmt.Errorf("catalog source %q needs an elasticsearch client", cfg.Source)
		}
		src = NewElasticsearchSource(deps.Elasticsearch, cfg.Index, cfg.MaxSize)
	case config.SourceMarkup:
		src = NewMarkupSource(cfg.PagePath, markup.DefaultSelectors(), log)
	default:
		return nil, fmt.Errorf("unknown catalog source %q", cfg.Source)
	}

	if cfg.CacheTTL > 0 {
		if deps.Redis == nil {
			return nil, fmt.Errorf("catalog cache needs a redis client")
		}
		src = NewCachedSource(src, deps.Redis, cfg.Name, time.Duration(cfg.CacheTTL)*time.Second, log)
	}
	return src, nil
}

// sourceError classifies a load failure. Deadline errors become timeouts.
func sourceError(ctx context.Context, source string, err error) error {
	if stderrors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
		return errors.NewListingSourceTimeoutError(source, err)
	}
	return errors.NewListingSourceFailedError(source, err)
}

// storedPrice reports whether p can be used as a listing price. NaN and
// negative values cannot: NaN fails every bound, even the cleared ones.
func storedPrice(p float64) bool {
	return !math.IsNaN(p) && p >= 0
}
