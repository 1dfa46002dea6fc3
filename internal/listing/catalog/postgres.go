package catalog

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"

	"listing-workers/internal/common/errors"
	"listing-workers/internal/common/logger"
	"listing-workers/internal/listing"

	"github.com/lib/pq"
)

const (
	sourcePostgres = "postgres"

	pqUndefinedTable = "42P01"
)

// PostgresSource reads the listings table ordered by display_order.
type PostgresSource struct {
	db     *sql.DB
	table  string
	logger logger.Logger
}

func NewPostgresSource(db *sql.DB, table string, log logger.Logger) *PostgresSource {
	if table == "" {
		table = "listings"
	}
	return &PostgresSource{
		db:     db,
		table:  table,
		logger: log,
	}
}

func (s *PostgresSource) query() string {
	return fmt.Sprintf(
		"SELECT id, title, location, type, price FROM %s ORDER BY display_order, id",
		pq.QuoteIdentifier(s.table),
	)
}

func (s *PostgresSource) Load(ctx context.Context) ([]listing.Listing, error) {
	rows, err := s.db.QueryContext(ctx, s.query())
	if err != nil {
		var pqErr *pq.Error
		if stderrors.As(err, &pqErr) && pqErr.Code == pqUndefinedTable {
			return nil, errors.NewCatalogNotFoundError(sourcePostgres, s.table)
		}
		return nil, sourceError(ctx, sourcePostgres, err)
	}
	defer rows.Close()

	listings := []listing.Listing{}
	for rows.Next() {
		var (
			l     listing.Listing
			price sql.NullFloat64
		)
		if err := rows.Scan(&l.ID, &l.Title, &l.Location, &l.Type, &price); err != nil {
			return nil, sourceError(ctx, sourcePostgres, fmt.Errorf("scan listing: %w", err))
		}
		if storedPrice(price.Float64) {
			l.Price = price.Float64
		} else {
			s.logger.Warn("invalid listing price, using 0", map[string]interface{}{
				"id":    l.ID,
				"price": fmt.Sprint(price.Float64),
			})
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, sourceError(ctx, sourcePostgres, err)
	}

	s.logger.Debug("listings loaded", map[string]interface{}{
		"source": sourcePostgres,
		"table":  s.table,
		"count":  len(listings),
	})
	return listings, nil
}
