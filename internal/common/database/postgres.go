// internal/common/database/postgres.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"listing-workers/internal/common/config"

	"github.com/lib/pq"
)

// PostgresClient wraps the SQL connection pool holding the listing catalog.
type PostgresClient struct {
	DB *sql.DB
}

// NewPostgres opens a pool; it does not dial until first use or Ping.
func NewPostgres(cfg config.PostgresConfig) (*PostgresClient, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &PostgresClient{DB: db}, nil
}

// TableExists reports whether the catalog table is visible on the search path.
func (c *PostgresClient) TableExists(ctx context.Context, table string) (bool, error) {
	var exists bool
	err := c.DB.QueryRowContext(ctx, "SELECT to_regclass($1) IS NOT NULL", pq.QuoteIdentifier(table)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("postgres table lookup failed: %w", err)
	}
	return exists, nil
}

func (c *PostgresClient) Ping(ctx context.Context) error {
	if err := c.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("postgres ping failed: %w", err)
	}
	return nil
}

func (c *PostgresClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
