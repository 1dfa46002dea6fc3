package catalog

import (
	"context"
	"math"
	"testing"

	"listing-workers/internal/common/config"
	"listing-workers/internal/common/errors"
	"listing-workers/internal/common/logger"
	"listing-workers/internal/listing/markup"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromConfig(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	tests := []struct {
		name    string
		cfg     config.CatalogConfig
		deps    Deps
		want    interface{}
		wantErr bool
	}{
		{
			name: "postgres",
			cfg:  config.CatalogConfig{Source: config.SourcePostgres, Table: "listings"},
			deps: Deps{DB: db},
			want: &PostgresSource{},
		},
		{
			name:    "postgres without db",
			cfg:     config.CatalogConfig{Source: config.SourcePostgres},
			wantErr: true,
		},
		{
			name:    "elasticsearch without client",
			cfg:     config.CatalogConfig{Source: config.SourceElasticsearch, Index: "listings"},
			wantErr: true,
		},
		{
			name: "markup",
			cfg:  config.CatalogConfig{Source: config.SourceMarkup, PagePath: "testdata/listings.html"},
			want: &MarkupSource{},
		},
		{
			name: "cached postgres",
			cfg:  config.CatalogConfig{Source: config.SourcePostgres, Name: "homes", CacheTTL: 60},
			deps: Deps{DB: db, Redis: rdb},
			want: &CachedSource{},
		},
		{
			name:    "cache without redis",
			cfg:     config.CatalogConfig{Source: config.SourceMarkup, CacheTTL: 60},
			wantErr: true,
		},
		{
			name:    "unknown source",
			cfg:     config.CatalogConfig{Source: "csv"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := FromConfig(tt.cfg, tt.deps, logger.NewNoOpLogger())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, src)
		})
	}
}

func TestMarkupSource_Load(t *testing.T) {
	src := NewMarkupSource("testdata/listings.html", markup.DefaultSelectors(), logger.NewTestLogger(t))

	got, err := src.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "Lakeview Villa", got[0].Title)
	assert.Equal(t, "City Loft", got[1].Title)
	assert.Equal(t, float64(0), got[2].Price)
}

func TestMarkupSource_MissingPage(t *testing.T) {
	src := NewMarkupSource("testdata/nope.html", markup.DefaultSelectors(), logger.NewNoOpLogger())

	_, err := src.Load(context.Background())
	require.Error(t, err)
	stdErr, ok := errors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeCatalogNotFound, stdErr.Code)
}

func TestStoredPrice(t *testing.T) {
	tests := []struct {
		price float64
		want  bool
	}{
		{0, true},
		{120000, true},
		{math.Inf(1), true},
		{-5, false},
		{math.NaN(), false},
		{math.Inf(-1), false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, storedPrice(tt.price), "price %v", tt.price)
	}
}
