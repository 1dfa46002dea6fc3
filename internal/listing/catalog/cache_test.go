package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"listing-workers/internal/common/logger"
	"listing-workers/internal/listing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	listings []listing.Listing
	err      error
	calls    int
}

func (s *stubSource) Load(context.Context) ([]listing.Listing, error) {
	s.calls++
	return s.listings, s.err
}

var cachedListings = []listing.Listing{
	{ID: "1", Title: "Lakeview Villa", Location: "north", Type: "house", Price: 250000},
	{ID: "2", Title: "City Loft", Location: "south", Type: "apartment", Price: 120000},
}

func newMiniredis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestCachedSource_MissThenHit(t *testing.T) {
	mr, client := newMiniredis(t)
	origin := &stubSource{listings: cachedListings}
	src := NewCachedSource(origin, client, "homes", time.Minute, logger.NewTestLogger(t))

	got, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, cachedListings, got)
	assert.Equal(t, 1, origin.calls)

	assert.True(t, mr.Exists("listings:catalog:homes"))
	assert.Equal(t, time.Minute, mr.TTL("listings:catalog:homes"))

	got, err = src.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, cachedListings, got)
	assert.Equal(t, 1, origin.calls, "second load is served from redis")
}

func TestCachedSource_Expiry(t *testing.T) {
	mr, client := newMiniredis(t)
	origin := &stubSource{listings: cachedListings}
	src := NewCachedSource(origin, client, "homes", time.Minute, logger.NewNoOpLogger())

	_, err := src.Load(context.Background())
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, err = src.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, origin.calls)
}

func TestCachedSource_CorruptEntry(t *testing.T) {
	mr, client := newMiniredis(t)
	require.NoError(t, mr.Set(CacheKey("homes"), "{not json"))

	origin := &stubSource{listings: cachedListings}
	got, err := NewCachedSource(origin, client, "homes", time.Minute, logger.NewNoOpLogger()).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, cachedListings, got)
	assert.Equal(t, 1, origin.calls)
}

func TestCachedSource_OriginErrorNotCached(t *testing.T) {
	mr, client := newMiniredis(t)
	origin := &stubSource{err: errors.New("origin down")}

	_, err := NewCachedSource(origin, client, "homes", time.Minute, logger.NewNoOpLogger()).Load(context.Background())
	require.Error(t, err)
	assert.False(t, mr.Exists(CacheKey("homes")))
}

func TestCachedSource_RedisFailuresFallThrough(t *testing.T) {
	client, mock := redismock.NewClientMock()
	payload, err := json.Marshal(cachedListings)
	require.NoError(t, err)

	mock.ExpectGet(CacheKey("homes")).SetErr(errors.New("connection refused"))
	mock.ExpectSet(CacheKey("homes"), string(payload), time.Minute).SetErr(errors.New("connection refused"))

	origin := &stubSource{listings: cachedListings}
	got, err := NewCachedSource(origin, client, "homes", time.Minute, logger.NewTestLogger(t)).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, cachedListings, got)
	assert.Equal(t, 1, origin.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachedSource_Invalidate(t *testing.T) {
	mr, client := newMiniredis(t)
	src := NewCachedSource(&stubSource{listings: cachedListings}, client, "", time.Minute, logger.NewNoOpLogger())

	_, err := src.Load(context.Background())
	require.NoError(t, err)
	require.True(t, mr.Exists("listings:catalog:default"))

	require.NoError(t, src.Invalidate(context.Background()))
	assert.False(t, mr.Exists("listings:catalog:default"))
}
