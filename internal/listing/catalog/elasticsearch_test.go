package catalog

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"listing-workers/internal/common/errors"
	"listing-workers/internal/listing"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestElasticsearch(t *testing.T, handler http.HandlerFunc) *elasticsearch.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return client
}

func TestElasticsearchSource_Load(t *testing.T) {
	var body map[string]interface{}
	var path string

	client := newTestElasticsearch(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)

		_, _ = io.WriteString(w, `{
			"took": 2,
			"hits": {
				"total": {"value": 2, "relation": "eq"},
				"hits": [
					{"_id": "es-1", "_source": {"title": "Lakeview Villa", "location": "north", "type": "house", "price": 250000}},
					{"_id": "es-2", "_source": {"id": "loft-2", "title": "City Loft", "location": "south", "type": "apartment", "price": -1}}
				]
			}
		}`)
	})

	got, err := NewElasticsearchSource(client, "listings", 50).Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []listing.Listing{
		{ID: "es-1", Title: "Lakeview Villa", Location: "north", Type: "house", Price: 250000},
		{ID: "loft-2", Title: "City Loft", Location: "south", Type: "apartment", Price: 0},
	}, got)

	assert.Equal(t, "/listings/_search", path)
	assert.Equal(t, map[string]interface{}{"match_all": map[string]interface{}{}}, body["query"])
	assert.EqualValues(t, 50, body["size"])
	assert.NotContains(t, body, "post_filter")
}

func TestElasticsearchSource_DefaultSize(t *testing.T) {
	src := NewElasticsearchSource(nil, "listings", 0)
	raw, err := src.body()
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.EqualValues(t, defaultMaxSize, body["size"])
}

func TestElasticsearchSource_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		wantCode errors.ErrorCode
	}{
		{name: "missing index", status: http.StatusNotFound, wantCode: errors.ErrCodeCatalogNotFound},
		{name: "cluster error", status: http.StatusInternalServerError, wantCode: errors.ErrCodeListingSourceFailed},
		{name: "bad request", status: http.StatusBadRequest, wantCode: errors.ErrCodeListingSourceFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestElasticsearch(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, `{"error": {"type": "test"}, "status": 0}`)
			})

			_, err := NewElasticsearchSource(client, "listings", 10).Load(context.Background())
			require.Error(t, err)
			stdErr, ok := errors.AsStandardError(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantCode, stdErr.Code)
		})
	}
}

func TestElasticsearchSource_MalformedResponse(t *testing.T) {
	client := newTestElasticsearch(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"hits": [`)
	})

	_, err := NewElasticsearchSource(client, "listings", 10).Load(context.Background())
	require.Error(t, err)
	stdErr, ok := errors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeListingSourceFailed, stdErr.Code)
}
