package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"listing-workers/internal/common/errors"
	"listing-workers/internal/listing"

	"github.com/elastic/go-elasticsearch/v8"
)

const (
	sourceElasticsearch = "elasticsearch"

	defaultMaxSize = 1000
)

// ElasticsearchSource scans an index with match_all. It never sends the
// filter criteria; evaluation stays client-side.
type ElasticsearchSource struct {
	client  *elasticsearch.Client
	index   string
	maxSize int
}

func NewElasticsearchSource(client *elasticsearch.Client, index string, maxSize int) *ElasticsearchSource {
	if maxSize <= 0 {
		maxSize = defaultMaxSize
	}
	return &ElasticsearchSource{client: client, index: index, maxSize: maxSize}
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID     string `json:"_id"`
			Source struct {
				ID       string  `json:"id"`
				Title    string  `json:"title"`
				Location string  `json:"location"`
				Type     string  `json:"type"`
				Price    float64 `json:"price"`
			} `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func (s *ElasticsearchSource) body() ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"query": map[string]interface{}{"match_all": map[string]interface{}{}},
		"sort": []interface{}{
			map[string]interface{}{
				"display_order": map[string]interface{}{"order": "asc", "unmapped_type": "long"},
			},
		},
		"size": s.maxSize,
	})
}

func (s *ElasticsearchSource) Load(ctx context.Context) ([]listing.Listing, error) {
	body, err := s.body()
	if err != nil {
		return nil, errors.NewInternalError(err)
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.index),
		s.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, sourceError(ctx, sourceElasticsearch, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, errors.NewCatalogNotFoundError(sourceElasticsearch, s.index)
	}
	if res.IsError() {
		return nil, sourceError(ctx, sourceElasticsearch, fmt.Errorf("search error: %s", res.Status()))
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, sourceError(ctx, sourceElasticsearch, fmt.Errorf("decode search response: %w", err))
	}

	listings := make([]listing.Listing, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		l := listing.Listing{
			ID:       hit.Source.ID,
			Title:    hit.Source.Title,
			Location: hit.Source.Location,
			Type:     hit.Source.Type,
		}
		if l.ID == "" {
			l.ID = hit.ID
		}
		if storedPrice(hit.Source.Price) {
			l.Price = hit.Source.Price
		}
		listings = append(listings, l)
	}
	return listings, nil
}
