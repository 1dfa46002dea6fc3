package filterlistings

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "listing-workers/internal/common/errors"
	"listing-workers/internal/common/logger"
	"listing-workers/internal/listing"
	"listing-workers/internal/listing/catalog"
	"listing-workers/pkg/registry"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const registryPath = "../../../../configs/activity-registry.json"

type stubSource struct {
	listings []listing.Listing
	err      error
}

func (s *stubSource) Load(context.Context) ([]listing.Listing, error) {
	return s.listings, s.err
}

func sampleListings() []listing.Listing {
	return []listing.Listing{
		{ID: "villa-1", Title: "Lakeview Villa", Location: "north", Type: "house", Price: 250000},
		{ID: "loft-2", Title: "City Loft", Location: "south", Type: "apartment", Price: 120000},
		{Title: "Garden Cottage", Location: "north", Type: "house", Price: 90000},
	}
}

func createTestConfig(t *testing.T) *Config {
	reg, err := registry.LoadRegistry(registryPath)
	require.NoError(t, err)
	activity, ok := reg.Find(TaskType)
	require.True(t, ok)

	return &Config{
		Timeout:     5 * time.Second,
		InputSchema: activity.InputSchema,
	}
}

func createTestHandler(t *testing.T, catalogs *catalog.Set) *Handler {
	return NewHandler(createTestConfig(t), catalogs, nil, logger.NewTestLogger(t))
}

func TestHandler_Execute_Success(t *testing.T) {
	tests := []struct {
		name        string
		input       *Input
		wantVisible []bool
		wantIDs     []string
	}{
		{
			name:        "no criteria shows everything",
			input:       &Input{Listings: sampleListings()},
			wantVisible: []bool{true, true, true},
			wantIDs:     []string{"villa-1", "loft-2", "2"},
		},
		{
			name: "explicit criteria",
			input: &Input{
				Listings: sampleListings(),
				Criteria: &listing.FilterCriteria{SearchTerm: "villa", Location: "any", Type: "any", MinPrice: 0, MaxPrice: 1e9},
			},
			wantVisible: []bool{true, false, false},
			wantIDs:     []string{"villa-1"},
		},
		{
			name: "raw inputs",
			input: &Input{
				Listings:  sampleListings(),
				RawInputs: map[string]interface{}{"location": "north", "maxPrice": float64(100000)},
			},
			wantVisible: []bool{false, false, true},
			wantIDs:     []string{"2"},
		},
		{
			name: "criteria win over raw inputs",
			input: &Input{
				Listings:  sampleListings(),
				Criteria:  &listing.FilterCriteria{Location: "south", Type: "any", MaxPrice: 1e9},
				RawInputs: map[string]interface{}{"location": "north"},
			},
			wantVisible: []bool{false, true, false},
			wantIDs:     []string{"loft-2"},
		},
		{
			name: "min above max hides everything",
			input: &Input{
				Listings:  sampleListings(),
				RawInputs: map[string]interface{}{"minPrice": "500", "maxPrice": "100"},
			},
			wantVisible: []bool{false, false, false},
			wantIDs:     []string{},
		},
		{
			name:        "empty collection",
			input:       &Input{Listings: []listing.Listing{}},
			wantVisible: []bool{},
			wantIDs:     []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := createTestHandler(t, nil).Execute(context.Background(), tt.input)
			require.NoError(t, err)

			assert.Equal(t, tt.wantVisible, output.Visible)
			assert.Equal(t, tt.wantIDs, output.VisibleIDs)
			assert.Equal(t, len(tt.wantIDs), output.VisibleCount)
			assert.Equal(t, len(tt.wantIDs) == 0, output.NoResults)
			assert.Equal(t, len(tt.input.Listings), output.Total)

			_, err = uuid.Parse(output.EvaluationID)
			assert.NoError(t, err)
		})
	}
}

func TestHandler_Execute_FromCatalog(t *testing.T) {
	catalogs := catalog.NewSet("homes").
		Add("homes", &stubSource{listings: sampleListings()}).
		Add("broken", &stubSource{err: apperrors.NewListingSourceFailedError("postgres", errors.New("connection refused"))})
	h := createTestHandler(t, catalogs)

	output, err := h.Execute(context.Background(), &Input{RawInputs: map[string]interface{}{"type": "house"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"villa-1", "2"}, output.VisibleIDs)

	_, err = h.Execute(context.Background(), &Input{Catalog: "broken"})
	stdErr, ok := apperrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeListingSourceFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)

	_, err = h.Execute(context.Background(), &Input{Catalog: "offices"})
	stdErr, ok = apperrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeCatalogNotFound, stdErr.Code)
}

func TestHandler_Execute_NoListings(t *testing.T) {
	_, err := createTestHandler(t, nil).Execute(context.Background(), &Input{})
	stdErr, ok := apperrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeInvalidListingPayload, stdErr.Code)
}

func TestHandler_Decode(t *testing.T) {
	tests := []struct {
		name      string
		variables string
		wantCode  apperrors.ErrorCode
	}{
		{
			name:      "valid inline listings",
			variables: `{"listings": [{"id": "1", "title": "Villa", "location": "north", "type": "house", "price": 10}], "rawInputs": {"maxPrice": 20}}`,
		},
		{
			name:      "unbounded criteria",
			variables: `{"catalog": "homes", "criteria": {"searchTerm": "", "location": "any", "type": "any", "minPrice": 0, "maxPrice": null}}`,
		},
		{
			name:      "extra process variables are allowed",
			variables: `{"catalog": "homes", "customerId": 42}`,
		},
		{
			name:      "malformed json",
			variables: `{"listings": [`,
			wantCode:  apperrors.ErrCodeParseError,
		},
		{
			name:      "listing without price",
			variables: `{"listings": [{"title": "Villa", "location": "north", "type": "house"}]}`,
			wantCode:  apperrors.ErrCodeInvalidListingPayload,
		},
		{
			name:      "negative price",
			variables: `{"listings": [{"title": "Villa", "location": "north", "type": "house", "price": -1}]}`,
			wantCode:  apperrors.ErrCodeInvalidListingPayload,
		},
		{
			name:      "catalog is not a string",
			variables: `{"catalog": 7}`,
			wantCode:  apperrors.ErrCodeInvalidListingPayload,
		},
	}

	h := createTestHandler(t, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input, err := h.Decode(tt.variables)
			if tt.wantCode == "" {
				require.NoError(t, err)
				assert.NotNil(t, input)
				return
			}

			stdErr, ok := apperrors.AsStandardError(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantCode, stdErr.Code)
		})
	}
}

func TestHandler_Decode_CriteriaNullMaxIsUnbounded(t *testing.T) {
	input, err := createTestHandler(t, nil).Decode(`{"listings": [], "criteria": {"location": "", "maxPrice": null}}`)
	require.NoError(t, err)
	require.NotNil(t, input.Criteria)
	assert.Equal(t, listing.Clear(), *input.Criteria)
}
