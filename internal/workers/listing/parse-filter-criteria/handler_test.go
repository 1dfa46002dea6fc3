package parsefiltercriteria

import (
	"context"
	"encoding/json"
	"math"
	"testing"

	"listing-workers/internal/common/logger"
	"listing-workers/internal/listing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestHandler(t *testing.T) *Handler {
	return NewHandler(LoadConfig(), nil, logger.NewTestLogger(t))
}

func TestHandler_Execute(t *testing.T) {
	tests := []struct {
		name      string
		rawInputs map[string]interface{}
		expected  listing.FilterCriteria
	}{
		{
			name:      "nil inputs give the cleared criteria",
			rawInputs: nil,
			expected:  listing.Clear(),
		},
		{
			name: "string values",
			rawInputs: map[string]interface{}{
				"search":   "  Villa ",
				"location": "north",
				"type":     "house",
				"minPrice": "100000",
				"maxPrice": "300000",
			},
			expected: listing.FilterCriteria{SearchTerm: "Villa", Location: "north", Type: "house", MinPrice: 100000, MaxPrice: 300000},
		},
		{
			name: "numeric prices",
			rawInputs: map[string]interface{}{
				"minPrice": float64(150000.5),
				"maxPrice": float64(0),
			},
			expected: listing.FilterCriteria{Location: "any", Type: "any", MinPrice: 150000.5, MaxPrice: 0},
		},
		{
			name: "garbage prices fall back to the open range",
			rawInputs: map[string]interface{}{
				"minPrice": "cheap",
				"maxPrice": "lots",
				"location": "",
			},
			expected: listing.Clear(),
		},
		{
			name: "leading number is kept",
			rawInputs: map[string]interface{}{
				"minPrice": "12abc",
			},
			expected: listing.FilterCriteria{Location: "any", Type: "any", MinPrice: 12, MaxPrice: math.Inf(1)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := createTestHandler(t).Execute(context.Background(), &Input{RawInputs: tt.rawInputs})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, output.Criteria)
		})
	}
}

func TestOutput_JSON(t *testing.T) {
	output, err := createTestHandler(t).Execute(context.Background(), &Input{RawInputs: map[string]interface{}{"search": "loft"}})
	require.NoError(t, err)

	data, err := json.Marshal(output)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"criteria": {"searchTerm": "loft", "location": "any", "type": "any", "minPrice": 0, "maxPrice": null},
		"inputs": {"search": "loft", "location": "", "type": "", "minPrice": "", "maxPrice": ""}
	}`, string(data))
}

func TestInput_DecodesJobVariables(t *testing.T) {
	var input Input
	require.NoError(t, json.Unmarshal([]byte(`{"rawInputs": {"search": "villa", "maxPrice": 250000}, "otherVar": true}`), &input))

	output, err := createTestHandler(t).Execute(context.Background(), &input)
	require.NoError(t, err)
	assert.Equal(t, "villa", output.Criteria.SearchTerm)
	assert.Equal(t, 250000.0, output.Criteria.MaxPrice)
}
