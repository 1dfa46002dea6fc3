package listing

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClear_Defaults(t *testing.T) {
	c := Clear()

	assert.Equal(t, "", c.SearchTerm)
	assert.Equal(t, AnyOption, c.Location)
	assert.Equal(t, AnyOption, c.Type)
	assert.Equal(t, 0.0, c.MinPrice)
	assert.True(t, math.IsInf(c.MaxPrice, 1))
}

func TestNewCriteria_DefaultInputsEqualClear(t *testing.T) {
	assert.Equal(t, Clear(), NewCriteria(DefaultInputs()))
	assert.Equal(t, Clear(), NewCriteria(FilterInputs{}))
}

func TestNewCriteria_Normalization(t *testing.T) {
	inf := math.Inf(1)

	tests := []struct {
		name     string
		inputs   FilterInputs
		expected FilterCriteria
	}{
		{
			name:     "trims search and selectors",
			inputs:   FilterInputs{Search: "  Loft ", Location: " north ", Type: "house"},
			expected: FilterCriteria{SearchTerm: "Loft", Location: "north", Type: "house", MinPrice: 0, MaxPrice: inf},
		},
		{
			name:     "empty selectors mean any",
			inputs:   FilterInputs{Location: "", Type: "   "},
			expected: FilterCriteria{Location: AnyOption, Type: AnyOption, MaxPrice: inf},
		},
		{
			name:     "numeric prices",
			inputs:   FilterInputs{MinPrice: "100000", MaxPrice: "250000.50"},
			expected: FilterCriteria{Location: AnyOption, Type: AnyOption, MinPrice: 100000, MaxPrice: 250000.5},
		},
		{
			name:     "unparsable prices fall back to defaults",
			inputs:   FilterInputs{MinPrice: "abc", MaxPrice: "n/a"},
			expected: FilterCriteria{Location: AnyOption, Type: AnyOption, MinPrice: 0, MaxPrice: inf},
		},
		{
			name:     "trailing text is ignored",
			inputs:   FilterInputs{MinPrice: "12abc", MaxPrice: " 3.5e2 USD"},
			expected: FilterCriteria{Location: AnyOption, Type: AnyOption, MinPrice: 12, MaxPrice: 350},
		},
		{
			name:     "explicit zero maximum is kept",
			inputs:   FilterInputs{MaxPrice: "0"},
			expected: FilterCriteria{Location: AnyOption, Type: AnyOption, MinPrice: 0, MaxPrice: 0},
		},
		{
			name:     "min above max is kept as given",
			inputs:   FilterInputs{MinPrice: "500", MaxPrice: "100"},
			expected: FilterCriteria{Location: AnyOption, Type: AnyOption, MinPrice: 500, MaxPrice: 100},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NewCriteria(tt.inputs))
		})
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in       string
		expected float64
		ok       bool
	}{
		{in: "", ok: false},
		{in: "   ", ok: false},
		{in: "abc", ok: false},
		{in: "-", ok: false},
		{in: ".", ok: false},
		{in: "0", expected: 0, ok: true},
		{in: "42", expected: 42, ok: true},
		{in: "-7.5", expected: -7.5, ok: true},
		{in: "+8", expected: 8, ok: true},
		{in: ".25", expected: 0.25, ok: true},
		{in: "5.", expected: 5, ok: true},
		{in: "1e3", expected: 1000, ok: true},
		{in: "1e", expected: 1, ok: true},
		{in: "12abc", expected: 12, ok: true},
		{in: "1,000", expected: 1, ok: true},
		{in: "$100", ok: false},
		{in: "Infinity", expected: math.Inf(1), ok: true},
		{in: "-Infinity", expected: math.Inf(-1), ok: true},
		{in: "1e999", expected: math.Inf(1), ok: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			v, ok := ParsePrice(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, v)
			}
		})
	}
}

func TestFilterCriteria_JSON(t *testing.T) {
	data, err := json.Marshal(Clear())
	require.NoError(t, err)
	assert.JSONEq(t, `{"searchTerm":"","location":"any","type":"any","minPrice":0,"maxPrice":null}`, string(data))

	var decoded FilterCriteria
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, Clear(), decoded)

	bounded := FilterCriteria{SearchTerm: "loft", Location: "south", Type: AnyOption, MinPrice: 10, MaxPrice: 20}
	data, err = json.Marshal(bounded)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, bounded, decoded)
}

func TestFilterCriteria_UnmarshalMissingFields(t *testing.T) {
	var c FilterCriteria
	require.NoError(t, json.Unmarshal([]byte(`{"searchTerm":"villa"}`), &c))

	assert.Equal(t, "villa", c.SearchTerm)
	assert.Equal(t, AnyOption, c.Location)
	assert.Equal(t, AnyOption, c.Type)
	assert.True(t, math.IsInf(c.MaxPrice, 1))
}

func TestFilterCriteria_UnmarshalTrimsSearchTerm(t *testing.T) {
	var c FilterCriteria
	require.NoError(t, json.Unmarshal([]byte(`{"searchTerm":"  loft ","location":"any","type":"any"}`), &c))
	assert.Equal(t, "loft", c.SearchTerm)
	assert.Equal(t, NewCriteria(FilterInputs{Search: "  loft "}), c)

	listings := []Listing{{Title: "City Loft", Location: "south", Type: "apartment", Price: 120000}}
	assert.Equal(t, 1, Evaluate(listings, c).VisibleCount)
}

func TestVisibilityResult_JSONIncludesNoResults(t *testing.T) {
	data, err := json.Marshal(VisibilityResult{Visible: []bool{false}, VisibleCount: 0})
	require.NoError(t, err)
	assert.JSONEq(t, `{"visible":[false],"visibleCount":0,"noResults":true}`, string(data))
}

func TestInputsFromValues(t *testing.T) {
	in := InputsFromValues(map[string]interface{}{
		"search":   "  villa ",
		"location": "north",
		"minPrice": float64(150000),
		"maxPrice": "300000",
	})

	assert.Equal(t, FilterInputs{
		Search:   "  villa ",
		Location: "north",
		Type:     "",
		MinPrice: "150000",
		MaxPrice: "300000",
	}, in)

	c := NewCriteria(in)
	assert.Equal(t, "villa", c.SearchTerm)
	assert.Equal(t, AnyOption, c.Type)
	assert.Equal(t, 150000.0, c.MinPrice)
	assert.Equal(t, 300000.0, c.MaxPrice)

	assert.Equal(t, DefaultInputs(), FilterInputs{Location: "any", Type: "any"})
	assert.Equal(t, Clear(), NewCriteria(InputsFromValues(nil)))
}
