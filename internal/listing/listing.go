// Package listing holds the listing filter: the card records, the filter
// criteria built from form inputs and the pure evaluation that decides which
// cards are shown.
package listing

import (
	"encoding/json"
	"math"
	"strings"
)

// AnyOption is the categorical selector value that disables a predicate.
const AnyOption = "any"

// Listing is a single card in the catalog. Filtering never mutates it.
type Listing struct {
	ID       string  `json:"id,omitempty"`
	Title    string  `json:"title"`
	Location string  `json:"location"`
	Type     string  `json:"type"`
	Price    float64 `json:"price"`
}

// FilterCriteria is the normalized combination of active filter inputs.
// Build it with NewCriteria or Clear; the zero value filters on a maximum
// price of zero.
type FilterCriteria struct {
	SearchTerm string
	Location   string
	Type       string
	MinPrice   float64
	MaxPrice   float64
}

type criteriaJSON struct {
	SearchTerm string   `json:"searchTerm"`
	Location   string   `json:"location"`
	Type       string   `json:"type"`
	MinPrice   float64  `json:"minPrice"`
	MaxPrice   *float64 `json:"maxPrice"`
}

// MarshalJSON encodes an unbounded MaxPrice as null.
func (c FilterCriteria) MarshalJSON() ([]byte, error) {
	out := criteriaJSON{
		SearchTerm: c.SearchTerm,
		Location:   c.Location,
		Type:       c.Type,
		MinPrice:   finite(c.MinPrice),
	}
	if !math.IsInf(c.MaxPrice, 1) {
		max := finite(c.MaxPrice)
		out.MaxPrice = &max
	}
	return json.Marshal(out)
}

// finite clamps infinities into the float64 range JSON can carry.
func finite(v float64) float64 {
	switch {
	case math.IsInf(v, 1):
		return math.MaxFloat64
	case math.IsInf(v, -1):
		return -math.MaxFloat64
	}
	return v
}

// UnmarshalJSON decodes criteria the way NewCriteria normalizes inputs: the
// search term is trimmed, empty selectors mean AnyOption and a null or missing
// maxPrice is unbounded.
func (c *FilterCriteria) UnmarshalJSON(data []byte) error {
	var in criteriaJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	c.SearchTerm = strings.TrimSpace(in.SearchTerm)
	c.Location = selectorOrAny(in.Location)
	c.Type = selectorOrAny(in.Type)
	c.MinPrice = in.MinPrice
	c.MaxPrice = math.Inf(1)
	if in.MaxPrice != nil {
		c.MaxPrice = *in.MaxPrice
	}
	return nil
}

// VisibilityResult is the outcome of one evaluation: a flag per listing in
// input order and the number of visible listings.
type VisibilityResult struct {
	Visible      []bool `json:"visible"`
	VisibleCount int    `json:"visibleCount"`
}

// NoResults reports whether the "no results" indicator must be shown.
func (r VisibilityResult) NoResults() bool {
	return r.VisibleCount == 0
}

// MarshalJSON includes the derived noResults flag.
func (r VisibilityResult) MarshalJSON() ([]byte, error) {
	visible := r.Visible
	if visible == nil {
		visible = []bool{}
	}
	return json.Marshal(struct {
		Visible      []bool `json:"visible"`
		VisibleCount int    `json:"visibleCount"`
		NoResults    bool   `json:"noResults"`
	}{visible, r.VisibleCount, r.NoResults()})
}
