// internal/workers/listing/filter-listings/models.go
package filterlistings

import "listing-workers/internal/listing"

// Input carries the listings inline or names a catalog to load them from.
// Criteria wins over RawInputs; with neither the cleared criteria apply.
type Input struct {
	Listings  []listing.Listing       `json:"listings,omitempty"`
	Catalog   string                  `json:"catalog,omitempty"`
	Criteria  *listing.FilterCriteria `json:"criteria,omitempty"`
	RawInputs map[string]interface{}  `json:"rawInputs,omitempty"`
}

type Output struct {
	EvaluationID string                 `json:"evaluationId"`
	Criteria     listing.FilterCriteria `json:"criteria"`
	Visible      []bool                 `json:"visible"`
	VisibleCount int                    `json:"visibleCount"`
	NoResults    bool                   `json:"noResults"`
	VisibleIDs   []string               `json:"visibleIds"`
	Total        int                    `json:"total"`
}
