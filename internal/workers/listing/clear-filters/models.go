// internal/workers/listing/clear-filters/models.go
package clearfilters

import "listing-workers/internal/listing"

type Input struct {
	Listings []listing.Listing `json:"listings,omitempty"`
	Catalog  string            `json:"catalog,omitempty"`
}

// Output carries the reset form values alongside the all-visible result so
// a process can write both back in one step.
type Output struct {
	Criteria     listing.FilterCriteria `json:"criteria"`
	Inputs       listing.FilterInputs   `json:"inputs"`
	Visible      []bool                 `json:"visible"`
	VisibleCount int                    `json:"visibleCount"`
	NoResults    bool                   `json:"noResults"`
}
