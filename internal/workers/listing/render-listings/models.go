// internal/workers/listing/render-listings/models.go
package renderlistings

import "listing-workers/internal/listing"

// Input is a listings page. Without RawInputs the page's own form values are
// used; Reset clears the form and shows every card.
type Input struct {
	HTML      string                 `json:"html"`
	RawInputs map[string]interface{} `json:"rawInputs,omitempty"`
	Reset     bool                   `json:"reset,omitempty"`
}

type Output struct {
	HTML         string               `json:"html"`
	Inputs       listing.FilterInputs `json:"inputs"`
	VisibleCount int                  `json:"visibleCount"`
	NoResults    bool                 `json:"noResults"`
	Warnings     []string             `json:"warnings"`
}
