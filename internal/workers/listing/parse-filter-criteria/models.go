// internal/workers/listing/parse-filter-criteria/models.go
package parsefiltercriteria

import "listing-workers/internal/listing"

type Input struct {
	RawInputs map[string]interface{} `json:"rawInputs"`
}

type Output struct {
	Criteria listing.FilterCriteria `json:"criteria"`
	Inputs   listing.FilterInputs   `json:"inputs"`
}
