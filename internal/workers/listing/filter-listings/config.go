// internal/workers/listing/filter-listings/config.go
package filterlistings

import "time"

type Config struct {
	Timeout time.Duration
	// InputSchema is the activity registry schema job variables must match.
	// Empty disables validation.
	InputSchema map[string]interface{}
}
