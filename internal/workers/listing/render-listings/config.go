// internal/workers/listing/render-listings/config.go
package renderlistings

import (
	"time"

	"listing-workers/internal/listing/markup"
)

type Config struct {
	Timeout     time.Duration
	Selectors   markup.Selectors
	InputSchema map[string]interface{}
}
