// internal/workers/listing/clear-filters/config.go
package clearfilters

import "time"

type Config struct {
	Timeout time.Duration
}
