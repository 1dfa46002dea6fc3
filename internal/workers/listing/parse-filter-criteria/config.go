// internal/workers/listing/parse-filter-criteria/config.go
package parsefiltercriteria

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
