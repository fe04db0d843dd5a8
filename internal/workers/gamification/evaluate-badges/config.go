// internal/workers/gamification/evaluate-badges/config.go
package evaluatebadges

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
