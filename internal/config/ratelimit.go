package config

import (
	"fmt"
	"time"
)

// RateLimitConfig controls how the API client reacts to the platform's
// rate-limit sentinel and how it paces requests.
type RateLimitConfig struct {
	Sentinel    string  `yaml:"sentinel"`     // value of the top-level "message" field that signals throttling
	Wait        string  `yaml:"wait"`         // first wait after a throttled response
	MaxRetries  int     `yaml:"max_retries"`  // retries of the same request before giving up
	Multiplier  float64 `yaml:"multiplier"`   // wait growth per retry; 1 keeps a fixed interval
	MaxWait     string  `yaml:"max_wait"`     // upper bound for a single wait
	MinInterval string  `yaml:"min_interval"` // minimum spacing between requests, 0 disables pacing
}

// GetWait returns the first rate-limit wait as a duration.
func (c *Config) GetWait() time.Duration {
	return parseDuration(c.RateLimit.Wait, 20*time.Second)
}

// GetMaxWait returns the cap on a single rate-limit wait.
func (c *Config) GetMaxWait() time.Duration {
	return parseDuration(c.RateLimit.MaxWait, 5*time.Minute)
}

// GetMinInterval returns the minimum spacing between requests.
func (c *Config) GetMinInterval() time.Duration {
	return parseDuration(c.RateLimit.MinInterval, 0)
}

// ValidateRateLimit checks that rate-limit settings are within acceptable ranges.
func (c *Config) ValidateRateLimit() error {
	if c.RateLimit.Sentinel == "" {
		return fmt.Errorf("rate_limit.sentinel must not be empty")
	}
	if c.RateLimit.MaxRetries < 0 {
		return fmt.Errorf("rate_limit.max_retries must be >= 0")
	}
	if c.RateLimit.Multiplier < 1 {
		return fmt.Errorf("rate_limit.multiplier must be >= 1")
	}
	for name, v := range map[string]string{
		"rate_limit.wait":         c.RateLimit.Wait,
		"rate_limit.max_wait":     c.RateLimit.MaxWait,
		"rate_limit.min_interval": c.RateLimit.MinInterval,
	} {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if d < 0 {
			return fmt.Errorf("%s must not be negative", name)
		}
	}
	if c.GetMaxWait() < c.GetWait() {
		return fmt.Errorf("rate_limit.max_wait (%s) must be >= rate_limit.wait (%s)", c.RateLimit.MaxWait, c.RateLimit.Wait)
	}
	return nil
}
