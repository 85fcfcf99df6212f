package config

import "fmt"

// LoggingConfig configures logging. The --quiet and --verbose flags take
// precedence over Level.
type LoggingConfig struct {
	Level    string `yaml:"level"`    // debug, info, warn, error
	Encoding string `yaml:"encoding"` // console, json
}

// ValidLevels lists the accepted logging levels.
var ValidLevels = []string{"debug", "info", "warn", "error"}

// Validate checks level and encoding.
func (c *LoggingConfig) Validate() error {
	validLevel := false
	for _, l := range ValidLevels {
		if c.Level == l {
			validLevel = true
			break
		}
	}
	if !validLevel {
		return fmt.Errorf("invalid logging level: %s (valid: %v)", c.Level, ValidLevels)
	}
	if c.Encoding != "console" && c.Encoding != "json" {
		return fmt.Errorf("invalid logging encoding: %s (valid: console, json)", c.Encoding)
	}
	return nil
}
