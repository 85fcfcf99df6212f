package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all huct configuration.
type Config struct {
	// Remote API
	API APIConfig `yaml:"api"`

	// Rate-limit sentinel handling and client-side pacing
	RateLimit RateLimitConfig `yaml:"rate_limit"`

	// Pagination safety cap
	Pagination PaginationConfig `yaml:"pagination"`

	// Report output
	Report ReportConfig `yaml:"report"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// APIConfig configures the platform API client.
type APIConfig struct {
	BaseURL   string `yaml:"base_url"`
	UserAgent string `yaml:"user_agent"`
	Token     string `yaml:"token,omitempty"` // usually passed on the command line instead
	Timeout   string `yaml:"timeout"`         // per request
}

// PaginationConfig bounds paginated listings.
type PaginationConfig struct {
	MaxPages int `yaml:"max_pages"` // abort instead of looping forever on a misbehaving server
}

// ReportConfig configures the final report.
type ReportConfig struct {
	Format string `yaml:"format"` // text, markdown, pretty
	Width  int    `yaml:"width"`  // word wrap for the pretty renderer
	Style  string `yaml:"style"`  // glamour style: auto, dark, light, notty or a JSON style path
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:   "https://www.hackthebox.com/api/v4",
			UserAgent: "ensibs/gcc",
			Timeout:   "30s",
		},

		RateLimit: RateLimitConfig{
			Sentinel:    "Too Many Attempts.",
			Wait:        "20s",
			MaxRetries:  5,
			Multiplier:  1,
			MaxWait:     "5m",
			MinInterval: "0s",
		},

		Pagination: PaginationConfig{
			MaxPages: 500,
		},

		Report: ReportConfig{
			Format: "text",
			Width:  100,
			Style:  "auto",
		},

		Logging: LoggingConfig{
			Level:    "info",
			Encoding: "console",
		},
	}
}

// DefaultPath returns ~/.config/huct/config.yaml, or a relative fallback
// when the home directory cannot be resolved.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".huct", "config.yaml")
	}
	return filepath.Join(dir, "huct", "config.yaml")
}

// Load loads configuration from a YAML file on top of the defaults.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Override with environment variables
	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if token := os.Getenv("HUCT_API_TOKEN"); token != "" {
		c.API.Token = token
	}
	if url := os.Getenv("HUCT_BASE_URL"); url != "" {
		c.API.BaseURL = url
	}
}

// GetRequestTimeout returns the per-request timeout as a duration.
func (c *Config) GetRequestTimeout() time.Duration {
	return parseDuration(c.API.Timeout, 30*time.Second)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

// ValidFormats lists the supported report formats.
var ValidFormats = []string{"text", "markdown", "pretty"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url must not be empty")
	}
	if !strings.HasPrefix(c.API.BaseURL, "http://") && !strings.HasPrefix(c.API.BaseURL, "https://") {
		return fmt.Errorf("api.base_url must be an http(s) URL: %s", c.API.BaseURL)
	}
	if c.Pagination.MaxPages < 1 {
		return fmt.Errorf("pagination.max_pages must be >= 1")
	}

	validFormat := false
	for _, f := range ValidFormats {
		if c.Report.Format == f {
			validFormat = true
			break
		}
	}
	if !validFormat {
		return fmt.Errorf("invalid report format: %s (valid: %v)", c.Report.Format, ValidFormats)
	}

	if err := c.ValidateRateLimit(); err != nil {
		return err
	}
	return c.Logging.Validate()
}
