package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.API.BaseURL != "https://www.hackthebox.com/api/v4" {
		t.Errorf("unexpected BaseURL %s", cfg.API.BaseURL)
	}
	if cfg.API.UserAgent != "ensibs/gcc" {
		t.Errorf("expected UserAgent=ensibs/gcc, got %s", cfg.API.UserAgent)
	}
	if cfg.GetWait() != 20*time.Second {
		t.Errorf("expected 20s wait, got %v", cfg.GetWait())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestConfig_SaveLoad(t *testing.T) {
	// Ensure no env vars interfere
	t.Setenv("HUCT_API_TOKEN", "")
	t.Setenv("HUCT_BASE_URL", "")

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.API.BaseURL = "http://localhost:9999/api/v4"
	cfg.RateLimit.MaxRetries = 2
	cfg.Report.Format = "markdown"

	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9999/api/v4", loaded.API.BaseURL)
	assert.Equal(t, 2, loaded.RateLimit.MaxRetries)
	assert.Equal(t, "markdown", loaded.Report.Format)
	assert.Equal(t, cfg.Logging, loaded.Logging)
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("HUCT_API_TOKEN", "")
	t.Setenv("HUCT_BASE_URL", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	t.Setenv("HUCT_API_TOKEN", "")
	t.Setenv("HUCT_BASE_URL", "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rate_limit:\n  wait: 1s\n"), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, time.Second, cfg.GetWait())
	assert.Equal(t, 5, cfg.RateLimit.MaxRetries)
	assert.Equal(t, "ensibs/gcc", cfg.API.UserAgent)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api: [unclosed"), 0600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestConfig_EnvOverrides(t *testing.T) {
	t.Setenv("HUCT_API_TOKEN", "env-token")
	t.Setenv("HUCT_BASE_URL", "http://proxy:8080/api/v4")

	cfg := DefaultConfig()
	cfg.applyEnvOverrides()

	assert.Equal(t, "env-token", cfg.API.Token)
	assert.Equal(t, "http://proxy:8080/api/v4", cfg.API.BaseURL)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty base url", func(c *Config) { c.API.BaseURL = "" }},
		{"non-http base url", func(c *Config) { c.API.BaseURL = "ftp://example.com" }},
		{"zero page cap", func(c *Config) { c.Pagination.MaxPages = 0 }},
		{"bad format", func(c *Config) { c.Report.Format = "csv" }},
		{"negative retries", func(c *Config) { c.RateLimit.MaxRetries = -1 }},
		{"multiplier below one", func(c *Config) { c.RateLimit.Multiplier = 0.5 }},
		{"unparsable wait", func(c *Config) { c.RateLimit.Wait = "soon" }},
		{"max wait below wait", func(c *Config) { c.RateLimit.MaxWait = "1s" }},
		{"empty sentinel", func(c *Config) { c.RateLimit.Sentinel = "" }},
		{"bad level", func(c *Config) { c.Logging.Level = "trace" }},
		{"bad encoding", func(c *Config) { c.Logging.Encoding = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestConfig_DurationFallbacks(t *testing.T) {
	cfg := &Config{}
	assert.Equal(t, 30*time.Second, cfg.GetRequestTimeout())
	assert.Equal(t, 20*time.Second, cfg.GetWait())
	assert.Equal(t, 5*time.Minute, cfg.GetMaxWait())
	assert.Equal(t, time.Duration(0), cfg.GetMinInterval())
}
