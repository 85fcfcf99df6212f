// Package htb talks to the Hack The Box v4 API and materializes its catalog,
// organization roster and member activity into a catalog.Registry.
package htb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"huct/internal/metrics"
)

// maxBodyBytes bounds a single response body.
const maxBodyBytes = 32 << 20

// HTTPClient allows injecting a custom transport (tests, proxies).
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig configures the API client.
type ClientConfig struct {
	BaseURL     string
	Token       string
	UserAgent   string
	Timeout     time.Duration // per request
	Sentinel    string        // top-level "message" value that signals throttling
	Backoff     Backoff
	MinInterval time.Duration // spacing between requests, 0 disables pacing
}

// DefaultClientConfig returns the settings the platform is known to accept.
func DefaultClientConfig(token string) ClientConfig {
	return ClientConfig{
		BaseURL:   "https://www.hackthebox.com/api/v4",
		Token:     token,
		UserAgent: "ensibs/gcc",
		Timeout:   30 * time.Second,
		Sentinel:  "Too Many Attempts.",
		Backoff:   DefaultBackoff(),
	}
}

// Client performs authenticated GET requests and absorbs the platform's
// rate-limit sentinel. It is meant for a single flow of control.
type Client struct {
	cfg        ClientConfig
	httpClient HTTPClient
	limiter    *rate.Limiter
	sleep      SleepFunc
	logger     *zap.Logger
	metrics    *metrics.Metrics
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default *http.Client.
func WithHTTPClient(hc HTTPClient) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithMetrics records request and retry counters.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithSleep replaces the wait used between throttled retries.
func WithSleep(fn SleepFunc) Option {
	return func(c *Client) { c.sleep = fn }
}

// NewClient creates a client.
func NewClient(cfg ClientConfig, opts ...Option) *Client {
	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Inf, 1),
		sleep:      sleepContext,
		logger:     zap.NewNop(),
	}
	if cfg.MinInterval > 0 {
		c.limiter = rate.NewLimiter(rate.Every(cfg.MinInterval), 1)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get requests path (relative to the base URL) and returns the raw JSON body.
//
// The body is always parsed as JSON; anything else is ErrMalformedResponse.
// A body carrying the rate-limit sentinel is retried after a wait, at most
// Backoff.MaxRetries times. HTTP status codes are not interpreted: the body
// is handed back as is and callers detect unexpected shapes while decoding.
// endpoint is a short logical name used for logs and metrics.
func (c *Client) Get(ctx context.Context, endpoint, path string) (json.RawMessage, error) {
	for attempt := 0; ; attempt++ {
		body, err := c.do(ctx, endpoint, path)
		if err != nil {
			return nil, err
		}
		if !c.rateLimited(body) {
			return body, nil
		}

		c.metrics.ObserveRateLimit(endpoint)
		if attempt >= c.cfg.Backoff.MaxRetries {
			c.logger.Error("Rate limit retries exhausted",
				zap.String("endpoint", endpoint),
				zap.String("path", path),
				zap.Int("retries", attempt))
			return nil, fmt.Errorf("%w: GET %s after %d retries", ErrRateLimited, path, attempt)
		}

		wait := c.cfg.Backoff.Delay(attempt)
		c.logger.Warn("Too Many Attempts. Sleeping before retrying",
			zap.String("endpoint", endpoint),
			zap.Duration("wait", wait),
			zap.Int("retry", attempt+1),
			zap.Int("max_retries", c.cfg.Backoff.MaxRetries))
		if err := c.sleep(ctx, wait); err != nil {
			return nil, err
		}
	}
}

func (c *Client) do(ctx context.Context, endpoint, path string) (json.RawMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + path
	c.logger.Debug("Fetching", zap.String("endpoint", endpoint), zap.String("url", url))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	c.metrics.ObserveRequest(endpoint, resp.StatusCode)

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("GET %s: failed to read response: %w", path, err)
	}

	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: GET %s returned non-JSON body (status %d): %s",
			ErrMalformedResponse, path, resp.StatusCode, snippet(body))
	}
	c.logger.Debug("Fetched",
		zap.String("endpoint", endpoint),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)))

	return body, nil
}

// rateLimited reports whether body is an object whose "message" equals the sentinel.
func (c *Client) rateLimited(body json.RawMessage) bool {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return false
	}
	var probe struct {
		Message any `json:"message"`
	}
	if err := json.Unmarshal(trimmed, &probe); err != nil {
		return false
	}
	msg, ok := probe.Message.(string)
	return ok && msg == c.cfg.Sentinel
}

func snippet(b []byte) string {
	const limit = 120
	s := strings.TrimSpace(string(b))
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
