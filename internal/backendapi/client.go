// Package backendapi is the host-side HTTP client for the backend worker's
// API. The supervisor only probes liveness; this client is for everything
// richer (status queries from the CLI, detailed health payloads).
package backendapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
)

// Health is the backend's health report.
type Health struct {
	Status  string `json:"status"`
	Service string `json:"service,omitempty"`
	Version string `json:"version,omitempty"`
}

// Healthy reports whether the payload indicates a usable backend.
func (h Health) Healthy() bool {
	return h.Status == "healthy" || h.Status == "ok"
}

// SystemMetrics is the resource snapshot in the detailed health report.
type SystemMetrics struct {
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent"`
	DiskPercent   float64 `json:"disk_percent"`
}

// DetailedHealth extends Health with uptime and system metrics.
type DetailedHealth struct {
	Health
	UptimeSeconds float64       `json:"uptime_seconds,omitempty"`
	System        SystemMetrics `json:"system"`
}

// Client talks to the backend worker over loopback HTTP with bounded
// retries on transient failures.
type Client struct {
	baseURL    string
	healthPath string
	http       *retryablehttp.Client
}

// New creates a client for the backend at baseURL.
func New(baseURL, healthPath string, logger zerolog.Logger) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 2
	rc.RetryWaitMin = 100 * time.Millisecond
	rc.RetryWaitMax = 500 * time.Millisecond
	rc.HTTPClient.Timeout = 5 * time.Second
	rc.Logger = retryLogger{logger}

	return &Client{
		baseURL:    baseURL,
		healthPath: healthPath,
		http:       rc,
	}
}

// BaseURL returns the backend's base address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// CheckHealth fetches and decodes the backend's health endpoint.
func (c *Client) CheckHealth(ctx context.Context) (Health, error) {
	var health Health
	if err := c.getJSON(ctx, c.healthPath, &health); err != nil {
		return health, err
	}
	return health, nil
}

// CheckDetailedHealth fetches the backend's detailed health report with
// system metrics.
func (c *Client) CheckDetailedHealth(ctx context.Context) (DetailedHealth, error) {
	var health DetailedHealth
	if err := c.getJSON(ctx, c.healthPath+"/detailed", &health); err != nil {
		return health, err
	}
	return health, nil
}

func (c *Client) getJSON(ctx context.Context, path string, v interface{}) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("backend unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("backend returned %d for %s", resp.StatusCode, path)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("malformed response from %s: %w", path, err)
	}
	return nil
}

// retryLogger adapts zerolog to retryablehttp's leveled logger.
type retryLogger struct {
	logger zerolog.Logger
}

func (l retryLogger) Error(msg string, kv ...interface{}) { l.logger.Error().Fields(kv).Msg(msg) }
func (l retryLogger) Warn(msg string, kv ...interface{})  { l.logger.Warn().Fields(kv).Msg(msg) }
func (l retryLogger) Info(msg string, kv ...interface{})  { l.logger.Debug().Fields(kv).Msg(msg) }
func (l retryLogger) Debug(msg string, kv ...interface{}) { l.logger.Debug().Fields(kv).Msg(msg) }
