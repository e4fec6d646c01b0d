package backend

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Prober issues one liveness check against the backend's health endpoint.
type Prober interface {
	Probe(ctx context.Context) error
}

// httpProber is the production prober: a GET against the fixed health path
// with a short per-probe timeout. Any non-error response counts as alive.
type httpProber struct {
	url    string
	client *http.Client
}

// NewHTTPProber creates a prober for the given base URL and health path.
func NewHTTPProber(baseURL, healthPath string, timeout time.Duration) Prober {
	return &httpProber{
		url:    baseURL + healthPath,
		client: &http.Client{Timeout: timeout},
	}
}

func (p *httpProber) Probe(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("health endpoint returned %d", resp.StatusCode)
	}
	return nil
}
