// Package health provides driven.HealthProbe adapters for the health aggregator.
package health

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/httpjson"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Ensure probes implement the interface.
var (
	_ driven.HealthProbe = (*PingProbe)(nil)
	_ driven.HealthProbe = (*HTTPProbe)(nil)
)

// ErrNotReady is returned when a service answers but reports itself unhealthy.
var ErrNotReady = errors.New("service not ready")

const maxBody = 64 << 10

// Pinger is anything with a liveness check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingProbe reports a Pinger under a fixed name.
type PingProbe struct {
	name   string
	pinger Pinger
}

// NewPingProbe wraps p.
func NewPingProbe(name string, p Pinger) *PingProbe {
	return &PingProbe{name: name, pinger: p}
}

// Name returns the report key.
func (p *PingProbe) Name() string {
	return p.name
}

// Ping delegates to the wrapped Pinger.
func (p *PingProbe) Ping(ctx context.Context) error {
	return p.pinger.Ping(ctx)
}

// HTTPProbe calls GET {baseURL}/health.
// A 2xx body carrying a status other than "healthy" counts as not ready.
type HTTPProbe struct {
	name   string
	url    string
	client *http.Client
}

// statusBody is the optional /health response shape.
type statusBody struct {
	Status string `json:"status"`
}

// NewHTTPProbe creates a probe for the service at baseURL.
func NewHTTPProbe(name, baseURL string, timeout time.Duration) *HTTPProbe {
	return &HTTPProbe{
		name:   name,
		url:    strings.TrimRight(baseURL, "/") + "/health",
		client: &http.Client{Timeout: timeout},
	}
}

// Name returns the report key.
func (p *HTTPProbe) Name() string {
	return p.name
}

// Ping performs the health request. A body that is not JSON is ignored.
func (p *HTTPProbe) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, http.NoBody)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", p.name, err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return domain.ClassifyTransportError(p.name, fmt.Errorf("send request: %w", err))
	}
	defer resp.Body.Close()

	if err := httpjson.CheckStatus(resp, p.name); err != nil {
		return err
	}

	var body statusBody
	_ = json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(&body)
	if body.Status != "" && body.Status != string(domain.HealthHealthy) {
		return fmt.Errorf("%w: %s reported %q", ErrNotReady, p.name, body.Status)
	}
	return nil
}
