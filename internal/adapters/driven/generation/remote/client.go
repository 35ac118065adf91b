// Package remote provides a Generator backed by a sercha-rag llm service
// reached over HTTP (sercha-rag llm serve).
package remote

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/httpjson"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Ensure Client implements the interface.
var _ driven.Generator = (*Client)(nil)

// DefaultTimeout bounds one generation call.
const DefaultTimeout = 60 * time.Second

const serviceName = "llm-service"

// Config holds configuration for the llm service client.
type Config struct {
	// BaseURL is the llm service root (required).
	BaseURL string

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration
}

// Client calls an llm service.
type Client struct {
	client  *http.Client
	baseURL string

	mu    sync.Mutex
	model string
}

// NewClient creates an llm service client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, domain.ConfigurationError("llm: service URL is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
	}, nil
}

// Generate POSTs the request to /generate and returns the response text.
func (c *Client) Generate(ctx context.Context, req driven.GenerationRequest) (string, error) {
	var resp domain.GenerationResponse
	err := httpjson.Do(ctx, c.client, httpjson.Request{
		Service: serviceName,
		Method:  http.MethodPost,
		URL:     c.baseURL + "/generate",
		Body:    req,
	}, &resp)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	if resp.Model != "" {
		c.mu.Lock()
		c.model = resp.Model
		c.mu.Unlock()
	}
	return resp.Response, nil
}

// ModelInfo fetches GET /model-info.
func (c *Client) ModelInfo(ctx context.Context) (*domain.ModelInfo, error) {
	var info domain.ModelInfo
	err := httpjson.Do(ctx, c.client, httpjson.Request{
		Service: serviceName,
		URL:     c.baseURL + "/model-info",
	}, &info)
	if err != nil {
		return nil, fmt.Errorf("model info: %w", err)
	}
	c.mu.Lock()
	c.model = info.ModelName
	c.mu.Unlock()
	return &info, nil
}

// ModelName returns the last model the service reported, or "remote".
func (c *Client) ModelName() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.model == "" {
		return "remote"
	}
	return c.model
}

// Ping checks GET /health.
func (c *Client) Ping(ctx context.Context) error {
	return httpjson.Do(ctx, c.client, httpjson.Request{
		Service: serviceName,
		URL:     c.baseURL + "/health",
	}, nil)
}

// Close releases resources.
func (c *Client) Close() error {
	return nil
}
