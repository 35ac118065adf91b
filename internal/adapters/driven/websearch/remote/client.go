// Package remote provides a web search client for a sercha-rag websearch
// service reached over HTTP (sercha-rag websearch serve).
package remote

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/httpjson"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Ensure Client implements the interface.
var _ driven.WebSearcher = (*Client)(nil)

// DefaultTimeout bounds one search call.
const DefaultTimeout = 30 * time.Second

const serviceName = "web-search-service"

// Config holds configuration for the web search client.
type Config struct {
	// BaseURL is the websearch service root (required).
	BaseURL string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration
}

// Client calls a websearch service.
type Client struct {
	client  *http.Client
	baseURL string
}

// SearchRequest is the /search request body.
type SearchRequest struct {
	Query      string `json:"query"`
	NumResults int    `json:"num_results"`
}

// SearchResponse is the /search response body.
type SearchResponse struct {
	Results []WireResult `json:"results"`
}

// WireResult is one result on the wire. Score is optional.
type WireResult struct {
	Title   string   `json:"title"`
	URL     string   `json:"url,omitempty"`
	Content string   `json:"content"`
	Score   *float64 `json:"score,omitempty"`
}

// NewClient creates a websearch service client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, domain.ConfigurationError("web search: service URL is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
	}, nil
}

// Name identifies the collaborator.
func (c *Client) Name() string {
	return serviceName
}

// Search returns at most n results. Missing scores default to 0.5.
func (c *Client) Search(ctx context.Context, query string, n int) ([]domain.WebResult, error) {
	var resp SearchResponse
	err := httpjson.Do(ctx, c.client, httpjson.Request{
		Service: serviceName,
		Method:  http.MethodPost,
		URL:     c.baseURL + "/search",
		Body:    SearchRequest{Query: query, NumResults: n},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("web search: %w", err)
	}

	results := make([]domain.WebResult, 0, len(resp.Results))
	for _, r := range resp.Results {
		score := domain.DefaultWebScore
		if r.Score != nil {
			score = *r.Score
		}
		results = append(results, domain.WebResult{
			Title:   r.Title,
			URL:     r.URL,
			Content: r.Content,
			Score:   score,
		})
	}
	if n > 0 && len(results) > n {
		results = results[:n]
	}
	return results, nil
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
