// Package remote provides a client for a sercha-rag document service
// reached over HTTP (sercha-rag docs serve).
package remote

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/httpjson"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Ensure Client implements the interfaces.
var (
	_ driven.DocumentSearcher = (*Client)(nil)
	_ driven.DocumentIngester = (*Client)(nil)
)

// Default configuration values.
const (
	DefaultSearchTimeout = 30 * time.Second
	DefaultIngestTimeout = 380 * time.Second

	serviceName = "documents"
)

// Config holds configuration for the document service client.
type Config struct {
	// BaseURL is the document service root, e.g. http://document-service:8001 (required).
	BaseURL string

	// SearchTimeout bounds one search call (default: 30s).
	SearchTimeout time.Duration

	// IngestTimeout bounds one upload call (default: 380s).
	IngestTimeout time.Duration
}

// Client calls the document service.
type Client struct {
	baseURL      string
	searchClient *http.Client
	ingestClient *http.Client
}

// SearchRequest is the /search request body.
type SearchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

// SearchResponse is the /search response body.
type SearchResponse struct {
	Results []domain.SearchResult `json:"results"`
}

// NewClient creates a document service client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, domain.ConfigurationError("documents: service URL is required")
	}
	if cfg.SearchTimeout == 0 {
		cfg.SearchTimeout = DefaultSearchTimeout
	}
	if cfg.IngestTimeout == 0 {
		cfg.IngestTimeout = DefaultIngestTimeout
	}
	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		searchClient: &http.Client{Timeout: cfg.SearchTimeout},
		ingestClient: &http.Client{Timeout: cfg.IngestTimeout},
	}, nil
}

// Search returns at most topK ranked chunks.
func (c *Client) Search(ctx context.Context, query string, topK int) ([]domain.SearchResult, error) {
	var resp SearchResponse
	err := httpjson.Do(ctx, c.searchClient, httpjson.Request{
		Service: serviceName,
		Method:  http.MethodPost,
		URL:     c.baseURL + "/search",
		Body:    SearchRequest{Query: query, TopK: topK},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("document search: %w", err)
	}

	results := resp.Results
	if len(results) > topK {
		results = results[:topK]
	}
	for i := range results {
		results[i].Source = domain.SourceDocument
	}
	return results, nil
}

// Ingest uploads docs as one multipart batch under the "files" field.
func (c *Client) Ingest(ctx context.Context, docs []domain.Document) (*domain.IngestReport, error) {
	if len(docs) == 0 {
		return nil, domain.ValidationError("no files provided")
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for _, doc := range docs {
		name := doc.Name
		if name == "" {
			name = doc.ID + ".txt"
		}
		part, err := w.CreateFormFile("files", name)
		if err != nil {
			return nil, fmt.Errorf("create form file: %w", err)
		}
		if _, err := part.Write([]byte(doc.Content)); err != nil {
			return nil, fmt.Errorf("write form file: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload-documents", &body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	var report domain.IngestReport
	if err := httpjson.Send(c.ingestClient, req, serviceName, &report); err != nil {
		return nil, fmt.Errorf("upload documents: %w", err)
	}
	return &report, nil
}

// Name identifies the collaborator in health reports.
func (c *Client) Name() string {
	return "document-service"
}

// Ping checks GET /health.
func (c *Client) Ping(ctx context.Context) error {
	return httpjson.Do(ctx, c.searchClient, httpjson.Request{
		Service: serviceName,
		URL:     c.baseURL + "/health",
	}, nil)
}

// Close releases resources.
func (c *Client) Close() error {
	return nil
}
