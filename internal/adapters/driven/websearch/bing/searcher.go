// Package bing provides web and news search adapters for the Bing Search v7 API.
package bing

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/httpjson"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Ensure Searcher implements the interfaces.
var (
	_ driven.WebSearcher      = (*Searcher)(nil)
	_ driven.PagedWebSearcher = (*Searcher)(nil)
	_ driven.NewsSearcher     = (*Searcher)(nil)
)

// Default configuration values.
const (
	DefaultAPIURL  = "https://api.bing.microsoft.com/"
	DefaultMarket  = "en-US"
	DefaultTimeout = 30 * time.Second

	// MaxCount is the largest page size the API accepts.
	MaxCount = 50

	serviceName = "bing"
)

// Config holds configuration for the Bing searcher.
type Config struct {
	// APIKey is the Ocp-Apim-Subscription-Key (required).
	APIKey string

	// APIURL is the API root ending in a slash (default: https://api.bing.microsoft.com/).
	APIURL string

	// Market is the mkt parameter (default: en-US).
	Market string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration

	// RateLimit throttles outgoing requests (default: 3 per second).
	RateLimit RateLimitConfig
}

// Searcher queries Bing Web Search.
type Searcher struct {
	client  *http.Client
	apiURL  string
	apiKey  string
	market  string
	limiter *RateLimiter
}

// searchResponse is the subset of the v7 response that is used.
type searchResponse struct {
	WebPages struct {
		Value []webPage `json:"value"`
	} `json:"webPages"`
}

type webPage struct {
	Name       string `json:"name"`
	URL        string `json:"url"`
	Snippet    string `json:"snippet"`
	DisplayURL string `json:"displayUrl"`
}

// newsResponse is the subset of the v7 news response that is used.
type newsResponse struct {
	Value []newsArticle `json:"value"`
}

type newsArticle struct {
	Name          string `json:"name"`
	URL           string `json:"url"`
	Description   string `json:"description"`
	DatePublished string `json:"datePublished"`
	Provider      []struct {
		Name string `json:"name"`
	} `json:"provider"`
}

// content prefixes the description with the publisher and date when known.
func (a newsArticle) content() string {
	var meta []string
	if len(a.Provider) > 0 && a.Provider[0].Name != "" {
		meta = append(meta, a.Provider[0].Name)
	}
	if a.DatePublished != "" {
		meta = append(meta, a.DatePublished)
	}
	if len(meta) == 0 {
		return a.Description
	}
	return "(" + strings.Join(meta, ", ") + ") " + a.Description
}

// NewSearcher creates a new Bing searcher.
func NewSearcher(cfg Config) (*Searcher, error) {
	if cfg.APIKey == "" {
		return nil, domain.ConfigurationError("bing: API key is required")
	}
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	if !strings.HasSuffix(cfg.APIURL, "/") {
		cfg.APIURL += "/"
	}
	if cfg.Market == "" {
		cfg.Market = DefaultMarket
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Searcher{
		client:  &http.Client{Timeout: cfg.Timeout},
		apiURL:  cfg.APIURL,
		apiKey:  cfg.APIKey,
		market:  cfg.Market,
		limiter: NewRateLimiter(cfg.RateLimit),
	}, nil
}

// Name identifies the provider.
func (s *Searcher) Name() string {
	return serviceName
}

// Search returns at most n web pages for query. n is capped at MaxCount.
func (s *Searcher) Search(ctx context.Context, query string, n int) ([]domain.WebResult, error) {
	return s.SearchPage(ctx, query, domain.WebSearchOptions{Count: n})
}

// SearchPage queries v7.0/search with an explicit offset and market.
// An empty Market selects the configured one.
func (s *Searcher) SearchPage(ctx context.Context, query string, opts domain.WebSearchOptions) ([]domain.WebResult, error) {
	params, err := s.params(query, opts)
	if err != nil {
		return nil, err
	}
	params.Set("textFormat", "HTML")

	var resp searchResponse
	if err := s.get(ctx, "v7.0/search", params, &resp); err != nil {
		return nil, fmt.Errorf("web search: %w", err)
	}

	results := make([]domain.WebResult, 0, len(resp.WebPages.Value))
	for _, page := range resp.WebPages.Value {
		results = append(results, domain.WebResult{
			Title:   page.Name,
			URL:     page.URL,
			Content: page.Snippet,
			Score:   1.0,
		})
	}
	return truncate(results, opts.Count), nil
}

// SearchNews queries v7.0/news/search. Freshness narrows results to the
// last day, week or month.
func (s *Searcher) SearchNews(ctx context.Context, query string, opts domain.WebSearchOptions) ([]domain.WebResult, error) {
	params, err := s.params(query, opts)
	if err != nil {
		return nil, err
	}
	if opts.Freshness != "" {
		params.Set("freshness", opts.Freshness)
	}

	var resp newsResponse
	if err := s.get(ctx, "v7.0/news/search", params, &resp); err != nil {
		return nil, fmt.Errorf("news search: %w", err)
	}

	results := make([]domain.WebResult, 0, len(resp.Value))
	for _, article := range resp.Value {
		results = append(results, domain.WebResult{
			Title:   article.Name,
			URL:     article.URL,
			Content: article.content(),
			Score:   1.0,
		})
	}
	return truncate(results, opts.Count), nil
}

// params validates a request and builds the query parameters both
// verticals share.
func (s *Searcher) params(query string, opts domain.WebSearchOptions) (url.Values, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.ValidationError("query is required")
	}
	if opts.Count <= 0 {
		return nil, domain.ValidationError("result count must be positive, got %d", opts.Count)
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	market := opts.Market
	if market == "" {
		market = s.market
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("count", strconv.Itoa(min(opts.Count, MaxCount)))
	params.Set("offset", strconv.Itoa(opts.Offset))
	params.Set("mkt", market)
	return params, nil
}

// get waits for the rate limiter and decodes one API response into out.
func (s *Searcher) get(ctx context.Context, path string, params url.Values, out any) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return domain.ClassifyTransportError(serviceName, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.apiURL+path+"?"+params.Encode(), http.NoBody)
	if err != nil {
		return fmt.Errorf("bing: create request: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", s.apiKey)
	req.Header.Set("Accept", "application/json")

	if err := httpjson.Send(s.client, req, serviceName, out); err != nil {
		s.noteRateLimit(err)
		return err
	}
	return nil
}

func truncate(results []domain.WebResult, n int) []domain.WebResult {
	if len(results) > n {
		return results[:n]
	}
	return results
}

// noteRateLimit backs off after a 429. Bing does not send Retry-After on
// every throttled response, so the default backoff applies then.
func (s *Searcher) noteRateLimit(err error) {
	var upstream *domain.UpstreamHTTPError
	if errors.As(err, &upstream) && upstream.StatusCode == http.StatusTooManyRequests {
		s.limiter.RecordRateLimitError(DefaultRetryAfter)
	}
}

// Ping issues a one-result search to validate the key and endpoint.
func (s *Searcher) Ping(ctx context.Context) error {
	_, err := s.Search(ctx, "health", 1)
	return err
}

// Close releases resources.
func (s *Searcher) Close() error {
	return nil
}
