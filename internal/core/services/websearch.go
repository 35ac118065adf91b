package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Ensure WebSearchService implements the interfaces.
var (
	_ driving.WebSearchService      = (*WebSearchService)(nil)
	_ driving.PagedWebSearchService = (*WebSearchService)(nil)
	_ driving.NewsSearchService     = (*WebSearchService)(nil)
)

// WebSearchService serves web search requests from a local provider.
type WebSearchService struct {
	searcher   driven.WebSearcher
	numResults int
}

// NewWebSearchService creates a web search service.
// A non-positive numResults selects DefaultWebResults.
func NewWebSearchService(searcher driven.WebSearcher, numResults int) *WebSearchService {
	if numResults <= 0 {
		numResults = DefaultWebResults
	}
	return &WebSearchService{searcher: searcher, numResults: numResults}
}

// Search validates the query and calls the provider once.
func (s *WebSearchService) Search(ctx context.Context, query string, n int) ([]domain.WebResult, error) {
	return s.SearchPage(ctx, query, domain.WebSearchOptions{Count: n})
}

// SearchPage is Search with paging and market overrides. Providers without
// paging support are called through Search, which only serves the first page.
func (s *WebSearchService) SearchPage(ctx context.Context, query string, opts domain.WebSearchOptions) ([]domain.WebResult, error) {
	query, opts, err := s.prepare(query, opts)
	if err != nil {
		return nil, err
	}

	var results []domain.WebResult
	if paged, ok := s.searcher.(driven.PagedWebSearcher); ok {
		results, err = paged.SearchPage(ctx, query, opts)
	} else {
		if opts.Offset > 0 {
			return nil, domain.ValidationError("web search provider %s does not support offset", s.searcher.Name())
		}
		if opts.Market != "" {
			logger.Debug("Web search provider %s ignores market %q", s.searcher.Name(), opts.Market)
		}
		results, err = s.searcher.Search(ctx, query, opts.Count)
	}
	if err != nil {
		return nil, fmt.Errorf("web search: %w", err)
	}
	return scored(results), nil
}

// SearchNews searches the provider's news vertical.
func (s *WebSearchService) SearchNews(ctx context.Context, query string, opts domain.WebSearchOptions) ([]domain.WebResult, error) {
	query, opts, err := s.prepare(query, opts)
	if err != nil {
		return nil, err
	}
	news, ok := s.searcher.(driven.NewsSearcher)
	if !ok {
		return nil, fmt.Errorf("%w: web search provider %s has no news search", domain.ErrServiceUnavailable, s.searcher.Name())
	}

	results, err := news.SearchNews(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("news search: %w", err)
	}
	return scored(results), nil
}

// SupportsNews reports whether the provider has a news vertical.
func (s *WebSearchService) SupportsNews() bool {
	_, ok := s.searcher.(driven.NewsSearcher)
	return ok
}

func (s *WebSearchService) prepare(query string, opts domain.WebSearchOptions) (string, domain.WebSearchOptions, error) {
	if s.searcher == nil {
		return "", opts, fmt.Errorf("%w: no web search provider configured", domain.ErrServiceUnavailable)
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return "", opts, domain.ValidationError("query is required")
	}
	if err := opts.Validate(); err != nil {
		return "", opts, err
	}
	if opts.Count <= 0 {
		opts.Count = s.numResults
	}
	return query, opts, nil
}

func scored(results []domain.WebResult) []domain.WebResult {
	for i := range results {
		if results[i].Score == 0 {
			results[i].Score = domain.DefaultWebScore
		}
	}
	return results
}
