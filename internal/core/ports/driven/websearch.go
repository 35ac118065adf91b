package driven

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// WebSearcher returns ranked web snippets for a query.
// This is an optional service - when nil, the web fallback is skipped.
type WebSearcher interface {
	// Search returns at most n results.
	Search(ctx context.Context, query string, n int) ([]domain.WebResult, error)

	// Name identifies the provider for logs and health reports.
	Name() string

	// Ping validates the provider is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// PagedWebSearcher is implemented by providers that accept paging and a
// market per call.
type PagedWebSearcher interface {
	SearchPage(ctx context.Context, query string, opts domain.WebSearchOptions) ([]domain.WebResult, error)
}

// NewsSearcher is implemented by providers with a news vertical.
type NewsSearcher interface {
	SearchNews(ctx context.Context, query string, opts domain.WebSearchOptions) ([]domain.WebResult, error)
}
