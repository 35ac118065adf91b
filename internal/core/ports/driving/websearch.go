package driving

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// WebSearchService searches the web. It backs the websearch service role.
type WebSearchService interface {
	// Search returns at most n results. A non-positive n selects the default.
	Search(ctx context.Context, query string, n int) ([]domain.WebResult, error)
}

// PagedWebSearchService searches the web with per-call paging and market.
type PagedWebSearchService interface {
	// SearchPage returns one page of results. A non-positive Count selects the default.
	SearchPage(ctx context.Context, query string, opts domain.WebSearchOptions) ([]domain.WebResult, error)
}

// NewsSearchService searches recent news articles.
type NewsSearchService interface {
	// SearchNews returns one page of news. A non-positive Count selects the default.
	SearchNews(ctx context.Context, query string, opts domain.WebSearchOptions) ([]domain.WebResult, error)
}
