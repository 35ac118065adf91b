package driving

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// DocumentSearchService answers similarity queries against the local index.
type DocumentSearchService interface {
	// Search returns at most topK chunks, nearest first.
	// An empty index yields an empty slice, not an error.
	Search(ctx context.Context, query string, topK int) ([]domain.SearchResult, error)
}
