package driven

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// DocumentSearcher returns ranked chunks of ingested documents for a query.
// The in-process document search service and the remote document service
// client both satisfy it.
type DocumentSearcher interface {
	// Search returns at most topK results ordered by descending score.
	Search(ctx context.Context, query string, topK int) ([]domain.SearchResult, error)
}

// DocumentIngester commits a batch of uploaded documents.
type DocumentIngester interface {
	// Ingest chunks, embeds and commits docs as one batch.
	Ingest(ctx context.Context, docs []domain.Document) (*domain.IngestReport, error)
}
