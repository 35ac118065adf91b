package driving

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// IngestService turns uploaded documents into searchable vectors.
type IngestService interface {
	// Ingest processes docs as one batch. Any per-document failure fails the batch
	// and nothing from it becomes searchable.
	Ingest(ctx context.Context, docs []domain.Document) (*domain.IngestReport, error)

	// Reset drops every committed vector and recreates the collection.
	Reset(ctx context.Context) error
}
