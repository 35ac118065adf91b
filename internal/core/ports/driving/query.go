package driving

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// QueryService answers natural-language questions.
type QueryService interface {
	// Query retrieves context and generates an answer.
	// It fails only when the request is invalid or generation is unavailable.
	Query(ctx context.Context, req domain.QueryRequest) (*domain.Answer, error)
}
