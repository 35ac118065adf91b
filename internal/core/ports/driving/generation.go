package driving

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// GenerationService answers a query from supplied context. It backs the llm service role.
type GenerationService interface {
	// Generate fills request defaults and returns the generated text with its metadata.
	Generate(ctx context.Context, req driven.GenerationRequest) (*domain.GenerationResponse, error)

	// ModelInfo describes the model behind the service.
	ModelInfo() domain.ModelInfo
}
