package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Ensure QueryService implements the interface.
var _ driving.QueryService = (*QueryService)(nil)

// QueryService answers questions by retrieving context and composing a response.
type QueryService struct {
	retriever *RetrievalOrchestrator
	composer  *ResponseComposer
}

// NewQueryService creates a new query service.
func NewQueryService(retriever *RetrievalOrchestrator, composer *ResponseComposer) *QueryService {
	return &QueryService{
		retriever: retriever,
		composer:  composer,
	}
}

// Query validates the request, retrieves context and generates the answer.
// Retrieval failures never fail the request; generation failures always do.
func (s *QueryService) Query(ctx context.Context, req domain.QueryRequest) (*domain.Answer, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	logger.Debug("Query: %q (documents=%t, web=%t)", req.Query, req.UseDocuments, req.UseWebSearch)

	qc := s.retriever.Retrieve(ctx, req.Query, req.UseDocuments, req.UseWebSearch)

	composed, err := s.composer.Compose(ctx, req.Query, qc.ContextText, req.MaxTokens, req.Temperature)
	if err != nil {
		return nil, fmt.Errorf("compose answer: %w", err)
	}

	return &domain.Answer{
		Text:       composed.Text,
		Sources:    qc.Sources,
		Method:     qc.Method,
		Confidence: composed.Confidence,
	}, nil
}
