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

// Ensure DocumentSearchService implements the interfaces.
var (
	_ driving.DocumentSearchService = (*DocumentSearchService)(nil)
	_ driven.DocumentSearcher       = (*DocumentSearchService)(nil)
)

// DocumentSearchService searches the in-process vector store.
type DocumentSearchService struct {
	embedder  driven.EmbeddingService
	quantizer *Quantizer
	store     driven.VectorStore
}

// NewDocumentSearchService creates a new document search service.
func NewDocumentSearchService(
	embedder driven.EmbeddingService,
	quantizer *Quantizer,
	store driven.VectorStore,
) *DocumentSearchService {
	return &DocumentSearchService{
		embedder:  embedder,
		quantizer: quantizer,
		store:     store,
	}
}

// Search embeds and quantises the query, then ranks committed chunks by Hamming distance.
func (s *DocumentSearchService) Search(ctx context.Context, query string, topK int) ([]domain.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.ValidationError("query text is required")
	}
	if topK < 1 {
		return nil, domain.ValidationError("top_k must be at least 1, got %d", topK)
	}

	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	vector, err := s.quantizer.QuantizeOne(domain.Embedding(embedding))
	if err != nil {
		return nil, fmt.Errorf("quantize query: %w", err)
	}

	hits, err := s.store.Search(ctx, vector, topK)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	logger.Debug("Vector search returned %d hits (top_k=%d)", len(hits), topK)

	results := make([]domain.SearchResult, len(hits))
	for i, h := range hits {
		results[i] = domain.SearchResult{
			Text:   h.Text,
			Score:  h.Score,
			Source: domain.SourceDocument,
		}
	}
	return results, nil
}
