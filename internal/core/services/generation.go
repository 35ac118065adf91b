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

// Ensure GenerationService implements the interface.
var _ driving.GenerationService = (*GenerationService)(nil)

// DefaultServiceMaxTokens applies when a /generate request omits max_tokens.
const DefaultServiceMaxTokens = 512

// GenerationService serves generation requests from a local generator.
type GenerationService struct {
	generator driven.Generator
}

// NewGenerationService creates a generation service. The generator may be nil,
// in which case every request fails with ErrModelUnavailable.
func NewGenerationService(generator driven.Generator) *GenerationService {
	return &GenerationService{generator: generator}
}

// Generate validates req, applies defaults and calls the generator once.
func (s *GenerationService) Generate(
	ctx context.Context, req driven.GenerationRequest,
) (*domain.GenerationResponse, error) {
	if s.generator == nil {
		return nil, fmt.Errorf("%w: model not loaded", domain.ErrModelUnavailable)
	}
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		return nil, domain.ValidationError("query is required")
	}
	if req.MaxTokens < 0 {
		return nil, domain.ValidationError("max_tokens must not be negative")
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = DefaultServiceMaxTokens
	}
	if req.Temperature < 0 || req.Temperature > domain.MaxTemperature {
		return nil, domain.ValidationError("temperature must be between 0 and %.1f", domain.MaxTemperature)
	}

	logger.Debug("Generate: %d context chars, max_tokens=%d", len(req.Context), req.MaxTokens)
	text, err := s.generator.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}

	return &domain.GenerationResponse{
		Response:        text,
		Model:           s.generator.ModelName(),
		TokensGenerated: len(strings.Fields(text)),
		Temperature:     req.Temperature,
		MaxTokens:       req.MaxTokens,
	}, nil
}

// ModelInfo reports the generator model and whether one is loaded.
func (s *GenerationService) ModelInfo() domain.ModelInfo {
	if s.generator == nil {
		return domain.ModelInfo{}
	}
	return domain.ModelInfo{ModelName: s.generator.ModelName(), ModelLoaded: true}
}
