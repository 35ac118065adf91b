package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// DefaultGenerationTimeout bounds a single generation attempt.
const DefaultGenerationTimeout = 60 * time.Second

// Composition is the generated text and its heuristic confidence.
type Composition struct {
	Text       string
	Confidence float64
}

// ResponseComposer turns a query and its retrieved context into an answer.
type ResponseComposer struct {
	generator driven.Generator
	policy    RetryPolicy
}

// NewResponseComposer creates a composer. The generator may be nil, in which
// case every composition fails with ErrModelUnavailable.
func NewResponseComposer(generator driven.Generator, policy RetryPolicy) *ResponseComposer {
	return &ResponseComposer{
		generator: generator,
		policy:    policy,
	}
}

// Compose generates the answer text under the retry policy.
// Any failure, including a non-retryable upstream error, is reported as ErrModelUnavailable.
func (c *ResponseComposer) Compose(
	ctx context.Context, query, contextText string, maxTokens int, temperature float64,
) (*Composition, error) {
	logger.Section("Generation")

	if c.generator == nil {
		return nil, fmt.Errorf("%w: no generator configured", domain.ErrModelUnavailable)
	}

	req := driven.GenerationRequest{
		Query:       query,
		Context:     contextText,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}
	logger.Debug("Model: %s, max_tokens=%d, temperature=%.2f, context=%d chars",
		c.generator.ModelName(), maxTokens, temperature, len(contextText))

	text, err := Retry(ctx, c.policy, "generation", func(ctx context.Context) (string, error) {
		return c.generator.Generate(ctx, req)
	})
	if err != nil {
		logger.Error("Generation failed: %v", err)
		if errors.Is(err, domain.ErrModelUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrModelUnavailable, err)
	}

	return &Composition{
		Text:       strings.TrimSpace(text),
		Confidence: domain.ConfidenceFor(contextText),
	}, nil
}
