// Package dedup provides a processor that drops repeated chunks.
package dedup

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// Processor removes chunks whose text hash already appeared earlier in the
// same document. Surviving chunks are renumbered in order.
// It implements the PostProcessor interface.
type Processor struct{}

// New creates a new dedup processor.
func New() *Processor {
	return &Processor{}
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "dedup"
}

// Process filters chunks produced by earlier processors.
func (p *Processor) Process(_ context.Context, _ *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error) {
	if len(chunks) == 0 {
		return chunks, nil
	}

	seen := make(map[string]struct{}, len(chunks))
	out := make([]domain.Chunk, 0, len(chunks))
	for _, c := range chunks {
		h := domain.HashText(c.Text)
		if _, dup := seen[h]; dup {
			continue
		}
		seen[h] = struct{}{}
		c.SequenceIndex = len(out)
		out = append(out, c)
	}
	return out, nil
}
