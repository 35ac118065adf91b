// Package chunker provides a fixed-size text chunking processor.
package chunker

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultMinLength is the trimmed length at or below which a window is dropped.
const DefaultMinLength = 50

// Processor splits document content into consecutive, non-overlapping windows.
// It implements the PostProcessor interface.
type Processor struct {
	chunkSize int
	minLength int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
// Non-positive sizes are rejected by New.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		p.chunkSize = size
	}
}

// WithMinLength sets the trimmed length at or below which windows are dropped.
func WithMinLength(n int) Option {
	return func(p *Processor) {
		if n >= 0 {
			p.minLength = n
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) (*Processor, error) {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		minLength: DefaultMinLength,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.chunkSize <= 0 {
		return nil, domain.ValidationError("chunk size must be positive, got %d", p.chunkSize)
	}

	return p, nil
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkSize returns the window size in characters.
func (p *Processor) ChunkSize() int {
	return p.chunkSize
}

// Process splits the document content into chunks.
// Input chunks are ignored; this processor creates new chunks from document content.
func (p *Processor) Process(_ context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	windows := split(doc.Content, p.chunkSize, p.minLength)
	if len(windows) == 0 {
		return nil, nil
	}

	chunks := make([]domain.Chunk, len(windows))
	for i, w := range windows {
		chunks[i] = domain.Chunk{
			Text:          w,
			SourceDocID:   doc.ID,
			SequenceIndex: i,
		}
	}
	return chunks, nil
}

// Chunk splits text into windows of at most maxLen characters with the default
// tail filter. It fails only when maxLen is not positive.
func Chunk(text string, maxLen int) ([]domain.Chunk, error) {
	p, err := New(WithChunkSize(maxLen))
	if err != nil {
		return nil, err
	}
	return p.Process(context.Background(), &domain.Document{Content: text}, nil)
}

// split cuts text every size runes and drops windows whose trimmed
// rune count is at most minLength. Windows keep their surrounding whitespace.
func split(text string, size, minLength int) []string {
	if text == "" {
		return nil
	}

	var windows []string
	start := 0
	count := 0
	for i := range text {
		if count == size {
			windows = appendWindow(windows, text[start:i], minLength)
			start = i
			count = 0
		}
		count++
	}
	return appendWindow(windows, text[start:], minLength)
}

func appendWindow(windows []string, w string, minLength int) []string {
	if utf8.RuneCountInString(strings.TrimSpace(w)) <= minLength {
		return windows
	}
	return append(windows, w)
}
