package services

import (
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// Quantizer converts dense embeddings into packed binary vectors.
// The dimension is fixed at construction and must be divisible by 8 so that
// every row packs into whole bytes and compares bit-exactly with every other.
type Quantizer struct {
	dimension int
}

// NewQuantizer creates a quantizer for embeddings of the given dimension.
func NewQuantizer(dimension int) (*Quantizer, error) {
	if dimension <= 0 {
		return nil, domain.ConfigurationError("embedding dimension must be positive, got %d", dimension)
	}
	if dimension%8 != 0 {
		return nil, domain.ConfigurationError(
			"embedding dimension %d is not divisible by 8, binary vectors would need padding", dimension)
	}
	return &Quantizer{dimension: dimension}, nil
}

// Dimension returns the embedding dimension.
func (q *Quantizer) Dimension() int {
	return q.dimension
}

// Bytes returns the packed vector length.
func (q *Quantizer) Bytes() int {
	return q.dimension / 8
}

// Quantize packs every embedding. It fails if any embedding has the wrong dimension.
func (q *Quantizer) Quantize(embeddings []domain.Embedding) ([]domain.BinaryVector, error) {
	out := make([]domain.BinaryVector, len(embeddings))
	for i, e := range embeddings {
		v, err := q.QuantizeOne(e)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// QuantizeOne packs a single embedding.
func (q *Quantizer) QuantizeOne(e domain.Embedding) (domain.BinaryVector, error) {
	if len(e) != q.dimension {
		return nil, domain.ValidationError("embedding has %d dimensions, expected %d", len(e), q.dimension)
	}
	return domain.PackBits(e), nil
}
