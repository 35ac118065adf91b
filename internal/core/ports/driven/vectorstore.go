package driven

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// VectorStore holds binary-quantised chunk vectors and ranks them by Hamming distance.
//
// Rows become visible to Search only after Commit. A Search running alongside an
// uncommitted Insert observes the state as of the last Commit.
type VectorStore interface {
	// Insert buffers rows and assigns ids in insertion order.
	// The ID field of each entry is ignored.
	Insert(ctx context.Context, entries []domain.IndexEntry) error

	// Commit atomically publishes every row inserted since the last commit.
	Commit(ctx context.Context) error

	// Rollback discards every row inserted since the last commit.
	// It is a no-op when nothing is pending.
	Rollback(ctx context.Context) error

	// Search returns at most k hits ordered by ascending distance, then ascending id.
	// An empty store yields an empty slice.
	Search(ctx context.Context, query domain.BinaryVector, k int) ([]domain.SearchHit, error)

	// Reset drops and recreates the collection for the given dimension.
	// Callers must not run Reset concurrently with Insert or Search.
	Reset(ctx context.Context, dimension int) error

	// Count returns the number of committed rows.
	Count(ctx context.Context) (int, error)

	// Dimension returns the embedding dimension of the collection (0 if unset).
	Dimension() int

	// Ping validates the store is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
