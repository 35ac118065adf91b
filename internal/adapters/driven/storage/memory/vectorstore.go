package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

// errClosed is returned after Close.
var errClosed = errors.New("vector store closed")

// VectorStore is an in-memory implementation of driven.VectorStore.
// Searches read the committed snapshot; inserted rows stay invisible until Commit.
type VectorStore struct {
	mu        sync.RWMutex
	dimension int
	committed []domain.IndexEntry
	pending   []domain.IndexEntry
	nextID    int64
	closed    bool
}

// NewVectorStore creates an empty store for vectors of the given dimension.
func NewVectorStore(dimension int) (*VectorStore, error) {
	if dimension <= 0 || dimension%8 != 0 {
		return nil, domain.ConfigurationError("vector dimension %d is not a positive multiple of 8", dimension)
	}
	return &VectorStore{dimension: dimension, nextID: 1}, nil
}

// Insert stages entries. IDs are assigned in insertion order.
func (s *VectorStore) Insert(_ context.Context, entries []domain.IndexEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.StorageError("insert", errClosed)
	}

	for i := range entries {
		if err := s.validate(&entries[i]); err != nil {
			return err
		}
	}
	for _, e := range entries {
		e.ID = s.nextID
		s.nextID++
		e.Vector = append(domain.BinaryVector(nil), e.Vector...)
		s.pending = append(s.pending, e)
	}
	return nil
}

func (s *VectorStore) validate(e *domain.IndexEntry) error {
	if len(e.Vector) != s.dimension/8 {
		return domain.ValidationError("vector has %d bytes, store expects %d", len(e.Vector), s.dimension/8)
	}
	if len(e.Text) > domain.MaxEntryTextBytes {
		return domain.ValidationError("entry text is %d bytes, limit is %d", len(e.Text), domain.MaxEntryTextBytes)
	}
	return nil
}

// Commit publishes staged entries to subsequent searches.
func (s *VectorStore) Commit(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.StorageError("commit", errClosed)
	}
	if len(s.pending) == 0 {
		return nil
	}

	// Copy so snapshots held by in-flight searches never change.
	next := make([]domain.IndexEntry, 0, len(s.committed)+len(s.pending))
	next = append(next, s.committed...)
	next = append(next, s.pending...)
	s.committed = next
	s.pending = nil
	return nil
}

// Rollback drops staged entries. Their ids are not reused.
func (s *VectorStore) Rollback(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = nil
	return nil
}

// Search ranks committed entries by Hamming distance to query.
func (s *VectorStore) Search(_ context.Context, query domain.BinaryVector, k int) ([]domain.SearchHit, error) {
	if k < 1 {
		return nil, domain.ValidationError("k must be at least 1, got %d", k)
	}

	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return nil, domain.StorageError("search", errClosed)
	}
	snapshot := s.committed
	dimension := s.dimension
	s.mu.RUnlock()

	if len(query) != dimension/8 {
		return nil, domain.ValidationError("query vector has %d bytes, store expects %d", len(query), dimension/8)
	}

	c := domain.NewHitCollector(k)
	for _, e := range snapshot {
		c.Offer(e.ID, e.Text, domain.HammingDistance(query, e.Vector))
	}
	return c.Hits(), nil
}

// Reset drops all entries and recreates the collection for dimension.
func (s *VectorStore) Reset(_ context.Context, dimension int) error {
	if dimension <= 0 || dimension%8 != 0 {
		return domain.ConfigurationError("vector dimension %d is not a positive multiple of 8", dimension)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dimension = dimension
	s.committed = nil
	s.pending = nil
	s.nextID = 1
	return nil
}

// Count returns the number of committed entries.
func (s *VectorStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.committed), nil
}

// Dimension returns the collection dimension.
func (s *VectorStore) Dimension() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dimension
}

// Ping reports whether the store is open.
func (s *VectorStore) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return domain.StorageError("ping", errClosed)
	}
	return nil
}

// Close releases the store.
func (s *VectorStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.committed = nil
	s.pending = nil
	return nil
}
