package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockEmbeddingService implements driven.EmbeddingService for testing.
// Each text embeds to a vector whose sign pattern is taken from vectors[text],
// or all-positive when the text is unknown.
type mockEmbeddingService struct {
	dims     int
	vectors  map[string][]float32
	embedErr error

	mu         sync.Mutex
	batchCalls int
	embedded   []string
}

func newMockEmbedder(dims int) *mockEmbeddingService {
	return &mockEmbeddingService{dims: dims, vectors: make(map[string][]float32)}
}

func (m *mockEmbeddingService) vectorFor(text string) []float32 {
	if v, ok := m.vectors[text]; ok {
		return v
	}
	v := make([]float32, m.dims)
	for i := range v {
		v[i] = 1
	}
	return v
}

func (m *mockEmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.vectorFor(text), nil
}

func (m *mockEmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.batchCalls++
	m.embedded = append(m.embedded, texts...)
	m.mu.Unlock()

	if m.embedErr != nil {
		return nil, m.embedErr
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = m.vectorFor(t)
	}
	return out, nil
}

func (m *mockEmbeddingService) Dimensions() int              { return m.dims }
func (m *mockEmbeddingService) ModelName() string            { return "mock-embed" }
func (m *mockEmbeddingService) Ping(_ context.Context) error { return nil }
func (m *mockEmbeddingService) Close() error                 { return nil }

// mockVectorStore implements driven.VectorStore with pending/committed slices.
type mockVectorStore struct {
	mu        sync.Mutex
	dimension int
	pending   []domain.IndexEntry
	committed []domain.IndexEntry
	nextID    int64

	insertErr error
	commitErr error
	searchErr error
	resets    []int
	rollbacks int
}

func newMockVectorStore(dimension int) *mockVectorStore {
	return &mockVectorStore{dimension: dimension, nextID: 1}
}

// Insert stages rows. With insertErr set it stages the first row before
// failing, like a store that errors partway through a batch.
func (m *mockVectorStore) Insert(_ context.Context, entries []domain.IndexEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		if len(entries) > 0 {
			e := entries[0]
			e.ID = m.nextID
			m.nextID++
			m.pending = append(m.pending, e)
		}
		return m.insertErr
	}
	for _, e := range entries {
		e.ID = m.nextID
		m.nextID++
		m.pending = append(m.pending, e)
	}
	return nil
}

func (m *mockVectorStore) Commit(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.commitErr != nil {
		m.pending = nil
		return m.commitErr
	}
	m.committed = append(m.committed, m.pending...)
	m.pending = nil
	return nil
}

func (m *mockVectorStore) Rollback(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rollbacks++
	m.pending = nil
	return nil
}

func (m *mockVectorStore) Search(_ context.Context, q domain.BinaryVector, k int) ([]domain.SearchHit, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var hits []domain.SearchHit
	for _, e := range m.committed {
		d := domain.HammingDistance(q, e.Vector)
		hits = append(hits, domain.SearchHit{
			ID:       e.ID,
			Text:     e.Text,
			Distance: d,
			Score:    domain.ScoreFromDistance(d),
		})
	}
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

func (m *mockVectorStore) Reset(_ context.Context, dimension int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dimension = dimension
	m.pending = nil
	m.committed = nil
	m.resets = append(m.resets, dimension)
	return nil
}

func (m *mockVectorStore) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.committed), nil
}

func (m *mockVectorStore) Dimension() int               { return m.dimension }
func (m *mockVectorStore) Ping(_ context.Context) error { return nil }
func (m *mockVectorStore) Close() error                 { return nil }

// mockPipeline implements driven.PostProcessorPipeline with fixed-size rune windows.
type mockPipeline struct {
	size int
	err  error
}

func (m *mockPipeline) Process(_ context.Context, doc *domain.Document) ([]domain.Chunk, error) {
	if m.err != nil {
		return nil, m.err
	}
	runes := []rune(doc.Content)
	var chunks []domain.Chunk
	for start := 0; start < len(runes); start += m.size {
		end := min(start+m.size, len(runes))
		chunks = append(chunks, domain.Chunk{
			Text:          string(runes[start:end]),
			SourceDocID:   doc.ID,
			SequenceIndex: len(chunks),
		})
	}
	return chunks, nil
}

// mockDocSearcher implements driven.DocumentSearcher with scripted responses.
// Each call consumes the next error in errs; once exhausted it returns results.
type mockDocSearcher struct {
	results []domain.SearchResult
	errs    []error

	mu    sync.Mutex
	calls int
	topK  int
}

func (m *mockDocSearcher) Search(_ context.Context, _ string, topK int) ([]domain.SearchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.topK = topK
	if len(m.errs) > 0 {
		err := m.errs[0]
		m.errs = m.errs[1:]
		return nil, err
	}
	return m.results, nil
}

// mockWebSearcher implements driven.WebSearcher with scripted responses.
type mockWebSearcher struct {
	results []domain.WebResult
	errs    []error

	mu    sync.Mutex
	calls int
	n     int
}

func (m *mockWebSearcher) Search(_ context.Context, _ string, n int) ([]domain.WebResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.n = n
	if len(m.errs) > 0 {
		err := m.errs[0]
		m.errs = m.errs[1:]
		return nil, err
	}
	return m.results, nil
}

func (m *mockWebSearcher) Name() string                 { return "mock-web" }
func (m *mockWebSearcher) Ping(_ context.Context) error { return nil }
func (m *mockWebSearcher) Close() error                 { return nil }

// mockPagedWebSearcher adds paging and news to mockWebSearcher.
type mockPagedWebSearcher struct {
	mockWebSearcher
	opts domain.WebSearchOptions
	news bool
}

func (m *mockPagedWebSearcher) SearchPage(_ context.Context, _ string, opts domain.WebSearchOptions) ([]domain.WebResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.opts = opts
	return m.results, nil
}

func (m *mockPagedWebSearcher) SearchNews(_ context.Context, _ string, opts domain.WebSearchOptions) ([]domain.WebResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.opts, m.news = opts, true
	return m.results, nil
}

// mockGenerator implements driven.Generator with scripted responses.
type mockGenerator struct {
	text string
	errs []error

	mu       sync.Mutex
	calls    int
	requests []driven.GenerationRequest
}

func (m *mockGenerator) Generate(_ context.Context, req driven.GenerationRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.requests = append(m.requests, req)
	if len(m.errs) > 0 {
		err := m.errs[0]
		m.errs = m.errs[1:]
		return "", err
	}
	return m.text, nil
}

func (m *mockGenerator) ModelName() string            { return "mock-llm" }
func (m *mockGenerator) Ping(_ context.Context) error { return nil }
func (m *mockGenerator) Close() error                 { return nil }

// mockProbe implements driven.HealthProbe.
type mockProbe struct {
	name  string
	err   error
	delay time.Duration
}

func (m *mockProbe) Name() string { return m.name }

func (m *mockProbe) Ping(ctx context.Context) error {
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return m.err
}

// recordingSleep returns a Sleep func that records waits without blocking.
func recordingSleep(waits *[]time.Duration) func(context.Context, time.Duration) error {
	var mu sync.Mutex
	return func(_ context.Context, d time.Duration) error {
		mu.Lock()
		defer mu.Unlock()
		*waits = append(*waits, d)
		return nil
	}
}

// fastPolicy is the default policy with sleeps recorded instead of taken.
func fastPolicy(waits *[]time.Duration) RetryPolicy {
	p := DefaultRetryPolicy()
	p.Sleep = recordingSleep(waits)
	return p
}

// transientErr is a connection-level failure.
func transientErr(msg string) error {
	return fmt.Errorf("%w: %s", domain.ErrTransientNetwork, msg)
}

var (
	_ driven.EmbeddingService      = (*mockEmbeddingService)(nil)
	_ driven.VectorStore           = (*mockVectorStore)(nil)
	_ driven.PostProcessorPipeline = (*mockPipeline)(nil)
	_ driven.DocumentSearcher      = (*mockDocSearcher)(nil)
	_ driven.WebSearcher           = (*mockWebSearcher)(nil)
	_ driven.Generator             = (*mockGenerator)(nil)
	_ driven.HealthProbe           = (*mockProbe)(nil)
)
