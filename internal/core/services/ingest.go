package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Ensure IngestService implements the interfaces.
var (
	_ driving.IngestService   = (*IngestService)(nil)
	_ driven.DocumentIngester = (*IngestService)(nil)
)

// Ingestion defaults.
const (
	DefaultIngestTimeout    = 380 * time.Second
	DefaultEmbedBatchSize   = 32
	DefaultEmbedConcurrency = 4
)

// IngestConfig tunes ingestion.
type IngestConfig struct {
	// Timeout bounds one upload batch.
	Timeout time.Duration

	// EmbedBatchSize is the number of chunks sent per EmbedBatch call.
	EmbedBatchSize int

	// EmbedConcurrency bounds parallel EmbedBatch calls.
	EmbedConcurrency int
}

// IngestService chunks, embeds, quantises and commits uploaded documents.
type IngestService struct {
	pipeline  driven.PostProcessorPipeline
	embedder  driven.EmbeddingService
	quantizer *Quantizer
	store     driven.VectorStore
	cfg       IngestConfig

	// mu serialises insert+commit so one batch never publishes another's rows.
	mu sync.Mutex
}

// NewIngestService creates a new ingest service.
func NewIngestService(
	pipeline driven.PostProcessorPipeline,
	embedder driven.EmbeddingService,
	quantizer *Quantizer,
	store driven.VectorStore,
	cfg IngestConfig,
) *IngestService {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultIngestTimeout
	}
	if cfg.EmbedBatchSize <= 0 {
		cfg.EmbedBatchSize = DefaultEmbedBatchSize
	}
	if cfg.EmbedConcurrency <= 0 {
		cfg.EmbedConcurrency = DefaultEmbedConcurrency
	}
	return &IngestService{
		pipeline:  pipeline,
		embedder:  embedder,
		quantizer: quantizer,
		store:     store,
		cfg:       cfg,
	}
}

// Ingest processes docs as one batch. Nothing is committed unless every document
// chunks and embeds successfully.
func (s *IngestService) Ingest(ctx context.Context, docs []domain.Document) (*domain.IngestReport, error) {
	logger.Section("Ingestion")

	if len(docs) == 0 {
		return nil, domain.ValidationError("no files provided")
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	var chunks []domain.Chunk
	for i := range docs {
		docChunks, err := s.pipeline.Process(ctx, &docs[i])
		if err != nil {
			return nil, fmt.Errorf("process document %q: %w", docs[i].Name, err)
		}
		logger.Debug("Document %q: %d chars -> %d chunks", docs[i].Name, len(docs[i].Content), len(docChunks))
		chunks = append(chunks, docChunks...)
	}

	report := &domain.IngestReport{
		Status:             domain.IngestStatusSuccess,
		ProcessedDocuments: len(docs),
		TotalChunks:        len(chunks),
	}
	if len(chunks) == 0 {
		logger.Info("Ingested %d documents, no chunks to store", len(docs))
		return report, nil
	}

	embeddings, err := s.embedAll(ctx, chunks)
	if err != nil {
		return nil, err
	}

	vectors, err := s.quantizer.Quantize(embeddings)
	if err != nil {
		return nil, fmt.Errorf("quantize: %w", err)
	}

	entries := make([]domain.IndexEntry, len(chunks))
	for i, c := range chunks {
		entries[i] = domain.IndexEntry{
			TextHash: domain.HashText(c.Text),
			Text:     c.Text,
			Vector:   vectors[i],
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Insert(ctx, entries); err != nil {
		s.discard()
		return nil, fmt.Errorf("insert: %w", err)
	}
	if err := s.store.Commit(ctx); err != nil {
		s.discard()
		return nil, fmt.Errorf("commit: %w", err)
	}

	logger.Info("Ingested %d documents, %d chunks", report.ProcessedDocuments, report.TotalChunks)
	return report, nil
}

// discard drops a failed batch's staged rows. It runs on a fresh context
// because the request context is often the reason the batch failed.
func (s *IngestService) discard() {
	if err := s.store.Rollback(context.Background()); err != nil {
		logger.Warn("Discarding failed batch: %v", err)
	}
}

// embedAll embeds chunk texts in parallel batches, preserving chunk order.
func (s *IngestService) embedAll(ctx context.Context, chunks []domain.Chunk) ([]domain.Embedding, error) {
	embeddings := make([]domain.Embedding, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.EmbedConcurrency)

	for start := 0; start < len(chunks); start += s.cfg.EmbedBatchSize {
		end := min(start+s.cfg.EmbedBatchSize, len(chunks))
		g.Go(func() error {
			texts := make([]string, end-start)
			for i := start; i < end; i++ {
				texts[i-start] = chunks[i].Text
			}
			vecs, err := s.embedder.EmbedBatch(gctx, texts)
			if err != nil {
				return fmt.Errorf("embed chunks %d-%d: %w", start, end-1, err)
			}
			if len(vecs) != len(texts) {
				return fmt.Errorf("embed chunks %d-%d: got %d embeddings for %d texts",
					start, end-1, len(vecs), len(texts))
			}
			for i, v := range vecs {
				embeddings[start+i] = domain.Embedding(v)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return embeddings, nil
}

// Reset drops every stored vector and recreates the collection.
func (s *IngestService) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Reset(ctx, s.quantizer.Dimension()); err != nil {
		return fmt.Errorf("reset store: %w", err)
	}
	logger.Info("Vector store reset (dimension %d)", s.quantizer.Dimension())
	return nil
}
