// Package app composes the adapters and services of one sercha-rag process.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/ai"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/config/file"
	docsremote "github.com/custodia-labs/sercha-rag/internal/adapters/driven/docsearch/remote"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/health"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/services"
	"github.com/custodia-labs/sercha-rag/internal/logger"
	"github.com/custodia-labs/sercha-rag/internal/postprocessors"
)

// Health report keys.
const (
	ProbeDocumentService = "document-service"
	ProbeLLMService      = "llm-service"
	ProbeWebService      = "web-search-service"
	ProbeEmbedding       = "embedding"
	ProbeVectorStore     = "vector-store"
	ProbeLLM             = "llm"
)

// ErrDocumentsRemote is returned for operations that need the in-process store
// while documents are served by a remote document service.
var ErrDocumentsRemote = errors.New("documents are served by a remote document service")

// Option configures Build.
type Option func(*buildOptions)

type buildOptions struct {
	localDocuments bool
	skipDocuments  bool
	skipGeneration bool
	skipWeb        bool
	prompts        driven.PromptStore
	embedder       driven.EmbeddingService
	generator      driven.Generator
	web            driven.WebSearcher
}

// WithLocalDocuments ignores documents.url and serves documents in-process.
func WithLocalDocuments() Option {
	return func(o *buildOptions) { o.localDocuments = true }
}

// WithoutDocuments skips document search and ingestion.
func WithoutDocuments() Option {
	return func(o *buildOptions) { o.skipDocuments = true }
}

// WithoutGeneration skips the generator.
func WithoutGeneration() Option {
	return func(o *buildOptions) { o.skipGeneration = true }
}

// WithoutWebSearch skips the web searcher.
func WithoutWebSearch() Option {
	return func(o *buildOptions) { o.skipWeb = true }
}

// WithPromptStore replaces the file prompt store.
func WithPromptStore(p driven.PromptStore) Option {
	return func(o *buildOptions) { o.prompts = p }
}

// WithEmbedder replaces the configured embedding service.
func WithEmbedder(e driven.EmbeddingService) Option {
	return func(o *buildOptions) { o.embedder = e }
}

// WithGenerator replaces the configured generator.
func WithGenerator(g driven.Generator) Option {
	return func(o *buildOptions) { o.generator = g }
}

// WithWebSearcher replaces the configured web searcher.
func WithWebSearcher(w driven.WebSearcher) Option {
	return func(o *buildOptions) { o.web = w }
}

// Runtime holds every component of a running process.
// Optional parts are nil when not configured.
type Runtime struct {
	Settings domain.AppSettings
	Prompts  driven.PromptStore

	// In-process documents (nil when documents.url is set).
	Embedder  driven.EmbeddingService
	Store     driven.VectorStore
	Quantizer *services.Quantizer
	Ingest    *services.IngestService
	DocSearch *services.DocumentSearchService

	// Searcher and Ingester point at the in-process services or the remote client.
	Searcher driven.DocumentSearcher
	Ingester driven.DocumentIngester

	Web       driven.WebSearcher
	Generator driven.Generator

	Retriever *services.RetrievalOrchestrator
	Composer  *services.ResponseComposer
	Query     *services.QueryService
	Health    *services.HealthAggregator

	closers []func() error
}

// Build creates the runtime described by settings.
func Build(ctx context.Context, settings domain.AppSettings, opts ...Option) (rt *Runtime, err error) {
	var o buildOptions
	for _, opt := range opts {
		opt(&o)
	}

	rt = &Runtime{Settings: settings}
	defer func() {
		if err != nil {
			_ = rt.Close()
			rt = nil
		}
	}()

	rt.Prompts = o.prompts
	if rt.Prompts == nil {
		if rt.Prompts, err = file.NewPromptStore(""); err != nil {
			return nil, fmt.Errorf("prompt store: %w", err)
		}
	}

	rt.Health = services.NewHealthAggregator(settings.Health.Timeout)

	switch {
	case o.skipDocuments:
	case settings.Documents.URL != "" && !o.localDocuments:
		if err := rt.buildRemoteDocuments(); err != nil {
			return nil, err
		}
	default:
		if err := rt.buildLocalDocuments(ctx, o.embedder); err != nil {
			return nil, err
		}
	}

	if !o.skipWeb {
		if err := rt.buildWeb(o.web); err != nil {
			return nil, err
		}
	}
	if !o.skipGeneration {
		if err := rt.buildGenerator(o.generator); err != nil {
			return nil, err
		}
	}

	retry := settings.Retry
	rt.Retriever = services.NewRetrievalOrchestrator(rt.Searcher, rt.Web, services.RetrievalConfig{
		DocumentTopK:      settings.Documents.TopK,
		ContextHits:       settings.Documents.ContextHits,
		WebResults:        settings.WebSearch.NumResults,
		WebContextResults: settings.WebSearch.ContextResults,
	})
	rt.Retriever.SetRetryPolicies(
		services.RetryPolicyFromSettings(retry, settings.Documents.SearchTimeout),
		services.RetryPolicyFromSettings(retry, settings.WebSearch.Timeout),
	)
	rt.Composer = services.NewResponseComposer(rt.Generator,
		services.RetryPolicyFromSettings(retry, settings.LLM.Timeout))
	rt.Query = services.NewQueryService(rt.Retriever, rt.Composer)

	logger.Debug("Runtime built: documents=%s web=%t generation=%t",
		rt.documentsMode(), rt.Web != nil, rt.Generator != nil)
	return rt, nil
}

func (rt *Runtime) buildRemoteDocuments() error {
	docs := rt.Settings.Documents
	client, err := docsremote.NewClient(docsremote.Config{
		BaseURL:       docs.URL,
		SearchTimeout: docs.SearchTimeout,
		IngestTimeout: docs.IngestTimeout,
	})
	if err != nil {
		return err
	}
	rt.Searcher = client
	rt.Ingester = client
	rt.Health.Add(health.NewHTTPProbe(ProbeDocumentService, docs.URL, rt.Settings.Health.Timeout))
	return nil
}

func (rt *Runtime) buildLocalDocuments(ctx context.Context, embedder driven.EmbeddingService) error {
	s := rt.Settings
	if embedder == nil {
		var err error
		embedder, err = ai.CreateEmbeddingService(&s.Embedding)
		if err != nil {
			return fmt.Errorf("embedding service: %w", err)
		}
		if embedder == nil {
			return domain.ConfigurationError("embedding provider %q is not configured", s.Embedding.Provider)
		}
	}
	rt.Embedder = embedder
	rt.closers = append(rt.closers, embedder.Close)

	quantizer, err := services.NewQuantizer(embedder.Dimensions())
	if err != nil {
		return err
	}
	rt.Quantizer = quantizer

	store, err := ai.CreateVectorStore(ctx, &s.Store, embedder.Dimensions())
	if err != nil {
		return fmt.Errorf("vector store: %w", err)
	}
	rt.Store = store
	rt.closers = append(rt.closers, store.Close)

	pipeline, err := postprocessors.BuildPipeline(s.Pipeline)
	if err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}

	rt.Ingest = services.NewIngestService(pipeline, embedder, quantizer, store, services.IngestConfig{
		Timeout:          s.Documents.IngestTimeout,
		EmbedConcurrency: s.Documents.EmbedConcurrency,
	})
	rt.DocSearch = services.NewDocumentSearchService(embedder, quantizer, store)
	rt.Searcher = rt.DocSearch
	rt.Ingester = rt.Ingest

	rt.Health.Add(health.NewPingProbe(ProbeEmbedding, embedder))
	rt.Health.Add(health.NewPingProbe(ProbeVectorStore, store))
	return nil
}

func (rt *Runtime) buildWeb(web driven.WebSearcher) error {
	s := rt.Settings.WebSearch
	if web == nil {
		var err error
		if web, err = ai.CreateWebSearcher(&s); err != nil {
			return fmt.Errorf("web search: %w", err)
		}
	}
	if web == nil {
		return nil
	}
	rt.Web = web
	rt.closers = append(rt.closers, web.Close)

	if s.Provider == domain.WebSearchRemote {
		rt.Health.Add(health.NewHTTPProbe(ProbeWebService, s.URL, rt.Settings.Health.Timeout))
	} else {
		rt.Health.Add(health.NewPingProbe(web.Name(), web))
	}
	return nil
}

func (rt *Runtime) buildGenerator(gen driven.Generator) error {
	s := rt.Settings.LLM
	if gen == nil {
		var err error
		if gen, err = ai.CreateGenerator(&s, rt.Prompts); err != nil {
			return fmt.Errorf("generator: %w", err)
		}
	}
	if gen == nil {
		logger.Warn("No generation provider configured; queries will fail with model unavailable")
		return nil
	}
	rt.Generator = gen
	rt.closers = append(rt.closers, gen.Close)

	if s.Provider == domain.AIProviderRemote {
		rt.Health.Add(health.NewHTTPProbe(ProbeLLMService, s.BaseURL, rt.Settings.Health.Timeout))
	} else {
		rt.Health.Add(health.NewPingProbe(ProbeLLM, gen))
	}
	return nil
}

// Reset drops the in-process collection.
func (rt *Runtime) Reset(ctx context.Context) error {
	if rt.Ingest == nil {
		return ErrDocumentsRemote
	}
	return rt.Ingest.Reset(ctx)
}

// Close releases every component in reverse creation order.
func (rt *Runtime) Close() error {
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	rt.closers = nil
	return errors.Join(errs...)
}

func (rt *Runtime) documentsMode() string {
	switch {
	case rt.Ingest != nil:
		return "local"
	case rt.Searcher != nil:
		return "remote"
	default:
		return "none"
	}
}
