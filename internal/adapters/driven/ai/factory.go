// Package ai provides factory functions for creating the outbound service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	hashembed "github.com/custodia-labs/sercha-rag/internal/adapters/driven/embedding/hashing"
	ollamaembed "github.com/custodia-labs/sercha-rag/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/sercha-rag/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/generation/prompted"
	remotegen "github.com/custodia-labs/sercha-rag/internal/adapters/driven/generation/remote"
	anthropicllm "github.com/custodia-labs/sercha-rag/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/sercha-rag/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/sercha-rag/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/websearch/bing"
	mcpsearch "github.com/custodia-labs/sercha-rag/internal/adapters/driven/websearch/mcp"
	remotesearch "github.com/custodia-labs/sercha-rag/internal/adapters/driven/websearch/remote"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// CreateEmbeddingService creates the embedding service selected by settings.
// Returns nil if the provider is not configured.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return createOllamaEmbedding(settings), nil

	case domain.AIProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: settings.Dimensions,
		})

	case domain.AIProviderHashing:
		return hashembed.NewEmbeddingService(hashembed.Config{Dimensions: settings.Dimensions})

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// CreateLLMService creates the completion service selected by settings.
// Returns nil if the provider is not configured or is served remotely.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Timeout: settings.Timeout,
		}), nil

	case domain.AIProviderOpenAI:
		return openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Timeout: settings.Timeout,
		})

	case domain.AIProviderAnthropic:
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Timeout: settings.Timeout,
		})

	case domain.AIProviderRemote:
		return nil, nil

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}

// CreateGenerator creates the generation collaborator.
// A remote provider calls an llm service; any other provider renders prompts locally.
// Returns nil if generation is not configured.
func CreateGenerator(settings *domain.LLMSettings, prompts driven.PromptStore) (driven.Generator, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	if settings.Provider == domain.AIProviderRemote {
		return remotegen.NewClient(remotegen.Config{
			BaseURL: settings.BaseURL,
			Timeout: settings.Timeout,
		})
	}

	llm, err := CreateLLMService(settings)
	if err != nil {
		return nil, err
	}
	if llm == nil {
		return nil, nil
	}
	return prompted.NewGenerator(llm, prompts), nil
}

// CreateWebSearcher creates the web search collaborator.
// Returns nil if web search is disabled or not configured.
func CreateWebSearcher(settings *domain.WebSearchSettings) (driven.WebSearcher, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.WebSearchBing:
		return bing.NewSearcher(bing.Config{
			APIKey:  settings.APIKey,
			APIURL:  settings.URL,
			Market:  settings.Market,
			Timeout: settings.Timeout,
		})

	case domain.WebSearchRemote:
		return remotesearch.NewClient(remotesearch.Config{
			BaseURL: settings.URL,
			Timeout: settings.Timeout,
		})

	case domain.WebSearchMCP:
		return mcpsearch.NewClient(mcpsearch.Config{
			Endpoint: settings.URL,
			Market:   settings.Market,
			Timeout:  settings.Timeout,
		})

	default:
		return nil, fmt.Errorf("unsupported web search provider: %s", settings.Provider)
	}
}

// CreateVectorStore opens the vector store for vectors of dimension.
func CreateVectorStore(ctx context.Context, settings *domain.StoreSettings, dimension int) (driven.VectorStore, error) {
	backend := domain.StoreSQLite
	dataDir := ""
	if settings != nil {
		backend = settings.Backend
		dataDir = settings.DataDir
	}

	switch backend {
	case domain.StoreSQLite, "":
		return sqlite.NewVectorStore(ctx, dataDir, dimension)
	case domain.StoreMemory:
		return memory.NewVectorStore(dimension)
	default:
		return nil, domain.ConfigurationError("unsupported store backend: %s", backend)
	}
}

// CreateAndValidateEmbeddingService creates an embedding service and validates connectivity.
func CreateAndValidateEmbeddingService(ctx context.Context, settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(settings)
	if err != nil || svc == nil {
		return nil, err
	}

	if err := ping(ctx, svc); err != nil {
		_ = svc.Close()
		return nil, fmt.Errorf("embedding service unreachable: %w", err)
	}
	return svc, nil
}

// ValidateEmbeddingConfig creates the configured embedding service and pings it.
func ValidateEmbeddingConfig(ctx context.Context, settings *domain.EmbeddingSettings) error {
	svc, err := CreateEmbeddingService(settings)
	if err != nil || svc == nil {
		return err
	}
	defer svc.Close()
	return ping(ctx, svc)
}

// ValidateLLMConfig creates the configured generator and pings it.
func ValidateLLMConfig(ctx context.Context, settings *domain.LLMSettings) error {
	gen, err := CreateGenerator(settings, nil)
	if err != nil || gen == nil {
		return err
	}
	defer gen.Close()
	return ping(ctx, gen)
}

// ValidateWebSearchConfig creates the configured web searcher and pings it.
func ValidateWebSearchConfig(ctx context.Context, settings *domain.WebSearchSettings) error {
	ws, err := CreateWebSearcher(settings)
	if err != nil || ws == nil {
		return err
	}
	defer ws.Close()
	return ping(ctx, ws)
}

type pinger interface {
	Ping(ctx context.Context) error
}

func ping(ctx context.Context, p pinger) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return p.Ping(ctx)
}

// createOllamaEmbedding creates an Ollama embedding service.
func createOllamaEmbedding(settings *domain.EmbeddingSettings) driven.EmbeddingService {
	dimensions := settings.Dimensions
	if dimensions == 0 {
		dimensions = domain.EmbeddingDimensions()[settings.Model]
	}
	if dimensions == 0 {
		dimensions = ollamaembed.DefaultDimensions
	}

	return ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: dimensions,
	})
}
