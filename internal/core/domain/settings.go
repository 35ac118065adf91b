package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies a service provider for embeddings or generation.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is the OpenAI API or any compatible server (vLLM, LM Studio).
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is the Anthropic API.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderRemote is a sercha-rag llm service reached over HTTP.
	AIProviderRemote AIProvider = "remote"

	// AIProviderHashing is the offline feature-hashing embedder.
	AIProviderHashing AIProvider = "hashing"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic, AIProviderRemote, AIProviderHashing:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI-compatible API"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderRemote:
		return "Remote llm service"
	case AIProviderHashing:
		return "Feature hashing (offline)"
	default:
		return unknownDescription
	}
}

// WebSearchProvider identifies the web search collaborator.
type WebSearchProvider string

// Available web search providers.
const (
	// WebSearchNone disables web search.
	WebSearchNone WebSearchProvider = "none"

	// WebSearchBing calls the Bing v7 REST API directly.
	WebSearchBing WebSearchProvider = "bing"

	// WebSearchRemote calls a sercha-rag websearch service over HTTP.
	WebSearchRemote WebSearchProvider = "remote"

	// WebSearchMCP calls the bing_web_search tool of an MCP server.
	WebSearchMCP WebSearchProvider = "mcp"
)

// IsValid returns true if the provider is recognised.
func (p WebSearchProvider) IsValid() bool {
	switch p {
	case WebSearchNone, WebSearchBing, WebSearchRemote, WebSearchMCP:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (p WebSearchProvider) String() string {
	return string(p)
}

// StoreBackend identifies the vector store implementation.
type StoreBackend string

// Available store backends.
const (
	StoreSQLite StoreBackend = "sqlite"
	StoreMemory StoreBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b StoreBackend) IsValid() bool {
	return b == StoreSQLite || b == StoreMemory
}

// ServerSettings holds HTTP listener configuration.
type ServerSettings struct {
	// Address is the listen address of the gateway.
	Address string

	// QueryRateLimit is the sustained /query requests per second per client (0 disables).
	QueryRateLimit float64

	// QueryBurst is the burst size of the /query limiter.
	QueryBurst int
}

// DocumentSettings holds document retrieval and ingestion configuration.
type DocumentSettings struct {
	// URL points at a remote document service. Empty means in-process.
	URL string

	// TopK is the number of hits requested from the store per query.
	TopK int

	// ContextHits is how many top hits are joined into the context.
	ContextHits int

	// ChunkSize is the maximum chunk length in characters.
	ChunkSize int

	// SearchTimeout bounds a single document search call.
	SearchTimeout time.Duration

	// IngestTimeout bounds one upload batch.
	IngestTimeout time.Duration

	// EmbedConcurrency bounds parallel embedding calls during ingestion.
	EmbedConcurrency int
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// Dimensions is the embedding vector size. Must be divisible by 8.
	Dimensions int
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || e.Provider == AIProviderAnthropic || e.Provider == AIProviderRemote {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds generation provider configuration.
type LLMSettings struct {
	// Provider is the generation provider.
	Provider AIProvider

	// Model is the model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string

	// Timeout bounds a single generation call.
	Timeout time.Duration
}

// IsConfigured returns true if the generation provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() || l.Provider == AIProviderHashing {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	if l.Provider == AIProviderRemote && l.BaseURL == "" {
		return false
	}
	return true
}

// WebSearchSettings holds web search configuration.
type WebSearchSettings struct {
	// Provider selects the collaborator.
	Provider WebSearchProvider

	// URL is the endpoint (Bing API root, remote service or MCP endpoint).
	URL string

	// APIKey is the Bing subscription key.
	APIKey string

	// Market is the Bing market code (e.g. en-US).
	Market string

	// NumResults is the number of results requested per query.
	NumResults int

	// ContextResults is how many results are formatted into the context.
	ContextResults int

	// Timeout bounds a single web search call.
	Timeout time.Duration
}

// IsConfigured returns true if a web search collaborator is set up.
func (w WebSearchSettings) IsConfigured() bool {
	switch w.Provider {
	case WebSearchBing:
		return w.APIKey != ""
	case WebSearchRemote, WebSearchMCP:
		return w.URL != ""
	default:
		return false
	}
}

// StoreSettings holds vector store configuration.
type StoreSettings struct {
	// Backend selects the store implementation.
	Backend StoreBackend

	// DataDir is where the sqlite database lives.
	DataDir string
}

// RetrySettings parameterises the retry policy of downstream calls.
type RetrySettings struct {
	MaxAttempts int
	BackoffBase time.Duration
	BackoffCap  time.Duration
}

// HealthSettings holds health probe configuration.
type HealthSettings struct {
	// Timeout is the per-dependency probe deadline.
	Timeout time.Duration
}

// AppSettings holds all application settings.
type AppSettings struct {
	Server    ServerSettings
	Documents DocumentSettings
	Embedding EmbeddingSettings
	LLM       LLMSettings
	WebSearch WebSearchSettings
	Store     StoreSettings
	Retry     RetrySettings
	Health    HealthSettings
	Pipeline  PipelineConfig

	// LogLevel is one of debug, info, warn, error.
	LogLevel string
}

// DefaultAppSettings returns settings with sensible defaults.
// Generation and web search are left unconfigured.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Server: ServerSettings{
			Address:        ":8000",
			QueryRateLimit: 0,
			QueryBurst:     10,
		},
		Documents: DocumentSettings{
			TopK:             12,
			ContextHits:      3,
			ChunkSize:        1000,
			SearchTimeout:    30 * time.Second,
			IngestTimeout:    380 * time.Second,
			EmbedConcurrency: 4,
		},
		Embedding: EmbeddingSettings{
			Provider:   AIProviderOllama,
			Model:      "nomic-embed-text",
			Dimensions: 768,
		},
		LLM: LLMSettings{
			Timeout: 60 * time.Second,
		},
		WebSearch: WebSearchSettings{
			Provider:       WebSearchNone,
			Market:         "en-US",
			NumResults:     5,
			ContextResults: 3,
			Timeout:        30 * time.Second,
		},
		Store: StoreSettings{
			Backend: StoreSQLite,
		},
		Retry: RetrySettings{
			MaxAttempts: 3,
			BackoffBase: 2 * time.Second,
			BackoffCap:  10 * time.Second,
		},
		Health: HealthSettings{
			Timeout: 5 * time.Second,
		},
		Pipeline: DefaultPipelineConfig(),
		LogLevel: "info",
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:  "nomic-embed-text",
		AIProviderOpenAI:  "text-embedding-3-small",
		AIProviderHashing: "xxhash-features",
	}
}

// DefaultLLMModels returns default models for each generation provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		"nomic-embed-text":       768,
		"mxbai-embed-large":      1024,
		"all-minilm":             384,
		"bge-large-en-v1.5":      1024,
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}

// PipelineConfig holds post-processor pipeline configuration.
type PipelineConfig struct {
	// Processors lists processor names in execution order.
	Processors []string

	// ProcessorConfigs holds per-processor settings keyed by processor name.
	ProcessorConfigs map[string]map[string]any
}

// GetProcessorConfig returns the config for a named processor, or nil.
func (c *PipelineConfig) GetProcessorConfig(name string) map[string]any {
	if c.ProcessorConfigs == nil {
		return nil
	}
	return c.ProcessorConfigs[name]
}

// DefaultPipelineConfig returns the default pipeline configuration.
// Duplicate chunks are kept unless "dedup" is added to Processors.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Processors: []string{"chunker"},
		ProcessorConfigs: map[string]map[string]any{
			"chunker": {
				"chunk_size": 1000,
			},
		},
	}
}
