package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyServerAddress     = "server.address"
	keyServerRateLimit   = "server.query_rate_limit"
	keyServerBurst       = "server.query_burst"
	keyDocsURL           = "documents.url"
	keyDocsTopK          = "documents.top_k"
	keyDocsContextHits   = "documents.context_hits"
	keyDocsChunkSize     = "documents.chunk_size"
	keyDocsSearchTimeout = "documents.search_timeout"
	keyDocsIngestTimeout = "documents.ingest_timeout"
	keyDocsConcurrency   = "documents.embed_concurrency"
	keyEmbedProvider     = "embedding.provider"
	keyEmbedModel        = "embedding.model"
	keyEmbedBaseURL      = "embedding.base_url"
	keyEmbedAPIKey       = "embedding.api_key"
	keyEmbedDimensions   = "embedding.dimensions"
	keyLLMProvider       = "llm.provider"
	keyLLMModel          = "llm.model"
	keyLLMBaseURL        = "llm.base_url"
	keyLLMAPIKey         = "llm.api_key"
	keyLLMTimeout        = "llm.timeout"
	keyWebProvider       = "web_search.provider"
	keyWebURL            = "web_search.url"
	keyWebAPIKey         = "web_search.api_key"
	keyWebMarket         = "web_search.market"
	keyWebNumResults     = "web_search.num_results"
	keyWebContextResults = "web_search.context_results"
	keyWebTimeout        = "web_search.timeout"
	keyStoreBackend      = "store.backend"
	keyStoreDataDir      = "store.data_dir"
	keyRetryAttempts     = "retry.max_attempts"
	keyRetryBase         = "retry.backoff_base"
	keyRetryCap          = "retry.backoff_cap"
	keyHealthTimeout     = "health.timeout"
	keyLogLevel          = "log.level"
	keyPipelineProcs     = "pipeline.processors"
)

// SettingsService turns the flat ConfigStore into typed application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
	}
}

// Get retrieves current application settings, falling back to defaults per key.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	d := domain.DefaultAppSettings()

	embedProvider := s.getProvider(keyEmbedProvider, d.Embedding.Provider)
	embedModel := s.getString(keyEmbedModel, "")
	if embedModel == "" {
		embedModel = domain.DefaultEmbeddingModels()[embedProvider]
	}
	embedDims := s.getInt(keyEmbedDimensions, 0)
	if embedDims == 0 {
		if dims, ok := domain.EmbeddingDimensions()[embedModel]; ok {
			embedDims = dims
		} else {
			embedDims = d.Embedding.Dimensions
		}
	}

	llmProvider := s.getProvider(keyLLMProvider, d.LLM.Provider)
	llmModel := s.getString(keyLLMModel, "")
	if llmModel == "" {
		llmModel = domain.DefaultLLMModels()[llmProvider]
	}

	settings := &domain.AppSettings{
		Server: domain.ServerSettings{
			Address:        s.getString(keyServerAddress, d.Server.Address),
			QueryRateLimit: s.getFloat(keyServerRateLimit, d.Server.QueryRateLimit),
			QueryBurst:     s.getInt(keyServerBurst, d.Server.QueryBurst),
		},
		Documents: domain.DocumentSettings{
			URL:              s.configStore.GetString(keyDocsURL), // Empty means in-process
			TopK:             s.getInt(keyDocsTopK, d.Documents.TopK),
			ContextHits:      s.getInt(keyDocsContextHits, d.Documents.ContextHits),
			ChunkSize:        s.getInt(keyDocsChunkSize, d.Documents.ChunkSize),
			SearchTimeout:    s.getDuration(keyDocsSearchTimeout, d.Documents.SearchTimeout),
			IngestTimeout:    s.getDuration(keyDocsIngestTimeout, d.Documents.IngestTimeout),
			EmbedConcurrency: s.getInt(keyDocsConcurrency, d.Documents.EmbedConcurrency),
		},
		Embedding: domain.EmbeddingSettings{
			Provider:   embedProvider,
			Model:      embedModel,
			BaseURL:    s.configStore.GetString(keyEmbedBaseURL), // No default - adapters pick theirs
			APIKey:     s.configStore.GetString(keyEmbedAPIKey),
			Dimensions: embedDims,
		},
		LLM: domain.LLMSettings{
			Provider: llmProvider,
			Model:    llmModel,
			BaseURL:  s.configStore.GetString(keyLLMBaseURL),
			APIKey:   s.configStore.GetString(keyLLMAPIKey),
			Timeout:  s.getDuration(keyLLMTimeout, d.LLM.Timeout),
		},
		WebSearch: domain.WebSearchSettings{
			Provider:       s.getWebProvider(d.WebSearch.Provider),
			URL:            s.configStore.GetString(keyWebURL),
			APIKey:         s.configStore.GetString(keyWebAPIKey),
			Market:         s.getString(keyWebMarket, d.WebSearch.Market),
			NumResults:     s.getInt(keyWebNumResults, d.WebSearch.NumResults),
			ContextResults: s.getInt(keyWebContextResults, d.WebSearch.ContextResults),
			Timeout:        s.getDuration(keyWebTimeout, d.WebSearch.Timeout),
		},
		Store: domain.StoreSettings{
			Backend: s.getStoreBackend(d.Store.Backend),
			DataDir: s.configStore.GetString(keyStoreDataDir),
		},
		Retry: domain.RetrySettings{
			MaxAttempts: s.getInt(keyRetryAttempts, d.Retry.MaxAttempts),
			BackoffBase: s.getDuration(keyRetryBase, d.Retry.BackoffBase),
			BackoffCap:  s.getDuration(keyRetryCap, d.Retry.BackoffCap),
		},
		Health: domain.HealthSettings{
			Timeout: s.getDuration(keyHealthTimeout, d.Health.Timeout),
		},
		Pipeline: s.GetPipelineConfig(),
		LogLevel: s.getString(keyLogLevel, d.LogLevel),
	}

	return settings, nil
}

// Save persists the provider and endpoint settings.
// API keys are only written when non-empty.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyServerAddress, settings.Server.Address},
		{keyDocsURL, settings.Documents.URL},
		{keyDocsTopK, settings.Documents.TopK},
		{keyDocsChunkSize, settings.Documents.ChunkSize},
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyEmbedDimensions, settings.Embedding.Dimensions},
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyWebProvider, settings.WebSearch.Provider.String()},
		{keyWebURL, settings.WebSearch.URL},
		{keyStoreBackend, string(settings.Store.Backend)},
		{keyStoreDataDir, settings.Store.DataDir},
		{keyLogLevel, settings.LogLevel},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	secrets := map[string]string{
		keyEmbedAPIKey: settings.Embedding.APIKey,
		keyLLMAPIKey:   settings.LLM.APIKey,
		keyWebAPIKey:   settings.WebSearch.APIKey,
	}
	for key, val := range secrets {
		if val == "" {
			continue
		}
		if err := s.configStore.Set(key, val); err != nil {
			return fmt.Errorf("save %s: %w", key, err)
		}
	}

	return nil
}

// Validate checks that the current settings can start a gateway.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return ValidateSettings(settings)
}

// ValidateSettings checks settings that would otherwise fail late.
func ValidateSettings(settings *domain.AppSettings) error {
	if settings.Documents.URL == "" {
		if !settings.Embedding.IsConfigured() {
			return domain.ConfigurationError("embedding provider %q is not configured", settings.Embedding.Provider)
		}
		if settings.Embedding.Dimensions%8 != 0 {
			return domain.ConfigurationError(
				"embedding dimension %d is not divisible by 8", settings.Embedding.Dimensions)
		}
		if !settings.Store.Backend.IsValid() {
			return domain.ConfigurationError("unknown store backend %q", settings.Store.Backend)
		}
	}
	if settings.WebSearch.Provider != domain.WebSearchNone && !settings.WebSearch.IsConfigured() {
		return domain.ConfigurationError("web search provider %q is missing its url or api key",
			settings.WebSearch.Provider)
	}
	if settings.Documents.ChunkSize <= 0 {
		return domain.ConfigurationError("documents.chunk_size must be positive")
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// GetPipelineConfig returns the post-processor pipeline configuration.
// Returns default configuration if nothing is configured.
func (s *SettingsService) GetPipelineConfig() domain.PipelineConfig {
	cfg := domain.DefaultPipelineConfig()

	if processors := s.configStore.GetStringSlice(keyPipelineProcs); len(processors) > 0 {
		cfg.Processors = processors
	}

	// documents.chunk_size feeds the chunker unless the pipeline overrides it.
	if size := s.configStore.GetInt(keyDocsChunkSize); size > 0 {
		cfg.ProcessorConfigs["chunker"]["chunk_size"] = size
	}

	for _, name := range cfg.Processors {
		prefix := "pipeline." + name + "."
		for _, key := range s.configStore.Keys(prefix) {
			val, ok := s.configStore.Get(key)
			if !ok {
				continue
			}
			existing := cfg.ProcessorConfigs[name]
			if existing == nil {
				existing = make(map[string]any)
				cfg.ProcessorConfigs[name] = existing
			}
			existing[strings.TrimPrefix(key, prefix)] = val
		}
	}

	return cfg
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	val, ok := s.configStore.Get(key)
	if !ok {
		return defaultVal
	}
	switch v := val.(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	default:
		return defaultVal
	}
}

// getDuration accepts duration strings ("45s", "2m") or integer seconds.
func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	if str := s.configStore.GetString(key); str != "" {
		if d, err := time.ParseDuration(str); err == nil && d > 0 {
			return d
		}
		if secs, err := strconv.Atoi(str); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
		return defaultVal
	}
	if secs := s.configStore.GetInt(key); secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return defaultVal
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getWebProvider(defaultVal domain.WebSearchProvider) domain.WebSearchProvider {
	val := s.configStore.GetString(keyWebProvider)
	if val == "" {
		return defaultVal
	}
	provider := domain.WebSearchProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getStoreBackend(defaultVal domain.StoreBackend) domain.StoreBackend {
	val := s.configStore.GetString(keyStoreBackend)
	if val == "" {
		return defaultVal
	}
	backend := domain.StoreBackend(val)
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}
