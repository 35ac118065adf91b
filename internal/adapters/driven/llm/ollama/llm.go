// Package ollama generates text with a local Ollama server.
package ollama

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/httpjson"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

var _ driven.LLMService = (*LLMService)(nil)

const (
	DefaultBaseURL    = "http://localhost:11434"
	DefaultLLMModel   = "llama3.2"
	DefaultLLMTimeout = 120 * time.Second
)

const serviceName = "ollama"

// LLMConfig configures the client. Zero values take the defaults above.
type LLMConfig struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// LLMService calls /api/generate without streaming.
type LLMService struct {
	client *http.Client
	api    string
	model  string
}

type generateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options samplingParams `json:"options"`
}

type samplingParams struct {
	NumPredict  int      `json:"num_predict,omitempty"`
	Temperature float64  `json:"temperature"`
	TopP        float64  `json:"top_p,omitempty"`
	Stop        []string `json:"stop,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// NewLLMService returns a client for cfg.
func NewLLMService(cfg LLMConfig) *LLMService {
	svc := &LLMService{
		client: &http.Client{Timeout: DefaultLLMTimeout},
		api:    DefaultBaseURL + "/api",
		model:  DefaultLLMModel,
	}
	if cfg.BaseURL != "" {
		svc.api = strings.TrimRight(cfg.BaseURL, "/") + "/api"
	}
	if cfg.Model != "" {
		svc.model = cfg.Model
	}
	if cfg.Timeout > 0 {
		svc.client.Timeout = cfg.Timeout
	}
	return svc
}

// Generate returns the completion for prompt.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	var resp generateResponse
	err := httpjson.Do(ctx, s.client, httpjson.Request{
		Service: serviceName,
		Method:  http.MethodPost,
		URL:     s.api + "/generate",
		Body: generateRequest{
			Model:  s.model,
			Prompt: prompt,
			Options: samplingParams{
				NumPredict:  opts.MaxTokens,
				Temperature: opts.Temperature,
				TopP:        opts.TopP,
				Stop:        opts.StopWords,
			},
		},
	}, &resp)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	return resp.Response, nil
}

// ModelName returns the configured model.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping lists local models and fails with ErrModelUnavailable when the
// configured model has not been pulled.
func (s *LLMService) Ping(ctx context.Context) error {
	var tags tagsResponse
	if err := httpjson.Do(ctx, s.client, httpjson.Request{
		Service: serviceName,
		URL:     s.api + "/tags",
	}, &tags); err != nil {
		return err
	}
	for _, m := range tags.Models {
		if sameModel(m.Name, s.model) {
			return nil
		}
	}
	return fmt.Errorf("%w: %s is not pulled on the ollama server", domain.ErrModelUnavailable, s.model)
}

// sameModel compares names, treating a missing tag as ":latest".
func sameModel(a, b string) bool {
	withTag := func(n string) string {
		if strings.Contains(n, ":") {
			return n
		}
		return n + ":latest"
	}
	return withTag(a) == withTag(b)
}

// Close is a no-op.
func (s *LLMService) Close() error {
	return nil
}
