// Package openai embeds text with the OpenAI embeddings endpoint or any
// server that speaks the same protocol.
package openai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/httpjson"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

var _ driven.EmbeddingService = (*EmbeddingService)(nil)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "text-embedding-3-small"
	DefaultTimeout = 60 * time.Second

	// DefaultMaxBatch is the number of inputs sent per request.
	DefaultMaxBatch = 256

	// fallbackDimensions is used for models missing from the known table.
	fallbackDimensions = 1536

	// parallelBatches bounds concurrent requests for one EmbedBatch call.
	parallelBatches = 4
)

const serviceName = "openai"

// Config configures the embedder. Only APIKey is required.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration

	// Dimensions shortens text-embedding-3-* vectors. Other models ignore it.
	Dimensions int

	// MaxBatch caps inputs per request; larger calls are split.
	MaxBatch int
}

// EmbeddingService embeds text over HTTP.
type EmbeddingService struct {
	client     *http.Client
	endpoint   string
	header     http.Header
	model      string
	dimensions int
	shorten    bool
	maxBatch   int
}

type embeddingRequest struct {
	Model      string   `json:"model"`
	Input      []string `json:"input"`
	Dimensions int      `json:"dimensions,omitempty"`
}

type embeddingDatum struct {
	Embedding []float64 `json:"embedding"`
	Index     int       `json:"index"`
}

type embeddingResponse struct {
	Data []embeddingDatum `json:"data"`
}

// NewEmbeddingService validates cfg and fills in defaults.
func NewEmbeddingService(cfg Config) (*EmbeddingService, error) {
	if cfg.APIKey == "" {
		return nil, domain.ConfigurationError("openai: API key is required")
	}
	model := orDefault(cfg.Model, DefaultModel)

	dims := cfg.Dimensions
	if dims <= 0 {
		if known, ok := domain.EmbeddingDimensions()[model]; ok {
			dims = known
		} else {
			dims = fallbackDimensions
		}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	maxBatch := cfg.MaxBatch
	if maxBatch <= 0 {
		maxBatch = DefaultMaxBatch
	}

	return &EmbeddingService{
		client:     &http.Client{Timeout: timeout},
		endpoint:   strings.TrimRight(orDefault(cfg.BaseURL, DefaultBaseURL), "/"),
		header:     http.Header{"Authorization": {"Bearer " + cfg.APIKey}},
		model:      model,
		dimensions: dims,
		shorten:    strings.HasPrefix(model, "text-embedding-3-"),
		maxBatch:   maxBatch,
	}, nil
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

// Embed returns the unit-length embedding of text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch returns one unit-length vector per text, in input order.
// Inputs beyond MaxBatch are split across concurrent requests.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float32, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelBatches)
	for start := 0; start < len(texts); start += s.maxBatch {
		end := min(start+s.maxBatch, len(texts))
		g.Go(func() error {
			return s.embedInto(gctx, texts[start:end], out[start:end])
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("embed batch: %w", err)
	}
	return out, nil
}

// embedInto embeds one request's worth of texts into dst.
func (s *EmbeddingService) embedInto(ctx context.Context, texts []string, dst [][]float32) error {
	req := embeddingRequest{Model: s.model, Input: texts}
	if s.shorten {
		req.Dimensions = s.dimensions
	}

	var resp embeddingResponse
	if err := httpjson.Do(ctx, s.client, httpjson.Request{
		Service: serviceName,
		Method:  http.MethodPost,
		URL:     s.endpoint + "/embeddings",
		Header:  s.header,
		Body:    req,
	}, &resp); err != nil {
		return err
	}

	if len(resp.Data) != len(texts) {
		return fmt.Errorf("openai: sent %d inputs, received %d embeddings", len(texts), len(resp.Data))
	}
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(texts) {
			return fmt.Errorf("openai: embedding index %d out of range", d.Index)
		}
		if len(d.Embedding) != s.dimensions {
			return domain.ConfigurationError("model %s returned %d dimensions, expected %d",
				s.model, len(d.Embedding), s.dimensions)
		}
		vec := make([]float32, len(d.Embedding))
		for i, v := range d.Embedding {
			vec[i] = float32(v)
		}
		domain.Normalize(vec)
		dst[d.Index] = vec
	}
	return nil
}

// Dimensions returns the vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the configured model.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping lists models, which checks the key without spending tokens.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	return httpjson.Do(ctx, s.client, httpjson.Request{
		Service: serviceName,
		URL:     s.endpoint + "/models",
		Header:  s.header,
	}, nil)
}

// Close is a no-op.
func (s *EmbeddingService) Close() error {
	return nil
}
