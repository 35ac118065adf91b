package httpapi

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

func TestDocuments_SearchDefaultsTopK(t *testing.T) {
	search := &mockDocSearch{results: []domain.SearchResult{{Text: "Paris", Score: 1, Source: domain.SourceDocument}}}
	h := NewDocumentsHandler(DocumentsConfig{Search: search})

	rec := postJSON(t, h, "/search", `{"query":"capital of France"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, DefaultSearchTopK, search.topK)
	assert.Equal(t, "capital of France", search.query)
	assert.JSONEq(t, `{"results":[{"text":"Paris","score":1,"source":"document"}]}`, rec.Body.String())
}

func TestDocuments_SearchEmptyResultsIsArray(t *testing.T) {
	h := NewDocumentsHandler(DocumentsConfig{Search: &mockDocSearch{}})

	rec := postJSON(t, h, "/search", `{"query":"q","top_k":3}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"results":[]}`, rec.Body.String())
}

func TestDocuments_SearchEmptyQuery(t *testing.T) {
	search := &mockDocSearch{}
	h := NewDocumentsHandler(DocumentsConfig{Search: search})

	rec := postJSON(t, h, "/search", `{"query":"   "}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "query text is required")
	assert.Empty(t, search.query)
}

func TestDocuments_Health(t *testing.T) {
	tests := []struct {
		name   string
		health *mockHealth
		want   string
	}{
		{
			name:   "all healthy",
			health: &mockHealth{report: domain.HealthReport{"embedding": domain.HealthHealthy}},
			want:   `{"status":"healthy","dependencies":{"embedding":"healthy"}}`,
		},
		{
			name:   "embedder down",
			health: &mockHealth{report: domain.HealthReport{"embedding": domain.HealthUnreachable}},
			want:   `{"status":"unhealthy","dependencies":{"embedding":"unreachable"}}`,
		},
		{
			name:   "no dependencies",
			health: &mockHealth{},
			want:   `{"status":"healthy"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewDocumentsHandler(DocumentsConfig{Search: &mockDocSearch{}, Health: tt.health})

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			require.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, tt.want, rec.Body.String())
		})
	}
}

func TestLLM_GenerateDefaults(t *testing.T) {
	gen := &mockGeneration{resp: &domain.GenerationResponse{
		Response: "Paris", Model: "llama3.2", TokensGenerated: 1, Temperature: 0.7, MaxTokens: 512,
	}}
	h := NewLLMHandler(LLMConfig{Generation: gen})

	rec := postJSON(t, h, "/generate", `{"query":"capital?","context":"Paris is the capital."}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t,
		`{"response":"Paris","model":"llama3.2","tokens_generated":1,"temperature":0.7,"max_tokens":512}`,
		rec.Body.String())
	assert.InDelta(t, domain.DefaultTemperature, gen.got.Temperature, 1e-9)
	assert.Equal(t, "Paris is the capital.", gen.got.Context)
	assert.Zero(t, gen.got.MaxTokens)
}

func TestLLM_GenerateNullFieldsKeepDefaults(t *testing.T) {
	gen := &mockGeneration{resp: &domain.GenerationResponse{Response: "Paris"}}
	h := NewLLMHandler(LLMConfig{Generation: gen})

	rec := postJSON(t, h, "/generate", `{"query":"capital?","context":null,"max_tokens":null,"temperature":null}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.InDelta(t, domain.DefaultTemperature, gen.got.Temperature, 1e-9)
	assert.Zero(t, gen.got.MaxTokens)
	assert.Empty(t, gen.got.Context)
}

func TestLLM_GenerateErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		err  error
		want int
	}{
		{"missing query", `{"context":"x"}`, nil, http.StatusBadRequest},
		{"model unavailable", `{"query":"q"}`, fmt.Errorf("%w: model not loaded", domain.ErrModelUnavailable), http.StatusServiceUnavailable},
		{"generation failure", `{"query":"q"}`, fmt.Errorf("ollama exploded"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewLLMHandler(LLMConfig{Generation: &mockGeneration{err: tt.err}})

			rec := postJSON(t, h, "/generate", tt.body)

			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestLLM_ModelInfoAndHealth(t *testing.T) {
	gen := &mockGeneration{info: domain.ModelInfo{ModelName: "llama3.2", ModelLoaded: true}}
	h := NewLLMHandler(LLMConfig{Generation: gen})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/model-info", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"model_name":"llama3.2","model_loaded":true}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy","model":"llama3.2"}`, rec.Body.String())
}

func TestLLM_HealthWithoutModel(t *testing.T) {
	h := NewLLMHandler(LLMConfig{Generation: &mockGeneration{}})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestWebSearch_Post(t *testing.T) {
	web := &mockWebSearch{results: []domain.WebResult{
		{Title: "Paris", URL: "https://a.example", Content: "Capital of France.", Score: 1},
	}}
	h := NewWebSearchHandler(WebSearchConfig{Search: web})

	rec := postJSON(t, h, "/search", `{"query":"capital of France","num_results":3}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, web.n)
	assert.JSONEq(t,
		`{"results":[{"title":"Paris","url":"https://a.example","content":"Capital of France.","score":1}]}`,
		rec.Body.String())
}

func TestWebSearch_Get(t *testing.T) {
	web := &mockWebSearch{}
	h := NewWebSearchHandler(WebSearchConfig{Search: web})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/search?q=paris&count=7", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "paris", web.query)
	assert.Equal(t, 7, web.n)
	assert.JSONEq(t, `{"results":[]}`, rec.Body.String())
}

func TestWebSearch_Errors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"empty query", domain.ValidationError("query is required"), http.StatusBadRequest},
		{"no provider", fmt.Errorf("%w: no provider", domain.ErrServiceUnavailable), http.StatusServiceUnavailable},
		{"upstream unauthorized", domain.NewUpstreamHTTPError("bing", 401, []byte("bad key")), http.StatusUnauthorized},
		{"upstream throttled", fmt.Errorf("web search: %w", domain.NewUpstreamHTTPError("bing", 429, nil)), http.StatusTooManyRequests},
		{"upstream server error", domain.NewUpstreamHTTPError("bing", 502, nil), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewWebSearchHandler(WebSearchConfig{Search: &mockWebSearch{err: tt.err}})

			rec := postJSON(t, h, "/search", `{"query":"q"}`)

			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestWebSearch_BadCount(t *testing.T) {
	h := NewWebSearchHandler(WebSearchConfig{Search: &mockWebSearch{}})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/search?q=x&count=many", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
