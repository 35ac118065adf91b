package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c, err := NewClient(Config{BaseURL: server.URL})
	require.NoError(t, err)
	return c
}

func TestNewClient_RequiresURL(t *testing.T) {
	_, err := NewClient(Config{})

	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestGenerate(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/generate", r.URL.Path)

		var req driven.GenerationRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, driven.GenerationRequest{
			Query: "q", Context: "ctx", MaxTokens: 100, Temperature: 0.5,
		}, req)

		_ = json.NewEncoder(w).Encode(domain.GenerationResponse{Response: "answer", Model: "mistral-7b"})
	})

	assert.Equal(t, "remote", c.ModelName())

	out, err := c.Generate(context.Background(), driven.GenerationRequest{
		Query: "q", Context: "ctx", MaxTokens: 100, Temperature: 0.5,
	})

	require.NoError(t, err)
	assert.Equal(t, "answer", out)
	assert.Equal(t, "mistral-7b", c.ModelName())
}

func TestGenerate_ModelNotLoaded(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"detail":"Model not loaded"}`, http.StatusServiceUnavailable)
	})

	_, err := c.Generate(context.Background(), driven.GenerationRequest{Query: "q"})

	var upstream *domain.UpstreamHTTPError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusServiceUnavailable, upstream.StatusCode)
}

func TestModelInfo(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/model-info", r.URL.Path)
		_, _ = w.Write([]byte(`{"model_name":"llama3.2","model_loaded":true}`))
	})

	info, err := c.ModelInfo(context.Background())

	require.NoError(t, err)
	assert.Equal(t, &domain.ModelInfo{ModelName: "llama3.2", ModelLoaded: true}, info)
	assert.Equal(t, "llama3.2", c.ModelName())
}

func TestPing(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"healthy"}`))
	})

	assert.NoError(t, c.Ping(context.Background()))
}
