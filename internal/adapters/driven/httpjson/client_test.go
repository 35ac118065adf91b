package httpjson

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

func TestDo_RoundTrip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "secret", r.Header.Get("X-Key"))

		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		_ = json.NewEncoder(w).Encode(map[string]string{"echo": in["q"]})
	}))
	defer server.Close()

	var out map[string]string
	err := Do(context.Background(), server.Client(), Request{
		Service: "test",
		Method:  http.MethodPost,
		URL:     server.URL,
		Header:  http.Header{"X-Key": []string{"secret"}},
		Body:    map[string]string{"q": "hello"},
	}, &out)

	require.NoError(t, err)
	assert.Equal(t, "hello", out["echo"])
}

func TestDo_Non2xxIsUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	err := Do(context.Background(), server.Client(), Request{Service: "ollama", URL: server.URL}, nil)

	require.Error(t, err)
	var upstream *domain.UpstreamHTTPError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusNotFound, upstream.StatusCode)
	assert.Contains(t, upstream.Body, "model not found")
	assert.False(t, domain.IsTransient(err))
}

func TestDo_ConnectionRefusedIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	err := Do(context.Background(), http.DefaultClient, Request{Service: "documents", URL: url}, nil)

	assert.ErrorIs(t, err, domain.ErrTransientNetwork)
}

func TestDo_MalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("{not json"))
	}))
	defer server.Close()

	var out map[string]any
	err := Do(context.Background(), server.Client(), Request{Service: "test", URL: server.URL}, &out)

	require.Error(t, err)
	assert.False(t, domain.IsTransient(err))
}
