package remote

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c, err := NewClient(Config{BaseURL: server.URL + "/"})
	require.NoError(t, err)
	return c
}

func TestNewClient_RequiresURL(t *testing.T) {
	_, err := NewClient(Config{})

	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestSearch(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		var req SearchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, SearchRequest{Query: "capital of France", TopK: 2}, req)

		_, _ = w.Write([]byte(`{"results":[
			{"text":"Paris is the capital.","score":1.0},
			{"text":"France is in Europe.","score":0.5},
			{"text":"extra","score":0.1}
		]}`))
	})

	results, err := c.Search(context.Background(), "capital of France", 2)

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Paris is the capital.", results[0].Text)
	assert.InDelta(t, 1.0, results[0].Score, 1e-9)
	assert.Equal(t, domain.SourceDocument, results[1].Source)
}

func TestSearch_EmptyResults(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"results":[]}`))
	})

	results, err := c.Search(context.Background(), "q", 5)

	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch_BadRequestIsUpstream(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"detail":"Query is required"}`, http.StatusBadRequest)
	})

	_, err := c.Search(context.Background(), "", 5)

	var upstream *domain.UpstreamHTTPError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusBadRequest, upstream.StatusCode)
	assert.Equal(t, serviceName, upstream.Service)
}

func TestIngest_Multipart(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/upload-documents", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		files := r.MultipartForm.File["files"]
		require.Len(t, files, 2)
		assert.Equal(t, "a.txt", files[0].Filename)
		assert.Equal(t, "doc-2.txt", files[1].Filename)

		f, err := files[0].Open()
		require.NoError(t, err)
		defer f.Close()
		content, err := io.ReadAll(f)
		require.NoError(t, err)
		assert.Equal(t, "alpha", string(content))

		_ = json.NewEncoder(w).Encode(domain.IngestReport{
			Status: domain.IngestStatusSuccess, ProcessedDocuments: 2, TotalChunks: 3,
		})
	})

	report, err := c.Ingest(context.Background(), []domain.Document{
		{ID: "doc-1", Name: "a.txt", Content: "alpha"},
		{ID: "doc-2", Content: "beta"},
	})

	require.NoError(t, err)
	assert.Equal(t, &domain.IngestReport{Status: "success", ProcessedDocuments: 2, TotalChunks: 3}, report)
}

func TestIngest_NoDocuments(t *testing.T) {
	c := newTestClient(t, func(http.ResponseWriter, *http.Request) {
		t.Error("no request expected")
	})

	_, err := c.Ingest(context.Background(), nil)

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestPing(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"healthy"}`))
	})

	assert.NoError(t, c.Ping(context.Background()))
	assert.Equal(t, "document-service", c.Name())
	assert.NoError(t, c.Close())
}
