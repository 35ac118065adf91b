package httpapi

import (
	"net/http"
	"strings"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

// DefaultSearchTopK applies when a /search request omits top_k.
const DefaultSearchTopK = 5

// DocumentsConfig wires the document service role.
type DocumentsConfig struct {
	Search   driving.DocumentSearchService
	Ingester driven.DocumentIngester
	Health   driving.HealthService
}

type searchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

type searchResponse struct {
	Results []domain.SearchResult `json:"results"`
}

type documents struct {
	cfg DocumentsConfig
}

// NewDocumentsHandler serves POST /search, POST /upload-documents and GET /health.
func NewDocumentsHandler(cfg DocumentsConfig) http.Handler {
	d := &documents{cfg: cfg}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /search", d.handleSearch)
	mux.HandleFunc("POST /upload-documents", d.handleUpload)
	mux.HandleFunc("GET /health", d.handleHealth)
	return Chain(mux, RequestLogger, CORS)
}

func (d *documents) handleSearch(w http.ResponseWriter, r *http.Request) {
	req := searchRequest{TopK: DefaultSearchTopK}
	if err := readJSON(w, r, nil, &req); err != nil {
		writeError(w, err)
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, domain.ValidationError("query text is required"))
		return
	}

	results, err := d.cfg.Search.Search(r.Context(), req.Query, req.TopK)
	if err != nil {
		writeError(w, err)
		return
	}
	if results == nil {
		results = []domain.SearchResult{}
	}
	writeJSON(w, http.StatusOK, searchResponse{Results: results})
}

func (d *documents) handleUpload(w http.ResponseWriter, r *http.Request) {
	handleUpload(w, r, d.cfg.Ingester)
}

func (d *documents) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, checkRole(r.Context(), d.cfg.Health))
}
