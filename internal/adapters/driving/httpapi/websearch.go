package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

// WebSearchConfig wires the web search service role.
type WebSearchConfig struct {
	Search driving.WebSearchService
	Health driving.HealthService
}

type webSearchRequest struct {
	Query      string `json:"query"`
	NumResults int    `json:"num_results"`
}

type webSearchResponse struct {
	Results []domain.WebResult `json:"results"`
}

type webSearch struct {
	cfg WebSearchConfig
}

// NewWebSearchHandler serves POST /search, GET /search?q=&count= and GET /health.
func NewWebSearchHandler(cfg WebSearchConfig) http.Handler {
	s := &webSearch{cfg: cfg}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /search", s.handleSearch)
	mux.HandleFunc("GET /search", s.handleSearchQuery)
	mux.HandleFunc("GET /health", s.handleHealth)
	return Chain(mux, RequestLogger, CORS)
}

func (s *webSearch) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req webSearchRequest
	if err := readJSON(w, r, nil, &req); err != nil {
		writeError(w, err)
		return
	}
	s.search(w, r, req)
}

func (s *webSearch) handleSearchQuery(w http.ResponseWriter, r *http.Request) {
	req := webSearchRequest{Query: r.URL.Query().Get("q")}
	if count := r.URL.Query().Get("count"); count != "" {
		n, err := strconv.Atoi(count)
		if err != nil {
			writeError(w, domain.ValidationError("count must be an integer"))
			return
		}
		req.NumResults = n
	}
	s.search(w, r, req)
}

func (s *webSearch) search(w http.ResponseWriter, r *http.Request, req webSearchRequest) {
	if s.cfg.Search == nil {
		writeError(w, fmt.Errorf("web search: %w", domain.ErrServiceUnavailable))
		return
	}
	results, err := s.cfg.Search.Search(r.Context(), req.Query, req.NumResults)
	if err != nil {
		writeError(w, err)
		return
	}
	if results == nil {
		results = []domain.WebResult{}
	}
	writeJSON(w, http.StatusOK, webSearchResponse{Results: results})
}

func (s *webSearch) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, checkRole(r.Context(), s.cfg.Health))
}
