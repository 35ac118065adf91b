package httpapi

import (
	"net/http"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

// LLMConfig wires the llm service role.
type LLMConfig struct {
	Generation driving.GenerationService
	Health     driving.HealthService
}

type llm struct {
	cfg LLMConfig
}

// NewLLMHandler serves POST /generate, GET /model-info and GET /health.
func NewLLMHandler(cfg LLMConfig) http.Handler {
	l := &llm{cfg: cfg}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /generate", l.handleGenerate)
	mux.HandleFunc("GET /model-info", l.handleModelInfo)
	mux.HandleFunc("GET /health", l.handleHealth)
	return Chain(mux, RequestLogger, CORS)
}

func (l *llm) handleGenerate(w http.ResponseWriter, r *http.Request) {
	req := driven.GenerationRequest{Temperature: domain.DefaultTemperature}
	if err := readJSON(w, r, generateSchema, &req); err != nil {
		writeError(w, err)
		return
	}

	resp, err := l.cfg.Generation.Generate(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (l *llm) handleModelInfo(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, l.cfg.Generation.ModelInfo())
}

func (l *llm) handleHealth(w http.ResponseWriter, r *http.Request) {
	info := l.cfg.Generation.ModelInfo()
	if !info.ModelLoaded {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Detail: "model not loaded"})
		return
	}

	out := checkRole(r.Context(), l.cfg.Health)
	out.Model = info.ModelName
	writeJSON(w, http.StatusOK, out)
}
