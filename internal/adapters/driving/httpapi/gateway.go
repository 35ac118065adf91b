package httpapi

import (
	"fmt"
	"net/http"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// GatewayConfig wires the public gateway role.
type GatewayConfig struct {
	Query    driving.QueryService
	Ingester driven.DocumentIngester
	Health   driving.HealthService

	// QueryRateLimit is the sustained /query rate per client (0 disables).
	QueryRateLimit float64
	QueryBurst     int
}

type gateway struct {
	cfg GatewayConfig
}

// NewGatewayHandler serves POST /query, POST /upload-documents and GET /health.
func NewGatewayHandler(cfg GatewayConfig) http.Handler {
	g := &gateway{cfg: cfg}

	var query http.Handler = http.HandlerFunc(g.handleQuery)
	if cfg.QueryRateLimit > 0 {
		query = NewClientLimiter(cfg.QueryRateLimit, cfg.QueryBurst).Middleware(query)
	}

	mux := http.NewServeMux()
	mux.Handle("POST /query", query)
	mux.HandleFunc("POST /upload-documents", g.handleUpload)
	mux.HandleFunc("GET /health", g.handleHealth)
	return Chain(mux, RequestLogger, CORS)
}

func (g *gateway) handleQuery(w http.ResponseWriter, r *http.Request) {
	req := domain.NewQueryRequest("")
	if err := readJSON(w, r, querySchema, &req); err != nil {
		writeError(w, err)
		return
	}

	answer, err := g.cfg.Query.Query(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, answer)
}

func (g *gateway) handleUpload(w http.ResponseWriter, r *http.Request) {
	handleUpload(w, r, g.cfg.Ingester)
}

func (g *gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := domain.HealthReport{domain.GatewayServiceName: domain.HealthHealthy}
	if g.cfg.Health != nil {
		report = g.cfg.Health.Check(r.Context())
	}
	writeJSON(w, http.StatusOK, report)
}

// handleUpload ingests the multipart upload as one batch.
func handleUpload(w http.ResponseWriter, r *http.Request, ingester driven.DocumentIngester) {
	if ingester == nil {
		writeError(w, fmt.Errorf("%w: document ingestion is not configured", domain.ErrServiceUnavailable))
		return
	}

	docs, err := readUpload(r)
	if err != nil {
		writeError(w, err)
		return
	}
	logger.Debug("Upload: %d files", len(docs))

	report, err := ingester.Ingest(r.Context(), docs)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
