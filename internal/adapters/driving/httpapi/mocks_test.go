package httpapi

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

type mockQueryService struct {
	answer *domain.Answer
	err    error
	got    domain.QueryRequest
}

func (m *mockQueryService) Query(_ context.Context, req domain.QueryRequest) (*domain.Answer, error) {
	m.got = req
	return m.answer, m.err
}

type mockIngester struct {
	err  error
	docs []domain.Document
}

func (m *mockIngester) Ingest(_ context.Context, docs []domain.Document) (*domain.IngestReport, error) {
	m.docs = docs
	if m.err != nil {
		return nil, m.err
	}
	return &domain.IngestReport{
		Status:             domain.IngestStatusSuccess,
		ProcessedDocuments: len(docs),
		TotalChunks:        len(docs),
	}, nil
}

type mockHealth struct {
	report domain.HealthReport
}

func (m *mockHealth) Check(context.Context) domain.HealthReport {
	out := domain.HealthReport{domain.GatewayServiceName: domain.HealthHealthy}
	for k, v := range m.report {
		out[k] = v
	}
	return out
}

type mockDocSearch struct {
	results []domain.SearchResult
	err     error
	query   string
	topK    int
}

func (m *mockDocSearch) Search(_ context.Context, query string, topK int) ([]domain.SearchResult, error) {
	m.query, m.topK = query, topK
	return m.results, m.err
}

type mockGeneration struct {
	resp *domain.GenerationResponse
	err  error
	info domain.ModelInfo
	got  driven.GenerationRequest
}

func (m *mockGeneration) Generate(_ context.Context, req driven.GenerationRequest) (*domain.GenerationResponse, error) {
	m.got = req
	return m.resp, m.err
}

func (m *mockGeneration) ModelInfo() domain.ModelInfo { return m.info }

type mockWebSearch struct {
	results []domain.WebResult
	err     error
	query   string
	n       int
}

func (m *mockWebSearch) Search(_ context.Context, query string, n int) ([]domain.WebResult, error) {
	m.query, m.n = query, n
	return m.results, m.err
}
