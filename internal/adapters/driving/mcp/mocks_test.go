package mcp

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// mockQueryService is a mock implementation of driving.QueryService.
type mockQueryService struct {
	answer *domain.Answer
	err    error
	got    domain.QueryRequest
}

func (m *mockQueryService) Query(_ context.Context, req domain.QueryRequest) (*domain.Answer, error) {
	m.got = req
	return m.answer, m.err
}

// mockSearchService is a mock implementation of driving.DocumentSearchService.
type mockSearchService struct {
	results []domain.SearchResult
	err     error
	query   string
	topK    int
}

func (m *mockSearchService) Search(_ context.Context, query string, topK int) ([]domain.SearchResult, error) {
	m.query, m.topK = query, topK
	return m.results, m.err
}

// mockWebService is a mock implementation of driving.WebSearchService.
type mockWebService struct {
	results []domain.WebResult
	err     error
	n       int
}

func (m *mockWebService) Search(_ context.Context, _ string, n int) ([]domain.WebResult, error) {
	m.n = n
	return m.results, m.err
}

// mockPagedWebService also implements driving.PagedWebSearchService and
// driving.NewsSearchService.
type mockPagedWebService struct {
	mockWebService
	opts  domain.WebSearchOptions
	paged bool
	news  bool
}

func (m *mockPagedWebService) SearchPage(_ context.Context, _ string, opts domain.WebSearchOptions) ([]domain.WebResult, error) {
	m.opts, m.paged = opts, true
	return m.results, m.err
}

func (m *mockPagedWebService) SearchNews(_ context.Context, _ string, opts domain.WebSearchOptions) ([]domain.WebResult, error) {
	m.opts, m.news = opts, true
	return m.results, m.err
}

// mockHealthService is a mock implementation of driving.HealthService.
type mockHealthService struct {
	report domain.HealthReport
}

func (m *mockHealthService) Check(context.Context) domain.HealthReport {
	return m.report
}
