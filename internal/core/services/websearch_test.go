package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

func TestWebSearchService_DefaultsCountAndScore(t *testing.T) {
	web := &mockWebSearcher{results: []domain.WebResult{
		{Title: "Paris", Content: "Capital of France."},
		{Title: "Lyon", Content: "A city.", Score: 0.9},
	}}
	svc := NewWebSearchService(web, 0)

	results, err := svc.Search(context.Background(), " capital of France ", 0)

	require.NoError(t, err)
	assert.Equal(t, DefaultWebResults, web.n)
	require.Len(t, results, 2)
	assert.InDelta(t, domain.DefaultWebScore, results[0].Score, 1e-9)
	assert.InDelta(t, 0.9, results[1].Score, 1e-9)
}

func TestWebSearchService_ExplicitCount(t *testing.T) {
	web := &mockWebSearcher{}
	svc := NewWebSearchService(web, 5)

	_, err := svc.Search(context.Background(), "q", 8)

	require.NoError(t, err)
	assert.Equal(t, 8, web.n)
}

func TestWebSearchService_EmptyQuery(t *testing.T) {
	web := &mockWebSearcher{}

	_, err := NewWebSearchService(web, 5).Search(context.Background(), "  ", 5)

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Zero(t, web.calls)
}

func TestWebSearchService_NoProvider(t *testing.T) {
	_, err := NewWebSearchService(nil, 5).Search(context.Background(), "q", 5)

	assert.ErrorIs(t, err, domain.ErrServiceUnavailable)
}

func TestWebSearchService_SearchPagePassesOptions(t *testing.T) {
	web := &mockPagedWebSearcher{mockWebSearcher: mockWebSearcher{results: []domain.WebResult{{Title: "Paris"}}}}
	svc := NewWebSearchService(web, 5)

	results, err := svc.SearchPage(context.Background(), "q", domain.WebSearchOptions{Offset: 10, Market: "en-GB"})

	require.NoError(t, err)
	assert.Equal(t, domain.WebSearchOptions{Count: 5, Offset: 10, Market: "en-GB"}, web.opts)
	assert.Zero(t, web.calls)
	require.Len(t, results, 1)
	assert.InDelta(t, domain.DefaultWebScore, results[0].Score, 1e-9)
}

func TestWebSearchService_SearchPageWithoutPagingSupport(t *testing.T) {
	web := &mockWebSearcher{}
	svc := NewWebSearchService(web, 5)

	_, err := svc.SearchPage(context.Background(), "q", domain.WebSearchOptions{Offset: 10})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Zero(t, web.calls)

	_, err = svc.SearchPage(context.Background(), "q", domain.WebSearchOptions{Count: 3, Market: "en-GB"})
	require.NoError(t, err)
	assert.Equal(t, 3, web.n)
}

func TestWebSearchService_SearchNews(t *testing.T) {
	web := &mockPagedWebSearcher{}
	svc := NewWebSearchService(web, 5)
	require.True(t, svc.SupportsNews())

	_, err := svc.SearchNews(context.Background(), "q", domain.WebSearchOptions{Freshness: domain.FreshnessDay})

	require.NoError(t, err)
	assert.True(t, web.news)
	assert.Equal(t, domain.WebSearchOptions{Count: 5, Freshness: domain.FreshnessDay}, web.opts)

	_, err = svc.SearchNews(context.Background(), "q", domain.WebSearchOptions{Freshness: "Hour"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestWebSearchService_SearchNewsUnsupported(t *testing.T) {
	svc := NewWebSearchService(&mockWebSearcher{}, 5)
	assert.False(t, svc.SupportsNews())

	_, err := svc.SearchNews(context.Background(), "q", domain.WebSearchOptions{})

	assert.ErrorIs(t, err, domain.ErrServiceUnavailable)
}
