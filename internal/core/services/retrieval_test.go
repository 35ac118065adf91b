package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

func newTestOrchestrator(
	docs *mockDocSearcher, web *mockWebSearcher, waits *[]time.Duration,
) *RetrievalOrchestrator {
	var o *RetrievalOrchestrator
	switch {
	case docs != nil && web != nil:
		o = NewRetrievalOrchestrator(docs, web, RetrievalConfig{})
	case docs != nil:
		o = NewRetrievalOrchestrator(docs, nil, RetrievalConfig{})
	case web != nil:
		o = NewRetrievalOrchestrator(nil, web, RetrievalConfig{})
	default:
		o = NewRetrievalOrchestrator(nil, nil, RetrievalConfig{})
	}
	o.SetRetryPolicies(fastPolicy(waits), fastPolicy(waits))
	return o
}

func docResults(texts ...string) []domain.SearchResult {
	out := make([]domain.SearchResult, len(texts))
	for i, t := range texts {
		out[i] = domain.SearchResult{Text: t, Score: 1.0 / float64(i+1), Source: domain.SourceDocument}
	}
	return out
}

func TestRetrieve_DocumentsWin(t *testing.T) {
	var waits []time.Duration
	docs := &mockDocSearcher{results: docResults("A", "B", "C", "D", "E")}
	web := &mockWebSearcher{results: []domain.WebResult{{Title: "t", Content: "c"}}}
	o := newTestOrchestrator(docs, web, &waits)

	qc := o.Retrieve(context.Background(), "question", true, true)

	assert.Equal(t, domain.MethodDocument, qc.Method)
	assert.Equal(t, "A\n\nB\n\nC", qc.ContextText)
	assert.Len(t, qc.Sources, 5)
	assert.Equal(t, 12, docs.topK)
	assert.Equal(t, 0, web.calls, "web search must not run when documents return results")
}

func TestRetrieve_DocumentSourcesTruncated(t *testing.T) {
	var waits []time.Duration
	long := strings.Repeat("x", 500)
	docs := &mockDocSearcher{results: docResults(long)}
	o := newTestOrchestrator(docs, nil, &waits)

	qc := o.Retrieve(context.Background(), "question", true, false)

	require.Len(t, qc.Sources, 1)
	assert.Equal(t, long, qc.ContextText)
	assert.Equal(t, strings.Repeat("x", 200)+"...", qc.Sources[0].Text)
	assert.Equal(t, domain.SourceDocument, qc.Sources[0].Source)
}

func TestRetrieve_FallsBackToWebWhenDocumentsEmpty(t *testing.T) {
	var waits []time.Duration
	docs := &mockDocSearcher{}
	web := &mockWebSearcher{results: []domain.WebResult{
		{Title: "T1", Content: "C1", Score: 0.9},
		{Title: "T2", Content: "C2"},
		{Title: "T3", Content: "C3"},
		{Title: "T4", Content: "C4"},
		{Title: "T5", Content: "C5"},
	}}
	o := newTestOrchestrator(docs, web, &waits)

	qc := o.Retrieve(context.Background(), "question", true, true)

	assert.Equal(t, domain.MethodWebSearch, qc.Method)
	assert.Equal(t, "Title: T1\nContent: C1\n\nTitle: T2\nContent: C2\n\nTitle: T3\nContent: C3", qc.ContextText)
	require.Len(t, qc.Sources, 5)
	assert.Equal(t, 5, web.n)
	assert.InDelta(t, 0.9, qc.Sources[0].Score, 1e-9)
	assert.InDelta(t, domain.DefaultWebScore, qc.Sources[1].Score, 1e-9)
	assert.Equal(t, domain.SourceWeb, qc.Sources[1].Source)
}

func TestRetrieve_DocumentFailureDegradesToWeb(t *testing.T) {
	var waits []time.Duration
	docs := &mockDocSearcher{errs: []error{
		transientErr("refused"), transientErr("refused"), transientErr("refused"),
	}}
	web := &mockWebSearcher{results: []domain.WebResult{{Title: "T", Content: "C"}}}
	o := newTestOrchestrator(docs, web, &waits)

	qc := o.Retrieve(context.Background(), "question", true, true)

	assert.Equal(t, 3, docs.calls)
	assert.Equal(t, domain.MethodWebSearch, qc.Method)
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, waits)
}

func TestRetrieve_TransientFailureThenSuccess(t *testing.T) {
	var waits []time.Duration
	docs := &mockDocSearcher{
		errs:    []error{transientErr("timeout"), transientErr("refused")},
		results: docResults("A"),
	}
	o := newTestOrchestrator(docs, nil, &waits)

	qc := o.Retrieve(context.Background(), "question", true, false)

	assert.Equal(t, 3, docs.calls)
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, waits)
	assert.Equal(t, domain.MethodDocument, qc.Method)
	assert.Equal(t, "A", qc.ContextText)
}

func TestRetrieve_UpstreamErrorNotRetried(t *testing.T) {
	var waits []time.Duration
	docs := &mockDocSearcher{errs: []error{domain.NewUpstreamHTTPError("documents", 500, nil)}}
	o := newTestOrchestrator(docs, nil, &waits)

	qc := o.Retrieve(context.Background(), "question", true, false)

	assert.Equal(t, 1, docs.calls)
	assert.Equal(t, domain.MethodDirect, qc.Method)
}

func TestRetrieve_DirectWhenEverythingEmpty(t *testing.T) {
	var waits []time.Duration
	docs := &mockDocSearcher{}
	web := &mockWebSearcher{}
	o := newTestOrchestrator(docs, web, &waits)

	qc := o.Retrieve(context.Background(), "capital of France", true, true)

	assert.Equal(t, domain.MethodDirect, qc.Method)
	assert.Empty(t, qc.ContextText)
	assert.NotNil(t, qc.Sources)
	assert.Empty(t, qc.Sources)
}

func TestRetrieve_FlagsDisableStages(t *testing.T) {
	var waits []time.Duration
	docs := &mockDocSearcher{results: docResults("A")}
	web := &mockWebSearcher{results: []domain.WebResult{{Title: "T", Content: "C"}}}
	o := newTestOrchestrator(docs, web, &waits)

	qc := o.Retrieve(context.Background(), "question", false, false)

	assert.Equal(t, domain.MethodDirect, qc.Method)
	assert.Equal(t, 0, docs.calls)
	assert.Equal(t, 0, web.calls)
}

func TestRetrieve_WebOnly(t *testing.T) {
	var waits []time.Duration
	docs := &mockDocSearcher{results: docResults("A")}
	web := &mockWebSearcher{results: []domain.WebResult{{Title: "T", Content: "C"}}}
	o := newTestOrchestrator(docs, web, &waits)

	qc := o.Retrieve(context.Background(), "question", false, true)

	assert.Equal(t, domain.MethodWebSearch, qc.Method)
	assert.Equal(t, 0, docs.calls)
}

func TestRetrieve_NoCollaboratorsConfigured(t *testing.T) {
	var waits []time.Duration
	o := newTestOrchestrator(nil, nil, &waits)

	qc := o.Retrieve(context.Background(), "question", true, true)

	assert.Equal(t, domain.MethodDirect, qc.Method)
	assert.Empty(t, qc.Sources)
}

func TestRetrievalState_String(t *testing.T) {
	assert.Equal(t, "TRY_DOCS", stateTryDocs.String())
	assert.Equal(t, "DONE", stateDone.String())
	assert.Equal(t, "UNKNOWN", retrievalState(99).String())
}
