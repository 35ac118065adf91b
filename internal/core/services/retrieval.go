package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Default retrieval sizes.
const (
	DefaultDocumentTopK      = 12
	DefaultContextHits       = 3
	DefaultWebResults        = 5
	DefaultWebContextResults = 3
)

// contextSeparator joins context blocks.
const contextSeparator = "\n\n"

// retrievalState is a step of the per-query retrieval state machine.
type retrievalState int

const (
	stateStart retrievalState = iota
	stateTryDocs
	stateTryWeb
	stateHaveContext
	stateNoContext
	stateDone
)

func (s retrievalState) String() string {
	switch s {
	case stateStart:
		return "START"
	case stateTryDocs:
		return "TRY_DOCS"
	case stateTryWeb:
		return "TRY_WEB"
	case stateHaveContext:
		return "HAVE_CONTEXT"
	case stateNoContext:
		return "NO_CONTEXT"
	case stateDone:
		return "DONE"
	default:
		return "UNKNOWN"
	}
}

// RetrievalConfig sizes each retrieval stage.
type RetrievalConfig struct {
	// DocumentTopK is the number of hits requested from document search.
	DocumentTopK int

	// ContextHits is how many document hits are joined into the context.
	ContextHits int

	// WebResults is the number of results requested from web search.
	WebResults int

	// WebContextResults is how many web results are formatted into the context.
	WebContextResults int
}

func (c RetrievalConfig) withDefaults() RetrievalConfig {
	if c.DocumentTopK <= 0 {
		c.DocumentTopK = DefaultDocumentTopK
	}
	if c.ContextHits <= 0 {
		c.ContextHits = DefaultContextHits
	}
	if c.WebResults <= 0 {
		c.WebResults = DefaultWebResults
	}
	if c.WebContextResults <= 0 {
		c.WebContextResults = DefaultWebContextResults
	}
	return c
}

// RetrievalOrchestrator decides which context reaches generation.
// Documents are tried first; the web is consulted only when documents yield nothing.
type RetrievalOrchestrator struct {
	docs      driven.DocumentSearcher
	web       driven.WebSearcher
	docPolicy RetryPolicy
	webPolicy RetryPolicy
	cfg       RetrievalConfig
}

// NewRetrievalOrchestrator creates an orchestrator.
// The docs and web parameters are optional (can be nil).
func NewRetrievalOrchestrator(
	docs driven.DocumentSearcher,
	web driven.WebSearcher,
	cfg RetrievalConfig,
) *RetrievalOrchestrator {
	return &RetrievalOrchestrator{
		docs:      docs,
		web:       web,
		docPolicy: DefaultRetryPolicy(),
		webPolicy: DefaultRetryPolicy(),
		cfg:       cfg.withDefaults(),
	}
}

// SetRetryPolicies overrides the document and web search retry policies.
func (o *RetrievalOrchestrator) SetRetryPolicies(docs, web RetryPolicy) {
	o.docPolicy = docs
	o.webPolicy = web
}

// Retrieve runs the state machine for one query. It never fails:
// failed or empty stages fall through to the next one.
func (o *RetrievalOrchestrator) Retrieve(
	ctx context.Context, query string, useDocuments, useWebSearch bool,
) domain.QueryContext {
	logger.Section("Retrieval")

	qc := domain.QueryContext{
		Sources: []domain.SearchResult{},
		Method:  domain.MethodDirect,
	}

	state := stateStart
	for state != stateDone {
		logger.Debug("Retrieval state: %s", state)

		switch state {
		case stateStart:
			state = stateTryDocs

		case stateTryDocs:
			state = stateTryWeb
			if !useDocuments || o.docs == nil {
				continue
			}
			outcome := o.searchDocuments(ctx, query)
			if outcome.Ok() {
				qc = o.documentContext(outcome.Results)
				state = stateHaveContext
			}

		case stateTryWeb:
			state = stateNoContext
			if !useWebSearch || o.web == nil {
				continue
			}
			outcome := o.searchWeb(ctx, query)
			if outcome.Ok() {
				qc = o.webContext(outcome.Results)
				state = stateHaveContext
			}

		case stateHaveContext:
			logger.Info("Retrieved %d sources via %s", len(qc.Sources), qc.Method)
			state = stateDone

		case stateNoContext:
			logger.Info("No context retrieved, answering directly")
			state = stateDone
		}
	}

	return qc
}

// searchDocuments runs document search under the retry policy.
func (o *RetrievalOrchestrator) searchDocuments(ctx context.Context, query string) domain.Outcome[domain.SearchResult] {
	results, err := Retry(ctx, o.docPolicy, "document search",
		func(ctx context.Context) ([]domain.SearchResult, error) {
			return o.docs.Search(ctx, query, o.cfg.DocumentTopK)
		})
	outcome := domain.OutcomeOf(results, err)
	if outcome.Kind == domain.OutcomeErr {
		logger.Warn("Document search failed: %v", outcome.Err)
	}
	logger.Debug("Document search outcome: %s (%d results)", outcome.Kind, len(outcome.Results))
	return outcome
}

// searchWeb runs web search under the retry policy.
func (o *RetrievalOrchestrator) searchWeb(ctx context.Context, query string) domain.Outcome[domain.WebResult] {
	results, err := Retry(ctx, o.webPolicy, "web search",
		func(ctx context.Context) ([]domain.WebResult, error) {
			return o.web.Search(ctx, query, o.cfg.WebResults)
		})
	outcome := domain.OutcomeOf(results, err)
	if outcome.Kind == domain.OutcomeErr {
		logger.Warn("Web search failed: %v", outcome.Err)
	}
	logger.Debug("Web search outcome: %s (%d results)", outcome.Kind, len(outcome.Results))
	return outcome
}

// documentContext joins the top hits and lists every hit as a source.
func (o *RetrievalOrchestrator) documentContext(results []domain.SearchResult) domain.QueryContext {
	n := min(o.cfg.ContextHits, len(results))
	texts := make([]string, n)
	for i := 0; i < n; i++ {
		texts[i] = results[i].Text
	}

	sources := make([]domain.SearchResult, len(results))
	for i, r := range results {
		sources[i] = domain.SearchResult{
			Text:   domain.TruncateForDisplay(r.Text, domain.SourceDisplayLimit),
			Score:  r.Score,
			Source: domain.SourceDocument,
		}
	}

	return domain.QueryContext{
		ContextText: strings.Join(texts, contextSeparator),
		Sources:     sources,
		Method:      domain.MethodDocument,
	}
}

// webContext formats the top results as title/content blocks.
func (o *RetrievalOrchestrator) webContext(results []domain.WebResult) domain.QueryContext {
	n := min(o.cfg.WebContextResults, len(results))
	blocks := make([]string, n)
	for i := 0; i < n; i++ {
		blocks[i] = fmt.Sprintf("Title: %s\nContent: %s", results[i].Title, results[i].Content)
	}

	sources := make([]domain.SearchResult, len(results))
	for i, r := range results {
		score := r.Score
		if score == 0 {
			score = domain.DefaultWebScore
		}
		sources[i] = domain.SearchResult{
			Text:   domain.TruncateForDisplay(r.Content, domain.SourceDisplayLimit),
			Score:  score,
			Source: domain.SourceWeb,
		}
	}

	return domain.QueryContext{
		ContextText: strings.Join(blocks, contextSeparator),
		Sources:     sources,
		Method:      domain.MethodWebSearch,
	}
}
