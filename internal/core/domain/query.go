package domain

import "strings"

// Query defaults applied when a request omits a field.
const (
	DefaultMaxTokens   = 1024
	DefaultTemperature = 0.7
	MaxTemperature     = 2.0
)

// Confidence values of the fixed answer heuristic.
const (
	ConfidenceWithContext    = 0.8
	ConfidenceWithoutContext = 0.3
)

// QueryRequest is a natural-language question and its retrieval switches.
type QueryRequest struct {
	// Query is the question text.
	Query string `json:"query"`

	// UseDocuments enables retrieval from ingested documents.
	UseDocuments bool `json:"use_documents"`

	// UseWebSearch enables the web search fallback.
	UseWebSearch bool `json:"use_web_search"`

	// MaxTokens bounds the generated answer length.
	MaxTokens int `json:"max_tokens"`

	// Temperature controls generation randomness.
	Temperature float64 `json:"temperature"`
}

// NewQueryRequest returns a request for query with default switches.
func NewQueryRequest(query string) QueryRequest {
	return QueryRequest{
		Query:        query,
		UseDocuments: true,
		UseWebSearch: false,
		MaxTokens:    DefaultMaxTokens,
		Temperature:  DefaultTemperature,
	}
}

// Validate checks the request and fills a zero MaxTokens with the default.
func (r *QueryRequest) Validate() error {
	r.Query = strings.TrimSpace(r.Query)
	if r.Query == "" {
		return ValidationError("query is required")
	}
	if r.MaxTokens < 0 {
		return ValidationError("max_tokens must not be negative")
	}
	if r.MaxTokens == 0 {
		r.MaxTokens = DefaultMaxTokens
	}
	if r.Temperature < 0 || r.Temperature > MaxTemperature {
		return ValidationError("temperature must be between 0 and %.1f", MaxTemperature)
	}
	return nil
}

// Answer is the final response to a query.
type Answer struct {
	// Text is the generated answer.
	Text string `json:"answer"`

	// Sources lists the retrieved context, truncated for display.
	Sources []SearchResult `json:"sources"`

	// Method records where the context came from.
	Method RetrievalMethod `json:"method"`

	// Confidence is 0.8 with context and 0.3 without.
	Confidence float64 `json:"confidence"`
}

// ConfidenceFor returns the heuristic confidence for a context string.
func ConfidenceFor(contextText string) float64 {
	if contextText != "" {
		return ConfidenceWithContext
	}
	return ConfidenceWithoutContext
}
