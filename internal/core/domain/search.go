package domain

import "unicode/utf8"

// SourceDisplayLimit is the number of characters of a source kept for display.
const SourceDisplayLimit = 200

// Source labels for SearchResult.Source.
const (
	SourceDocument = "document"
	SourceWeb      = "web"
)

// DefaultWebScore is assigned to web results when the provider omits a score.
const DefaultWebScore = 0.5

// SearchResult is one ranked piece of retrieved context.
type SearchResult struct {
	// Text is the retrieved text, truncated for display once placed in an Answer.
	Text string `json:"text"`

	// Score is the relevance score reported by the retriever.
	Score float64 `json:"score"`

	// Source is "document" or "web".
	Source string `json:"source,omitempty"`
}

// WebResult is a single web search hit.
type WebResult struct {
	// Title is the page title.
	Title string `json:"title"`

	// URL is the page location.
	URL string `json:"url,omitempty"`

	// Content is the snippet returned by the provider.
	Content string `json:"content"`

	// Score is the provider relevance score.
	Score float64 `json:"score"`
}

// Freshness values accepted by news search.
const (
	FreshnessDay   = "Day"
	FreshnessWeek  = "Week"
	FreshnessMonth = "Month"
)

// WebSearchOptions are per-call overrides for a web or news search.
// Zero values select the provider defaults.
type WebSearchOptions struct {
	// Count is the page size.
	Count int

	// Offset is the number of results to skip.
	Offset int

	// Market is a market code such as en-GB.
	Market string

	// Freshness limits news to the last Day, Week or Month.
	Freshness string
}

// Validate rejects negative paging and unknown freshness values.
func (o WebSearchOptions) Validate() error {
	if o.Offset < 0 {
		return ValidationError("offset must not be negative, got %d", o.Offset)
	}
	switch o.Freshness {
	case "", FreshnessDay, FreshnessWeek, FreshnessMonth:
		return nil
	}
	return ValidationError("freshness must be Day, Week or Month, got %q", o.Freshness)
}

// RetrievalMethod records which stage produced the context for an answer.
type RetrievalMethod string

// Retrieval methods.
const (
	MethodDocument  RetrievalMethod = "document"
	MethodWebSearch RetrievalMethod = "web_search"
	MethodDirect    RetrievalMethod = "direct"
)

// String returns the string representation.
func (m RetrievalMethod) String() string {
	return string(m)
}

// QueryContext is the retrieval result handed to generation.
type QueryContext struct {
	// ContextText is the text passed to the generator (empty for direct).
	ContextText string

	// Sources lists every retrieved item, truncated for display.
	Sources []SearchResult

	// Method records where the context came from.
	Method RetrievalMethod
}

// TruncateForDisplay shortens s to limit characters and appends "..." when cut.
func TruncateForDisplay(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit]) + "..."
}
