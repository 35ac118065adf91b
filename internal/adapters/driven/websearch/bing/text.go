package bing

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// NoResultsText is the tool text returned when a search finds nothing.
const NoResultsText = "No web search results found."

// FormatText renders results in the text layout of the bing_web_search tool:
// a bold title line followed by URL and Snippet lines, entries separated by a blank line.
func FormatText(results []domain.WebResult) string {
	if len(results) == 0 {
		return NoResultsText
	}
	var b strings.Builder
	for _, r := range results {
		fmt.Fprintf(&b, "**%s**\nURL: %s\nSnippet: %s\n\n", r.Title, r.URL, r.Content)
	}
	return b.String()
}

// ParseText is the inverse of FormatText. Entries with fewer than two lines
// are skipped and every parsed result scores 1.0.
func ParseText(text string) []domain.WebResult {
	var results []domain.WebResult
	for _, entry := range strings.Split(text, "\n\n") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		lines := strings.Split(entry, "\n")
		if len(lines) < 2 {
			continue
		}

		r := domain.WebResult{
			Title: strings.TrimSpace(strings.ReplaceAll(lines[0], "**", "")),
			Score: 1.0,
		}
		if rest, ok := strings.CutPrefix(lines[1], "URL:"); ok {
			r.URL = strings.TrimSpace(rest)
		}
		if len(lines) > 2 {
			if rest, ok := strings.CutPrefix(lines[2], "Snippet:"); ok {
				r.Content = strings.TrimSpace(rest)
			}
		}
		results = append(results, r)
	}
	return results
}
