package mcp

import (
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the MCP server.
// Tools and resources backed by a nil port are not registered.
type Ports struct {
	// Query answers questions (required).
	Query driving.QueryService

	// Search searches ingested documents.
	Search driving.DocumentSearchService

	// Web searches the web and backs the bing_web_search tool.
	Web driving.WebSearchService

	// News searches recent news and backs the bing_news_search tool.
	News driving.NewsSearchService

	// Health reports dependency status.
	Health driving.HealthService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Query == nil {
		return ErrMissingQueryService
	}
	return nil
}
