package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for sercha-rag resources.
	uriScheme = "sercha-rag://"
)

// registerResources registers the resources whose ports are set.
func (s *Server) registerResources() {
	if s.ports.Health != nil {
		s.server.AddResource(&mcp.Resource{
			URI:         uriScheme + "health",
			Name:        "health",
			Description: "Health status of every dependency",
			MIMEType:    "application/json",
		}, s.handleHealthResource)
	}

	if s.ports.Search != nil {
		s.server.AddResourceTemplate(&mcp.ResourceTemplate{
			URITemplate: uriScheme + "documents/search/{query}",
			Name:        "document-search",
			Description: "Document chunks closest to a query",
			MIMEType:    "application/json",
		}, s.handleSearchResource)
	}
}

// handleHealthResource returns the current health report.
func (s *Server) handleHealthResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	return jsonResource(req.Params.URI, s.ports.Health.Check(ctx))
}

// handleSearchResource returns search results for the query in the URI.
func (s *Server) handleSearchResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	query := extractSearchQuery(req.Params.URI)
	if query == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	results, err := s.ports.Search.Search(ctx, query, defaultSearchTopK)
	if err != nil {
		return nil, fmt.Errorf("searching documents: %w", err)
	}
	return jsonResource(req.Params.URI, results)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractSearchQuery extracts the unescaped query from a URI like
// sercha-rag://documents/search/{query}.
func extractSearchQuery(uri string) string {
	const prefix = uriScheme + "documents/search/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	query, err := url.PathUnescape(strings.TrimPrefix(uri, prefix))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(query)
}
