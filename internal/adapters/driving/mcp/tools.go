package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/websearch/bing"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Tool names.
const (
	ToolQuery           = "query"
	ToolSearchDocuments = "search_documents"
	ToolWebSearch       = "bing_web_search"
	ToolNewsSearch      = "bing_news_search"
)

// QueryInput is the input schema for the query tool.
type QueryInput struct {
	Query        string   `json:"query" jsonschema:"the question to answer"`
	UseDocuments *bool    `json:"use_documents,omitempty" jsonschema:"retrieve context from ingested documents (default true)"`
	UseWebSearch bool     `json:"use_web_search,omitempty" jsonschema:"fall back to web search when documents find nothing"`
	MaxTokens    int      `json:"max_tokens,omitempty" jsonschema:"maximum answer length in tokens (default 1024)"`
	Temperature  *float64 `json:"temperature,omitempty" jsonschema:"sampling temperature between 0 and 2 (default 0.7)"`
}

// QueryOutput is the output schema for the query tool.
type QueryOutput struct {
	Answer     string                `json:"answer"`
	Method     string                `json:"method"`
	Confidence float64               `json:"confidence"`
	Sources    []domain.SearchResult `json:"sources"`
}

// SearchInput is the input schema for the search_documents tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the search query to find document chunks"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"maximum number of results to return (default 5)"`
}

// SearchOutput is the output schema for the search_documents tool.
type SearchOutput struct {
	Results []domain.SearchResult `json:"results"`
	Count   int                   `json:"count"`
}

// WebSearchInput is the input schema for the bing_web_search tool.
type WebSearchInput struct {
	Query  string `json:"query" jsonschema:"the web search query"`
	Count  int    `json:"count,omitempty" jsonschema:"number of results to return (default 5, max 50)"`
	Offset int    `json:"offset,omitempty" jsonschema:"number of results to skip"`
	Market string `json:"market,omitempty" jsonschema:"market code such as en-US"`
}

// NewsSearchInput is the input schema for the bing_news_search tool.
type NewsSearchInput struct {
	Query     string `json:"query" jsonschema:"the news search query"`
	Count     int    `json:"count,omitempty" jsonschema:"number of articles to return (default 5, max 50)"`
	Offset    int    `json:"offset,omitempty" jsonschema:"number of articles to skip"`
	Market    string `json:"market,omitempty" jsonschema:"market code such as en-US"`
	Freshness string `json:"freshness,omitempty" jsonschema:"Day, Week or Month"`
}

// WebSearchOutput is the output schema for the bing_web_search tool.
type WebSearchOutput struct {
	Results []domain.WebResult `json:"results"`
}

// defaultSearchTopK applies when search_documents omits top_k.
const defaultSearchTopK = 5

// registerTools registers the tools whose ports are set.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        ToolQuery,
		Description: "Answer a question using ingested documents, optionally falling back to web search",
	}, s.handleQuery)

	if s.ports.Search != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        ToolSearchDocuments,
			Description: "Search ingested documents and return the closest chunks",
		}, s.handleSearch)
	}

	if s.ports.Web != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        ToolWebSearch,
			Description: "Search the web and return titles, URLs and snippets",
		}, s.handleWebSearch)
	}

	if s.ports.News != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        ToolNewsSearch,
			Description: "Search recent news and return headlines, URLs and summaries",
		}, s.handleNewsSearch)
	}
}

// handleQuery handles the query tool invocation.
func (s *Server) handleQuery(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QueryInput,
) (*mcp.CallToolResult, QueryOutput, error) {
	req := domain.NewQueryRequest(input.Query)
	if input.UseDocuments != nil {
		req.UseDocuments = *input.UseDocuments
	}
	req.UseWebSearch = input.UseWebSearch
	if input.MaxTokens > 0 {
		req.MaxTokens = input.MaxTokens
	}
	if input.Temperature != nil {
		req.Temperature = *input.Temperature
	}

	answer, err := s.ports.Query.Query(ctx, req)
	if err != nil {
		return nil, QueryOutput{}, err
	}

	return nil, QueryOutput{
		Answer:     answer.Text,
		Method:     string(answer.Method),
		Confidence: answer.Confidence,
		Sources:    answer.Sources,
	}, nil
}

// handleSearch handles the search_documents tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	topK := input.TopK
	if topK <= 0 {
		topK = defaultSearchTopK
	}

	results, err := s.ports.Search.Search(ctx, input.Query, topK)
	if err != nil {
		return nil, SearchOutput{}, err
	}
	if results == nil {
		results = []domain.SearchResult{}
	}

	return nil, SearchOutput{Results: results, Count: len(results)}, nil
}

// handleWebSearch handles the bing_web_search tool invocation.
// The text content uses the bing tool layout; structured content carries the same results.
func (s *Server) handleWebSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input WebSearchInput,
) (*mcp.CallToolResult, WebSearchOutput, error) {
	var (
		results []domain.WebResult
		err     error
	)
	if paged, ok := s.ports.Web.(driving.PagedWebSearchService); ok {
		results, err = paged.SearchPage(ctx, input.Query, domain.WebSearchOptions{
			Count:  input.Count,
			Offset: input.Offset,
			Market: input.Market,
		})
	} else {
		if input.Offset > 0 || input.Market != "" {
			logger.Debug("bing_web_search: offset and market need a paged web search service")
		}
		results, err = s.ports.Web.Search(ctx, input.Query, input.Count)
	}
	if err != nil {
		return nil, WebSearchOutput{}, err
	}
	return webResult(results)
}

// handleNewsSearch handles the bing_news_search tool invocation.
func (s *Server) handleNewsSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input NewsSearchInput,
) (*mcp.CallToolResult, WebSearchOutput, error) {
	results, err := s.ports.News.SearchNews(ctx, input.Query, domain.WebSearchOptions{
		Count:     input.Count,
		Offset:    input.Offset,
		Market:    input.Market,
		Freshness: input.Freshness,
	})
	if err != nil {
		return nil, WebSearchOutput{}, err
	}
	return webResult(results)
}

func webResult(results []domain.WebResult) (*mcp.CallToolResult, WebSearchOutput, error) {
	if results == nil {
		results = []domain.WebResult{}
	}
	res := &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: bing.FormatText(results)}},
	}
	return res, WebSearchOutput{Results: results}, nil
}
