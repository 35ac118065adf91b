package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/websearch/bing"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

type textHandler = func(context.Context, *mcp.CallToolRequest, SearchArgs) (*mcp.CallToolResult, any, error)

// connectTo starts an in-memory server exposing handler as bing_web_search.
func connectTo(t *testing.T, handler textHandler) *Client {
	t.Helper()
	ctx := context.Background()

	server := mcp.NewServer(&mcp.Implementation{Name: "bing-test", Version: "0.0.1"}, nil)
	mcp.AddTool(server, &mcp.Tool{Name: ToolName, Description: "test search"}, handler)

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	serverSession, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = serverSession.Close() })

	c, err := NewClient(Config{}, WithTransport(clientTransport))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestNewClient_RequiresEndpoint(t *testing.T) {
	_, err := NewClient(Config{})

	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestSearch_ParsesTextContent(t *testing.T) {
	var got SearchArgs
	c := connectTo(t, func(_ context.Context, _ *mcp.CallToolRequest, args SearchArgs) (*mcp.CallToolResult, any, error) {
		got = args
		text := bing.FormatText([]domain.WebResult{
			{Title: "Paris", URL: "https://a.example", Content: "Capital of France."},
			{Title: "Lyon", URL: "https://b.example", Content: "A French city."},
		})
		return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: text}}}, nil, nil
	})

	results, err := c.Search(context.Background(), "capital of France", 1)

	require.NoError(t, err)
	assert.Equal(t, SearchArgs{Query: "capital of France", Count: 1, Market: DefaultMarket}, got)
	assert.Equal(t, []domain.WebResult{
		{Title: "Paris", URL: "https://a.example", Content: "Capital of France.", Score: 1.0},
	}, results)
}

func TestSearch_PrefersStructuredContent(t *testing.T) {
	server := mcp.NewServer(&mcp.Implementation{Name: "bing-test", Version: "0.0.1"}, nil)
	mcp.AddTool(server, &mcp.Tool{Name: ToolName}, func(
		_ context.Context, _ *mcp.CallToolRequest, _ SearchArgs,
	) (*mcp.CallToolResult, structuredResults, error) {
		return nil, structuredResults{Results: []domain.WebResult{
			{Title: "Paris", Content: "Capital of France.", Score: 0.9},
			{Title: "Nice", Content: "On the coast."},
		}}, nil
	})
	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	serverSession, err := server.Connect(context.Background(), serverTransport, nil)
	require.NoError(t, err)
	defer serverSession.Close()

	c, err := NewClient(Config{}, WithTransport(clientTransport))
	require.NoError(t, err)
	defer c.Close()

	results, err := c.Search(context.Background(), "france", 5)

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.InDelta(t, 0.9, results[0].Score, 1e-9)
	assert.InDelta(t, 1.0, results[1].Score, 1e-9)
}

func TestSearch_ToolError(t *testing.T) {
	c := connectTo(t, func(context.Context, *mcp.CallToolRequest, SearchArgs) (*mcp.CallToolResult, any, error) {
		return nil, nil, errors.New("bing api key missing")
	})

	_, err := c.Search(context.Background(), "q", 5)

	require.ErrorIs(t, err, ErrToolFailed)
	assert.Contains(t, err.Error(), "bing api key missing")
}

func TestSearch_EmptyQuery(t *testing.T) {
	c := connectTo(t, func(context.Context, *mcp.CallToolRequest, SearchArgs) (*mcp.CallToolResult, any, error) {
		t.Error("tool should not be called")
		return nil, nil, nil
	})

	_, err := c.Search(context.Background(), "  ", 5)

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestSearch_NoResultsText(t *testing.T) {
	c := connectTo(t, func(context.Context, *mcp.CallToolRequest, SearchArgs) (*mcp.CallToolResult, any, error) {
		return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: bing.NoResultsText}}}, nil, nil
	})

	results, err := c.Search(context.Background(), "q", 5)

	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestPing(t *testing.T) {
	c := connectTo(t, func(context.Context, *mcp.CallToolRequest, SearchArgs) (*mcp.CallToolResult, any, error) {
		return nil, nil, nil
	})

	assert.NoError(t, c.Ping(context.Background()))
	assert.Equal(t, "mcp-server", c.Name())
}
