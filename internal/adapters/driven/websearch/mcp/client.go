// Package mcp provides a web search client that calls the bing_web_search
// tool of an MCP server over the streamable HTTP transport.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/websearch/bing"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Ensure Client implements the interface.
var _ driven.WebSearcher = (*Client)(nil)

// Default configuration values.
const (
	DefaultTimeout = 30 * time.Second
	DefaultMarket  = "en-US"

	// ToolName is the tool invoked on the MCP server.
	ToolName = "bing_web_search"

	clientName    = "sercha-rag"
	clientVersion = "0.1.0"
)

// ErrToolFailed is returned when the server reports a tool error.
var ErrToolFailed = errors.New("mcp tool failed")

// Config holds configuration for the MCP web search client.
type Config struct {
	// Endpoint is the MCP server URL (required unless a transport is supplied).
	Endpoint string

	// Market is passed to the tool (default: en-US).
	Market string

	// Timeout bounds one tool call (default: 30s).
	Timeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithTransport connects through t instead of dialling Endpoint.
// The transport is used for the first session only.
func WithTransport(t mcp.Transport) Option {
	return func(c *Client) {
		c.transport = t
	}
}

// Client calls bing_web_search on an MCP server.
// The session is opened on first use and reopened after a failure.
type Client struct {
	cfg       Config
	client    *mcp.Client
	transport mcp.Transport

	mu      sync.Mutex
	session *mcp.ClientSession
}

// SearchArgs are the tool arguments.
type SearchArgs struct {
	Query  string `json:"query"`
	Count  int    `json:"count"`
	Market string `json:"market,omitempty"`
}

// structuredResults is the structured tool output.
type structuredResults struct {
	Results []domain.WebResult `json:"results"`
}

// NewClient creates an MCP web search client.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if cfg.Market == "" {
		cfg.Market = DefaultMarket
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	c := &Client{
		cfg:    cfg,
		client: mcp.NewClient(&mcp.Implementation{Name: clientName, Version: clientVersion}, nil),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.transport == nil && cfg.Endpoint == "" {
		return nil, domain.ConfigurationError("mcp: endpoint is required")
	}
	return c, nil
}

// Name identifies the collaborator.
func (c *Client) Name() string {
	return "mcp-server"
}

// Search calls the tool and returns at most n results.
func (c *Client) Search(ctx context.Context, query string, n int) ([]domain.WebResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.ValidationError("query is required")
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	session, err := c.connect(ctx)
	if err != nil {
		return nil, err
	}

	res, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      ToolName,
		Arguments: SearchArgs{Query: query, Count: n, Market: c.cfg.Market},
	})
	if err != nil {
		c.reset()
		return nil, domain.ClassifyTransportError("mcp", fmt.Errorf("call %s: %w", ToolName, err))
	}
	if res.IsError {
		return nil, fmt.Errorf("%w: %s", ErrToolFailed, textOf(res))
	}

	results, err := decodeResults(res)
	if err != nil {
		return nil, err
	}
	if n > 0 && len(results) > n {
		results = results[:n]
	}
	return results, nil
}

// Ping checks the session with an MCP ping.
func (c *Client) Ping(ctx context.Context) error {
	session, err := c.connect(ctx)
	if err != nil {
		return err
	}
	if err := session.Ping(ctx, nil); err != nil {
		c.reset()
		return domain.ClassifyTransportError("mcp", fmt.Errorf("ping: %w", err))
	}
	return nil
}

// Close ends the session.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return nil
	}
	err := c.session.Close()
	c.session = nil
	return err
}

func (c *Client) connect(ctx context.Context) (*mcp.ClientSession, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session != nil {
		return c.session, nil
	}

	transport := c.transport
	c.transport = nil
	if transport == nil {
		if c.cfg.Endpoint == "" {
			return nil, domain.ConfigurationError("mcp: endpoint is required")
		}
		transport = &mcp.StreamableClientTransport{
			Endpoint:   c.cfg.Endpoint,
			HTTPClient: &http.Client{Timeout: c.cfg.Timeout},
		}
	}

	session, err := c.client.Connect(ctx, transport, nil)
	if err != nil {
		return nil, domain.ClassifyTransportError("mcp", fmt.Errorf("connect: %w", err))
	}
	logger.Debug("mcp: connected to %s", c.cfg.Endpoint)
	c.session = session
	return session, nil
}

func (c *Client) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session != nil {
		_ = c.session.Close()
		c.session = nil
	}
}

// decodeResults prefers structured output and falls back to the text format.
func decodeResults(res *mcp.CallToolResult) ([]domain.WebResult, error) {
	if res.StructuredContent != nil {
		data, err := json.Marshal(res.StructuredContent)
		if err != nil {
			return nil, fmt.Errorf("marshal structured content: %w", err)
		}
		var out structuredResults
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("decode structured content: %w", err)
		}
		for i := range out.Results {
			if out.Results[i].Score == 0 {
				out.Results[i].Score = 1.0
			}
		}
		return out.Results, nil
	}
	return bing.ParseText(textOf(res)), nil
}

func textOf(res *mcp.CallToolResult) string {
	var sb strings.Builder
	for _, content := range res.Content {
		if tc, ok := content.(*mcp.TextContent); ok {
			sb.WriteString(tc.Text)
		}
	}
	return sb.String()
}
