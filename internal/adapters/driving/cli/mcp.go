package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/mcp"
	"github.com/custodia-labs/sercha-rag/internal/app"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

Tools:
  query             answer a question with retrieved context
  search_documents  search ingested documents
  bing_web_search   search the web (when web search is configured)
  bing_news_search  search recent news (Bing provider only)

By default, the server communicates over stdio using JSON-RPC. Use --port
to serve streamable HTTP instead.

Examples:
  # Stdio mode (default, for desktop assistants)
  sercha-rag mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  sercha-rag mcp serve --port 8080`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	return withRuntime(cmd, func(ctx context.Context, rt *app.Runtime) error {
		server, err := mcp.NewServer(mcpPorts(rt), mcp.WithVersion(version))
		if err != nil {
			return err
		}

		if port > 0 {
			addr := fmt.Sprintf(":%d", port)
			cmd.Printf("MCP server listening on http://localhost%s\n", addr)
			return server.RunHTTP(ctx, addr)
		}
		return server.Run(ctx)
	})
}

// mcpPorts exposes the runtime's services. Optional ports stay nil so the
// matching tools are not registered.
func mcpPorts(rt *app.Runtime) *mcp.Ports {
	ports := &mcp.Ports{
		Query:  rt.Query,
		Health: rt.Health,
	}
	if rt.Searcher != nil {
		ports.Search = rt.Searcher
	}
	if web := webSearchService(rt); web != nil {
		ports.Web = web
		if web.SupportsNews() {
			ports.News = web
		}
	}
	return ports
}
