package cli

import (
	"context"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/sercha-rag/internal/app"
	"github.com/custodia-labs/sercha-rag/internal/core/services"
)

// Default listen addresses of the service roles.
const (
	DefaultDocsAddr      = ":8001"
	DefaultLLMAddr       = ":8002"
	DefaultWebSearchAddr = ":8003"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the query gateway",
	Long: `Run the HTTP gateway.

Endpoints:
  POST /upload-documents  multipart "files" field, UTF-8 text
  POST /query             {query, use_documents, use_web_search, max_tokens, temperature}
  GET  /health            status of every dependency

Documents are served in-process unless documents.url points at a
document service.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Document service commands",
}

var docsServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the document service",
	Long: `Run the document search and ingestion service.

Endpoints:
  POST /upload-documents  multipart "files" field
  POST /search            {query, top_k}
  GET  /health`,
	Args: cobra.NoArgs,
	RunE: runDocsServe,
}

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Generation service commands",
}

var llmServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the generation service",
	Long: `Run the text generation service in front of the configured model.

Endpoints:
  POST /generate    {query, context, max_tokens, temperature}
  GET  /model-info
  GET  /health      503 while no model is loaded`,
	Args: cobra.NoArgs,
	RunE: runLLMServe,
}

var websearchCmd = &cobra.Command{
	Use:   "websearch",
	Short: "Web search service commands",
}

var websearchServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web search service",
	Long: `Run the web search service in front of the configured provider.

Endpoints:
  POST /search   {query, num_results}
  GET  /search   ?q=...&count=...
  GET  /health`,
	Args: cobra.NoArgs,
	RunE: runWebSearchServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default server.address)")
	docsServeCmd.Flags().String("addr", DefaultDocsAddr, "listen address")
	llmServeCmd.Flags().String("addr", DefaultLLMAddr, "listen address")
	websearchServeCmd.Flags().String("addr", DefaultWebSearchAddr, "listen address")

	docsCmd.AddCommand(docsServeCmd)
	llmCmd.AddCommand(llmServeCmd)
	websearchCmd.AddCommand(websearchServeCmd)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(docsCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(websearchCmd)
}

// listen serves handler on addr until ctx is done.
var listen = func(ctx context.Context, addr string, handler http.Handler) error {
	return httpapi.NewServer(addr, handler).Run(ctx)
}

func runServe(cmd *cobra.Command, _ []string) error {
	return withRuntime(cmd, func(ctx context.Context, rt *app.Runtime) error {
		applyServerLogLevel(rt.Settings)

		addr := serveAddr
		if addr == "" {
			addr = rt.Settings.Server.Address
		}

		handler := httpapi.NewGatewayHandler(httpapi.GatewayConfig{
			Query:          rt.Query,
			Ingester:       rt.Ingester,
			Health:         rt.Health,
			QueryRateLimit: rt.Settings.Server.QueryRateLimit,
			QueryBurst:     rt.Settings.Server.QueryBurst,
		})
		return listen(ctx, addr, handler)
	})
}

func runDocsServe(cmd *cobra.Command, _ []string) error {
	addr, err := cmd.Flags().GetString("addr")
	if err != nil {
		return fmt.Errorf("getting addr flag: %w", err)
	}

	return withRuntime(cmd, func(ctx context.Context, rt *app.Runtime) error {
		applyServerLogLevel(rt.Settings)

		handler := httpapi.NewDocumentsHandler(httpapi.DocumentsConfig{
			Search:   rt.DocSearch,
			Ingester: rt.Ingest,
			Health:   rt.Health,
		})
		return listen(ctx, addr, handler)
	}, app.WithLocalDocuments(), app.WithoutGeneration(), app.WithoutWebSearch())
}

func runLLMServe(cmd *cobra.Command, _ []string) error {
	addr, err := cmd.Flags().GetString("addr")
	if err != nil {
		return fmt.Errorf("getting addr flag: %w", err)
	}

	return withRuntime(cmd, func(ctx context.Context, rt *app.Runtime) error {
		applyServerLogLevel(rt.Settings)

		handler := httpapi.NewLLMHandler(httpapi.LLMConfig{
			Generation: services.NewGenerationService(rt.Generator),
			Health:     rt.Health,
		})
		return listen(ctx, addr, handler)
	}, app.WithoutDocuments(), app.WithoutWebSearch())
}

func runWebSearchServe(cmd *cobra.Command, _ []string) error {
	addr, err := cmd.Flags().GetString("addr")
	if err != nil {
		return fmt.Errorf("getting addr flag: %w", err)
	}

	return withRuntime(cmd, func(ctx context.Context, rt *app.Runtime) error {
		applyServerLogLevel(rt.Settings)

		handler := httpapi.NewWebSearchHandler(httpapi.WebSearchConfig{
			Search: services.NewWebSearchService(rt.Web, rt.Settings.WebSearch.NumResults),
			Health: rt.Health,
		})
		return listen(ctx, addr, handler)
	}, app.WithoutDocuments(), app.WithoutGeneration())
}

// webSearchService wraps the runtime's searcher, or returns nil when web
// search is not configured.
func webSearchService(rt *app.Runtime) *services.WebSearchService {
	if rt.Web == nil {
		return nil
	}
	return services.NewWebSearchService(rt.Web, rt.Settings.WebSearch.NumResults)
}
