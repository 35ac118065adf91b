package cli

import (
	"context"
	"fmt"
	"sync"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/app"
	"github.com/custodia-labs/sercha-rag/internal/connectors/filesystem"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

var ingestWatch bool

var ingestCmd = &cobra.Command{
	Use:   "ingest [paths...]",
	Short: "Index text files",
	Long: `Chunk, embed and store text files.

Each path may be a file, a directory (walked recursively, hidden entries
skipped) or a file:// URI. Files that are not UTF-8 text are skipped.

With --watch, the paths are ingested once and then watched; new and
changed files are ingested as they settle. Re-ingesting a changed file
adds its chunks again unless the dedup post-processor is enabled.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVarP(&ingestWatch, "watch", "w", false, "keep watching the paths for changes")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	return withRuntime(cmd, func(ctx context.Context, rt *app.Runtime) error {
		if rt.Ingester == nil {
			return fmt.Errorf("ingest: %w", domain.ErrServiceUnavailable)
		}

		connectors := make([]*filesystem.Connector, 0, len(args))
		var docs []domain.Document
		for _, arg := range args {
			c := filesystem.New(arg)
			loaded, err := c.Load(ctx)
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}
			docs = append(docs, loaded...)
			connectors = append(connectors, c)
		}

		if len(docs) == 0 {
			cmd.Println("No text files found.")
		} else if err := ingestBatch(ctx, cmd, rt.Ingester, docs); err != nil {
			return err
		}

		if !ingestWatch {
			return nil
		}
		return watchAndIngest(ctx, cmd, rt.Ingester, connectors)
	}, app.WithoutGeneration(), app.WithoutWebSearch())
}

func ingestBatch(ctx context.Context, cmd *cobra.Command, ingester driven.DocumentIngester, docs []domain.Document) error {
	report, err := ingester.Ingest(ctx, docs)
	if err != nil {
		return fmt.Errorf("ingest: %w", err)
	}
	cmd.Printf("Ingested %d documents (%d chunks)\n", report.ProcessedDocuments, report.TotalChunks)
	return nil
}

// watchAndIngest ingests documents from every connector's watch until ctx is done.
func watchAndIngest(
	ctx context.Context, cmd *cobra.Command, ingester driven.DocumentIngester, connectors []*filesystem.Connector,
) error {
	merged := make(chan domain.Document)
	var wg sync.WaitGroup

	for _, c := range connectors {
		docs, err := c.Watch(ctx)
		if err != nil {
			return fmt.Errorf("watch %s: %w", c.Root(), err)
		}
		defer c.Close()

		wg.Add(1)
		go func() {
			defer wg.Done()
			for doc := range docs {
				select {
				case merged <- doc:
				case <-ctx.Done():
					return
				}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(merged)
	}()

	cmd.Println("Watching for changes. Press Ctrl+C to stop.")
	for doc := range merged {
		logger.Info("Changed: %s", doc.Name)
		if err := ingestBatch(ctx, cmd, ingester, []domain.Document{doc}); err != nil {
			logger.Error("%s: %v", doc.Name, err)
		}
	}
	return nil
}
