package cli

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui"
	"github.com/custodia-labs/sercha-rag/internal/app"
)

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface for sercha-rag.

Ask questions, toggle document and web retrieval, browse the sources of
each answer and check the health of every dependency.

Controls:
  Enter    - Ask
  ctrl+d   - Toggle document retrieval
  ctrl+w   - Toggle web search
  ↑/k, ↓/j - Browse sources
  n        - New question
  Esc      - Back
  ctrl+c   - Quit`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	return withRuntime(cmd, func(ctx context.Context, rt *app.Runtime) error {
		a, err := tui.NewApp(tui.NewPorts(rt.Query, rt.Health))
		if err != nil {
			return fmt.Errorf("failed to create TUI: %w", err)
		}

		if err := a.WithContext(ctx).Run(); err != nil {
			return fmt.Errorf("TUI error: %w", err)
		}
		return nil
	})
}
