package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/app"
)

var resetYes bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete every indexed chunk",
	Long: `Drop the local collection and recreate it empty.

Only the in-process store can be reset; a remote document service manages
its own collection.`,
	Args: cobra.NoArgs,
	RunE: runReset,
}

func init() {
	resetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "do not ask for confirmation")
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, _ []string) error {
	if !resetYes {
		cmd.Print("Delete all indexed chunks? [y/N]: ")
		answer, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && answer == "" {
			return errors.New("reset cancelled")
		}
		if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
			cmd.Println("Cancelled.")
			return nil
		}
	}

	return withRuntime(cmd, func(ctx context.Context, rt *app.Runtime) error {
		if err := rt.Reset(ctx); err != nil {
			return fmt.Errorf("reset failed: %w", err)
		}
		cmd.Println("Collection reset.")
		return nil
	}, app.WithoutGeneration(), app.WithoutWebSearch())
}
