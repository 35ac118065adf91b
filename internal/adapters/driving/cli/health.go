package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/app"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

var healthJSON bool

// errUnhealthy makes the exit status reflect the report.
var errUnhealthy = errors.New("one or more dependencies are not healthy")

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check every configured dependency",
	Long: `Probe every configured dependency and print its status.

Each probe has its own deadline (health.timeout). Exits non-zero when any
dependency is unhealthy or unreachable.`,
	Args: cobra.NoArgs,
	RunE: runHealth,
}

func init() {
	healthCmd.Flags().BoolVar(&healthJSON, "json", false, "output the report as JSON")
	rootCmd.AddCommand(healthCmd)
}

func runHealth(cmd *cobra.Command, _ []string) error {
	return withRuntime(cmd, func(ctx context.Context, rt *app.Runtime) error {
		report := rt.Health.Check(ctx)

		if healthJSON {
			data, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal report: %w", err)
			}
			cmd.Println(string(data))
		} else {
			outputHealthTable(cmd, report)
		}

		if !report.AllHealthy() {
			return errUnhealthy
		}
		return nil
	})
}

func outputHealthTable(cmd *cobra.Command, report domain.HealthReport) {
	st := newCLIStyles(isTerminal(cmd.OutOrStdout()))

	names := make([]string, 0, len(report))
	width := len("SERVICE")
	for name := range report {
		names = append(names, name)
		width = max(width, len(name))
	}
	sort.Strings(names)

	cmd.Println(st.heading.Render(fmt.Sprintf("%-*s  %s", width, "SERVICE", "STATUS")))
	for _, name := range names {
		status := report[name]
		cmd.Printf("%-*s  %s\n", width, name, st.status(status).Render(string(status)))
	}
}
