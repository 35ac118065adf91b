package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/app"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

var (
	queryWeb         bool
	queryNoDocs      bool
	queryMaxTokens   int
	queryTemperature float64
	queryJSON        bool
)

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Ask a question",
	Long: `Answer a question with retrieved context.

Documents are searched first. With --web, web search is used when no
document matches. Without any context the model answers directly with
lower confidence.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().BoolVar(&queryWeb, "web", false, "fall back to web search")
	queryCmd.Flags().BoolVar(&queryNoDocs, "no-docs", false, "skip document search")
	queryCmd.Flags().IntVar(&queryMaxTokens, "max-tokens", domain.DefaultMaxTokens, "maximum tokens to generate")
	queryCmd.Flags().Float64Var(&queryTemperature, "temperature", domain.DefaultTemperature, "sampling temperature (0-2)")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	req := domain.NewQueryRequest(strings.Join(args, " "))
	req.UseDocuments = !queryNoDocs
	req.UseWebSearch = queryWeb
	req.MaxTokens = queryMaxTokens
	req.Temperature = queryTemperature
	if err := req.Validate(); err != nil {
		return err
	}

	var opts []app.Option
	if !req.UseWebSearch {
		opts = append(opts, app.WithoutWebSearch())
	}

	return withRuntime(cmd, func(ctx context.Context, rt *app.Runtime) error {
		answer, err := rt.Query.Query(ctx, req)
		if err != nil {
			return fmt.Errorf("query failed: %w", err)
		}

		if queryJSON {
			return outputAnswerJSON(cmd, answer)
		}
		outputAnswer(cmd, answer)
		return nil
	}, opts...)
}

func outputAnswerJSON(cmd *cobra.Command, answer *domain.Answer) error {
	data, err := json.MarshalIndent(answer, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal answer: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputAnswer(cmd *cobra.Command, answer *domain.Answer) {
	st := newCLIStyles(isTerminal(cmd.OutOrStdout()))

	cmd.Println(answer.Text)
	cmd.Println()
	cmd.Println(st.muted.Render(fmt.Sprintf("method: %s  confidence: %.2f", answer.Method, answer.Confidence)))

	if len(answer.Sources) == 0 {
		return
	}
	cmd.Println()
	cmd.Println(st.heading.Render("Sources:"))
	for i, src := range answer.Sources {
		cmd.Printf("  [%d] %s %s\n", i+1,
			st.muted.Render(fmt.Sprintf("(%.2f)", src.Score)), snippet(src.Text, 100))
	}
}

// snippet flattens whitespace and cuts s to n runes.
func snippet(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

// cliStyles colour command output. Without a terminal every style is plain.
type cliStyles struct {
	heading lipgloss.Style
	muted   lipgloss.Style
	ok      lipgloss.Style
	warn    lipgloss.Style
	bad     lipgloss.Style
}

func newCLIStyles(color bool) cliStyles {
	if !color {
		plain := lipgloss.NewStyle()
		return cliStyles{heading: plain, muted: plain, ok: plain, warn: plain, bad: plain}
	}
	return cliStyles{
		heading: lipgloss.NewStyle().Bold(true),
		muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086")),
		ok:      lipgloss.NewStyle().Foreground(lipgloss.Color("#A6E3A1")),
		warn:    lipgloss.NewStyle().Foreground(lipgloss.Color("#F9E2AF")),
		bad:     lipgloss.NewStyle().Foreground(lipgloss.Color("#F38BA8")),
	}
}

// status picks the style of a health status.
func (s cliStyles) status(status domain.HealthStatus) lipgloss.Style {
	switch status {
	case domain.HealthHealthy:
		return s.ok
	case domain.HealthUnhealthy:
		return s.warn
	default:
		return s.bad
	}
}
