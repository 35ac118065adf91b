// Package cli provides the sercha-rag command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/config/env"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/config/file"
	"github.com/custodia-labs/sercha-rag/internal/app"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/services"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// version is set at build time with -ldflags "-X .../cli.version=...".
var version = "dev"

var (
	verbose    bool
	configPath string
	envFile    string
)

// loadSettings reads settings from the config file and the environment.
var loadSettings = defaultLoadSettings

// buildRuntime composes the process from settings.
var buildRuntime = app.Build

var rootCmd = &cobra.Command{
	Use:   "sercha-rag",
	Short: "Retrieval-augmented question answering",
	Long: `sercha-rag answers questions from your own documents.

Documents are chunked, embedded and stored as binary codes. A question is
matched against the stored chunks by Hamming distance, falls back to web
search when nothing matches, and is answered by a language model with the
retrieved context.

Run the gateway with "sercha-rag serve", or split the roles across
processes with "docs serve", "llm serve" and "websearch serve".`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"config file, .toml or .yaml (default ~/.sercha-rag/config.toml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "",
		"dotenv file loaded before reading the environment (default .env if present)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with ctx, which commands use for shutdown.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// openConfigStore opens the --config file or the default store.
func openConfigStore() (*file.ConfigStore, error) {
	if configPath != "" {
		return file.NewConfigStoreFromFile(configPath)
	}
	return file.NewConfigStore("")
}

func defaultLoadSettings() (*domain.AppSettings, error) {
	files, optional := []string{".env"}, true
	if envFile != "" {
		files, optional = []string{envFile}, false
	}
	if err := env.LoadDotEnv(optional, files...); err != nil {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	store, err := openConfigStore()
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	return services.NewSettingsService(env.NewOverlay(store, nil)).Get()
}

// withRuntime loads settings, builds a runtime and closes it after fn returns.
func withRuntime(
	cmd *cobra.Command, fn func(ctx context.Context, rt *app.Runtime) error, opts ...app.Option,
) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	rt, err := buildRuntime(ctx, *settings, opts...)
	if err != nil {
		return fmt.Errorf("starting: %w", err)
	}
	defer func() {
		if err := rt.Close(); err != nil {
			logger.Warn("Closing runtime: %v", err)
		}
	}()

	return fn(ctx, rt)
}

// applyServerLogLevel raises logging to the configured level for long-running
// servers. --verbose wins.
func applyServerLogLevel(settings domain.AppSettings) {
	if verbose {
		return
	}
	level, ok := logger.ParseLevel(settings.LogLevel)
	if !ok {
		logger.Warn("Unknown log level %q, using info", settings.LogLevel)
	}
	logger.SetLevel(level)
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
