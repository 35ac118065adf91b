package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/ai"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/core/services"
)

// fileSettingsService manages settings in the config file only, so values
// from the environment are never written back.
var fileSettingsService = func() (driving.SettingsService, error) {
	store, err := openConfigStore()
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	return services.NewSettingsService(store), nil
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure providers, retrieval and server options.

Values from the environment (SERCHA_RAG_*, OPENAI_API_KEY, ...) override
the config file and are shown as the effective settings.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that the settings can start a gateway",
	Long: `Check the settings for consistency. With --ping, also contact each
configured provider and report whether it answers.`,
	RunE: runSettingsValidate,
}

var validatePing bool

// newConfigValidator is replaced in tests.
var newConfigValidator = func() driven.AIConfigValidator {
	return ai.NewConfigValidator()
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Long:  `Run an interactive wizard to configure the embedding, LLM and web search providers.`,
	RunE:  runSettingsWizard,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsValidateCmd.Flags().BoolVar(&validatePing, "ping", false, "contact each configured provider")
	settingsCmd.AddCommand(settingsValidateCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Server]")
	cmd.Printf("  Address: %s\n", settings.Server.Address)
	if settings.Server.QueryRateLimit > 0 {
		cmd.Printf("  Query rate limit: %.1f/s (burst %d)\n", settings.Server.QueryRateLimit, settings.Server.QueryBurst)
	} else {
		cmd.Println("  Query rate limit: off")
	}
	cmd.Println()

	cmd.Println("[Documents]")
	if settings.Documents.URL != "" {
		cmd.Printf("  Service: %s\n", settings.Documents.URL)
	} else {
		cmd.Printf("  Service: in-process (%s store)\n", settings.Store.Backend)
	}
	cmd.Printf("  Top K: %d, context hits: %d, chunk size: %d\n",
		settings.Documents.TopK, settings.Documents.ContextHits, settings.Documents.ChunkSize)
	cmd.Println()

	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", settings.Embedding.Provider.Description())
	cmd.Printf("  Model: %s (%d dimensions)\n", settings.Embedding.Model, settings.Embedding.Dimensions)
	printBaseURL(cmd, settings.Embedding.BaseURL)
	printAPIKey(cmd, settings.Embedding.Provider.RequiresAPIKey(), settings.Embedding.APIKey)
	printConfigured(cmd, settings.Embedding.IsConfigured())
	cmd.Println()

	cmd.Println("[LLM]")
	cmd.Printf("  Provider: %s\n", settings.LLM.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.LLM.Model)
	printBaseURL(cmd, settings.LLM.BaseURL)
	printAPIKey(cmd, settings.LLM.Provider.RequiresAPIKey(), settings.LLM.APIKey)
	printConfigured(cmd, settings.LLM.IsConfigured())
	cmd.Println()

	cmd.Println("[Web Search]")
	cmd.Printf("  Provider: %s\n", settings.WebSearch.Provider)
	if settings.WebSearch.Provider != domain.WebSearchNone {
		printBaseURL(cmd, settings.WebSearch.URL)
		printAPIKey(cmd, settings.WebSearch.Provider == domain.WebSearchBing, settings.WebSearch.APIKey)
		cmd.Printf("  Results: %d (context %d)\n", settings.WebSearch.NumResults, settings.WebSearch.ContextResults)
		printConfigured(cmd, settings.WebSearch.IsConfigured())
	}
	cmd.Println()

	cmd.Println("[Retry]")
	cmd.Printf("  Attempts: %d, backoff %s doubling to %s\n",
		settings.Retry.MaxAttempts, settings.Retry.BackoffBase, settings.Retry.BackoffCap)
	cmd.Printf("  Health probe timeout: %s\n", settings.Health.Timeout)

	return nil
}

func printBaseURL(cmd *cobra.Command, url string) {
	if url != "" {
		cmd.Printf("  Base URL: %s\n", url)
	}
}

func printAPIKey(cmd *cobra.Command, required bool, key string) {
	if !required {
		return
	}
	if key != "" {
		cmd.Printf("  API Key: %s\n", maskAPIKey(key))
	} else {
		cmd.Println("  API Key: (not set)")
	}
}

func printConfigured(cmd *cobra.Command, ok bool) {
	status := "configured"
	if !ok {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
}

func runSettingsValidate(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	if err := services.ValidateSettings(settings); err != nil {
		return err
	}
	if validatePing {
		if err := pingProviders(cmd, settings); err != nil {
			return err
		}
	}
	cmd.Println("Settings OK")
	return nil
}

// pingProviders checks every configured provider and fails if any is down.
func pingProviders(cmd *cobra.Command, settings *domain.AppSettings) error {
	v := newConfigValidator()
	ctx := cmd.Context()

	checks := []struct {
		name       string
		configured bool
		check      func() error
	}{
		{"embedding", settings.Embedding.IsConfigured(), func() error {
			return v.ValidateEmbedding(ctx, &settings.Embedding)
		}},
		{"llm", settings.LLM.IsConfigured(), func() error {
			return v.ValidateLLM(ctx, &settings.LLM)
		}},
		{"web search", settings.WebSearch.IsConfigured(), func() error {
			return v.ValidateWebSearch(ctx, &settings.WebSearch)
		}},
	}

	failed := 0
	for _, c := range checks {
		if !c.configured {
			cmd.Printf("  %-12s not configured\n", c.name)
			continue
		}
		if err := c.check(); err != nil {
			failed++
			cmd.Printf("  %-12s FAILED: %v\n", c.name, err)
			continue
		}
		cmd.Printf("  %-12s ok\n", c.name)
	}
	if failed > 0 {
		return fmt.Errorf("%d provider(s) unreachable: %w", failed, domain.ErrServiceUnavailable)
	}
	return nil
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	svc, err := fileSettingsService()
	if err != nil {
		return err
	}
	settings, err := svc.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	reader := bufio.NewReader(cmd.InOrStdin())

	cmd.Println("sercha-rag setup")
	cmd.Println("================")
	cmd.Println()

	if err := configureEmbeddingProvider(cmd, reader, &settings.Embedding); err != nil {
		return err
	}
	if err := configureLLMProvider(cmd, reader, &settings.LLM); err != nil {
		return err
	}
	if err := configureWebSearch(cmd, reader, &settings.WebSearch); err != nil {
		return err
	}

	if err := services.ValidateSettings(settings); err != nil {
		return err
	}
	if err := svc.Save(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	cmd.Println("Settings saved.")
	return nil
}

func configureEmbeddingProvider(cmd *cobra.Command, reader *bufio.Reader, s *domain.EmbeddingSettings) error {
	cmd.Println("Select Embedding Provider")
	providers := []domain.AIProvider{domain.AIProviderOllama, domain.AIProviderOpenAI, domain.AIProviderHashing}
	provider := chooseProvider(cmd, reader, providers)

	model := promptDefault(cmd, reader, "Enter model name", domain.DefaultEmbeddingModels()[provider])
	dims := domain.EmbeddingDimensions()[model]
	if dims == 0 {
		dims = s.Dimensions
	}
	if input := promptDefault(cmd, reader, "Enter dimensions", strconv.Itoa(dims)); input != "" {
		if v, err := strconv.Atoi(input); err == nil && v > 0 {
			dims = v
		}
	}

	var apiKey string
	if provider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword(reader)
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	*s = domain.EmbeddingSettings{Provider: provider, Model: model, BaseURL: s.BaseURL, APIKey: apiKey, Dimensions: dims}
	cmd.Printf("Embedding provider: %s (%s)\n\n", provider.Description(), model)
	return nil
}

func configureLLMProvider(cmd *cobra.Command, reader *bufio.Reader, s *domain.LLMSettings) error {
	cmd.Println("Select LLM Provider")
	providers := []domain.AIProvider{
		domain.AIProviderOllama, domain.AIProviderOpenAI, domain.AIProviderAnthropic, domain.AIProviderRemote,
	}
	provider := chooseProvider(cmd, reader, providers)

	var model, baseURL, apiKey string
	if provider == domain.AIProviderRemote {
		baseURL = promptDefault(cmd, reader, "Enter llm service URL", "http://localhost"+DefaultLLMAddr)
	} else {
		model = promptDefault(cmd, reader, "Enter model name", domain.DefaultLLMModels()[provider])
	}

	if provider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword(reader)
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	*s = domain.LLMSettings{Provider: provider, Model: model, BaseURL: baseURL, APIKey: apiKey, Timeout: s.Timeout}
	cmd.Printf("LLM provider: %s\n\n", provider.Description())
	return nil
}

func configureWebSearch(cmd *cobra.Command, reader *bufio.Reader, s *domain.WebSearchSettings) error {
	cmd.Println("Select Web Search Provider")
	providers := []domain.WebSearchProvider{
		domain.WebSearchNone, domain.WebSearchBing, domain.WebSearchRemote, domain.WebSearchMCP,
	}
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p)
	}
	cmd.Print("\nEnter choice [1]: ")
	provider := providers[parseChoice(readLine(reader), len(providers), 1)-1]

	s.Provider = provider
	s.URL, s.APIKey = "", ""
	switch provider {
	case domain.WebSearchBing:
		cmd.Print("Enter Bing API key: ")
		s.APIKey = readPassword(reader)
		cmd.Println()
		if s.APIKey == "" {
			return errors.New("API key is required for Bing")
		}
	case domain.WebSearchRemote:
		s.URL = promptDefault(cmd, reader, "Enter websearch service URL", "http://localhost"+DefaultWebSearchAddr)
	case domain.WebSearchMCP:
		s.URL = promptDefault(cmd, reader, "Enter MCP endpoint URL", "")
		if s.URL == "" {
			return errors.New("MCP endpoint URL is required")
		}
	case domain.WebSearchNone:
	}

	cmd.Printf("Web search: %s\n\n", provider)
	return nil
}

// Helper functions.

func chooseProvider(cmd *cobra.Command, reader *bufio.Reader, providers []domain.AIProvider) domain.AIProvider {
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	return providers[parseChoice(readLine(reader), len(providers), 1)-1]
}

func promptDefault(cmd *cobra.Command, reader *bufio.Reader, label, def string) string {
	if def != "" {
		cmd.Printf("%s [%s]: ", label, def)
	} else {
		cmd.Printf("%s: ", label)
	}
	if v := readLine(reader); v != "" {
		return v
	}
	return def
}

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads without echo from a terminal, otherwise a plain line.
func readPassword(reader *bufio.Reader) string {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
