package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/rfqx/internal/adapters/driven/ai"
	"github.com/custodia-labs/rfqx/internal/core/domain"
)

// validateVision pings the vision provider. Tests replace it.
var validateVision = ai.ValidateLLMConfig

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the analysis and vision models and the extraction cascade.

Use subcommands to configure specific settings or run the interactive wizard.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Long:  `Run an interactive wizard to configure both models step by step.`,
	RunE:  runSettingsWizard,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure the analysis model",
	Long:  `Configure the model that turns document text into line items.`,
	RunE:  runSettingsLLM,
}

var settingsVisionCmd = &cobra.Command{
	Use:   "vision",
	Short: "Configure the vision model",
	Long: `Configure the multimodal model that reads scanned pages and images.
Without a vision model the cascade skips the vision strategy.`,
	RunE: runSettingsVision,
}

var settingsExtractionCmd = &cobra.Command{
	Use:   "extraction",
	Short: "Set cascade parameters",
	Long: `Persist cascade parameters. Only the flags given are changed.

Examples:
  rfqx settings extraction --threshold 0.8
  rfqx settings extraction --page-cap 5 --requests-per-second 1`,
	RunE: runSettingsExtraction,
}

func init() {
	flags := settingsExtractionCmd.Flags()
	flags.Float64("threshold", domain.DefaultThreshold, "confidence at which the cascade stops")
	flags.Int("char-budget", domain.DefaultCharBudget, "maximum runes sent to the analyzer")
	flags.Int("page-cap", domain.DefaultVisionPageCap, "maximum PDF pages sent to the vision model")
	flags.Int("retries", domain.DefaultRetryAttempts, "retries on transient model errors")
	flags.Float64("requests-per-second", domain.DefaultRequestsPerSecond, "model call rate limit (0 = unlimited)")
	flags.Bool("no-fallback", false, "disable the analyzer-only fallback")

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	settingsCmd.AddCommand(settingsVisionCmd)
	settingsCmd.AddCommand(settingsExtractionCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	printModel(cmd, "[Analysis Model]", settings.LLM)
	printModel(cmd, "[Vision Model]", settings.Vision)

	cfg := settings.Extraction
	cmd.Println("[Extraction]")
	cmd.Printf("  Threshold: %.2f\n", cfg.Threshold)
	cmd.Printf("  Char budget: %d\n", cfg.CharBudget)
	cmd.Printf("  Vision page cap: %d\n", cfg.VisionPageCap)
	cmd.Printf("  Retries: %d (%s to %s)\n", cfg.RetryAttempts, cfg.RetryBaseDelay, cfg.RetryMaxDelay)
	if cfg.RequestsPerSecond > 0 {
		cmd.Printf("  Rate limit: %g requests/s\n", cfg.RequestsPerSecond)
	} else {
		cmd.Println("  Rate limit: none")
	}
	cmd.Printf("  Fallback: %s\n", onOff(cfg.EnableFallback))
	cmd.Printf("  Post-processors: %s\n", strings.Join(enabledProcessors(cfg.PostProcessing), ", "))
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'rfqx settings wizard' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func printModel(cmd *cobra.Command, title string, llm domain.LLMSettings) {
	cmd.Println(title)
	if llm.Provider == "" {
		cmd.Println("  Provider: (not set)")
		cmd.Println()
		return
	}
	cmd.Printf("  Provider: %s\n", llm.Provider.Description())
	cmd.Printf("  Model: %s\n", llm.Model)
	if llm.Provider.IsLocal() {
		cmd.Printf("  Base URL: %s\n", llm.BaseURL)
	}
	if llm.Provider.RequiresAPIKey() {
		if llm.APIKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(llm.APIKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
	status := "configured"
	if !llm.IsConfigured() {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()
}

func enabledProcessors(cfg domain.PipelineConfig) []string {
	if len(cfg.Processors) == 0 {
		return []string{"none"}
	}
	return cfg.Processors
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	cmd.Println("rfqx Settings Wizard")
	cmd.Println("====================")
	cmd.Println()

	reader := bufio.NewReader(cmd.InOrStdin())

	cmd.Println("Step 1: Configure Analysis Model")
	cmd.Println("--------------------------------")
	cmd.Println("The analysis model turns document text into line items.")
	cmd.Println()
	if err := configureLLMProvider(cmd, reader); err != nil {
		return err
	}

	cmd.Println("Step 2: Configure Vision Model")
	cmd.Println("------------------------------")
	cmd.Println("The vision model reads scanned pages and images. It is optional.")
	cmd.Print("Configure a vision model? [Y/n]: ")
	if answer := strings.ToLower(readLine(reader)); answer == "n" || answer == "no" {
		cmd.Println("Vision model skipped.")
		cmd.Println()
	} else if err := configureVisionProvider(cmd, reader); err != nil {
		return err
	}

	cmd.Println("Configuration Complete!")
	cmd.Println("=======================")
	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	} else {
		cmd.Println("All settings are valid and saved.")
	}

	return nil
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	return configureLLMProvider(cmd, bufio.NewReader(cmd.InOrStdin()))
}

func runSettingsVision(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	return configureVisionProvider(cmd, bufio.NewReader(cmd.InOrStdin()))
}

func runSettingsExtraction(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	cfg, err := extractionConfig(cmd)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("retries") {
		cfg.RetryAttempts, _ = flags.GetInt("retries")
	}
	if flags.Changed("requests-per-second") {
		cfg.RequestsPerSecond, _ = flags.GetFloat64("requests-per-second")
	}

	if err := settingsService.SetExtractionConfig(cfg); err != nil {
		return fmt.Errorf("failed to save extraction settings: %w", err)
	}
	cmd.Println("Extraction settings saved.")
	return nil
}

// providerChoice is the answer set of one provider prompt.
type providerChoice struct {
	provider domain.AIProvider
	model    string
	apiKey   string
}

func promptProvider(cmd *cobra.Command, reader *bufio.Reader, title string,
	defaults map[domain.AIProvider]string) (providerChoice, error) {
	cmd.Println(title)
	providers := domain.AllLLMProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(providers), 1)
	choice := providerChoice{provider: providers[idx-1]}

	defaultModel := defaults[choice.provider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	choice.model = readLine(reader)
	if choice.model == "" {
		choice.model = defaultModel
	}

	if choice.provider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		choice.apiKey = readPassword(cmd.InOrStdin(), reader)
		cmd.Println()
		if choice.apiKey == "" {
			return choice, errors.New("API key is required for this provider")
		}
	}
	return choice, nil
}

func configureLLMProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	choice, err := promptProvider(cmd, reader, "Select Analysis Model Provider", domain.DefaultLLMModels())
	if err != nil {
		return err
	}

	if err := settingsService.SetLLMProvider(choice.provider, choice.model, choice.apiKey); err != nil {
		return fmt.Errorf("failed to configure LLM provider: %w", err)
	}

	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateLLMConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("LLM configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("Analysis model configured: %s (%s)\n\n", choice.provider.Description(), choice.model)
	return nil
}

func configureVisionProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	choice, err := promptProvider(cmd, reader, "Select Vision Model Provider", domain.DefaultVisionModels())
	if err != nil {
		return err
	}

	if err := settingsService.SetVisionProvider(choice.provider, choice.model, choice.apiKey); err != nil {
		return fmt.Errorf("failed to configure vision provider: %w", err)
	}

	cmd.Print("Validating configuration... ")
	settings, err := settingsService.Get()
	if err == nil {
		err = validateVision(&settings.Vision)
	}
	if err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("vision configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("Vision model configured: %s (%s)\n\n", choice.provider.Description(), choice.model)
	return nil
}

// Helper functions.

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

// readPassword reads without echo when in is the terminal, and falls back
// to a plain line otherwise.
func readPassword(in io.Reader, reader *bufio.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
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
