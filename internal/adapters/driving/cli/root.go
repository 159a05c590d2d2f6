// Package cli provides the cobra command tree of rfqx.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/rfqx/internal/adapters/driven/ai"
	"github.com/custodia-labs/rfqx/internal/adapters/driven/config/file"
	"github.com/custodia-labs/rfqx/internal/core/services"
	"github.com/custodia-labs/rfqx/internal/logger"
)

// version is set at build time.
var version = "dev"

// Global flags.
var (
	configDir string
	dataDir   string
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "rfqx",
	Short: "Extract requested line items from RFQ documents",
	Long: `rfqx reads requests for quotation (PDF, DOCX, XLSX, HTML, Markdown, text and
scanned images) and turns them into structured line items: description,
quantity, unit and specifications.

Each document runs through a cascade of strategies, from format-specific
parsing to layout analysis and vision models, until one reaches the
confidence threshold.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.rfqx)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "result database directory (default ~/.rfqx/data)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print pipeline progress")
}

// SetVersion sets the version printed by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the command tree.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// setup configures logging and, unless already injected, the settings service.
func setup(_ *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if settingsService != nil {
		return nil
	}
	store, err := file.NewConfigStore(configDir)
	if err != nil {
		return err
	}
	settingsService = services.NewSettingsService(store, ai.NewConfigValidator())
	return nil
}
