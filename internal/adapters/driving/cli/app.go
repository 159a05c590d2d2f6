package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/rfqx/internal/adapters/driven/ai"
	"github.com/custodia-labs/rfqx/internal/adapters/driven/config/file"
	"github.com/custodia-labs/rfqx/internal/adapters/driven/render/pdftoppm"
	"github.com/custodia-labs/rfqx/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/rfqx/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/rfqx/internal/adapters/driven/tokens"
	"github.com/custodia-labs/rfqx/internal/core/domain"
	"github.com/custodia-labs/rfqx/internal/core/ports/driven"
	"github.com/custodia-labs/rfqx/internal/core/ports/driving"
	"github.com/custodia-labs/rfqx/internal/core/services"
	"github.com/custodia-labs/rfqx/internal/extractors"
	"github.com/custodia-labs/rfqx/internal/extractors/docx"
	"github.com/custodia-labs/rfqx/internal/extractors/eml"
	"github.com/custodia-labs/rfqx/internal/extractors/html"
	"github.com/custodia-labs/rfqx/internal/extractors/layout"
	"github.com/custodia-labs/rfqx/internal/extractors/markdown"
	"github.com/custodia-labs/rfqx/internal/extractors/pdf"
	"github.com/custodia-labs/rfqx/internal/extractors/plaintext"
	"github.com/custodia-labs/rfqx/internal/extractors/vision"
	"github.com/custodia-labs/rfqx/internal/extractors/xlsx"
	"github.com/custodia-labs/rfqx/internal/logger"
)

// Services shared by the commands. Tests inject fakes.
var (
	settingsService driving.SettingsService

	// openDocuments builds the document service for one command run.
	openDocuments = buildDocuments
)

// runOptions selects how the document service is built.
type runOptions struct {
	// cfg is the cascade configuration for every document of the run.
	cfg domain.ExtractionConfig

	// noStore keeps results in memory only.
	noStore bool

	// readOnly skips model setup; the service can only read stored results.
	readOnly bool
}

// buildDocuments wires stores, models and strategies into a document service.
// The returned function releases everything it opened.
func buildDocuments(opts runOptions) (driving.DocumentService, func(), error) {
	store, err := openStore(opts.noStore)
	if err != nil {
		return nil, nil, err
	}
	if opts.readOnly {
		return services.NewDocumentService(nil, store, opts.cfg), func() { _ = store.Close() }, nil
	}

	settings, err := settingsService.Get()
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	settings.Extraction = opts.cfg

	models, err := ai.Init(*settings)
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	for _, w := range models.Warnings {
		logger.Warn(w)
	}

	prompts, err := file.NewPromptStore(promptDir())
	if err != nil {
		models.Close()
		_ = store.Close()
		return nil, nil, err
	}

	analyzer, err := services.NewAnalyzer(models.LLMService, prompts,
		services.WithTokenCounter(tokens.NewCounter(settings.LLM.Model)))
	if err != nil {
		models.Close()
		_ = store.Close()
		return nil, nil, err
	}

	registry := newRegistry(models.VisionService, prompts, opts.cfg)
	orchestrator := services.NewOrchestrator(registry, analyzer)
	docs := services.NewDocumentService(orchestrator, store, opts.cfg)

	cleanup := func() {
		models.Close()
		_ = store.Close()
	}
	return docs, cleanup, nil
}

func openStore(inMemory bool) (driven.ResultStore, error) {
	if inMemory {
		return memory.NewResultStore(), nil
	}
	return sqlite.NewStore(dataDir)
}

func promptDir() string {
	if configDir == "" {
		return ""
	}
	return filepath.Join(configDir, "prompts")
}

// newRegistry registers every extraction strategy. The vision strategy is
// only added when a vision model is configured; without pdftoppm it still
// reads images.
func newRegistry(visionLLM driven.LLMService, prompts driven.PromptStore,
	cfg domain.ExtractionConfig) *extractors.Registry {
	reg := extractors.NewRegistry()
	reg.Register(pdf.New())
	reg.Register(docx.New())
	reg.Register(xlsx.New())
	reg.Register(html.New())
	reg.Register(markdown.New())
	reg.Register(plaintext.New())
	reg.Register(eml.New())
	reg.Register(layout.New())

	var renderer driven.PageRenderer
	if r := pdftoppm.New(); r.Available() {
		renderer = r
	} else if visionLLM != nil {
		logger.Warn("pdftoppm not found, vision extraction limited to images")
	}
	vision.Register(reg, visionLLM, renderer, prompts, vision.OptionsFrom(cfg))

	return reg
}

// extractionConfig reads the stored cascade parameters and applies the
// command's flag overrides.
func extractionConfig(cmd *cobra.Command) (domain.ExtractionConfig, error) {
	cfg, err := settingsService.ExtractionConfig()
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Lookup("threshold") != nil && flags.Changed("threshold") {
		cfg.Threshold, _ = flags.GetFloat64("threshold")
	}
	if flags.Lookup("char-budget") != nil && flags.Changed("char-budget") {
		cfg.CharBudget, _ = flags.GetInt("char-budget")
	}
	if flags.Lookup("page-cap") != nil && flags.Changed("page-cap") {
		cfg.VisionPageCap, _ = flags.GetInt("page-cap")
	}
	if flags.Lookup("no-fallback") != nil && flags.Changed("no-fallback") {
		noFallback, _ := flags.GetBool("no-fallback")
		cfg.EnableFallback = !noFallback
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
