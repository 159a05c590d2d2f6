package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/rfqx/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/rfqx/internal/core/domain"
	"github.com/custodia-labs/rfqx/internal/core/ports/driving"
	"github.com/custodia-labs/rfqx/internal/core/services"
)

// stubExtraction returns a copy of result for every file and records the
// configuration it was called with.
type stubExtraction struct {
	mu     sync.Mutex
	result domain.ExtractionResult
	err    error
	cfgs   []domain.ExtractionConfig
}

func (s *stubExtraction) Extract(_ context.Context, _ *domain.SourceFile,
	cfg domain.ExtractionConfig) (*domain.ExtractionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfgs = append(s.cfgs, cfg)
	if s.err != nil {
		return nil, s.err
	}
	r := s.result
	return &r, nil
}

func (s *stubExtraction) lastConfig() domain.ExtractionConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfgs[len(s.cfgs)-1]
}

func qty(v float64) *float64 { return &v }

func sampleExtraction() *stubExtraction {
	return &stubExtraction{result: domain.ExtractionResult{
		Requirements: &domain.RequirementSet{
			CustomerName: "Acme Corp",
			Items: []domain.LineItem{
				{Description: "Steel pipe", Quantity: qty(100), Unit: "m", Specifications: "DN50"},
				{Description: "Gate valve", Quantity: qty(4), Unit: "pcs"},
			},
		},
		ExtractionMethod: "text",
		Confidence:       0.92,
		ProcessingTimeMS: 42,
		FullTextLength:   300,
		Attempts: []domain.ExtractionAttempt{
			{Strategy: "plaintext", Method: "text", ItemCount: 2, Confidence: 0.92},
		},
	}}
}

// testEnv replaces the command services for one test.
type testEnv struct {
	settings  *services.SettingsService
	store     *memory.ResultStore
	extractor *stubExtraction
}

func setupCLI(t *testing.T, extractor *stubExtraction) *testEnv {
	t.Helper()
	for _, key := range []string{services.EnvLLMAPIKey, services.EnvOpenAIAPIKey, services.EnvAnthropicAPIKey} {
		t.Setenv(key, "")
	}

	env := &testEnv{
		settings:  services.NewSettingsService(memory.NewConfigStore(), nil),
		store:     memory.NewResultStore(),
		extractor: extractor,
	}

	prevSettings, prevOpen, prevValidate := settingsService, openDocuments, validateVision
	settingsService = env.settings
	openDocuments = func(opts runOptions) (driving.DocumentService, func(), error) {
		return services.NewDocumentService(env.extractor, env.store, opts.cfg), func() {}, nil
	}

	t.Cleanup(func() {
		settingsService, openDocuments, validateVision = prevSettings, prevOpen, prevValidate
		resetFlags(rootCmd)
	})
	return env
}

// resetFlags restores every flag of the command tree to its default, since
// cobra keeps parsed values between executions.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// setContext gives every command in the tree ctx. Cobra only copies the
// root context onto a subcommand whose context is still nil, so a context
// left over from an earlier execution would otherwise stick.
func setContext(ctx context.Context, cmd *cobra.Command) {
	cmd.SetContext(ctx)
	for _, c := range cmd.Commands() {
		setContext(ctx, c)
	}
}

// execute runs the root command with args and returns everything written.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	return executeContext(context.Background(), t, stdin, args...)
}

func executeContext(ctx context.Context, t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	var in io.Reader = strings.NewReader(stdin)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(in)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)
	setContext(ctx, rootCmd)

	err := rootCmd.ExecuteContext(ctx)
	return buf.String(), err
}
