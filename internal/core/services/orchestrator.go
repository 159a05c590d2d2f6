package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/custodia-labs/rfqx/internal/core/domain"
	"github.com/custodia-labs/rfqx/internal/core/ports/driven"
	"github.com/custodia-labs/rfqx/internal/core/ports/driving"
	"github.com/custodia-labs/rfqx/internal/logger"
	"github.com/custodia-labs/rfqx/internal/normtext"
	"github.com/custodia-labs/rfqx/internal/postprocessors"
)

// Ensure Orchestrator implements the interface.
var _ driving.ExtractionService = (*Orchestrator)(nil)

// FallbackStrategy is the name recorded for the analyzer-only attempt.
const FallbackStrategy = "analyzer_only"

// Orchestrator runs the extraction cascade for one file at a time.
// It holds no per-document state, so one instance serves concurrent callers.
type Orchestrator struct {
	registry   driven.StrategyRegistry
	analyzer   *Analyzer
	processors *postprocessors.Registry
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithProcessorRegistry replaces the built-in post-processor registry.
func WithProcessorRegistry(r *postprocessors.Registry) OrchestratorOption {
	return func(o *Orchestrator) {
		if r != nil {
			o.processors = r
		}
	}
}

// NewOrchestrator creates an orchestrator over the given strategies.
func NewOrchestrator(registry driven.StrategyRegistry, analyzer *Analyzer, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		registry:   registry,
		analyzer:   analyzer,
		processors: postprocessors.NewDefaultRegistry(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// outcome is the result of one cascade step.
type outcome struct {
	attempt domain.ExtractionAttempt
	set     *domain.RequirementSet
	text    string

	// analyzed is true when the analyzer returned without error.
	analyzed bool
}

// cascade is the per-call state of one Extract run.
type cascade struct {
	file     *domain.SourceFile
	cfg      domain.ExtractionConfig
	pipeline *postprocessors.Pipeline
	scorer   *Scorer

	attempts []domain.ExtractionAttempt
	best     *outcome
	analyzed bool

	formatText  string
	longestText string
}

// Extract runs strategies in cascade order and returns the best attempt.
//
// The cascade stops at the first attempt whose confidence reaches
// cfg.Threshold. Otherwise the highest-scoring attempt wins, earlier
// attempts winning ties. Extraction, analysis and post-processing failures
// become zero-confidence attempts. Only configuration errors and
// cancellation are returned.
func (o *Orchestrator) Extract(
	ctx context.Context,
	file *domain.SourceFile,
	cfg domain.ExtractionConfig,
) (*domain.ExtractionResult, error) {
	start := time.Now()

	if file == nil {
		return nil, fmt.Errorf("%w: nil source file", domain.ErrInvalidInput)
	}
	if o.analyzer == nil {
		return nil, fmt.Errorf("%w: no requirement analyzer", domain.ErrConfiguration)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var strategies []driven.Extractor
	if o.registry != nil {
		strategies = o.registry.Strategies(file.MIMEType)
	}
	if len(strategies) == 0 && !cfg.EnableFallback {
		return nil, fmt.Errorf("%w: %w: no strategy for %q", domain.ErrConfiguration, domain.ErrUnsupportedType, file.MIMEType)
	}

	pipeline, err := o.processors.BuildPipeline(cfg.PostProcessing)
	if err != nil {
		return nil, err
	}

	c := &cascade{
		file:     file,
		cfg:      cfg,
		pipeline: pipeline,
		scorer:   NewScorer(cfg.Scoring),
	}

	logger.Debug("cascade start", "file", file.Name, "mime", file.MIMEType, "strategies", len(strategies))

	accepted := false
	for _, strategy := range strategies {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		out, err := o.runStrategy(ctx, c, strategy)
		if err != nil {
			return nil, err
		}
		c.record(out)

		if out.attempt.Confidence >= cfg.Threshold {
			accepted = true
			break
		}
	}

	if !accepted && cfg.EnableFallback && !c.analyzed {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out, err := o.runFallback(ctx, c)
		if err != nil {
			return nil, err
		}
		c.record(out)
	}

	result := c.result(time.Since(start))
	logger.Info("cascade done",
		"file", file.Name,
		"method", result.ExtractionMethod,
		"confidence", fmt.Sprintf("%.3f", result.Confidence),
		"items", len(result.Requirements.Items),
		"attempts", len(result.Attempts),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return result, nil
}

// runStrategy extracts with one strategy and analyzes the text.
// The returned error is non-nil only for cancellation and configuration
// errors.
func (o *Orchestrator) runStrategy(ctx context.Context, c *cascade, strategy driven.Extractor) (outcome, error) {
	start := time.Now()
	out := outcome{
		attempt: domain.ExtractionAttempt{
			Strategy: strategy.Name(),
			Kind:     strategy.Kind(),
			Method:   strategy.Name(),
		},
		set: domain.NewRequirementSet(),
	}

	stepCtx, cancel := driven.WithExtractionConfig(ctx, c.cfg), context.CancelFunc(func() {})
	// Vision steps are bounded by their per-call model timeouts instead.
	if c.cfg.ExtractorTimeout > 0 && strategy.Kind() != domain.KindVision {
		stepCtx, cancel = context.WithTimeout(stepCtx, c.cfg.ExtractorTimeout)
	}
	extraction, err := safeExtract(stepCtx, strategy, c.file)
	cancel()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return out, ctxErr
	}
	if err != nil {
		if !domain.IsRecoverable(err) {
			return out, err
		}
		return o.fail(out, start, err), nil
	}

	if extraction != nil {
		out.text = extraction.Text
		if extraction.Method != "" {
			out.attempt.Method = extraction.Method
		}
	}
	out.attempt.InputTextLength = normtext.RuneLen(out.text)

	if strategy.Kind() == domain.KindFormat && c.formatText == "" && strings.TrimSpace(out.text) != "" {
		c.formatText = out.text
	}
	if len(out.text) > len(c.longestText) {
		c.longestText = out.text
	}

	if strings.TrimSpace(out.text) == "" {
		out.attempt.Elapsed = time.Since(start)
		logger.Debug("attempt produced no text", "strategy", strategy.Name())
		return out, nil
	}

	return o.analyze(ctx, c, out, start)
}

// runFallback sends already extracted text, or a best-effort decode of the
// raw bytes, straight to the analyzer.
func (o *Orchestrator) runFallback(ctx context.Context, c *cascade) (outcome, error) {
	start := time.Now()
	out := outcome{
		attempt: domain.ExtractionAttempt{
			Strategy: FallbackStrategy,
			Kind:     domain.KindFallback,
			Method:   domain.MethodFallback,
		},
		set: domain.NewRequirementSet(),
	}

	switch {
	case c.formatText != "":
		out.text = c.formatText
	case strings.TrimSpace(c.longestText) != "":
		out.text = c.longestText
	default:
		out.text = DecodeText(c.file.Content)
	}
	out.attempt.InputTextLength = normtext.RuneLen(out.text)

	if strings.TrimSpace(out.text) == "" {
		return o.fail(out, start, fmt.Errorf("%w: no text to analyze", domain.ErrExtractionFailed)), nil
	}
	return o.analyze(ctx, c, out, start)
}

// analyze runs the analyzer, the post-processors and the scorer on out.text.
func (o *Orchestrator) analyze(ctx context.Context, c *cascade, out outcome, start time.Time) (outcome, error) {
	set, err := safeAnalyze(ctx, o.analyzer, out.text, c.cfg.CharBudget)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return out, ctxErr
	}
	if err != nil {
		if !domain.IsRecoverable(err) {
			return out, err
		}
		return o.fail(out, start, err), nil
	}
	out.analyzed = true

	processed, err := c.pipeline.Process(ctx, set)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return out, ctxErr
	}
	if err != nil {
		logger.Warn("post-processing failed", "strategy", out.attempt.Strategy, "error", err)
		processed = set
	}

	out.set = processed
	out.attempt.ItemCount = len(processed.Items)
	out.attempt.Confidence = c.scorer.Score(processed, out.text, c.file.Size())
	out.attempt.Elapsed = time.Since(start)

	logger.Info("attempt scored",
		"strategy", out.attempt.Strategy,
		"method", out.attempt.Method,
		"confidence", fmt.Sprintf("%.3f", out.attempt.Confidence),
		"items", out.attempt.ItemCount,
		"elapsed", out.attempt.Elapsed.Round(time.Millisecond),
	)
	return out, nil
}

func (o *Orchestrator) fail(out outcome, start time.Time, err error) outcome {
	if !errors.Is(err, domain.ErrExtractionFailed) && !errors.Is(err, domain.ErrAnalysisParseFailed) {
		err = fmt.Errorf("%w: %w", domain.ErrExtractionFailed, err)
	}
	out.attempt.Err = err
	out.attempt.Error = err.Error()
	out.attempt.Confidence = 0
	out.attempt.Elapsed = time.Since(start)
	out.set = domain.NewRequirementSet()
	logger.Warn("attempt failed",
		"strategy", out.attempt.Strategy,
		"method", out.attempt.Method,
		"elapsed", out.attempt.Elapsed.Round(time.Millisecond),
		"error", err,
	)
	return out
}

func (c *cascade) record(out outcome) {
	c.attempts = append(c.attempts, out.attempt)
	if out.analyzed {
		c.analyzed = true
	}
	if c.best == nil || out.attempt.Confidence > c.best.attempt.Confidence {
		best := out
		c.best = &best
	}
}

func (c *cascade) result(elapsed time.Duration) *domain.ExtractionResult {
	result := &domain.ExtractionResult{
		Requirements:     domain.NewRequirementSet(),
		ExtractionMethod: domain.MethodFallback,
		ProcessingTimeMS: elapsed.Milliseconds(),
		Attempts:         c.attempts,
	}
	if c.best == nil {
		return result
	}
	if c.best.set != nil {
		result.Requirements = c.best.set
	}
	result.ExtractionMethod = c.best.attempt.Method
	result.Confidence = clamp01(c.best.attempt.Confidence)
	result.FullTextLength = normtext.RuneLen(c.best.text)
	return result
}

func safeExtract(ctx context.Context, e driven.Extractor, file *domain.SourceFile) (ext *driven.Extraction, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: %w: panic: %v", e.Name(), domain.ErrExtractionFailed, r)
		}
	}()
	return e.Extract(ctx, file)
}

func safeAnalyze(ctx context.Context, a *Analyzer, text string, budget int) (set *domain.RequirementSet, err error) {
	defer func() {
		if r := recover(); r != nil {
			set = domain.NewRequirementSet()
			err = fmt.Errorf("analyzer: %w: panic: %v", domain.ErrExtractionFailed, r)
		}
	}()
	return a.Analyze(ctx, text, budget)
}

// DecodeText is a best-effort UTF-8 reading of raw bytes. Invalid sequences
// and control characters other than line breaks and tabs are dropped.
func DecodeText(content []byte) string {
	if len(content) == 0 {
		return ""
	}
	var b strings.Builder
	b.Grow(len(content))
	for len(content) > 0 {
		r, size := utf8.DecodeRune(content)
		content = content[size:]
		if r == utf8.RuneError && size <= 1 {
			continue
		}
		if r == '\r' {
			continue
		}
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}
