package vision

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/rfqx/internal/core/domain"
	"github.com/custodia-labs/rfqx/internal/core/ports/driven"
	"github.com/custodia-labs/rfqx/internal/extractors"
	"github.com/custodia-labs/rfqx/internal/logger"
	"github.com/custodia-labs/rfqx/internal/normtext"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Name is the strategy name of the vision extractor.
const Name = "vision"

// fallbackPrompt is used when no prompt store is available.
const fallbackPrompt = "Transcribe the attached pages. Write tables as " +
	"=== TABLE START ===, HEADERS: a | b, ROW: x | y, === TABLE END ==="

// defaultMaxTokens bounds each transcription reply.
const defaultMaxTokens = 4096

// Options configures the vision extractor.
type Options struct {
	// PageCap is the maximum number of PDF pages rendered.
	PageCap int

	// BatchSize is the number of pages sent per model call.
	BatchSize int

	// MaxTokens bounds each model reply.
	MaxTokens int
}

// OptionsFrom derives options from the extraction config.
func OptionsFrom(cfg domain.ExtractionConfig) Options {
	return Options{PageCap: cfg.VisionPageCap, BatchSize: cfg.VisionBatchSize}
}

// Extractor reads pages with a multimodal model.
type Extractor struct {
	llm      driven.LLMService
	renderer driven.PageRenderer
	prompts  driven.PromptStore
	opts     Options
}

// New creates a vision extractor. renderer may be nil, in which case only
// images are handled.
func New(llm driven.LLMService, renderer driven.PageRenderer, prompts driven.PromptStore, opts Options) *Extractor {
	if opts.PageCap <= 0 {
		opts.PageCap = domain.DefaultVisionPageCap
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = domain.DefaultVisionBatchSize
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = defaultMaxTokens
	}
	return &Extractor{llm: llm, renderer: renderer, prompts: prompts, opts: opts}
}

// Register adds a vision extractor to reg when a vision model is available.
// It reports whether the extractor was registered.
func Register(reg driven.StrategyRegistry, llm driven.LLMService, renderer driven.PageRenderer,
	prompts driven.PromptStore, opts Options) bool {
	if llm == nil {
		logger.Debug("vision strategy disabled", "reason", "no vision model configured")
		return false
	}
	reg.Register(New(llm, renderer, prompts, opts))
	return true
}

// Name returns the strategy name.
func (e *Extractor) Name() string {
	return Name
}

// Kind returns the cascade tier.
func (e *Extractor) Kind() domain.StrategyKind {
	return domain.KindVision
}

// SupportedMIMETypes returns PDF and the image types models accept.
func (e *Extractor) SupportedMIMETypes() []string {
	return append([]string{extractors.MIMEPDF}, extractors.ImageMIMETypes()...)
}

// Priority returns the selection priority.
func (e *Extractor) Priority() int {
	return 50
}

// Extract transcribes the file page by page. Batches whose model call
// fails are skipped; the strategy fails only when every batch fails.
// A page cap and batch size carried by ctx override the built-in options.
// When ctx hits its deadline after some batches succeeded, the pages read
// so far are returned.
func (e *Extractor) Extract(ctx context.Context, file *domain.SourceFile) (*driven.Extraction, error) {
	if file == nil {
		return nil, domain.ErrInvalidInput
	}
	opts := e.options(ctx)

	pages, mimeType, err := e.pages(ctx, file, opts.PageCap)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, extractors.Failed(Name, err)
	}
	if len(pages) == 0 {
		return &driven.Extraction{Method: domain.MethodVision}, nil
	}

	prompt := e.prompt()
	var fragments []string
	var lastErr error
	read := 0
	for first := 0; first < len(pages); first += opts.BatchSize {
		if err := ctx.Err(); err != nil {
			return partial(err, fragments, read)
		}
		last := min(first+opts.BatchSize, len(pages))

		images := make([]driven.Image, 0, last-first)
		for _, p := range pages[first:last] {
			images = append(images, driven.Image{MIMEType: mimeType, Data: p})
		}
		messages := []driven.ChatMessage{
			{Role: driven.RoleSystem, Content: prompt},
			{Role: driven.RoleUser, Content: pageLabel(first+1, last, len(pages)), Images: images},
		}

		reply, err := e.llm.Chat(ctx, messages, driven.ChatOptions{MaxTokens: opts.MaxTokens})
		if ctxErr := ctx.Err(); ctxErr != nil {
			return partial(ctxErr, fragments, read)
		}
		if err != nil {
			logger.Warn("vision batch failed", "first", first+1, "last", last, "error", err)
			lastErr = err
			continue
		}
		fragments = append(fragments, stripFences(reply))
		read = last
	}

	if len(fragments) == 0 && lastErr != nil {
		return nil, extractors.Failed(Name, lastErr)
	}

	return &driven.Extraction{
		Text:   normtext.Repair(strings.Join(fragments, "\n\n")),
		Method: domain.MethodVision,
		Pages:  len(pages),
	}, nil
}

// options returns the built-in options with the page cap and batch size of
// the run config in ctx applied.
func (e *Extractor) options(ctx context.Context) Options {
	opts := e.opts
	cfg, ok := driven.ExtractionConfigFrom(ctx)
	if !ok {
		return opts
	}
	if cfg.VisionPageCap > 0 {
		opts.PageCap = cfg.VisionPageCap
	}
	if cfg.VisionBatchSize > 0 {
		opts.BatchSize = cfg.VisionBatchSize
	}
	return opts
}

// partial returns the fragments read before a deadline. Cancellation and
// a deadline with nothing read return err.
func partial(err error, fragments []string, read int) (*driven.Extraction, error) {
	if !errors.Is(err, context.DeadlineExceeded) || len(fragments) == 0 {
		return nil, err
	}
	logger.Warn("vision deadline reached, keeping pages read so far", "pages", read)
	return &driven.Extraction{
		Text:   normtext.Repair(strings.Join(fragments, "\n\n")),
		Method: domain.MethodVision,
		Pages:  read,
	}, nil
}

// pages returns the page images to transcribe and their MIME type.
func (e *Extractor) pages(ctx context.Context, file *domain.SourceFile, pageCap int) ([][]byte, string, error) {
	mimeType := extractors.Canonical(file.MIMEType)
	if extractors.IsImage(mimeType) {
		return [][]byte{file.Content}, mimeType, nil
	}
	if mimeType != extractors.MIMEPDF {
		return nil, "", nil
	}
	if e.renderer == nil {
		return nil, "", fmt.Errorf("no page renderer: %w", domain.ErrUnsupportedType)
	}

	n, err := e.renderer.PageCount(ctx, file.Content)
	if err != nil {
		return nil, "", fmt.Errorf("count pages: %w", err)
	}
	if n == 0 {
		return nil, "", nil
	}
	last := n
	if n > pageCap {
		logger.Warn("vision page cap reached", "pages", n, "cap", pageCap)
		last = pageCap
	}

	images, err := e.renderer.RenderPages(ctx, file.Content, 1, last)
	if err != nil {
		return nil, "", fmt.Errorf("render pages: %w", err)
	}
	return images, extractors.MIMEPNG, nil
}

func (e *Extractor) prompt() string {
	if e.prompts == nil {
		return fallbackPrompt
	}
	p, err := e.prompts.Load(driven.PromptVisionTranscribe)
	if err != nil || strings.TrimSpace(p) == "" {
		logger.Warn("vision prompt unavailable, using built-in", "error", err)
		return fallbackPrompt
	}
	return p
}

func pageLabel(first, last, total int) string {
	if first == last {
		return fmt.Sprintf("Page %d of %d.", first, total)
	}
	return fmt.Sprintf("Pages %d-%d of %d.", first, last, total)
}

// stripFences removes Markdown code fence lines models wrap output in.
func stripFences(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	kept := lines[:0]
	for _, l := range lines {
		if strings.HasPrefix(strings.TrimSpace(l), "```") {
			continue
		}
		kept = append(kept, l)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}
