package driven

import (
	"context"

	"github.com/custodia-labs/rfqx/internal/core/domain"
)

// Extractor turns a source file into normalised text.
// Table content is emitted using the table-marker grammar.
type Extractor interface {
	// Name returns the strategy name used in attempts and logs.
	Name() string

	// Kind returns the cascade tier of the extractor.
	Kind() domain.StrategyKind

	// SupportedMIMETypes returns the MIME types this extractor handles.
	// A "*" entry matches every type.
	SupportedMIMETypes() []string

	// Priority orders extractors of the same kind (higher = preferred).
	// Format-specific extractors should return 50-100.
	// Generic catch-alls should return 1-9.
	Priority() int

	// Extract reads the file. Unreadable input returns an error wrapping
	// domain.ErrExtractionFailed. Input the extractor does not understand
	// returns empty text and no error.
	Extract(ctx context.Context, file *domain.SourceFile) (*Extraction, error)
}

// Extraction contains the output of one extractor run.
type Extraction struct {
	// Text is the normalised text.
	Text string

	// Method is the method tag recorded on results (e.g., "pdf").
	Method string

	// Pages is the number of pages read, zero when unknown.
	Pages int
}

type extractionConfigKey struct{}

// WithExtractionConfig returns a context carrying the config of the current
// extraction run. Extractors with per-run settings read it back with
// ExtractionConfigFrom.
func WithExtractionConfig(ctx context.Context, cfg domain.ExtractionConfig) context.Context {
	return context.WithValue(ctx, extractionConfigKey{}, cfg)
}

// ExtractionConfigFrom returns the config stored by WithExtractionConfig.
func ExtractionConfigFrom(ctx context.Context) (domain.ExtractionConfig, bool) {
	cfg, ok := ctx.Value(extractionConfigKey{}).(domain.ExtractionConfig)
	return cfg, ok
}
