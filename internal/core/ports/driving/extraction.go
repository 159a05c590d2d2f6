package driving

import (
	"context"

	"github.com/custodia-labs/rfqx/internal/core/domain"
)

// ExtractionService runs the extraction cascade for a single file.
// It holds no state between calls.
type ExtractionService interface {
	// Extract runs the cascade and returns the best attempt.
	// Only configuration errors and cancellation are returned as errors.
	Extract(ctx context.Context, file *domain.SourceFile, cfg domain.ExtractionConfig) (*domain.ExtractionResult, error)
}
