package driven

import (
	"context"

	"github.com/custodia-labs/rfqx/internal/core/domain"
)

// PostProcessor refines an analyzed requirement set.
// PostProcessors are chained in a pipeline (e.g., quantity recovery, unit
// normalisation, deduplication).
type PostProcessor interface {
	// Name returns the processor name for logging and configuration.
	Name() string

	// Process returns the refined set. It must not mutate its input.
	Process(ctx context.Context, set *domain.RequirementSet) (*domain.RequirementSet, error)
}

// PostProcessorPipeline chains multiple PostProcessors.
type PostProcessorPipeline interface {
	// Process runs the set through all processors in order.
	Process(ctx context.Context, set *domain.RequirementSet) (*domain.RequirementSet, error)
}
