// Package postprocessors provides requirement set refinement steps that run
// between analysis and scoring.
package postprocessors

import (
	"context"
	"fmt"

	"github.com/custodia-labs/rfqx/internal/core/domain"
	"github.com/custodia-labs/rfqx/internal/core/ports/driven"
)

var _ driven.PostProcessorPipeline = (*Pipeline)(nil)

// Pipeline chains multiple PostProcessors and runs them in order.
// It implements the PostProcessorPipeline interface.
type Pipeline struct {
	processors []driven.PostProcessor
}

// NewPipeline creates a new processing pipeline with the given processors.
// Processors are executed in the order provided.
func NewPipeline(processors ...driven.PostProcessor) *Pipeline {
	return &Pipeline{
		processors: processors,
	}
}

// Process runs the set through all processors in order.
// Each processor receives the previous processor's output. The input set is
// never modified.
func (p *Pipeline) Process(ctx context.Context, set *domain.RequirementSet) (*domain.RequirementSet, error) {
	if set == nil {
		return nil, fmt.Errorf("requirement set is nil")
	}

	out := set.Clone()
	for _, processor := range p.processors {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next, err := processor.Process(ctx, out)
		if err != nil {
			return nil, fmt.Errorf("processor %s: %w", processor.Name(), err)
		}
		if next == nil {
			next = domain.NewRequirementSet()
		}
		out = next
	}

	out.Clean()
	return out, nil
}

// Add appends a processor to the pipeline.
func (p *Pipeline) Add(processor driven.PostProcessor) {
	p.processors = append(p.processors, processor)
}

// Len returns the number of processors in the pipeline.
func (p *Pipeline) Len() int {
	return len(p.processors)
}

// Names returns the processor names in execution order.
func (p *Pipeline) Names() []string {
	names := make([]string, len(p.processors))
	for i, processor := range p.processors {
		names[i] = processor.Name()
	}
	return names
}
