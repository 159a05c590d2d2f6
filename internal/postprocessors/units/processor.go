// Package units normalises unit spellings on line items.
package units

import (
	"context"

	"github.com/custodia-labs/rfqx/internal/core/domain"
	"github.com/custodia-labs/rfqx/internal/core/ports/driven"
	"github.com/custodia-labs/rfqx/internal/quantity"
)

// Name is the processor name used in configuration.
const Name = "units"

var _ driven.PostProcessor = (*Processor)(nil)

// Processor rewrites units to their canonical spelling ("Stk.", "units" and
// "ea" all become "pcs"). Unknown units are lower-cased and kept.
type Processor struct{}

// New creates a units processor.
func New() *Processor {
	return &Processor{}
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return Name
}

// Process returns a copy of set with canonical units.
func (p *Processor) Process(_ context.Context, set *domain.RequirementSet) (*domain.RequirementSet, error) {
	out := set.Clone()
	for i := range out.Items {
		if out.Items[i].Unit == "" {
			continue
		}
		out.Items[i].Unit = quantity.CanonicalUnit(out.Items[i].Unit)
	}
	return out, nil
}
