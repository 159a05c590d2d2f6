// Package quantity recovers quantities that a model left inside item
// descriptions.
package quantity

import (
	"context"

	"github.com/custodia-labs/rfqx/internal/core/domain"
	"github.com/custodia-labs/rfqx/internal/core/ports/driven"
	"github.com/custodia-labs/rfqx/internal/quantity"
)

// Name is the processor name used in configuration.
const Name = "quantity"

var _ driven.PostProcessor = (*Processor)(nil)

// Processor fills unset quantities from descriptions such as "50x Drill"
// or "Safety gloves - 200 pairs". Items that already carry a quantity are
// left untouched.
type Processor struct{}

// New creates a quantity processor.
func New() *Processor {
	return &Processor{}
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return Name
}

// Process returns a copy of set with recovered quantities.
func (p *Processor) Process(_ context.Context, set *domain.RequirementSet) (*domain.RequirementSet, error) {
	out := set.Clone()
	for i, item := range out.Items {
		if item.HasQuantity() {
			continue
		}
		found, ok := quantity.FromDescription(item.Description)
		if !ok || found.Description == "" {
			continue
		}
		item.Quantity = domain.Qty(found.Value)
		item.Description = found.Description
		if item.Unit == "" {
			item.Unit = found.Unit
		}
		out.Items[i] = item
	}
	return out, nil
}
