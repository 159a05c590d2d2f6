// Package dedupe merges repeated line items.
package dedupe

import (
	"context"
	"strings"

	"github.com/custodia-labs/rfqx/internal/core/domain"
	"github.com/custodia-labs/rfqx/internal/core/ports/driven"
)

// Name is the processor name used in configuration.
const Name = "dedupe"

var _ driven.PostProcessor = (*Processor)(nil)

// Processor merges items with the same description and unit by summing
// their quantities. Items with different specifications stay separate.
type Processor struct {
	caseSensitive bool
}

// Option configures the dedupe processor.
type Option func(*Processor)

// WithCaseSensitive makes description comparison exact.
func WithCaseSensitive(v bool) Option {
	return func(p *Processor) {
		p.caseSensitive = v
	}
}

// New creates a dedupe processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return Name
}

// Process returns a copy of set with duplicates merged. The first
// occurrence keeps its position.
func (p *Processor) Process(_ context.Context, set *domain.RequirementSet) (*domain.RequirementSet, error) {
	out := set.Clone()
	index := make(map[string]int, len(out.Items))
	merged := make([]domain.LineItem, 0, len(out.Items))

	for _, item := range out.Items {
		k := p.key(item)
		at, seen := index[k]
		if !seen {
			index[k] = len(merged)
			merged = append(merged, item)
			continue
		}
		merged[at] = combine(merged[at], item)
	}

	out.Items = merged
	return out, nil
}

func (p *Processor) key(item domain.LineItem) string {
	desc := strings.Join(strings.Fields(item.Description), " ")
	specs := strings.Join(strings.Fields(item.Specifications), " ")
	if !p.caseSensitive {
		desc = strings.ToLower(desc)
		specs = strings.ToLower(specs)
	}
	return desc + "\x00" + strings.ToLower(item.Unit) + "\x00" + specs
}

func combine(a, b domain.LineItem) domain.LineItem {
	switch {
	case a.Quantity == nil:
		a.Quantity = b.Quantity
	case b.Quantity != nil:
		sum := *a.Quantity + *b.Quantity
		a.Quantity = &sum
	}
	return a
}
