package extractors

import (
	"sort"
	"sync"

	"github.com/custodia-labs/rfqx/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.StrategyRegistry = (*Registry)(nil)

// Wildcard matches every MIME type in SupportedMIMETypes.
const Wildcard = "*"

// Registry keeps extractors keyed by MIME type.
type Registry struct {
	mu         sync.RWMutex
	extractors []driven.Extractor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds an extractor. Nil extractors are ignored.
func (r *Registry) Register(extractor driven.Extractor) {
	if extractor == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.extractors = append(r.extractors, extractor)
}

// Strategies returns the extractors for mimeType ordered by kind, then by
// descending priority, then by registration order.
func (r *Registry) Strategies(mimeType string) []driven.Extractor {
	mimeType = Canonical(mimeType)

	r.mu.RLock()
	var matched []driven.Extractor
	for _, e := range r.extractors {
		if supports(e, mimeType) {
			matched = append(matched, e)
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].Kind() != matched[j].Kind() {
			return matched[i].Kind() < matched[j].Kind()
		}
		return matched[i].Priority() > matched[j].Priority()
	})
	return matched
}

// SupportedMIMETypes returns all MIME types with a type-specific extractor, sorted.
func (r *Registry) SupportedMIMETypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, e := range r.extractors {
		for _, mt := range e.SupportedMIMETypes() {
			if mt != Wildcard {
				seen[mt] = struct{}{}
			}
		}
	}

	types := make([]string, 0, len(seen))
	for mt := range seen {
		types = append(types, mt)
	}
	sort.Strings(types)
	return types
}

func supports(e driven.Extractor, mimeType string) bool {
	for _, mt := range e.SupportedMIMETypes() {
		if mt == Wildcard || mt == mimeType {
			return true
		}
	}
	return false
}
