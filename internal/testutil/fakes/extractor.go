package fakes

import (
	"context"
	"sync/atomic"

	"github.com/custodia-labs/rfqx/internal/core/domain"
	"github.com/custodia-labs/rfqx/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor returns canned text. Panic, when set, is raised from Extract.
type Extractor struct {
	StrategyName string
	StrategyKind domain.StrategyKind
	Types        []string
	Prio         int

	Text   string
	Method string
	Err    error
	Panic  any

	// Before runs at the start of Extract.
	Before func(ctx context.Context)

	calls atomic.Int32
}

// NewExtractor returns a fake of the given kind handling every MIME type.
func NewExtractor(name string, kind domain.StrategyKind, text string) *Extractor {
	return &Extractor{
		StrategyName: name,
		StrategyKind: kind,
		Types:        []string{"*"},
		Text:         text,
		Method:       name,
	}
}

// Name returns the strategy name.
func (e *Extractor) Name() string { return e.StrategyName }

// Kind returns the cascade tier.
func (e *Extractor) Kind() domain.StrategyKind { return e.StrategyKind }

// SupportedMIMETypes returns Types.
func (e *Extractor) SupportedMIMETypes() []string { return e.Types }

// Priority returns Prio.
func (e *Extractor) Priority() int { return e.Prio }

// Extract returns the canned text or error.
func (e *Extractor) Extract(ctx context.Context, _ *domain.SourceFile) (*driven.Extraction, error) {
	e.calls.Add(1)
	if e.Before != nil {
		e.Before(ctx)
	}
	if e.Panic != nil {
		panic(e.Panic)
	}
	if e.Err != nil {
		return nil, e.Err
	}
	return &driven.Extraction{Text: e.Text, Method: e.Method}, nil
}

// Calls returns how many times Extract ran.
func (e *Extractor) Calls() int {
	return int(e.calls.Load())
}
