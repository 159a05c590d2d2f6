package postprocessors

import (
	"context"
	"errors"
	"testing"

	"github.com/custodia-labs/rfqx/internal/core/domain"
)

// mockProcessor is a test processor that returns a predefined set.
type mockProcessor struct {
	name  string
	items []domain.LineItem
	err   error
	seen  int
}

func (m *mockProcessor) Name() string {
	return m.name
}

func (m *mockProcessor) Process(_ context.Context, set *domain.RequirementSet) (*domain.RequirementSet, error) {
	m.seen = len(set.Items)
	if m.err != nil {
		return nil, m.err
	}
	if m.items != nil {
		out := set.Clone()
		out.Items = m.items
		return out, nil
	}
	return set, nil
}

func qty(v float64) *float64 { return &v }

func TestNewPipeline(t *testing.T) {
	p := NewPipeline()
	if p == nil {
		t.Fatal("expected non-nil pipeline")
	}
	if p.Len() != 0 {
		t.Errorf("expected 0 processors, got %d", p.Len())
	}
}

func TestPipeline_Add(t *testing.T) {
	p := NewPipeline()
	p.Add(&mockProcessor{name: "test"})

	if p.Len() != 1 {
		t.Errorf("expected 1 processor, got %d", p.Len())
	}
	if got := p.Names(); len(got) != 1 || got[0] != "test" {
		t.Errorf("unexpected names %v", got)
	}
}

func TestPipeline_Process_NilSet(t *testing.T) {
	p := NewPipeline()

	_, err := p.Process(context.Background(), nil)
	if err == nil {
		t.Error("expected error for nil set")
	}
}

func TestPipeline_Process_EmptyPipeline(t *testing.T) {
	p := NewPipeline()
	in := &domain.RequirementSet{
		CustomerName: "ACME",
		Items:        []domain.LineItem{{Description: " Drill ", Quantity: qty(2)}},
	}

	out, err := p.Process(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out == in {
		t.Error("expected a copy, got the input set")
	}
	if out.CustomerName != "ACME" || len(out.Items) != 1 || out.Items[0].Description != "Drill" {
		t.Errorf("unexpected output %+v", out)
	}
	if in.Items[0].Description != " Drill " {
		t.Error("input set was modified")
	}
}

func TestPipeline_Process_Chained(t *testing.T) {
	first := &mockProcessor{
		name:  "first",
		items: []domain.LineItem{{Description: "a"}, {Description: "b"}},
	}
	second := &mockProcessor{name: "second"}

	p := NewPipeline(first, second)
	out, err := p.Process(context.Background(), &domain.RequirementSet{Items: []domain.LineItem{}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.seen != 2 {
		t.Errorf("second processor saw %d items, want 2", second.seen)
	}
	if len(out.Items) != 2 {
		t.Errorf("expected 2 items, got %d", len(out.Items))
	}
}

func TestPipeline_Process_Error(t *testing.T) {
	boom := errors.New("boom")
	after := &mockProcessor{name: "after"}
	p := NewPipeline(&mockProcessor{name: "bad", err: boom}, after)

	_, err := p.Process(context.Background(), domain.NewRequirementSet())
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped boom, got %v", err)
	}
	if after.seen != 0 {
		t.Error("processor after the failure should not run")
	}
}

func TestPipeline_Process_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewPipeline(&mockProcessor{name: "test"})
	_, err := p.Process(ctx, domain.NewRequirementSet())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestPipeline_Process_NilFromProcessor(t *testing.T) {
	p := NewPipeline(nilProcessor{})

	out, err := p.Process(context.Background(), domain.NewRequirementSet())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out == nil || out.Items == nil {
		t.Fatal("expected empty set with non-nil items")
	}
}

type nilProcessor struct{}

func (nilProcessor) Name() string { return "nil" }
func (nilProcessor) Process(context.Context, *domain.RequirementSet) (*domain.RequirementSet, error) {
	return nil, nil
}

func TestDefaultPipeline(t *testing.T) {
	p, err := NewDefaultRegistry().BuildPipeline(domain.DefaultPipelineConfig())
	if err != nil {
		t.Fatalf("BuildPipeline failed: %v", err)
	}

	in := &domain.RequirementSet{Items: []domain.LineItem{
		{Description: "50x Cordless drill"},
		{Description: "Safety gloves", Quantity: qty(100), Unit: "Pairs"},
		{Description: "safety gloves", Quantity: qty(20), Unit: "pr"},
		{Description: "Hex bolt M8", Quantity: qty(500), Unit: "PCS"},
	}}

	out, err := p.Process(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Items) != 3 {
		t.Fatalf("expected 3 items, got %d: %+v", len(out.Items), out.Items)
	}

	drill := out.Items[0]
	if drill.Description != "Cordless drill" || drill.Quantity == nil || *drill.Quantity != 50 {
		t.Errorf("unexpected drill item %+v", drill)
	}
	gloves := out.Items[1]
	if gloves.Unit != "pair" || gloves.Quantity == nil || *gloves.Quantity != 120 {
		t.Errorf("unexpected gloves item %+v", gloves)
	}
	if out.Items[2].Unit != "pcs" {
		t.Errorf("expected canonical unit pcs, got %q", out.Items[2].Unit)
	}
}
