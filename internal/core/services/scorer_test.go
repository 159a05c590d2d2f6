package services

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/rfqx/internal/core/domain"
)

func qty(v float64) *float64 { return &v }

func defaultScorer() *Scorer {
	return NewScorer(domain.DefaultExtractionConfig().Scoring)
}

func items(n int) []domain.LineItem {
	out := make([]domain.LineItem, n)
	for i := range out {
		out[i] = domain.LineItem{Description: "Item", Quantity: qty(float64(i + 1)), Unit: "pcs"}
	}
	return out
}

func TestScorer_EmptySetScoresZero(t *testing.T) {
	s := defaultScorer()

	assert.Zero(t, s.Score(domain.NewRequirementSet(), strings.Repeat("x", 5000), 10000))
	assert.Zero(t, s.Score(nil, "text", 10))
}

func TestScorer_PerfectSet(t *testing.T) {
	s := defaultScorer()
	set := &domain.RequirementSet{Items: items(5)}

	// 2000 runes meets the expected length for any file size.
	got := s.Score(set, strings.Repeat("x", 2000), 1_000_000)

	assert.InDelta(t, 1.0, got, 1e-9)
}

func TestScorer_Components(t *testing.T) {
	s := defaultScorer()
	set := &domain.RequirementSet{Items: []domain.LineItem{
		{Description: "Drill", Quantity: qty(5)},
		{Description: "Helmet"},
	}}

	b := s.Breakdown(set, strings.Repeat("x", 75), 1000)

	assert.InDelta(t, 0.4, b.ItemCount, 1e-9)
	assert.InDelta(t, 0.5, b.Completeness, 1e-9)
	assert.InDelta(t, 1.0, b.Validity, 1e-9)
	// expected = clamp(1000*0.005, 150, 2000) = 150
	assert.InDelta(t, 0.5, b.ExtractionQuality, 1e-9)

	want := 0.15*0.4 + 0.40*0.5 + 0.25*1.0 + 0.20*0.5
	assert.InDelta(t, want, s.Score(set, strings.Repeat("x", 75), 1000), 1e-9)
}

func TestScorer_InvalidQuantities(t *testing.T) {
	s := defaultScorer()
	set := &domain.RequirementSet{Items: []domain.LineItem{
		{Description: "A", Quantity: qty(-1)},
		{Description: "B", Quantity: qty(math.Inf(1))},
		{Description: "C", Quantity: qty(2)},
		{Description: "D"},
	}}

	b := s.Breakdown(set, "", 0)

	assert.InDelta(t, 0.5, b.Validity, 1e-9)
	assert.InDelta(t, 0.75, b.Completeness, 1e-9)
}

func TestScorer_RejectedQuantitiesLowerValidity(t *testing.T) {
	s := defaultScorer()
	set, err := ParseRequirements(`{"items": [
		{"description": "Drill", "quantity": -5},
		{"description": "Helmet", "quantity": "abc"},
		{"description": "Vest", "quantity": 10},
		{"description": "Gloves"}
	]}`)
	assert.NoError(t, err)

	b := s.Breakdown(set, "", 0)

	assert.InDelta(t, 0.5, b.Validity, 1e-9)
	assert.InDelta(t, 0.25, b.Completeness, 1e-9)

	clean := &domain.RequirementSet{Items: set.Items}
	assert.Greater(t, s.Score(clean, "", 0), s.Score(set, "", 0))
}

func TestScorer_RejectedCountIsCapped(t *testing.T) {
	s := defaultScorer()
	set := &domain.RequirementSet{Items: items(2), RejectedQuantities: 5}

	assert.Zero(t, s.Breakdown(set, "", 0).Validity)
}

func TestScorer_ShortTextHasNoQuality(t *testing.T) {
	s := defaultScorer()
	set := &domain.RequirementSet{Items: items(1)}

	assert.Zero(t, s.Breakdown(set, "too short", 100).ExtractionQuality)
	assert.Positive(t, s.Breakdown(set, strings.Repeat("y", 20), 100).ExtractionQuality)
}

func TestScorer_ExpectedLengthIsClamped(t *testing.T) {
	s := defaultScorer()
	set := &domain.RequirementSet{Items: items(1)}

	// A huge file still only expects 2000 runes.
	assert.InDelta(t, 1.0, s.Breakdown(set, strings.Repeat("z", 2000), 100_000_000).ExtractionQuality, 1e-9)
	// A mid-sized file expects size*0.005 runes.
	assert.InDelta(t, 0.5, s.Breakdown(set, strings.Repeat("z", 500), 200_000).ExtractionQuality, 1e-9)
}

func TestScorer_Bounds(t *testing.T) {
	s := defaultScorer()
	sets := []*domain.RequirementSet{
		{Items: items(1)},
		{Items: items(50)},
		{Items: []domain.LineItem{{Quantity: qty(math.NaN())}}},
		{Items: []domain.LineItem{{Description: "x"}}},
	}
	for _, set := range sets {
		for _, text := range []string{"", "short", strings.Repeat("w", 10_000)} {
			for _, size := range []int{0, 1, 1 << 30} {
				got := s.Score(set, text, size)
				assert.GreaterOrEqual(t, got, 0.0)
				assert.LessOrEqual(t, got, 1.0)
			}
		}
	}
}

func TestScorer_CustomWeights(t *testing.T) {
	cfg := domain.DefaultExtractionConfig().Scoring
	cfg.Weights = domain.ScoreWeights{Completeness: 1}
	s := NewScorer(cfg)

	set := &domain.RequirementSet{Items: []domain.LineItem{
		{Description: "Drill", Quantity: qty(5)},
		{Description: "Helmet"},
	}}
	assert.InDelta(t, 0.5, s.Score(set, "", 0), 1e-9)
}

func TestScorer_InvalidConfigUsesDefaults(t *testing.T) {
	s := NewScorer(domain.ScoringConfig{})
	set := &domain.RequirementSet{Items: items(5)}

	assert.InDelta(t, 1.0, s.Score(set, strings.Repeat("x", 2000), 0), 1e-9)
}
