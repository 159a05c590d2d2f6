package services

import (
	"math"

	"github.com/custodia-labs/rfqx/internal/core/domain"
	"github.com/custodia-labs/rfqx/internal/normtext"
)

// ScoreBreakdown holds the component scores, each in [0,1].
type ScoreBreakdown struct {
	ItemCount         float64
	Completeness      float64
	Validity          float64
	ExtractionQuality float64
}

// Scorer computes the confidence of an analyzed set.
type Scorer struct {
	cfg domain.ScoringConfig
}

// NewScorer creates a scorer. Missing or non-positive parameters take
// their defaults.
func NewScorer(cfg domain.ScoringConfig) *Scorer {
	defaults := domain.DefaultExtractionConfig().Scoring
	if cfg.Weights.Sum() <= 0 || cfg.Weights.ItemCount < 0 || cfg.Weights.Completeness < 0 ||
		cfg.Weights.Validity < 0 || cfg.Weights.TextQuality < 0 {
		cfg.Weights = defaults.Weights
	}
	if cfg.ItemSaturation <= 0 {
		cfg.ItemSaturation = defaults.ItemSaturation
	}
	if cfg.MinTextLength < 0 {
		cfg.MinTextLength = defaults.MinTextLength
	}
	if cfg.ExpectedTextRatio <= 0 {
		cfg.ExpectedTextRatio = defaults.ExpectedTextRatio
	}
	if cfg.MinExpectedText <= 0 {
		cfg.MinExpectedText = defaults.MinExpectedText
	}
	if cfg.MaxExpectedText < cfg.MinExpectedText {
		cfg.MaxExpectedText = max(defaults.MaxExpectedText, cfg.MinExpectedText)
	}
	return &Scorer{cfg: cfg}
}

// Score returns the weighted confidence in [0,1]. An empty set scores 0.
func (s *Scorer) Score(set *domain.RequirementSet, text string, fileSize int) float64 {
	if set.IsEmpty() {
		return 0
	}
	b := s.Breakdown(set, text, fileSize)
	w := s.cfg.Weights
	total := w.ItemCount*b.ItemCount +
		w.Completeness*b.Completeness +
		w.Validity*b.Validity +
		w.TextQuality*b.ExtractionQuality
	return clamp01(total / w.Sum())
}

// Breakdown returns the component scores for set.
func (s *Scorer) Breakdown(set *domain.RequirementSet, text string, fileSize int) ScoreBreakdown {
	var b ScoreBreakdown
	b.ExtractionQuality = s.textQuality(text, fileSize)
	if set.IsEmpty() {
		return b
	}

	n := len(set.Items)
	complete, invalid := 0, 0
	for _, item := range set.Items {
		if item.HasDescription() && item.HasQuantity() {
			complete++
		}
		if item.HasQuantity() && !item.HasValidQuantity() {
			invalid++
		}
	}
	// Quantities rejected during parsing are already unset on their items.
	invalid = min(invalid+set.RejectedQuantities, n)
	valid := n - invalid

	b.ItemCount = min(float64(n)/float64(s.cfg.ItemSaturation), 1)
	b.Completeness = float64(complete) / float64(n)
	b.Validity = float64(valid) / float64(n)
	return b
}

func (s *Scorer) textQuality(text string, fileSize int) float64 {
	length := normtext.RuneLen(text)
	if length < s.cfg.MinTextLength {
		return 0
	}
	expected := float64(fileSize) * s.cfg.ExpectedTextRatio
	expected = max(expected, float64(s.cfg.MinExpectedText))
	expected = min(expected, float64(s.cfg.MaxExpectedText))
	return min(1, float64(length)/expected)
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
