package domain

import (
	"errors"
	"fmt"
	"time"
)

// Default extraction parameters.
const (
	DefaultThreshold          = 0.85
	DefaultCharBudget         = 8000
	DefaultVisionPageCap      = 10
	DefaultVisionBatchSize    = 1
	DefaultRetryAttempts      = 3
	DefaultRetryBaseDelay     = 500 * time.Millisecond
	DefaultRetryMaxDelay      = 10 * time.Second
	DefaultModelTimeout       = 60 * time.Second
	DefaultExtractorTimeout   = 2 * time.Minute
	DefaultRequestsPerSecond  = 2.0
	DefaultItemSaturation     = 5
	DefaultMinTextLength      = 20
	DefaultExpectedTextRatio  = 0.005
	DefaultMinExpectedText    = 150
	DefaultMaxExpectedText    = 2000
	DefaultWeightItemCount    = 0.15
	DefaultWeightCompleteness = 0.40
	DefaultWeightValidity     = 0.25
	DefaultWeightTextQuality  = 0.20
)

// ScoreWeights are the fixed weights of the four confidence components.
type ScoreWeights struct {
	// ItemCount weights how close the item count is to saturation.
	ItemCount float64

	// Completeness weights the share of items with description and quantity.
	Completeness float64

	// Validity weights the share of items whose quantity is sane.
	Validity float64

	// TextQuality weights how much text the extractor recovered.
	TextQuality float64
}

// Sum returns the total of all weights.
func (w ScoreWeights) Sum() float64 {
	return w.ItemCount + w.Completeness + w.Validity + w.TextQuality
}

// ScoringConfig holds the confidence scorer parameters.
type ScoringConfig struct {
	Weights ScoreWeights

	// ItemSaturation is the item count that earns full item_count credit.
	ItemSaturation int

	// MinTextLength is the text length below which extraction quality is zero.
	MinTextLength int

	// ExpectedTextRatio is the expected text length per byte of input file.
	ExpectedTextRatio float64

	// MinExpectedText and MaxExpectedText clamp the expected text length.
	MinExpectedText int
	MaxExpectedText int
}

// ExtractionConfig is the explicit parameter object for one cascade.
// Nothing in the pipeline reads configuration from globals.
type ExtractionConfig struct {
	// Threshold is the confidence at which a cascade stops.
	Threshold float64

	// CharBudget bounds the text sent to the requirement analyzer, in runes.
	CharBudget int

	// VisionPageCap is the maximum number of pages rendered for vision.
	VisionPageCap int

	// VisionBatchSize is the number of pages sent per vision model call.
	VisionBatchSize int

	// RetryAttempts is the number of retries on transient model errors.
	RetryAttempts int

	// RetryBaseDelay and RetryMaxDelay bound exponential backoff.
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration

	// ModelTimeout applies to each model call.
	ModelTimeout time.Duration

	// ExtractorTimeout is a sanity ceiling for each local strategy step.
	// Vision steps are not bounded by it.
	ExtractorTimeout time.Duration

	// RequestsPerSecond limits model calls across documents. Zero disables limiting.
	RequestsPerSecond float64

	// EnableFallback appends the analyzer-only strategy to every cascade.
	EnableFallback bool

	// PostProcessing configures the requirement post-processor pipeline.
	PostProcessing PipelineConfig

	Scoring ScoringConfig
}

// DefaultExtractionConfig returns the tuned defaults.
func DefaultExtractionConfig() ExtractionConfig {
	return ExtractionConfig{
		Threshold:         DefaultThreshold,
		CharBudget:        DefaultCharBudget,
		VisionPageCap:     DefaultVisionPageCap,
		VisionBatchSize:   DefaultVisionBatchSize,
		RetryAttempts:     DefaultRetryAttempts,
		RetryBaseDelay:    DefaultRetryBaseDelay,
		RetryMaxDelay:     DefaultRetryMaxDelay,
		ModelTimeout:      DefaultModelTimeout,
		ExtractorTimeout:  DefaultExtractorTimeout,
		RequestsPerSecond: DefaultRequestsPerSecond,
		EnableFallback:    true,
		PostProcessing:    DefaultPipelineConfig(),
		Scoring: ScoringConfig{
			Weights: ScoreWeights{
				ItemCount:    DefaultWeightItemCount,
				Completeness: DefaultWeightCompleteness,
				Validity:     DefaultWeightValidity,
				TextQuality:  DefaultWeightTextQuality,
			},
			ItemSaturation:    DefaultItemSaturation,
			MinTextLength:     DefaultMinTextLength,
			ExpectedTextRatio: DefaultExpectedTextRatio,
			MinExpectedText:   DefaultMinExpectedText,
			MaxExpectedText:   DefaultMaxExpectedText,
		},
	}
}

// Validate checks the configuration for values the pipeline cannot use.
func (c ExtractionConfig) Validate() error {
	var errs []error
	if c.Threshold < 0 || c.Threshold > 1 {
		errs = append(errs, fmt.Errorf("threshold %v outside [0,1]", c.Threshold))
	}
	if c.CharBudget <= 0 {
		errs = append(errs, fmt.Errorf("char budget must be positive, got %d", c.CharBudget))
	}
	if c.VisionPageCap <= 0 {
		errs = append(errs, fmt.Errorf("vision page cap must be positive, got %d", c.VisionPageCap))
	}
	if c.VisionBatchSize <= 0 {
		errs = append(errs, fmt.Errorf("vision batch size must be positive, got %d", c.VisionBatchSize))
	}
	if c.RetryAttempts < 0 {
		errs = append(errs, fmt.Errorf("retry attempts must not be negative, got %d", c.RetryAttempts))
	}
	if c.RetryMaxDelay > 0 && c.RetryBaseDelay > c.RetryMaxDelay {
		errs = append(errs, errors.New("retry base delay exceeds max delay"))
	}
	if c.RequestsPerSecond < 0 {
		errs = append(errs, errors.New("requests per second must not be negative"))
	}
	w := c.Scoring.Weights
	if w.ItemCount < 0 || w.Completeness < 0 || w.Validity < 0 || w.TextQuality < 0 {
		errs = append(errs, errors.New("score weights must not be negative"))
	}
	if w.Sum() <= 0 {
		errs = append(errs, errors.New("score weights must sum to a positive value"))
	}
	if c.Scoring.ItemSaturation <= 0 {
		errs = append(errs, fmt.Errorf("item saturation must be positive, got %d", c.Scoring.ItemSaturation))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrConfiguration, errors.Join(errs...))
	}
	return nil
}
