package domain

import "time"

// StrategyKind orders strategies within a cascade.
// Lower kinds run first.
type StrategyKind int

// Strategy kinds in cascade order.
const (
	// KindFormat is a fast, format-specific extractor.
	KindFormat StrategyKind = iota

	// KindLayout is the slower layout-aware parser.
	KindLayout

	// KindVision renders pages and reads them with a multimodal model.
	KindVision

	// KindFallback feeds already extracted text to the analyzer alone.
	KindFallback
)

// String returns the string representation.
func (k StrategyKind) String() string {
	switch k {
	case KindFormat:
		return "format"
	case KindLayout:
		return "layout"
	case KindVision:
		return "vision"
	case KindFallback:
		return "fallback"
	default:
		return unknownDescription
	}
}

// Extraction method tags recorded on results.
const (
	MethodPDF       = "pdf"
	MethodDOCX      = "docx"
	MethodXLSX      = "xlsx"
	MethodHTML      = "html"
	MethodMarkdown  = "markdown"
	MethodPlainText = "plaintext"
	MethodEmail     = "email"
	MethodLayout    = "layout"
	MethodVision    = "vision"
	MethodFallback  = "analyzer_only"
)

// ExtractionAttempt records one strategy's run within a cascade.
type ExtractionAttempt struct {
	// Strategy is the name of the extractor that ran.
	Strategy string `json:"strategy"`

	// Kind is the cascade tier of the strategy.
	Kind StrategyKind `json:"kind"`

	// Method is the method tag the extractor reported.
	Method string `json:"method"`

	// InputTextLength is the length of the normalised text in runes.
	InputTextLength int `json:"input_text_length"`

	// ItemCount is the number of items after analysis and post-processing.
	ItemCount int `json:"item_count"`

	// Confidence is the score for this attempt, zero on failure.
	Confidence float64 `json:"confidence"`

	// Elapsed is the wall time spent in the attempt.
	Elapsed time.Duration `json:"elapsed"`

	// Error describes why the attempt failed, empty on success.
	Error string `json:"error,omitempty"`

	// Err is the failure, kept for errors.Is checks by callers.
	Err error `json:"-"`
}

// Failed returns true if the attempt ended with an error.
func (a ExtractionAttempt) Failed() bool {
	return a.Err != nil || a.Error != ""
}

// ExtractionResult is the output contract of one cascade.
type ExtractionResult struct {
	// Requirements is the winning requirement set, never nil.
	Requirements *RequirementSet `json:"requirements"`

	// ExtractionMethod is the method tag of the winning attempt.
	ExtractionMethod string `json:"extraction_method"`

	// Confidence is in [0,1].
	Confidence float64 `json:"confidence"`

	// ProcessingTimeMS is the wall time of the whole cascade.
	ProcessingTimeMS int64 `json:"processing_time_ms"`

	// FullTextLength is the length of the winning attempt's text.
	FullTextLength int `json:"full_text_length"`

	// Attempts lists every strategy tried, in order.
	Attempts []ExtractionAttempt `json:"attempts,omitempty"`
}

// Accepted returns true if the confidence reached threshold.
func (r *ExtractionResult) Accepted(threshold float64) bool {
	return r != nil && r.Confidence >= threshold
}

// StoredResult is an ExtractionResult persisted against a document.
type StoredResult struct {
	// DocumentID links to the Document the result belongs to.
	DocumentID string

	// Result is the persisted extraction outcome.
	Result ExtractionResult

	// CreatedAt is when the result was stored.
	CreatedAt time.Time
}
