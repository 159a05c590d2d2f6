package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown MIME type or strategy.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// Extraction Errors.

	// ErrExtractionFailed indicates a strategy could not read the file at all.
	// It is recoverable: the attempt scores zero and the cascade continues.
	ErrExtractionFailed = errors.New("extraction failed")

	// ErrAnalysisParseFailed indicates the model response was not valid JSON
	// or did not match the requirement schema. It is recoverable.
	ErrAnalysisParseFailed = errors.New("analysis parse failed")

	// ErrExternalService indicates a model call kept failing after retries.
	ErrExternalService = errors.New("external service error")

	// ErrConfiguration indicates the pipeline cannot handle a document at all.
	// It is the only extraction error that propagates to callers.
	ErrConfiguration = errors.New("configuration error")

	// Transient Errors.

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrServiceUnavailable indicates a transient server-side failure (5xx).
	ErrServiceUnavailable = errors.New("service unavailable")
)

// IsRecoverable reports whether err should become a zero-confidence attempt
// rather than abort a cascade.
func IsRecoverable(err error) bool {
	if err == nil {
		return true
	}
	return !errors.Is(err, ErrConfiguration)
}
