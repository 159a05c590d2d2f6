package driven

// StrategyRegistry keeps extractors keyed by MIME type.
// Adding a format means registering an extractor, never editing the orchestrator.
type StrategyRegistry interface {
	// Register adds an extractor to the registry.
	Register(extractor Extractor)

	// Strategies returns the extractors for a MIME type in cascade order:
	// by kind first, then by descending priority.
	Strategies(mimeType string) []Extractor

	// SupportedMIMETypes returns all MIME types with at least one
	// type-specific extractor.
	SupportedMIMETypes() []string
}
