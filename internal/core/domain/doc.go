// Package domain defines the core business entities for rfqx.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: an uploaded file tracked through processing
//   - SourceFile: the bytes and MIME type handed to the extraction core
//   - RequirementSet: the structured line items parsed from a document
//   - ExtractionResult: the outcome of one cascade, with method and confidence
//   - ExtractionConfig: the explicit parameter object for a cascade
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
