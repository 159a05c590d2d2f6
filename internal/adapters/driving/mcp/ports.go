package mcp

import (
	"github.com/custodia-labs/rfqx/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Documents processes files and serves stored results.
	Documents driving.DocumentService

	// Threshold is the acceptance confidence reported with each result.
	// Zero means the default.
	Threshold float64
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Documents == nil {
		return ErrMissingDocumentService
	}
	return nil
}
