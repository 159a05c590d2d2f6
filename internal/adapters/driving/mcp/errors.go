// Package mcp provides an MCP (Model Context Protocol) server adapter for rfqx.
// It lets AI assistants run requirement extraction and read stored results.
package mcp

import "errors"

// ErrMissingDocumentService is returned when the document service is not provided.
var ErrMissingDocumentService = errors.New("mcp: document service is required")
