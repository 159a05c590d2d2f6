package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/rfqx/internal/core/domain"
)

const (
	// URIScheme is the custom URI scheme for rfqx resources.
	uriScheme = "rfqx://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for listing documents.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "documents",
		Name:        "documents",
		Description: "All processed RFQ documents with their status",
		MIMEType:    "application/json",
	}, s.handleDocumentsResource)

	// Template for a document's extraction result.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "documents/{documentId}",
		Name:        "document-result",
		Description: "Extraction result of a specific document",
		MIMEType:    "application/json",
	}, s.handleDocumentResultResource)
}

// handleDocumentsResource returns a list of all processed documents.
func (s *Server) handleDocumentsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	docs, err := s.ports.Documents.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}

	type docInfo struct {
		ID        string    `json:"id"`
		Name      string    `json:"name"`
		Path      string    `json:"path,omitempty"`
		MIMEType  string    `json:"mime_type"`
		Status    string    `json:"status"`
		Error     string    `json:"error,omitempty"`
		UpdatedAt time.Time `json:"updated_at"`
	}

	infos := make([]docInfo, len(docs))
	for i := range docs {
		infos[i] = docInfo{
			ID:        docs[i].ID,
			Name:      docs[i].Name,
			Path:      docs[i].Path,
			MIMEType:  docs[i].MIMEType,
			Status:    string(docs[i].Status),
			Error:     docs[i].Error,
			UpdatedAt: docs[i].UpdatedAt,
		}
	}

	return jsonResource(req.Params.URI, infos, "documents")
}

// handleDocumentResultResource returns the extraction result of a document.
func (s *Server) handleDocumentResultResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	// Extract documentId from URI: rfqx://documents/{documentId}
	docID := extractDocumentID(req.Params.URI)
	if docID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	doc, err := s.ports.Documents.Get(ctx, docID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting document: %w", err)
	}

	var result *domain.ExtractionResult
	stored, err := s.ports.Documents.GetResult(ctx, docID)
	switch {
	case err == nil:
		result = &stored.Result
	case !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("getting result: %w", err)
	}

	return jsonResource(req.Params.URI, s.toOutput(doc, result), "result")
}

func jsonResource(uri string, v any, what string) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", what, err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractDocumentID extracts the document ID from a URI like rfqx://documents/{documentId}.
func extractDocumentID(uri string) string {
	const prefix = uriScheme + "documents/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
