package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/rfqx/internal/core/domain"
)

// ExtractInput is the input schema for the extract_requirements tool.
type ExtractInput struct {
	Path string `json:"path" jsonschema:"absolute path of the RFQ document to process"`
}

// ResultInput is the input schema for the get_result tool.
type ResultInput struct {
	DocumentID string `json:"document_id" jsonschema:"id returned by extract_requirements"`
}

// ResultOutput is the output schema of both tools.
type ResultOutput struct {
	DocumentID       string          `json:"document_id"`
	Name             string          `json:"name"`
	Status           string          `json:"status"`
	ExtractionMethod string          `json:"extraction_method,omitempty"`
	Confidence       float64         `json:"confidence"`
	Accepted         bool            `json:"accepted"`
	ProcessingTimeMS int64           `json:"processing_time_ms"`
	CustomerName     string          `json:"customer_name,omitempty"`
	ProjectName      string          `json:"project_name,omitempty"`
	Deadline         string          `json:"deadline,omitempty"`
	Items            []ItemOutput    `json:"items"`
	Attempts         []AttemptOutput `json:"attempts,omitempty"`
	Error            string          `json:"error,omitempty"`
}

// ItemOutput is one requested line item.
type ItemOutput struct {
	Description    string   `json:"description"`
	Quantity       *float64 `json:"quantity,omitempty"`
	Unit           string   `json:"unit,omitempty"`
	Specifications string   `json:"specifications,omitempty"`
}

// AttemptOutput summarises one strategy of the cascade.
type AttemptOutput struct {
	Strategy   string  `json:"strategy"`
	Method     string  `json:"method"`
	Confidence float64 `json:"confidence"`
	ItemCount  int     `json:"item_count"`
	ElapsedMS  int64   `json:"elapsed_ms"`
	Error      string  `json:"error,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name: "extract_requirements",
		Description: "Extract the requested line items (description, quantity, unit, specifications) " +
			"from an RFQ document on disk. Supports PDF, DOCX, XLSX, HTML, Markdown, text and images.",
	}, s.handleExtract)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_result",
		Description: "Fetch the stored extraction result of a previously processed document",
	}, s.handleGetResult)
}

// handleExtract handles the extract_requirements tool invocation.
func (s *Server) handleExtract(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ExtractInput,
) (*mcp.CallToolResult, ResultOutput, error) {
	path := strings.TrimSpace(input.Path)
	if path == "" {
		return nil, ResultOutput{}, fmt.Errorf("%w: path is required", domain.ErrInvalidInput)
	}

	out, err := s.ports.Documents.Process(ctx, path)
	if out == nil || out.Document == nil {
		if err == nil {
			err = errors.New("no document produced")
		}
		return nil, ResultOutput{}, err
	}
	if err != nil && (errors.Is(err, context.Canceled) || errors.Is(err, domain.ErrConfiguration)) {
		return nil, ResultOutput{}, err
	}

	output := s.toOutput(out.Document, out.Result)
	if err != nil {
		output.Error = err.Error()
	}
	return nil, output, nil
}

// handleGetResult handles the get_result tool invocation.
func (s *Server) handleGetResult(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ResultInput,
) (*mcp.CallToolResult, ResultOutput, error) {
	doc, err := s.ports.Documents.Get(ctx, input.DocumentID)
	if err != nil {
		return nil, ResultOutput{}, fmt.Errorf("getting document: %w", err)
	}

	stored, err := s.ports.Documents.GetResult(ctx, input.DocumentID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, s.toOutput(doc, nil), nil
	}
	if err != nil {
		return nil, ResultOutput{}, fmt.Errorf("getting result: %w", err)
	}
	return nil, s.toOutput(doc, &stored.Result), nil
}

func (s *Server) toOutput(doc *domain.Document, result *domain.ExtractionResult) ResultOutput {
	out := ResultOutput{
		DocumentID: doc.ID,
		Name:       doc.Name,
		Status:     string(doc.Status),
		Error:      doc.Error,
		Items:      []ItemOutput{},
	}
	if result == nil {
		return out
	}

	out.ExtractionMethod = result.ExtractionMethod
	out.Confidence = result.Confidence
	out.Accepted = result.Accepted(s.ports.Threshold)
	out.ProcessingTimeMS = result.ProcessingTimeMS

	if req := result.Requirements; req != nil {
		out.CustomerName = req.CustomerName
		out.ProjectName = req.ProjectName
		out.Deadline = req.Deadline
		for _, item := range req.Items {
			out.Items = append(out.Items, ItemOutput{
				Description:    item.Description,
				Quantity:       item.Quantity,
				Unit:           item.Unit,
				Specifications: item.Specifications,
			})
		}
	}

	for _, a := range result.Attempts {
		out.Attempts = append(out.Attempts, AttemptOutput{
			Strategy:   a.Strategy,
			Method:     a.Method,
			Confidence: a.Confidence,
			ItemCount:  a.ItemCount,
			ElapsedMS:  a.Elapsed.Milliseconds(),
			Error:      a.Error,
		})
	}
	return out
}
