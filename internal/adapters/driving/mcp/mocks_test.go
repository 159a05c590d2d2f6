package mcp

import (
	"context"

	"github.com/custodia-labs/rfqx/internal/core/domain"
	"github.com/custodia-labs/rfqx/internal/core/ports/driving"
)

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	outcome   *driving.ProcessOutcome
	documents []domain.Document
	document  *domain.Document
	result    *domain.StoredResult
	err       error
	resultErr error

	processed []string
}

func (m *mockDocumentService) Process(_ context.Context, path string) (*driving.ProcessOutcome, error) {
	m.processed = append(m.processed, path)
	return m.outcome, m.err
}

func (m *mockDocumentService) ProcessBatch(
	_ context.Context,
	_ []string,
	_ int,
) ([]driving.ProcessOutcome, error) {
	return nil, m.err
}

func (m *mockDocumentService) Get(_ context.Context, _ string) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockDocumentService) GetResult(_ context.Context, _ string) (*domain.StoredResult, error) {
	if m.resultErr != nil {
		return nil, m.resultErr
	}
	return m.result, m.err
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.Document, error) {
	return m.documents, m.err
}

func qty(v float64) *float64 { return &v }

func sampleResult() *domain.ExtractionResult {
	return &domain.ExtractionResult{
		Requirements: &domain.RequirementSet{
			CustomerName: "Acme",
			Items: []domain.LineItem{
				{Description: "Steel bolt M8", Quantity: qty(200), Unit: "pcs"},
			},
		},
		ExtractionMethod: domain.MethodDOCX,
		Confidence:       0.9,
		ProcessingTimeMS: 12,
		Attempts: []domain.ExtractionAttempt{
			{Strategy: "docx", Method: domain.MethodDOCX, Confidence: 0.9, ItemCount: 1},
		},
	}
}

func sampleDocument() *domain.Document {
	return &domain.Document{ID: "doc-1", Name: "rfq.docx", Status: domain.DocumentCompleted}
}
