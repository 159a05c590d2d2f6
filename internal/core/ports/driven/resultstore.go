package driven

import (
	"context"

	"github.com/custodia-labs/rfqx/internal/core/domain"
)

// ResultStore persists documents and their extraction results.
type ResultStore interface {
	// SaveDocument creates or updates a document.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// GetDocument retrieves a document by ID.
	// Returns domain.ErrNotFound if it does not exist.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// ListDocuments returns all documents, newest first.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// UpdateStatus sets the status and error message of a document.
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMsg string) error

	// SaveResult stores the winning extraction result for a document,
	// replacing any previous one.
	SaveResult(ctx context.Context, result *domain.StoredResult) error

	// SaveOutcome stores a processed document and, when result is non-nil,
	// its result as one unit. Nothing is written when either write fails.
	SaveOutcome(ctx context.Context, doc *domain.Document, result *domain.StoredResult) error

	// GetResult retrieves the stored result of a document.
	// Returns domain.ErrNotFound if none exists.
	GetResult(ctx context.Context, documentID string) (*domain.StoredResult, error)

	// Close releases resources.
	Close() error
}
