package driving

import (
	"context"

	"github.com/custodia-labs/rfqx/internal/core/domain"
)

// DocumentService processes files on disk and tracks their results.
type DocumentService interface {
	// Process extracts requirements from the file at path and stores the result.
	Process(ctx context.Context, path string) (*ProcessOutcome, error)

	// ProcessBatch processes paths concurrently with at most workers in flight.
	// Per-file failures are reported on the outcomes, not returned.
	ProcessBatch(ctx context.Context, paths []string, workers int) ([]ProcessOutcome, error)

	// Get retrieves a document by ID.
	Get(ctx context.Context, documentID string) (*domain.Document, error)

	// GetResult retrieves the stored extraction result of a document.
	GetResult(ctx context.Context, documentID string) (*domain.StoredResult, error)

	// List returns all tracked documents.
	List(ctx context.Context) ([]domain.Document, error)
}

// ProcessOutcome pairs a processed document with its result.
type ProcessOutcome struct {
	// Path is the input file path.
	Path string

	// Document is the tracked document, nil if the file could not be read.
	Document *domain.Document

	// Result is the extraction result, nil on error.
	Result *domain.ExtractionResult

	// Err is the failure for this file, if any.
	Err error
}
