package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/rfqx/internal/core/domain"
	"github.com/custodia-labs/rfqx/internal/core/ports/driven"
	"github.com/custodia-labs/rfqx/internal/core/ports/driving"
	"github.com/custodia-labs/rfqx/internal/extractors"
	"github.com/custodia-labs/rfqx/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService reads files, runs the cascade and tracks results.
type DocumentService struct {
	extractor driving.ExtractionService
	store     driven.ResultStore
	cfg       domain.ExtractionConfig

	newID func() string
	now   func() time.Time
}

// NewDocumentService creates a new document service. Every Process call
// uses cfg as its cascade parameters.
func NewDocumentService(
	extractor driving.ExtractionService,
	store driven.ResultStore,
	cfg domain.ExtractionConfig,
) *DocumentService {
	return &DocumentService{
		extractor: extractor,
		store:     store,
		cfg:       cfg,
		newID:     uuid.NewString,
		now:       time.Now,
	}
}

// Process extracts requirements from the file at path and stores the result.
//
// The document and its result are written together once the cascade has
// returned. A cancelled run writes nothing and returns the context error.
func (s *DocumentService) Process(ctx context.Context, path string) (*driving.ProcessOutcome, error) {
	out := &driving.ProcessOutcome{Path: path}
	if err := ctx.Err(); err != nil {
		out.Err = err
		return out, err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		out.Err = fmt.Errorf("%w: read %s: %w", domain.ErrInvalidInput, path, err)
		return out, out.Err
	}

	name := filepath.Base(path)
	now := s.now()
	doc := &domain.Document{
		ID:        s.newID(),
		Name:      name,
		Path:      path,
		MIMEType:  extractors.DetectMIME(name, content),
		Size:      int64(len(content)),
		Status:    domain.DocumentProcessing,
		CreatedAt: now,
		UpdatedAt: now,
	}
	out.Document = doc

	logger.Debug("document processing", "id", doc.ID, "name", doc.Name, "mime", doc.MIMEType, "size", doc.Size)

	result, err := s.extractor.Extract(ctx, &domain.SourceFile{
		Name:     name,
		MIMEType: doc.MIMEType,
		Content:  content,
	}, s.cfg)
	if ctxErr := ctx.Err(); ctxErr != nil {
		out.Err = ctxErr
		return out, ctxErr
	}
	if err != nil {
		s.saveFailed(ctx, doc, err)
		out.Err = err
		return out, err
	}

	doc.Status = domain.DocumentCompleted
	doc.UpdatedAt = s.now()
	stored := &domain.StoredResult{DocumentID: doc.ID, Result: *result, CreatedAt: doc.UpdatedAt}
	if err := s.store.SaveOutcome(ctx, doc, stored); err != nil {
		err = fmt.Errorf("save result: %w", err)
		s.saveFailed(ctx, doc, err)
		out.Err = err
		return out, err
	}

	out.Result = result
	return out, nil
}

// saveFailed records doc with status error and cause as its message.
func (s *DocumentService) saveFailed(ctx context.Context, doc *domain.Document, cause error) {
	doc.Status = domain.DocumentError
	doc.Error = cause.Error()
	doc.UpdatedAt = s.now()
	if err := s.store.SaveOutcome(ctx, doc, nil); err != nil {
		logger.Warn("failed to record document error", "id", doc.ID, "error", err)
	}
	logger.Error("document failed", "id", doc.ID, "name", doc.Name, "error", cause)
}

// ProcessBatch processes paths concurrently with at most workers in flight.
// Outcomes keep the order of paths. Per-file failures are reported on the
// outcomes; only cancellation is returned.
func (s *DocumentService) ProcessBatch(ctx context.Context, paths []string, workers int) ([]driving.ProcessOutcome, error) {
	if workers <= 0 {
		workers = 1
	}

	outcomes := make([]driving.ProcessOutcome, len(paths))
	var g errgroup.Group
	g.SetLimit(workers)

	for i, path := range paths {
		g.Go(func() error {
			out, _ := s.Process(ctx, path)
			outcomes[i] = *out
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return outcomes, err
	}
	return outcomes, nil
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, documentID string) (*domain.Document, error) {
	return s.store.GetDocument(ctx, documentID)
}

// GetResult retrieves the stored extraction result of a document.
func (s *DocumentService) GetResult(ctx context.Context, documentID string) (*domain.StoredResult, error) {
	if _, err := s.store.GetDocument(ctx, documentID); err != nil {
		return nil, err
	}
	return s.store.GetResult(ctx, documentID)
}

// List returns all tracked documents.
func (s *DocumentService) List(ctx context.Context) ([]domain.Document, error) {
	return s.store.ListDocuments(ctx)
}

// IsHardFailure reports whether an outcome error is something other than
// cancellation.
func IsHardFailure(err error) bool {
	return err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}
