package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/rfqx/internal/core/domain"
	"github.com/custodia-labs/rfqx/internal/core/ports/driven"
)

// Ensure ResultStore implements the interface.
var _ driven.ResultStore = (*ResultStore)(nil)

// ResultStore is an in-memory driven.ResultStore.
// Stored values are copied so callers cannot mutate store state.
type ResultStore struct {
	mu        sync.RWMutex
	documents map[string]domain.Document
	results   map[string]domain.StoredResult
}

// NewResultStore creates a new in-memory result store.
func NewResultStore() *ResultStore {
	return &ResultStore{
		documents: make(map[string]domain.Document),
		results:   make(map[string]domain.StoredResult),
	}
}

// SaveDocument creates or updates a document.
func (s *ResultStore) SaveDocument(_ context.Context, doc *domain.Document) error {
	if doc == nil || doc.ID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[doc.ID] = *doc
	return nil
}

// GetDocument retrieves a document by ID.
func (s *ResultStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// ListDocuments returns all documents, newest first.
func (s *ResultStore) ListDocuments(_ context.Context) ([]domain.Document, error) {
	s.mu.RLock()
	docs := make([]domain.Document, 0, len(s.documents))
	for _, doc := range s.documents {
		docs = append(docs, doc)
	}
	s.mu.RUnlock()

	sort.Slice(docs, func(i, j int) bool {
		if docs[i].CreatedAt.Equal(docs[j].CreatedAt) {
			return docs[i].ID < docs[j].ID
		}
		return docs[i].CreatedAt.After(docs[j].CreatedAt)
	})
	return docs, nil
}

// UpdateStatus sets the status and error message of a document.
func (s *ResultStore) UpdateStatus(_ context.Context, id string, status domain.DocumentStatus, errMsg string) error {
	if !status.IsValid() {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.documents[id]
	if !ok {
		return domain.ErrNotFound
	}
	doc.Status = status
	doc.Error = errMsg
	s.documents[id] = doc
	return nil
}

// SaveResult stores the result for a document.
func (s *ResultStore) SaveResult(_ context.Context, result *domain.StoredResult) error {
	if result == nil || result.DocumentID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[result.DocumentID]; !ok {
		return domain.ErrNotFound
	}
	stored := *result
	stored.Result.Requirements = result.Result.Requirements.Clone()
	s.results[result.DocumentID] = stored
	return nil
}

// SaveOutcome stores doc and, when non-nil, result together.
func (s *ResultStore) SaveOutcome(_ context.Context, doc *domain.Document, result *domain.StoredResult) error {
	if doc == nil || doc.ID == "" {
		return domain.ErrInvalidInput
	}
	if result != nil && result.DocumentID != doc.ID {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[doc.ID] = *doc
	if result != nil {
		stored := *result
		stored.Result.Requirements = result.Result.Requirements.Clone()
		s.results[doc.ID] = stored
	}
	return nil
}

// GetResult retrieves the stored result of a document.
func (s *ResultStore) GetResult(_ context.Context, documentID string) (*domain.StoredResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result, ok := s.results[documentID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	result.Result.Requirements = result.Result.Requirements.Clone()
	return &result, nil
}

// Close is a no-op.
func (s *ResultStore) Close() error {
	return nil
}
