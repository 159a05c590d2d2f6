package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/rfqx/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/rfqx/internal/core/domain"
	"github.com/custodia-labs/rfqx/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.ResultStore = (*Store)(nil)

// dbFileName is the database file inside the data directory.
const dbFileName = "results.db"

// Store is a SQLite-backed result store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.rfqx/data/results.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".rfqx", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFileName)
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations, each in its own transaction.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_initial.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if err := s.applyMigration(version, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

func (s *Store) applyMigration(version int, content string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(content); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		return err
	}
	return tx.Commit()
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// ==================== Documents ====================

// SaveDocument stores or updates a document.
func (s *Store) SaveDocument(ctx context.Context, doc *domain.Document) error {
	return saveDocument(ctx, s.db, doc)
}

func saveDocument(ctx context.Context, db execer, doc *domain.Document) error {
	if doc == nil || doc.ID == "" {
		return fmt.Errorf("%w: document id is required", domain.ErrInvalidInput)
	}

	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = now
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO documents (id, name, path, mime_type, size, status, error, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			path = excluded.path,
			mime_type = excluded.mime_type,
			size = excluded.size,
			status = excluded.status,
			error = excluded.error,
			updated_at = excluded.updated_at
	`, doc.ID, doc.Name, doc.Path, doc.MIMEType, doc.Size, string(doc.Status), doc.Error,
		doc.CreatedAt, doc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

// GetDocument retrieves a document by ID.
func (s *Store) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, path, mime_type, size, status, error, created_at, updated_at
		FROM documents WHERE id = ?
	`, id)

	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return doc, err
}

// ListDocuments returns all documents, newest first.
func (s *Store) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, path, mime_type, size, status, error, created_at, updated_at
		FROM documents ORDER BY created_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document //nolint:prealloc // size unknown from query
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	return docs, nil
}

// UpdateStatus sets the status and error message of a document.
func (s *Store) UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMsg string) error {
	if !status.IsValid() {
		return fmt.Errorf("%w: status %q", domain.ErrInvalidInput, status)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE documents SET status = ?, error = ?, updated_at = ? WHERE id = ?
	`, string(status), errMsg, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("updating document status: %w", err)
	}
	return requireAffected(res)
}

// ==================== Results ====================

// SaveResult stores the winning extraction result for a document.
func (s *Store) SaveResult(ctx context.Context, result *domain.StoredResult) error {
	return saveResult(ctx, s.db, result)
}

// SaveOutcome stores doc and, when non-nil, result in one transaction.
func (s *Store) SaveOutcome(ctx context.Context, doc *domain.Document, result *domain.StoredResult) error {
	if result != nil && doc != nil && result.DocumentID != doc.ID {
		return fmt.Errorf("%w: result belongs to document %q", domain.ErrInvalidInput, result.DocumentID)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := saveDocument(ctx, tx, doc); err != nil {
		return err
	}
	if result != nil {
		if err := saveResult(ctx, tx, result); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func saveResult(ctx context.Context, db execer, result *domain.StoredResult) error {
	if result == nil || result.DocumentID == "" {
		return fmt.Errorf("%w: document id is required", domain.ErrInvalidInput)
	}

	reqs := result.Result.Requirements
	if reqs == nil {
		reqs = domain.NewRequirementSet()
	}
	reqJSON, err := json.Marshal(reqs)
	if err != nil {
		return fmt.Errorf("marshalling requirements: %w", err)
	}
	attempts := result.Result.Attempts
	if attempts == nil {
		attempts = []domain.ExtractionAttempt{}
	}
	attemptsJSON, err := json.Marshal(attempts)
	if err != nil {
		return fmt.Errorf("marshalling attempts: %w", err)
	}

	createdAt := result.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO extraction_results
			(document_id, extraction_method, confidence, processing_time_ms, full_text_length,
			 requirements, attempts, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(document_id) DO UPDATE SET
			extraction_method = excluded.extraction_method,
			confidence = excluded.confidence,
			processing_time_ms = excluded.processing_time_ms,
			full_text_length = excluded.full_text_length,
			requirements = excluded.requirements,
			attempts = excluded.attempts,
			created_at = excluded.created_at
	`, result.DocumentID, result.Result.ExtractionMethod, result.Result.Confidence,
		result.Result.ProcessingTimeMS, result.Result.FullTextLength,
		string(reqJSON), string(attemptsJSON), createdAt)
	if err != nil {
		if strings.Contains(err.Error(), "FOREIGN KEY") {
			return fmt.Errorf("saving result: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("saving result: %w", err)
	}
	return nil
}

// GetResult retrieves the stored result of a document.
func (s *Store) GetResult(ctx context.Context, documentID string) (*domain.StoredResult, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT document_id, extraction_method, confidence, processing_time_ms, full_text_length,
			requirements, attempts, created_at
		FROM extraction_results WHERE document_id = ?
	`, documentID)

	var stored domain.StoredResult
	var reqJSON, attemptsJSON string
	err := row.Scan(&stored.DocumentID, &stored.Result.ExtractionMethod, &stored.Result.Confidence,
		&stored.Result.ProcessingTimeMS, &stored.Result.FullTextLength,
		&reqJSON, &attemptsJSON, &stored.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning result: %w", err)
	}

	reqs := domain.NewRequirementSet()
	if err := json.Unmarshal([]byte(reqJSON), reqs); err != nil {
		return nil, fmt.Errorf("unmarshalling requirements: %w", err)
	}
	if reqs.Items == nil {
		reqs.Items = []domain.LineItem{}
	}
	stored.Result.Requirements = reqs

	if attemptsJSON != "" {
		if err := json.Unmarshal([]byte(attemptsJSON), &stored.Result.Attempts); err != nil {
			return nil, fmt.Errorf("unmarshalling attempts: %w", err)
		}
	}

	return &stored, nil
}

// ==================== Helpers ====================

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*domain.Document, error) {
	var doc domain.Document
	var status string

	if err := row.Scan(&doc.ID, &doc.Name, &doc.Path, &doc.MIMEType, &doc.Size,
		&status, &doc.Error, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}
	doc.Status = domain.DocumentStatus(status)

	return &doc, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
