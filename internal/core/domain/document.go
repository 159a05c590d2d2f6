package domain

import "time"

// DocumentStatus is the processing state of an uploaded document.
type DocumentStatus string

// Document statuses.
const (
	// DocumentPending means the document is known but not yet processed.
	DocumentPending DocumentStatus = "pending"

	// DocumentProcessing means a cascade is running for the document.
	DocumentProcessing DocumentStatus = "processing"

	// DocumentCompleted means a result has been stored.
	DocumentCompleted DocumentStatus = "completed"

	// DocumentError means processing stopped on a hard error.
	DocumentError DocumentStatus = "error"
)

// IsValid returns true if the status is recognised.
func (s DocumentStatus) IsValid() bool {
	switch s {
	case DocumentPending, DocumentProcessing, DocumentCompleted, DocumentError:
		return true
	default:
		return false
	}
}

// IsTerminal returns true once no further transition is expected.
func (s DocumentStatus) IsTerminal() bool {
	return s == DocumentCompleted || s == DocumentError
}

// String returns the string representation.
func (s DocumentStatus) String() string {
	return string(s)
}

// Document represents an uploaded file tracked through extraction.
// The extraction core only mutates Status and the attached result.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Name is the original file name.
	Name string

	// Path is where the file was read from, if it came from disk.
	Path string

	// MIMEType is the declared or detected content type.
	MIMEType string

	// Size is the file size in bytes.
	Size int64

	// Status is the current processing state.
	Status DocumentStatus

	// Error holds the failure message when Status is DocumentError.
	Error string

	// CreatedAt is when the document was first registered.
	CreatedAt time.Time

	// UpdatedAt is when the document last changed state.
	UpdatedAt time.Time
}

// SourceFile is the unit of input for the extraction core.
// Processing is a pure function of a SourceFile and an ExtractionConfig.
type SourceFile struct {
	// Name is the file name, used for extension-based hints.
	Name string

	// MIMEType is the content type (e.g., "application/pdf").
	MIMEType string

	// Content is the raw bytes.
	Content []byte
}

// Size returns the content length in bytes.
func (f *SourceFile) Size() int {
	if f == nil {
		return 0
	}
	return len(f.Content)
}
