package plaintext

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/rfqx/internal/core/domain"
	"github.com/custodia-labs/rfqx/internal/core/ports/driven"
	"github.com/custodia-labs/rfqx/internal/extractors"
	"github.com/custodia-labs/rfqx/internal/normtext"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Name is the strategy name of the plain text extractor.
const Name = "plaintext"

// Extractor handles plain text and CSV documents.
type Extractor struct{}

// New creates a new plain text extractor.
func New() *Extractor {
	return &Extractor{}
}

// Name returns the strategy name.
func (e *Extractor) Name() string {
	return Name
}

// Kind returns the cascade tier.
func (e *Extractor) Kind() domain.StrategyKind {
	return domain.KindFormat
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{extractors.MIMEPlainText, extractors.MIMECSV, "text/tab-separated-values"}
}

// Priority returns the selection priority.
func (e *Extractor) Priority() int {
	return 5
}

// Extract converts CSV to a single table block and passes plain text
// through with whitespace normalised.
func (e *Extractor) Extract(ctx context.Context, file *domain.SourceFile) (*driven.Extraction, error) {
	if file == nil {
		return nil, domain.ErrInvalidInput
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch extractors.Canonical(file.MIMEType) {
	case extractors.MIMECSV, "text/tab-separated-values":
		text, err := CSVToText(file.Content)
		if err != nil {
			return nil, extractors.Failed(Name, err)
		}
		return &driven.Extraction{Text: text, Method: domain.MethodPlainText}, nil
	default:
		return &driven.Extraction{Text: ToText(file.Content), Method: domain.MethodPlainText}, nil
	}
}

// ToText decodes content as UTF-8, replacing invalid sequences, and
// collapses runs of spaces and tabs on each line.
func ToText(content []byte) string {
	s := Decode(content)

	var b normtext.Builder
	for _, line := range strings.Split(s, "\n") {
		b.Line(strings.Join(strings.Fields(line), " "))
	}
	return b.String()
}

// Decode returns content as valid UTF-8 with a leading byte order mark
// removed and line endings unified.
func Decode(content []byte) string {
	content = bytes.TrimPrefix(content, []byte("\xef\xbb\xbf"))
	s := string(content)
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "�")
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// CSVToText converts delimited text to one table block. The delimiter is
// guessed from the first line: tab, semicolon or comma.
func CSVToText(content []byte) (string, error) {
	s := Decode(content)

	r := csv.NewReader(strings.NewReader(s))
	r.Comma = guessDelimiter(s)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = r.Comma != '\t'

	var t normtext.Table
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("read csv: %w", err)
		}
		if blank(record) {
			continue
		}
		t.Rows = append(t.Rows, record)
	}

	var b normtext.Builder
	b.Table(t)
	return b.String(), nil
}

func guessDelimiter(s string) rune {
	first, _, _ := strings.Cut(s, "\n")
	best, bestCount := ',', strings.Count(first, ",")
	for _, d := range []rune{';', '\t'} {
		if n := strings.Count(first, string(d)); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

func blank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
