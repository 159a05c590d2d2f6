package xlsx

import (
	"context"

	"github.com/custodia-labs/rfqx/internal/core/domain"
	"github.com/custodia-labs/rfqx/internal/core/ports/driven"
	"github.com/custodia-labs/rfqx/internal/extractors"
	"github.com/custodia-labs/rfqx/internal/normtext"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Name is the strategy name of the XLSX extractor.
const Name = "xlsx"

// Extractor handles Excel workbooks.
type Extractor struct{}

// New creates a new XLSX extractor.
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
	return []string{extractors.MIMEXLSX}
}

// Priority returns the selection priority.
func (e *Extractor) Priority() int {
	return 50
}

// Extract emits one table block per non-empty sheet. The first non-blank
// row is the header and every later non-blank row becomes a ROW.
func (e *Extractor) Extract(ctx context.Context, file *domain.SourceFile) (_ *driven.Extraction, err error) {
	defer extractors.Recover(Name, &err)

	if file == nil {
		return nil, domain.ErrInvalidInput
	}

	sheets, err := ReadSheets(file.Content)
	if err != nil {
		return nil, extractors.Failed(Name, err)
	}

	var b normtext.Builder
	for _, sheet := range sheets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if sheet.IsEmpty() {
			continue
		}

		var rows [][]string
		for _, row := range sheet.Rows {
			if !BlankRow(row) {
				rows = append(rows, row)
			}
		}

		headers := make([]string, Width(rows))
		copy(headers, rows[0])

		b.Line("")
		b.Line("Sheet: " + sheet.Name)
		b.Table(normtext.Table{Headers: headers, Rows: rows[1:]})
	}

	return &driven.Extraction{
		Text:   b.String(),
		Method: domain.MethodXLSX,
		Pages:  len(sheets),
	}, nil
}
