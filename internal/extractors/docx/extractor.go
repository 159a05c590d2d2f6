package docx

import (
	"context"

	"github.com/custodia-labs/rfqx/internal/core/domain"
	"github.com/custodia-labs/rfqx/internal/core/ports/driven"
	"github.com/custodia-labs/rfqx/internal/extractors"
	"github.com/custodia-labs/rfqx/internal/normtext"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Name is the strategy name of the DOCX extractor.
const Name = "docx"

// Extractor handles DOCX documents.
type Extractor struct{}

// New creates a new DOCX extractor.
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
	return []string{extractors.MIMEDOCX}
}

// Priority returns the selection priority.
func (e *Extractor) Priority() int {
	return 50
}

// Extract converts paragraphs to lines and tables to table blocks, with the
// first row of each table as its headers.
func (e *Extractor) Extract(ctx context.Context, file *domain.SourceFile) (_ *driven.Extraction, err error) {
	defer extractors.Recover(Name, &err)

	if file == nil {
		return nil, domain.ErrInvalidInput
	}

	doc, err := Parse(file.Content)
	if err != nil {
		return nil, extractors.Failed(Name, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var b normtext.Builder
	for _, block := range doc.Blocks {
		if block.Table == nil {
			b.Line(block.Paragraph)
			continue
		}
		b.Table(normtext.Table{Rows: block.Table.Texts()})
	}

	return &driven.Extraction{
		Text:   b.String(),
		Method: domain.MethodDOCX,
	}, nil
}
