package pdf

import (
	"bytes"
	"context"

	lpdf "github.com/ledongthuc/pdf"

	"github.com/custodia-labs/rfqx/internal/core/domain"
	"github.com/custodia-labs/rfqx/internal/core/ports/driven"
	"github.com/custodia-labs/rfqx/internal/extractors"
	"github.com/custodia-labs/rfqx/internal/normtext"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Name is the strategy name of the PDF extractor.
const Name = "pdf"

// Page holds the words read from one PDF page.
type Page struct {
	// Number is the 1-based page number.
	Number int

	// Words are the positioned words on the page.
	Words []Word

	// Plain is the unpositioned page text, set only when no words were found.
	Plain string
}

// Extractor reads text-layer PDFs.
type Extractor struct{}

// New creates a new PDF extractor.
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
	return []string{extractors.MIMEPDF}
}

// Priority returns the selection priority.
func (e *Extractor) Priority() int {
	return 50
}

// Extract reads every page in order. Tables whose columns line up exactly
// are emitted as table blocks where they appear on the page.
func (e *Extractor) Extract(ctx context.Context, file *domain.SourceFile) (_ *driven.Extraction, err error) {
	defer extractors.Recover(Name, &err)

	if file == nil {
		return nil, domain.ErrInvalidInput
	}

	pages, err := ReadPages(file.Content)
	if err != nil {
		return nil, extractors.Failed(Name, err)
	}

	var b normtext.Builder
	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		b.Line("")
		if len(page.Words) == 0 {
			b.Line(page.Plain)
			continue
		}
		for _, block := range DetectBlocks(GroupLines(page.Words), Strict) {
			block.WriteTo(&b)
		}
	}

	return &driven.Extraction{
		Text:   b.String(),
		Method: domain.MethodPDF,
		Pages:  len(pages),
	}, nil
}

// ReadPages reads the positioned words of every page.
// Pages without positioned glyphs fall back to their plain text.
func ReadPages(content []byte) ([]Page, error) {
	r, err := lpdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, err
	}

	n := r.NumPage()
	pages := make([]Page, 0, n)
	for i := 1; i <= n; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}

		page := Page{Number: i, Words: Words(p.Content().Text)}
		if len(page.Words) == 0 {
			if plain, err := p.GetPlainText(nil); err == nil {
				page.Plain = plain
			}
		}
		pages = append(pages, page)
	}
	return pages, nil
}

// PageCount returns the number of pages in a PDF.
func PageCount(content []byte) (n int, err error) {
	defer extractors.Recover(Name, &err)

	r, err := lpdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return 0, extractors.Failed(Name, err)
	}
	return r.NumPage(), nil
}
