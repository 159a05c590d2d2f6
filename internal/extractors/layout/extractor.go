package layout

import (
	"context"
	"strings"

	"github.com/custodia-labs/rfqx/internal/core/domain"
	"github.com/custodia-labs/rfqx/internal/core/ports/driven"
	"github.com/custodia-labs/rfqx/internal/extractors"
	"github.com/custodia-labs/rfqx/internal/extractors/html"
	"github.com/custodia-labs/rfqx/internal/extractors/markdown"
	"github.com/custodia-labs/rfqx/internal/extractors/plaintext"
	"github.com/custodia-labs/rfqx/internal/logger"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Name is the strategy name of the layout parser.
const Name = "layout"

// Extractor is the layout-aware parser.
type Extractor struct{}

// New creates a new layout parser.
func New() *Extractor {
	return &Extractor{}
}

// Name returns the strategy name.
func (e *Extractor) Name() string {
	return Name
}

// Kind returns the cascade tier.
func (e *Extractor) Kind() domain.StrategyKind {
	return domain.KindLayout
}

// SupportedMIMETypes returns every type the pipeline understands.
func (e *Extractor) SupportedMIMETypes() []string {
	types := []string{
		extractors.MIMEPDF,
		extractors.MIMEDOCX,
		extractors.MIMEXLSX,
		extractors.MIMEHTML,
		extractors.MIMEMarkdown,
		extractors.MIMEPlainText,
		extractors.MIMECSV,
	}
	return append(types, extractors.ImageMIMETypes()...)
}

// Priority returns the selection priority.
func (e *Extractor) Priority() int {
	return 10
}

// Extract sniffs the content and dispatches to the matching reader.
func (e *Extractor) Extract(ctx context.Context, file *domain.SourceFile) (_ *driven.Extraction, err error) {
	defer extractors.Recover(Name, &err)

	if file == nil {
		return nil, domain.ErrInvalidInput
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mimeType := contentType(file)
	logger.Debug("layout dispatch", "declared", file.MIMEType, "detected", mimeType)

	var text string
	pages := 0
	switch mimeType {
	case extractors.MIMEPDF:
		text, pages, err = pdfText(ctx, file.Content)
	case extractors.MIMEDOCX:
		text, err = docxText(file.Content)
	case extractors.MIMEXLSX:
		text, pages, err = xlsxText(file.Content)
	case extractors.MIMEHTML:
		text, err = html.ToText(file.Content)
	case extractors.MIMEMarkdown:
		text = markdown.ToText(plaintext.Decode(file.Content))
	case extractors.MIMECSV:
		text, err = plaintext.CSVToText(file.Content)
	case extractors.MIMEPlainText:
		text = plaintext.ToText(file.Content)
	default:
		return &driven.Extraction{Method: domain.MethodLayout}, nil
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, extractors.Failed(Name, err)
	}

	return &driven.Extraction{Text: text, Method: domain.MethodLayout, Pages: pages}, nil
}

// contentType sniffs the content. Text formats that sniffing cannot tell
// apart keep their declared type, as do archives sniffing cannot resolve.
func contentType(file *domain.SourceFile) string {
	declared := extractors.Canonical(file.MIMEType)
	sniffed := extractors.SniffMIME(file.Content)

	switch {
	case sniffed == extractors.MIMEOctet || sniffed == "application/zip":
		return declared
	case sniffed == extractors.MIMEPlainText && strings.HasPrefix(declared, "text/"):
		return declared
	default:
		return sniffed
	}
}
