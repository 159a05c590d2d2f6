package html

import (
	"bytes"
	"context"
	"fmt"
	stdhtml "html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/custodia-labs/rfqx/internal/core/domain"
	"github.com/custodia-labs/rfqx/internal/core/ports/driven"
	"github.com/custodia-labs/rfqx/internal/extractors"
	"github.com/custodia-labs/rfqx/internal/normtext"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Name is the strategy name of the HTML extractor.
const Name = "html"

// Extractor handles HTML documents.
type Extractor struct{}

// New creates a new HTML extractor.
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
	return []string{extractors.MIMEHTML, "application/xhtml+xml"}
}

// Priority returns the selection priority.
func (e *Extractor) Priority() int {
	return 50
}

// Extract converts the page to normalised text.
func (e *Extractor) Extract(ctx context.Context, file *domain.SourceFile) (_ *driven.Extraction, err error) {
	defer extractors.Recover(Name, &err)

	if file == nil {
		return nil, domain.ErrInvalidInput
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	text, err := ToText(file.Content)
	if err != nil {
		return nil, extractors.Failed(Name, err)
	}
	return &driven.Extraction{Text: text, Method: domain.MethodHTML}, nil
}

// ToText converts an HTML page to normalised text. Outermost tables become
// table blocks at their position in the page; nested tables are flattened
// into their cell.
func ToText(content []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	doc.Find("script, style, noscript, svg, head").Remove()

	placeholders := make(map[string]normtext.Table)
	doc.Find("table").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return s.ParentsFiltered("table").Length() == 0
	}).Each(func(i int, s *goquery.Selection) {
		key := fmt.Sprintf("RFQXTABLE%dEND", i)
		placeholders[key] = readTable(s)
		s.ReplaceWithHtml("<p>" + key + "</p>")
	})

	page, err := doc.Html()
	if err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}

	var b normtext.Builder
	for _, line := range strings.Split(stripHTML(page), "\n") {
		if t, ok := placeholders[strings.TrimSpace(line)]; ok {
			b.Table(t)
			continue
		}
		b.Line(line)
	}
	return b.String(), nil
}

// readTable collects the rows belonging directly to table, skipping rows of
// nested tables.
func readTable(table *goquery.Selection) normtext.Table {
	var t normtext.Table
	table.Find("tr").FilterFunction(func(_ int, row *goquery.Selection) bool {
		return row.Closest("table").IsSelection(table)
	}).Each(func(_ int, row *goquery.Selection) {
		var cells []string
		row.ChildrenFiltered("th, td").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, cellText(cell))
		})
		if len(cells) > 0 {
			t.Rows = append(t.Rows, cells)
		}
	})
	return t
}

// cellText returns the text of a cell with block and cell boundaries inside
// it turned into spaces.
func cellText(cell *goquery.Selection) string {
	cell.Find("td, th, p, div, li, br").Each(func(_ int, s *goquery.Selection) {
		s.AfterHtml(" ")
	})
	return strings.Join(strings.Fields(cell.Text()), " ")
}

var (
	htmlComments      = regexp.MustCompile(`(?s)<!--.*?-->`)
	blockElements     = regexp.MustCompile(`(?i)</(p|div|br|hr|h[1-6]|li|tr|blockquote|pre|table|section|article)>`)
	openBlockElements = regexp.MustCompile(`(?i)<(p|div|h[1-6]|li|tr|blockquote|pre|table|section|article)[^>]*>`)
	brTags            = regexp.MustCompile(`(?i)<br\s*/?>`)
	hrTags            = regexp.MustCompile(`(?i)<hr\s*/?>`)
	allTags           = regexp.MustCompile(`<[^>]+>`)
	multiSpaces       = regexp.MustCompile(`[ \t]+`)
)

// stripHTML removes tags and returns one trimmed line per block element.
func stripHTML(content string) string {
	content = htmlComments.ReplaceAllString(content, "")
	content = openBlockElements.ReplaceAllString(content, "\n")
	content = blockElements.ReplaceAllString(content, "\n")
	content = brTags.ReplaceAllString(content, "\n")
	content = hrTags.ReplaceAllString(content, "\n")
	content = allTags.ReplaceAllString(content, "")
	content = stdhtml.UnescapeString(content)
	content = strings.ReplaceAll(content, "\u00a0", " ")
	content = multiSpaces.ReplaceAllString(content, " ")

	lines := strings.Split(content, "\n")
	result := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			result = append(result, line)
		}
	}
	return strings.Join(result, "\n")
}
