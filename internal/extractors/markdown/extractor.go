package markdown

import (
	"context"
	"regexp"
	"strings"

	"github.com/custodia-labs/rfqx/internal/core/domain"
	"github.com/custodia-labs/rfqx/internal/core/ports/driven"
	"github.com/custodia-labs/rfqx/internal/extractors"
	"github.com/custodia-labs/rfqx/internal/normtext"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Name is the strategy name of the Markdown extractor.
const Name = "markdown"

// Extractor handles Markdown documents.
type Extractor struct{}

// New creates a new Markdown extractor.
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
	return []string{extractors.MIMEMarkdown, "text/x-markdown"}
}

// Priority returns the selection priority.
func (e *Extractor) Priority() int {
	return 50
}

// Extract converts the document to normalised text.
func (e *Extractor) Extract(ctx context.Context, file *domain.SourceFile) (*driven.Extraction, error) {
	if file == nil {
		return nil, domain.ErrInvalidInput
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &driven.Extraction{Text: ToText(string(file.Content)), Method: domain.MethodMarkdown}, nil
}

// delimiterRow matches the separator line under a pipe table header,
// e.g. "|---|:---:|".
var delimiterRow = regexp.MustCompile(`^\s*\|?\s*:?-{3,}:?\s*(\|\s*:?-{3,}:?\s*)*\|?\s*$`)

// ToText converts Markdown to normalised text. Pipe tables become table
// blocks and the prose between them is stripped of formatting.
func ToText(content string) string {
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")

	var b normtext.Builder
	var prose []string
	flush := func() {
		if len(prose) > 0 {
			b.Line(stripMarkdown(strings.Join(prose, "\n")))
			prose = nil
		}
	}

	for i := 0; i < len(lines); i++ {
		if i+1 < len(lines) && strings.Contains(lines[i], "|") && delimiterRow.MatchString(lines[i+1]) {
			flush()
			t := normtext.Table{Headers: splitRow(lines[i])}
			i += 2
			for ; i < len(lines) && strings.Contains(lines[i], "|"); i++ {
				t.Rows = append(t.Rows, splitRow(lines[i]))
			}
			b.Table(t)
			i--
			continue
		}
		prose = append(prose, lines[i])
	}
	flush()
	return b.String()
}

// splitRow splits a pipe table row, honouring escaped pipes.
func splitRow(line string) []string {
	line = strings.TrimSpace(line)
	line = strings.TrimPrefix(line, "|")
	line = strings.TrimSuffix(line, "|")

	const escaped = "\x00"
	line = strings.ReplaceAll(line, `\|`, escaped)
	cells := strings.Split(line, "|")
	for i, c := range cells {
		cells[i] = stripInline(strings.TrimSpace(strings.ReplaceAll(c, escaped, "|")))
	}
	return cells
}

var (
	codeBlock     = regexp.MustCompile("(?s)```.*?```")
	inlineCode    = regexp.MustCompile("`([^`]+)`")
	images        = regexp.MustCompile(`!\[[^\]]*\]\([^)]+\)`)
	links         = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	headings      = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	blockquote    = regexp.MustCompile(`(?m)^>\s*`)
	hr            = regexp.MustCompile(`(?m)^[-*_]{3,}\s*$`)
	listMarkers   = regexp.MustCompile(`(?m)^\s*[-*+]\s+`)
	numberedList  = regexp.MustCompile(`(?m)^\s*\d+\.\s+`)
	emphasis      = regexp.MustCompile(`(\*\*|__)(.+?)(\*\*|__)|\*([^*\s][^*]*)\*`)
	multiNewlines = regexp.MustCompile(`\n{3,}`)
)

// stripMarkdown removes common Markdown formatting from prose.
func stripMarkdown(content string) string {
	content = codeBlock.ReplaceAllString(content, "")
	content = images.ReplaceAllString(content, "")
	content = headings.ReplaceAllString(content, "")
	content = blockquote.ReplaceAllString(content, "")
	content = hr.ReplaceAllString(content, "")
	content = listMarkers.ReplaceAllString(content, "")
	content = numberedList.ReplaceAllString(content, "")
	content = stripInline(content)
	content = multiNewlines.ReplaceAllString(content, "\n\n")
	return strings.TrimSpace(content)
}

// stripInline removes inline formatting. Underscores and asterisks inside
// words are kept so part numbers such as "AB_12" survive.
func stripInline(s string) string {
	s = inlineCode.ReplaceAllString(s, "$1")
	s = links.ReplaceAllString(s, "$1")
	return emphasis.ReplaceAllStringFunc(s, func(m string) string {
		sub := emphasis.FindStringSubmatch(m)
		if sub[2] != "" {
			return sub[2]
		}
		return sub[4]
	})
}
