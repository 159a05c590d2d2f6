package services

import (
	"strings"

	"github.com/custodia-labs/rfqx/internal/normtext"
)

// Truncation describes what Truncate kept.
type Truncation struct {
	// Text is the text to send to the model.
	Text string

	// Truncated is true when anything was cut.
	Truncated bool

	// TablesKept and TablesTotal count complete table blocks.
	TablesKept  int
	TablesTotal int

	// Clipped is true when the first table was cut at a row boundary.
	Clipped bool
}

// Truncate bounds text to budget runes without losing line items to
// head-truncation.
//
// When every table fits, all of them are kept and prose lines fill the
// remaining budget in document order, skipping any line that is too long.
// If no line fits at all, the first prose line is clipped to the budget.
// Otherwise complete tables are kept in document
// order until the next one does not fit, and all prose is dropped. If not
// even the first table fits, it is clipped at a row boundary with its END
// marker and HEADERS line kept. Other cuts fall on line boundaries.
func Truncate(text string, budget int) Truncation {
	if budget <= 0 || normtext.RuneLen(text) <= budget {
		return Truncation{Text: text, TablesKept: countTables(text), TablesTotal: countTables(text)}
	}

	segments := normtext.Parse(text)

	var tables []normtext.Segment
	reserved := 0
	for _, seg := range segments {
		if seg.Kind == normtext.SegmentTable {
			tables = append(tables, seg)
			reserved += linesCost(seg.Lines)
		}
	}

	// Every line costs its length plus a joining newline; the final text
	// drops one newline, so the limit is budget+1.
	b := &lineBudget{limit: budget + 1}
	out := Truncation{Truncated: true, TablesTotal: len(tables)}

	switch {
	case reserved <= b.limit:
		for _, seg := range segments {
			if seg.Kind == normtext.SegmentTable {
				b.add(seg.Lines...)
				reserved -= linesCost(seg.Lines)
				out.TablesKept++
				continue
			}
			for _, line := range seg.Lines {
				// An over-long line is skipped; shorter lines after it may still fit.
				if b.used+lineCost(line)+reserved > b.limit {
					continue
				}
				b.add(line)
			}
		}
		if len(b.lines) == 0 {
			b.add(clipProse(segments, budget))
		}

	case b.fits(linesCost(tables[0].Lines)):
		for _, seg := range tables {
			if !b.fits(linesCost(seg.Lines)) {
				break
			}
			b.add(seg.Lines...)
			out.TablesKept++
		}

	default:
		out.Clipped = true
		lines := tables[0].Lines
		end := lines[len(lines)-1]
		body := lines[1 : len(lines)-1]
		b.add(lines[0])
		if len(body) > 0 && strings.HasPrefix(strings.TrimSpace(body[0]), normtext.HeadersPrefix) {
			b.add(body[0])
			body = body[1:]
		}
		for _, line := range body {
			if !b.fits(lineCost(line) + lineCost(end)) {
				break
			}
			b.add(line)
		}
		b.add(end)
	}

	out.Text = strings.Join(b.lines, "\n")
	return out
}

type lineBudget struct {
	limit int
	used  int
	lines []string
}

func (b *lineBudget) fits(cost int) bool {
	return b.used+cost <= b.limit
}

func (b *lineBudget) add(lines ...string) {
	for _, line := range lines {
		b.used += lineCost(line)
		b.lines = append(b.lines, line)
	}
}

func lineCost(line string) int {
	return normtext.RuneLen(line) + 1
}

func linesCost(lines []string) int {
	n := 0
	for _, line := range lines {
		n += lineCost(line)
	}
	return n
}

// clipProse returns the first non-blank prose line cut to at most budget
// runes, preferring a word boundary.
func clipProse(segments []normtext.Segment, budget int) string {
	for _, seg := range segments {
		if seg.Kind == normtext.SegmentTable {
			continue
		}
		for _, line := range seg.Lines {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			runes := []rune(line)
			if len(runes) <= budget {
				return line
			}
			clipped := string(runes[:budget])
			if i := strings.LastIndexAny(clipped, " \t"); i > 0 {
				clipped = clipped[:i]
			}
			return strings.TrimSpace(clipped)
		}
	}
	return ""
}

func countTables(text string) int {
	if !strings.Contains(text, normtext.TableStart) {
		return 0
	}
	return len(normtext.Tables(text))
}
