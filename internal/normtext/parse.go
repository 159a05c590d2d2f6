package normtext

import "strings"

// SegmentKind distinguishes prose from table blocks.
type SegmentKind int

// Segment kinds.
const (
	SegmentProse SegmentKind = iota
	SegmentTable
)

// Segment is a contiguous run of prose lines or one table block.
type Segment struct {
	Kind SegmentKind

	// Lines holds the raw lines of the segment. For tables it includes
	// both markers.
	Lines []string

	// Table is the parsed table, set only for SegmentTable.
	Table *Table
}

// Text returns the segment's lines joined by newlines.
func (s Segment) Text() string {
	return strings.Join(s.Lines, "\n")
}

// Len returns the segment length in runes, counting joining newlines.
func (s Segment) Len() int {
	return RuneLen(s.Text())
}

// RuneLen returns the length of s in runes.
func RuneLen(s string) int {
	return len([]rune(s))
}

// Parse splits well-formed normalised text into segments in document order.
// Text that breaks the grammar should be passed through Repair first; Parse
// treats an unterminated table as running to the end of the text and
// ignores stray END markers.
func Parse(text string) []Segment {
	if text == "" {
		return nil
	}

	var segments []Segment
	var prose []string
	var current *Segment

	flushProse := func() {
		if len(prose) > 0 {
			segments = append(segments, Segment{Kind: SegmentProse, Lines: prose})
			prose = nil
		}
	}

	for _, line := range splitLines(text) {
		kind, values := classify(line)

		if current == nil {
			switch kind {
			case lineStart:
				flushProse()
				current = &Segment{Kind: SegmentTable, Lines: []string{TableStart}, Table: &Table{}}
			case lineEnd:
				// stray marker
			default:
				prose = append(prose, line)
			}
			continue
		}

		switch kind {
		case lineEnd:
			current.Lines = append(current.Lines, TableEnd)
			segments = append(segments, *current)
			current = nil
		case lineHeaders:
			current.Lines = append(current.Lines, strings.TrimSpace(line))
			if current.Table.Headers == nil {
				current.Table.Headers = SplitCells(values)
			} else {
				current.Table.Rows = append(current.Table.Rows, SplitCells(values))
			}
		case lineRow:
			current.Lines = append(current.Lines, strings.TrimSpace(line))
			current.Table.Rows = append(current.Table.Rows, SplitCells(values))
		case lineStart:
			// nested start: close the open table first
			current.Lines = append(current.Lines, TableEnd)
			segments = append(segments, *current)
			current = &Segment{Kind: SegmentTable, Lines: []string{TableStart}, Table: &Table{}}
		default:
			if strings.TrimSpace(line) != "" {
				current.Lines = append(current.Lines, line)
			}
		}
	}

	if current != nil {
		current.Lines = append(current.Lines, TableEnd)
		segments = append(segments, *current)
	}
	flushProse()

	return segments
}

// Tables returns every table in text, in order.
func Tables(text string) []Table {
	var tables []Table
	for _, seg := range Parse(text) {
		if seg.Kind == SegmentTable {
			tables = append(tables, *seg.Table)
		}
	}
	return tables
}

// Join renders segments back into text.
func Join(segments []Segment) string {
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		parts = append(parts, seg.Text())
	}
	return strings.Join(parts, "\n")
}
