package normtext

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformed is returned by CheckIntegrity for text that breaks the grammar.
var ErrMalformed = errors.New("malformed normalised text")

// CheckIntegrity verifies that text obeys the table grammar:
// markers are paired and not nested, each table opens with one HEADERS
// line, and each ROW has as many values as its HEADERS.
func CheckIntegrity(text string) error {
	inTable := false
	width := -1

	for i, line := range splitLines(text) {
		n := i + 1
		kind, values := classify(line)
		switch kind {
		case lineStart:
			if inTable {
				return fmt.Errorf("%w: line %d: nested table start", ErrMalformed, n)
			}
			inTable = true
			width = -1
		case lineEnd:
			if !inTable {
				return fmt.Errorf("%w: line %d: table end without start", ErrMalformed, n)
			}
			if width < 0 {
				return fmt.Errorf("%w: line %d: table without headers", ErrMalformed, n)
			}
			inTable = false
		case lineHeaders:
			if !inTable {
				return fmt.Errorf("%w: line %d: headers outside table", ErrMalformed, n)
			}
			if width >= 0 {
				return fmt.Errorf("%w: line %d: duplicate headers", ErrMalformed, n)
			}
			width = len(SplitCells(values))
		case lineRow:
			if !inTable {
				return fmt.Errorf("%w: line %d: row outside table", ErrMalformed, n)
			}
			if width < 0 {
				return fmt.Errorf("%w: line %d: row before headers", ErrMalformed, n)
			}
			if got := len(SplitCells(values)); got != width {
				return fmt.Errorf("%w: line %d: row has %d values, headers have %d", ErrMalformed, n, got, width)
			}
		default:
			if inTable && strings.TrimSpace(line) != "" {
				return fmt.Errorf("%w: line %d: prose inside table", ErrMalformed, n)
			}
		}
	}

	if inTable {
		return fmt.Errorf("%w: unterminated table", ErrMalformed)
	}
	return nil
}

// Repair rewrites text so that it passes CheckIntegrity.
// Unterminated tables are closed, stray END markers dropped, nested starts
// split into sibling tables, and rows fitted to their headers. Stray prose
// inside a table moves out after it. Text that already passes is returned
// unchanged.
func Repair(text string) string {
	if CheckIntegrity(text) == nil {
		return text
	}

	var b Builder
	var pending []string
	for _, seg := range Parse(text) {
		if seg.Kind == SegmentProse {
			for _, l := range seg.Lines {
				b.Line(l)
			}
			continue
		}
		b.Table(*seg.Table)
		for _, l := range seg.Lines {
			if k, _ := classify(l); k == lineProse {
				pending = append(pending, l)
			}
		}
		for _, l := range pending {
			b.Line(l)
		}
		pending = nil
	}
	return b.String()
}
