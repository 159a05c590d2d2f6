package normtext

import "strings"

// Builder assembles normalised text from prose lines and tables.
// The zero value is ready to use.
type Builder struct {
	lines []string
}

// Line appends a prose line. Blank lines collapse into a single separator,
// and prose that would be read as a marker line is quoted with "> ".
func (b *Builder) Line(s string) {
	s = strings.TrimRight(s, " \t\r")
	for _, part := range strings.Split(s, "\n") {
		part = strings.TrimRight(part, " \t\r")
		if strings.TrimSpace(part) == "" {
			if n := len(b.lines); n > 0 && b.lines[n-1] != "" {
				b.lines = append(b.lines, "")
			}
			continue
		}
		if kind, _ := classify(part); kind != lineProse {
			part = "> " + strings.TrimSpace(part)
		}
		b.lines = append(b.lines, part)
	}
}

// Table appends a table block. Tables without headers or rows are skipped.
func (b *Builder) Table(t Table) {
	rendered := t.Render()
	if rendered == "" {
		return
	}
	b.lines = append(b.lines, strings.Split(rendered, "\n")...)
}

// Text appends text that is already normalised, keeping its table blocks.
func (b *Builder) Text(s string) {
	for _, seg := range Parse(s) {
		if seg.Kind == SegmentTable {
			b.Table(*seg.Table)
			continue
		}
		for _, line := range seg.Lines {
			b.Line(line)
		}
	}
}

// Len returns the number of lines written so far.
func (b *Builder) Len() int {
	return len(b.lines)
}

// String returns the normalised text with surrounding blank lines trimmed.
func (b *Builder) String() string {
	lines := b.lines
	for len(lines) > 0 && lines[0] == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}
