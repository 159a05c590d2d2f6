package normtext

import "strings"

// Grammar tokens.
const (
	TableStart    = "=== TABLE START ==="
	TableEnd      = "=== TABLE END ==="
	HeadersPrefix = "HEADERS:"
	RowPrefix     = "ROW:"
	CellSeparator = " | "
)

var cellReplacer = strings.NewReplacer(
	"\r\n", " ",
	"\n", " ",
	"\r", " ",
	"\t", " ",
	"|", "/",
)

// EscapeCell makes s safe to place in a HEADERS or ROW line.
// Separators become "/", line breaks become spaces, and runs of
// whitespace collapse to one space.
func EscapeCell(s string) string {
	return strings.Join(strings.Fields(cellReplacer.Replace(s)), " ")
}

// SplitCells splits the value part of a HEADERS or ROW line into cells.
func SplitCells(values string) []string {
	parts := strings.Split(values, "|")
	cells := make([]string, len(parts))
	for i, p := range parts {
		cells[i] = strings.TrimSpace(p)
	}
	return cells
}

// lineKind classifies a single line of normalised text.
type lineKind int

const (
	lineProse lineKind = iota
	lineStart
	lineEnd
	lineHeaders
	lineRow
)

// classify returns the kind of line and, for HEADERS and ROW lines, the value part.
func classify(line string) (lineKind, string) {
	trimmed := strings.TrimSpace(line)
	switch {
	case trimmed == TableStart:
		return lineStart, ""
	case trimmed == TableEnd:
		return lineEnd, ""
	case strings.HasPrefix(trimmed, HeadersPrefix):
		return lineHeaders, strings.TrimPrefix(trimmed, HeadersPrefix)
	case strings.HasPrefix(trimmed, RowPrefix):
		return lineRow, strings.TrimPrefix(trimmed, RowPrefix)
	default:
		return lineProse, ""
	}
}

// splitLines splits text on newlines, dropping a trailing carriage return per line.
func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
