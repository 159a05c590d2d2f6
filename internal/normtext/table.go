package normtext

import "strings"

// Table is a rectangular block of cells.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Width returns the number of columns defined by the headers.
func (t *Table) Width() int {
	return len(t.Headers)
}

// IsEmpty reports whether the table has neither headers nor rows.
func (t *Table) IsEmpty() bool {
	return len(t.Headers) == 0 && len(t.Rows) == 0
}

// Normalize enforces the table invariants in place.
// Cells are escaped. When headers are missing the first row is promoted.
// Short rows are padded with empty values and overflow cells are folded
// into the last column.
func (t *Table) Normalize() {
	if len(t.Headers) == 0 && len(t.Rows) > 0 {
		t.Headers = t.Rows[0]
		t.Rows = t.Rows[1:]
	}
	t.Headers = escapeAll(t.Headers)
	width := len(t.Headers)

	rows := make([][]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		rows = append(rows, fitRow(escapeAll(row), width))
	}
	t.Rows = rows
}

// Render returns the table in marker form, without a trailing newline.
// The table is normalised first.
func (t *Table) Render() string {
	t.Normalize()
	if len(t.Headers) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(TableStart)
	b.WriteByte('\n')
	b.WriteString(formatLine(HeadersPrefix, t.Headers))
	for _, row := range t.Rows {
		b.WriteByte('\n')
		b.WriteString(formatLine(RowPrefix, row))
	}
	b.WriteByte('\n')
	b.WriteString(TableEnd)
	return b.String()
}

// RowLines returns the rendered HEADERS line and each ROW line.
func (t *Table) RowLines() (string, []string) {
	t.Normalize()
	rows := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		rows[i] = formatLine(RowPrefix, row)
	}
	return formatLine(HeadersPrefix, t.Headers), rows
}

func formatLine(prefix string, cells []string) string {
	return prefix + " " + strings.Join(cells, CellSeparator)
}

func escapeAll(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = EscapeCell(c)
	}
	return out
}

// fitRow pads or folds row to width.
func fitRow(row []string, width int) []string {
	if width == 0 {
		return []string{}
	}
	if len(row) == width {
		return row
	}
	if len(row) < width {
		out := make([]string, width)
		copy(out, row)
		return out
	}

	out := make([]string, width)
	copy(out, row[:width-1])
	var tail []string
	for _, c := range row[width-1:] {
		if c != "" {
			tail = append(tail, c)
		}
	}
	out[width-1] = strings.Join(tail, " ")
	return out
}
