package layout

import (
	"github.com/custodia-labs/rfqx/internal/extractors/docx"
	"github.com/custodia-labs/rfqx/internal/normtext"
)

func docxText(content []byte) (string, error) {
	doc, err := docx.Parse(content)
	if err != nil {
		return "", err
	}

	var b normtext.Builder
	for _, block := range doc.Blocks {
		if block.Table == nil {
			b.Line(block.Paragraph)
			continue
		}
		titles, table := expandGrid(block.Table)
		for _, title := range titles {
			b.Line(title)
		}
		b.Table(table)
	}
	return b.String(), nil
}

// expandGrid lays a Word table onto its column grid. Horizontally merged
// cells repeat their text across the columns they span and vertical merge
// continuations take the value above. Leading rows made of one cell that
// spans the whole table are returned as titles.
func expandGrid(t *docx.Table) ([]string, normtext.Table) {
	width := 0
	for _, row := range t.Rows {
		span := 0
		for _, c := range row.Cells {
			span += max(c.GridSpan, 1)
		}
		width = max(width, span)
	}

	var titles []string
	var rows [][]string
	var above []string
	for _, row := range t.Rows {
		if len(rows) == 0 && width > 1 && len(row.Cells) == 1 && row.Cells[0].GridSpan >= width {
			if row.Cells[0].Text != "" {
				titles = append(titles, row.Cells[0].Text)
			}
			continue
		}

		values := make([]string, 0, width)
		for _, c := range row.Cells {
			col := len(values)
			text := c.Text
			if c.VMerge == docx.VMergeContinue && col < len(above) {
				text = above[col]
			}
			for k := 0; k < max(c.GridSpan, 1); k++ {
				values = append(values, text)
			}
		}
		for len(values) < width {
			values = append(values, "")
		}

		rows = append(rows, values)
		above = values
	}
	return titles, normtext.Table{Rows: rows}
}
