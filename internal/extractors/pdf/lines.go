package pdf

import (
	"math"
	"sort"
	"strings"

	lpdf "github.com/ledongthuc/pdf"
)

// Geometry tolerances, in points unless noted.
const (
	// baselineTolerance groups glyphs whose baselines differ by at most this.
	baselineTolerance = 2.5

	// wordGapRatio is the gap, as a fraction of font size, that separates words.
	wordGapRatio = 0.25

	// minCellGap and cellGapRatio decide when a gap separates cells.
	minCellGap   = 8.0
	cellGapRatio = 1.5

	// defaultFontSize is assumed when a glyph reports no size.
	defaultFontSize = 10.0

	// glyphWidthRatio estimates glyph width from font size when the font
	// carries no width table.
	glyphWidthRatio = 0.5
)

// Word is a run of glyphs on one baseline without a visible gap.
type Word struct {
	X, Right float64
	Y        float64
	FontSize float64
	Text     string
}

// Cell is a run of words on one line separated by small gaps only.
type Cell struct {
	X, Right float64
	Text     string
}

// Line is a set of words sharing a baseline, ordered left to right.
type Line struct {
	Y     float64
	Words []Word
}

// Text returns the words of the line separated by single spaces.
func (l Line) Text() string {
	parts := make([]string, len(l.Words))
	for i, w := range l.Words {
		parts[i] = w.Text
	}
	return strings.Join(parts, " ")
}

// Cells splits the line on gaps wider than the cell gap.
func (l Line) Cells() []Cell {
	var cells []Cell
	var texts []string
	for i, w := range l.Words {
		if i > 0 {
			gap := w.X - cells[len(cells)-1].Right
			if gap > cellGap(w.FontSize) {
				cells[len(cells)-1].Text = strings.Join(texts, " ")
				texts = nil
				cells = append(cells, Cell{X: w.X})
			}
		} else {
			cells = append(cells, Cell{X: w.X})
		}
		texts = append(texts, w.Text)
		cells[len(cells)-1].Right = math.Max(cells[len(cells)-1].Right, w.Right)
	}
	if len(cells) > 0 {
		cells[len(cells)-1].Text = strings.Join(texts, " ")
	}
	return cells
}

// Left returns the x position of the first word.
func (l Line) Left() float64 {
	if len(l.Words) == 0 {
		return 0
	}
	return l.Words[0].X
}

// Words groups positioned glyphs into words. Whitespace glyphs are dropped;
// word boundaries come from the gaps between glyphs.
func Words(texts []lpdf.Text) []Word {
	glyphs := make([]lpdf.Text, 0, len(texts))
	for _, t := range texts {
		if strings.TrimSpace(t.S) != "" {
			glyphs = append(glyphs, t)
		}
	}

	var words []Word
	for _, row := range groupByBaseline(glyphs, func(t lpdf.Text) float64 { return t.Y }) {
		sort.SliceStable(row, func(i, j int) bool { return row[i].X < row[j].X })

		var cur *Word
		var sb strings.Builder
		flush := func() {
			if cur != nil {
				cur.Text = sb.String()
				words = append(words, *cur)
				sb.Reset()
			}
		}

		for _, g := range row {
			size := fontSize(g.FontSize)
			right := g.X + glyphWidth(g, size)
			if cur == nil || g.X-cur.Right > wordGapRatio*size {
				flush()
				cur = &Word{X: g.X, Right: right, Y: g.Y, FontSize: size}
			}
			sb.WriteString(g.S)
			cur.Right = math.Max(cur.Right, right)
		}
		flush()
	}
	return words
}

// GroupLines groups words into lines ordered top to bottom.
func GroupLines(words []Word) []Line {
	rows := groupByBaseline(words, func(w Word) float64 { return w.Y })
	if len(rows) == 0 {
		return nil
	}
	lines := make([]Line, 0, len(rows))
	for _, row := range rows {
		sort.SliceStable(row, func(i, j int) bool { return row[i].X < row[j].X })
		lines = append(lines, Line{Y: row[0].Y, Words: row})
	}
	return lines
}

// groupByBaseline buckets items into rows, highest baseline first.
// Items within a row keep their input order.
func groupByBaseline[T any](items []T, y func(T) float64) [][]T {
	if len(items) == 0 {
		return nil
	}
	sorted := make([]T, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool { return y(sorted[i]) > y(sorted[j]) })

	var rows [][]T
	ref := y(sorted[0])
	current := []T{sorted[0]}
	for _, item := range sorted[1:] {
		if ref-y(item) > baselineTolerance {
			rows = append(rows, current)
			current = nil
			ref = y(item)
		}
		current = append(current, item)
	}
	return append(rows, current)
}

func cellGap(size float64) float64 {
	return math.Max(minCellGap, cellGapRatio*fontSize(size))
}

func fontSize(size float64) float64 {
	if size <= 0 {
		return defaultFontSize
	}
	return size
}

func glyphWidth(g lpdf.Text, size float64) float64 {
	if g.W > 0 {
		return g.W
	}
	return size * glyphWidthRatio * float64(len([]rune(g.S)))
}
