package pdf

import (
	"math"
	"strings"

	"github.com/custodia-labs/rfqx/internal/normtext"
)

// alignTolerance is how far column edges may drift between rows.
const alignTolerance = 12.0

// TableMode selects how strictly rows must line up to form a table.
type TableMode int

// Table modes.
const (
	// Strict requires every row to have the header's cell count with
	// matching column edges.
	Strict TableMode = iota

	// Relaxed accepts ragged rows of two or more cells and maps each cell
	// to the header column it falls under.
	Relaxed
)

// Block is a run of lines emitted as prose or, when Table is set, as one
// table.
type Block struct {
	Lines []Line
	Table *normtext.Table
}

// WriteTo appends the block to b.
func (blk Block) WriteTo(b *normtext.Builder) {
	if blk.Table != nil {
		b.Table(*blk.Table)
		return
	}
	for _, l := range blk.Lines {
		b.Line(l.Text())
	}
}

// DetectBlocks splits lines into prose and table blocks in reading order.
// A table is at least two consecutive lines: a header line of two or more
// cells and one or more rows matching it.
func DetectBlocks(lines []Line, mode TableMode) []Block {
	var blocks []Block
	var prose []Line
	flush := func() {
		if len(prose) > 0 {
			blocks = append(blocks, Block{Lines: prose})
			prose = nil
		}
	}

	for i := 0; i < len(lines); {
		header := lines[i].Cells()
		if len(header) < 2 {
			prose = append(prose, lines[i])
			i++
			continue
		}

		table := &normtext.Table{Headers: cellTexts(header)}
		j := i + 1
		for ; j < len(lines); j++ {
			cells := lines[j].Cells()
			row, ok := matchRow(header, cells, mode)
			if !ok {
				break
			}
			table.Rows = append(table.Rows, row)
		}

		if len(table.Rows) == 0 {
			prose = append(prose, lines[i])
			i++
			continue
		}

		flush()
		blocks = append(blocks, Block{Lines: lines[i:j], Table: table})
		i = j
	}
	flush()
	return blocks
}

// matchRow returns the row values when cells belong to the table headed
// by header.
func matchRow(header, cells []Cell, mode TableMode) ([]string, bool) {
	if mode == Strict {
		if len(cells) != len(header) {
			return nil, false
		}
		for k := range cells {
			if !aligned(header[k], cells[k]) {
				return nil, false
			}
		}
		return cellTexts(cells), true
	}

	if len(cells) < 2 {
		return nil, false
	}
	row := make([]string, len(header))
	for _, c := range cells {
		k := column(header, c)
		if row[k] != "" {
			row[k] += " "
		}
		row[k] += c.Text
	}
	return row, true
}

// aligned reports whether two cells share a left or right edge, or overlap.
func aligned(a, b Cell) bool {
	if math.Abs(a.X-b.X) <= alignTolerance || math.Abs(a.Right-b.Right) <= alignTolerance {
		return true
	}
	return a.X < b.Right && b.X < a.Right
}

// column returns the header column whose zone contains the start of c.
// Zone k runs from header k's left edge, less the tolerance, to the next
// header's zone.
func column(header []Cell, c Cell) int {
	k := 0
	for i, h := range header {
		if c.X >= h.X-alignTolerance {
			k = i
		}
	}
	return k
}

func cellTexts(cells []Cell) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.TrimSpace(c.Text)
	}
	return out
}
