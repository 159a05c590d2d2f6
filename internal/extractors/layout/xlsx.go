package layout

import (
	"strconv"
	"strings"

	"github.com/custodia-labs/rfqx/internal/extractors/xlsx"
	"github.com/custodia-labs/rfqx/internal/normtext"
)

func xlsxText(content []byte) (string, int, error) {
	sheets, err := xlsx.ReadSheets(content)
	if err != nil {
		return "", 0, err
	}

	var b normtext.Builder
	for _, sheet := range sheets {
		if sheet.IsEmpty() {
			continue
		}
		rows := fillMerges(sheet.Rows, sheet.Merges)
		h := headerRow(rows)

		b.Line("")
		b.Line("Sheet: " + sheet.Name)
		for _, row := range rows[:h] {
			if !xlsx.BlankRow(row) {
				b.Line(strings.Join(unique(nonBlank(row)), " "))
			}
		}

		body := dropEmptyColumns(rows[h:])
		t := normtext.Table{Headers: body[0]}
		for _, row := range body[1:] {
			if !xlsx.BlankRow(row) {
				t.Rows = append(t.Rows, row)
			}
		}
		b.Table(t)
	}
	return b.String(), len(sheets), nil
}

// fillMerges returns a rectangular copy of rows with every merged range
// filled with its top-left value.
func fillMerges(rows [][]string, merges []xlsx.Merge) [][]string {
	height, width := len(rows), xlsx.Width(rows)
	for _, m := range merges {
		height = max(height, m.LastRow+1)
		width = max(width, m.LastCol+1)
	}

	grid := make([][]string, height)
	for r := range grid {
		grid[r] = make([]string, width)
		if r < len(rows) {
			copy(grid[r], rows[r])
		}
	}
	for _, m := range merges {
		for r := m.FirstRow; r <= m.LastRow; r++ {
			for c := m.FirstCol; c <= m.LastCol; c++ {
				grid[r][c] = m.Value
			}
		}
	}
	return grid
}

func dropEmptyColumns(rows [][]string) [][]string {
	width := xlsx.Width(rows)
	var keep []int
	for c := 0; c < width; c++ {
		for _, row := range rows {
			if c < len(row) && strings.TrimSpace(row[c]) != "" {
				keep = append(keep, c)
				break
			}
		}
	}

	out := make([][]string, len(rows))
	for r, row := range rows {
		out[r] = make([]string, len(keep))
		for i, c := range keep {
			if c < len(row) {
				out[r][i] = row[c]
			}
		}
	}
	return out
}

// headerRow returns the index of the first row with at least two distinct
// non-blank cells, most of them text. Title rows filled from a merged range
// repeat one value and are skipped. When no row qualifies the first
// non-blank row is used.
func headerRow(rows [][]string) int {
	first := -1
	for i, row := range rows {
		cells := nonBlank(row)
		if len(cells) == 0 {
			continue
		}
		if first < 0 {
			first = i
		}
		if distinct(cells) < 2 {
			continue
		}
		text := 0
		for _, c := range cells {
			if !numeric(c) {
				text++
			}
		}
		if text*2 > len(cells) {
			return i
		}
	}
	return max(first, 0)
}

func nonBlank(row []string) []string {
	var out []string
	for _, c := range row {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}

func distinct(cells []string) int {
	return len(unique(cells))
}

// unique returns cells without repeats, keeping first occurrences in order.
func unique(cells []string) []string {
	seen := make(map[string]struct{}, len(cells))
	var out []string
	for _, c := range cells {
		if _, ok := seen[c]; !ok {
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}
	return out
}

func numeric(s string) bool {
	s = strings.NewReplacer(",", "", " ", "", "%", "").Replace(s)
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}
