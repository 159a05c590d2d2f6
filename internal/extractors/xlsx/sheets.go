package xlsx

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Merge is a merged cell range, 0-based and inclusive.
type Merge struct {
	FirstRow, FirstCol int
	LastRow, LastCol   int

	// Value is the content of the range's top-left cell.
	Value string
}

// Sheet is one worksheet's cell values.
type Sheet struct {
	Name string

	// Rows holds formatted cell values. Trailing empty cells are trimmed,
	// so rows may differ in length.
	Rows [][]string

	Merges []Merge
}

// IsEmpty reports whether the sheet has no non-blank cell.
func (s Sheet) IsEmpty() bool {
	for _, row := range s.Rows {
		if !BlankRow(row) {
			return false
		}
	}
	return true
}

// ReadSheets reads every worksheet in workbook order.
func ReadSheets(content []byte) ([]Sheet, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	var sheets []Sheet
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", name, err)
		}
		sheet := Sheet{Name: name, Rows: rows}

		merged, err := f.GetMergeCells(name)
		if err != nil {
			return nil, fmt.Errorf("read merges of %q: %w", name, err)
		}
		for _, mc := range merged {
			m, err := toMerge(mc)
			if err != nil {
				return nil, err
			}
			sheet.Merges = append(sheet.Merges, m)
		}

		sheets = append(sheets, sheet)
	}
	return sheets, nil
}

func toMerge(mc excelize.MergeCell) (Merge, error) {
	firstCol, firstRow, err := excelize.CellNameToCoordinates(mc.GetStartAxis())
	if err != nil {
		return Merge{}, fmt.Errorf("merge start: %w", err)
	}
	lastCol, lastRow, err := excelize.CellNameToCoordinates(mc.GetEndAxis())
	if err != nil {
		return Merge{}, fmt.Errorf("merge end: %w", err)
	}
	return Merge{
		FirstRow: firstRow - 1,
		FirstCol: firstCol - 1,
		LastRow:  lastRow - 1,
		LastCol:  lastCol - 1,
		Value:    mc.GetCellValue(),
	}, nil
}

// BlankRow reports whether every cell of row is blank.
func BlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// Width returns the length of the longest row.
func Width(rows [][]string) int {
	w := 0
	for _, row := range rows {
		if len(row) > w {
			w = len(row)
		}
	}
	return w
}
