package fixtures

import (
	"github.com/xuri/excelize/v2"
)

// Sheet describes one worksheet of an XLSX fixture.
type Sheet struct {
	Name string
	Rows [][]any

	// Merges lists ranges as {"A1", "C1"} pairs.
	Merges [][2]string
}

// XLSX builds a workbook with the given sheets in order.
func XLSX(sheets ...Sheet) []byte {
	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet.Name); err != nil {
				panic(err)
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			panic(err)
		}

		for r, row := range sheet.Rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				panic(err)
			}
			values := row
			if err := f.SetSheetRow(sheet.Name, cell, &values); err != nil {
				panic(err)
			}
		}
		for _, m := range sheet.Merges {
			if err := f.MergeCell(sheet.Name, m[0], m[1]); err != nil {
				panic(err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		panic(err)
	}
	return buf.Bytes()
}
