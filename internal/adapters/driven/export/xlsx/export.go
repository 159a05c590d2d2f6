// Package xlsx writes extraction results to an Excel workbook.
package xlsx

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/custodia-labs/rfqx/internal/core/domain"
)

// Sheet names.
const (
	ItemsSheet   = "Items"
	SummarySheet = "Summary"
)

var itemHeaders = []string{
	"document", "line_no", "description", "quantity", "unit", "specifications",
	"customer_name", "project_name", "deadline",
}

var summaryHeaders = []string{
	"document", "document_id", "status", "extraction_method", "confidence",
	"item_count", "processing_time_ms", "full_text_length", "attempts",
}

// Entry is one document with its stored result. Result is nil when the
// document has not produced one.
type Entry struct {
	Document domain.Document
	Result   *domain.StoredResult
}

// Export writes entries to a workbook at path, creating parent directories.
func Export(path string, entries []Entry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, entries); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Write writes entries as a workbook with an item sheet and a summary sheet.
func Write(w io.Writer, entries []Entry) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), ItemsSheet); err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}

	writeRow(f, ItemsSheet, 1, toAny(itemHeaders))
	writeRow(f, SummarySheet, 1, toAny(summaryHeaders))

	itemRow := 2
	for i, e := range entries {
		writeRow(f, SummarySheet, i+2, summaryValues(e))

		if e.Result == nil || e.Result.Result.Requirements == nil {
			continue
		}
		req := e.Result.Result.Requirements
		for n, item := range req.Items {
			writeRow(f, ItemsSheet, itemRow, []any{
				e.Document.Name,
				n + 1,
				item.Description,
				derefFloat(item.Quantity),
				item.Unit,
				item.Specifications,
				req.CustomerName,
				req.ProjectName,
				req.Deadline,
			})
			itemRow++
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("xlsx: write workbook: %w", err)
	}
	return nil
}

func summaryValues(e Entry) []any {
	row := []any{e.Document.Name, e.Document.ID, string(e.Document.Status)}
	if e.Result == nil {
		return row
	}
	r := e.Result.Result
	items := 0
	if r.Requirements != nil {
		items = len(r.Requirements.Items)
	}
	return append(row,
		r.ExtractionMethod,
		r.Confidence,
		items,
		r.ProcessingTimeMS,
		r.FullTextLength,
		len(r.Attempts),
	)
}

func writeRow(f *excelize.File, sheet string, row int, values []any) {
	for col, v := range values {
		cell, _ := excelize.CoordinatesToCellName(col+1, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func derefFloat(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}
