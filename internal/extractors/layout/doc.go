// Package layout implements the layout-aware parser.
//
// It sniffs the content type itself and reconstructs structure the format
// extractors flatten: multi-column PDF pages, ragged PDF tables, merged
// Word table cells and spreadsheet title rows and merged ranges.
// Input it cannot read structurally yields empty text and no error.
package layout
