// Package xlsx extracts worksheets from Excel workbooks with excelize.
package xlsx
