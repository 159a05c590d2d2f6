package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrNoDocument indicates the archive has no word/document.xml part.
var ErrNoDocument = errors.New("missing word/document.xml")

// VMerge is the vertical merge state of a table cell.
type VMerge int

// Vertical merge states.
const (
	VMergeNone VMerge = iota
	VMergeRestart
	VMergeContinue
)

// Cell is one table cell.
type Cell struct {
	Text string

	// GridSpan is the number of grid columns the cell covers, at least 1.
	GridSpan int

	VMerge VMerge
}

// Row is one table row.
type Row struct {
	Cells []Cell
}

// Table is a body-level table.
type Table struct {
	Rows []Row
}

// Block is a body child: exactly one of Paragraph or Table is meaningful.
type Block struct {
	Paragraph string
	Table     *Table
}

// Document is the body of a Word document in order.
type Document struct {
	Blocks []Block
}

// Parse reads the body of a .docx archive.
func Parse(content []byte) (*Document, error) {
	reader, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("open document part: %w", err)
		}
		defer rc.Close()
		return decode(rc)
	}
	return nil, ErrNoDocument
}

// decode walks the document XML. Elements other than paragraphs and tables
// are transparent, so content controls and similar wrappers are read through.
func decode(r io.Reader) (*Document, error) {
	d := xml.NewDecoder(r)
	doc := &Document{}
	inBody := false

	for {
		tok, err := d.Token()
		if err == io.EOF {
			return doc, nil
		}
		if err != nil {
			return nil, fmt.Errorf("decode document: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "body":
				inBody = true
			case "p":
				if !inBody {
					continue
				}
				text, err := paragraph(d)
				if err != nil {
					return nil, err
				}
				doc.Blocks = append(doc.Blocks, Block{Paragraph: text})
			case "tbl":
				if !inBody {
					continue
				}
				tbl, err := table(d)
				if err != nil {
					return nil, err
				}
				doc.Blocks = append(doc.Blocks, Block{Table: tbl})
			}
		case xml.EndElement:
			if t.Name.Local == "body" {
				return doc, nil
			}
		}
	}
}

// paragraph reads text up to the end of the current w:p element.
func paragraph(d *xml.Decoder) (string, error) {
	var sb strings.Builder
	inText := false
	depth := 1

	for depth > 0 {
		tok, err := d.Token()
		if err != nil {
			return "", fmt.Errorf("decode paragraph: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab", "br", "cr":
				sb.WriteByte(' ')
			}
		case xml.EndElement:
			depth--
			if t.Name.Local == "t" {
				inText = false
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}
	return strings.TrimSpace(sb.String()), nil
}

// table reads rows up to the end of the current w:tbl element.
func table(d *xml.Decoder) (*Table, error) {
	tbl := &Table{}
	for {
		tok, err := d.Token()
		if err != nil {
			return nil, fmt.Errorf("decode table: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "tr" {
				row, err := tableRow(d)
				if err != nil {
					return nil, err
				}
				tbl.Rows = append(tbl.Rows, row)
			} else if err := d.Skip(); err != nil {
				return nil, fmt.Errorf("decode table: %w", err)
			}
		case xml.EndElement:
			return tbl, nil
		}
	}
}

func tableRow(d *xml.Decoder) (Row, error) {
	var row Row
	for {
		tok, err := d.Token()
		if err != nil {
			return row, fmt.Errorf("decode row: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "tc" {
				cell, err := tableCell(d)
				if err != nil {
					return row, err
				}
				row.Cells = append(row.Cells, cell)
			} else if err := d.Skip(); err != nil {
				return row, fmt.Errorf("decode row: %w", err)
			}
		case xml.EndElement:
			return row, nil
		}
	}
}

// tableCell reads one w:tc. Nested tables are flattened into the cell text,
// rows separated by "; " and cells by spaces.
func tableCell(d *xml.Decoder) (Cell, error) {
	cell := Cell{GridSpan: 1}
	var parts []string

	for {
		tok, err := d.Token()
		if err != nil {
			return cell, fmt.Errorf("decode cell: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tcPr":
				if err := cellProperties(d, &cell); err != nil {
					return cell, err
				}
			case "p":
				text, err := paragraph(d)
				if err != nil {
					return cell, err
				}
				if text != "" {
					parts = append(parts, text)
				}
			case "tbl":
				nested, err := table(d)
				if err != nil {
					return cell, err
				}
				if text := nested.Flatten(); text != "" {
					parts = append(parts, text)
				}
			}
		case xml.EndElement:
			if t.Name.Local == "tc" {
				cell.Text = strings.Join(parts, " ")
				return cell, nil
			}
		}
	}
}

func cellProperties(d *xml.Decoder, cell *Cell) error {
	for {
		tok, err := d.Token()
		if err != nil {
			return fmt.Errorf("decode cell properties: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "gridSpan":
				if n, err := strconv.Atoi(attr(t, "val")); err == nil && n > 1 {
					cell.GridSpan = n
				}
			case "vMerge":
				if attr(t, "val") == "restart" {
					cell.VMerge = VMergeRestart
				} else {
					cell.VMerge = VMergeContinue
				}
			}
			if err := d.Skip(); err != nil {
				return fmt.Errorf("decode cell properties: %w", err)
			}
		case xml.EndElement:
			return nil
		}
	}
}

func attr(e xml.StartElement, local string) string {
	for _, a := range e.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// Texts returns the cell texts of every row.
func (t *Table) Texts() [][]string {
	out := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = make([]string, len(row.Cells))
		for j, c := range row.Cells {
			out[i][j] = c.Text
		}
	}
	return out
}

// Flatten renders the table as one line of text.
func (t *Table) Flatten() string {
	var rows []string
	for _, cells := range t.Texts() {
		var kept []string
		for _, c := range cells {
			if c != "" {
				kept = append(kept, c)
			}
		}
		if len(kept) > 0 {
			rows = append(rows, strings.Join(kept, " "))
		}
	}
	return strings.Join(rows, "; ")
}
