package fixtures

import (
	"archive/zip"
	"bytes"
	"fmt"
	"html"
	"strings"
)

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

// DOCX builds a .docx archive whose body holds the given block XML,
// typically produced by Paragraph and DocxTable.
func DOCX(blocks ...string) []byte {
	doc := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		strings.Join(blocks, "") +
		`<w:sectPr/></w:body></w:document>`

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range map[string]string{
		"[Content_Types].xml": contentTypesXML,
		"word/document.xml":   doc,
	} {
		w, err := zw.Create(name)
		if err != nil {
			panic(err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			panic(err)
		}
	}
	if err := zw.Close(); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// Paragraph returns a w:p element with one run of text.
func Paragraph(text string) string {
	return fmt.Sprintf(`<w:p><w:r><w:t xml:space="preserve">%s</w:t></w:r></w:p>`, html.EscapeString(text))
}

// DocxCell is a table cell with optional merge properties.
type DocxCell struct {
	Text     string
	GridSpan int

	// VMerge is "restart" for the first cell of a vertical merge and
	// "continue" for the cells below it.
	VMerge string

	// Inner is raw block XML placed inside the cell after the text.
	Inner string
}

// DocxTable returns a w:tbl element with plain text cells.
func DocxTable(rows ...[]string) string {
	cellRows := make([][]DocxCell, len(rows))
	for i, row := range rows {
		cellRows[i] = make([]DocxCell, len(row))
		for j, text := range row {
			cellRows[i][j] = DocxCell{Text: text}
		}
	}
	return DocxMergedTable(cellRows...)
}

// DocxMergedTable returns a w:tbl element with merge properties.
func DocxMergedTable(rows ...[]DocxCell) string {
	var b strings.Builder
	b.WriteString("<w:tbl><w:tblPr/>")
	for _, row := range rows {
		b.WriteString("<w:tr>")
		for _, cell := range row {
			b.WriteString("<w:tc><w:tcPr>")
			if cell.GridSpan > 1 {
				fmt.Fprintf(&b, `<w:gridSpan w:val="%d"/>`, cell.GridSpan)
			}
			switch cell.VMerge {
			case "restart":
				b.WriteString(`<w:vMerge w:val="restart"/>`)
			case "continue":
				b.WriteString(`<w:vMerge/>`)
			}
			b.WriteString("</w:tcPr>")
			b.WriteString(Paragraph(cell.Text))
			b.WriteString(cell.Inner)
			b.WriteString("</w:tc>")
		}
		b.WriteString("</w:tr>")
	}
	b.WriteString("</w:tbl>")
	return b.String()
}
