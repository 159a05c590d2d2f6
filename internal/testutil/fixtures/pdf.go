package fixtures

import (
	"bytes"
	"fmt"
	"strings"
)

// PDFText places a string on a page. Coordinates are in points from the
// bottom-left corner, as in PDF user space.
type PDFText struct {
	X, Y float64
	Size float64
	Text string
}

// glyphWidth is the advance of every glyph, in 1/1000 em.
const glyphWidth = 500

// PDF builds a minimal PDF with one page per argument. The font has fixed
// glyph widths so positioned text reads back with usable geometry.
func PDF(pages ...[]PDFText) []byte {
	var objects []string

	objects = append(objects, "<< /Type /Catalog /Pages 2 0 R >>")
	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}
	objects = append(objects, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)))

	widths := make([]string, 0, 95)
	for c := 32; c <= 126; c++ {
		widths = append(widths, fmt.Sprint(glyphWidth))
	}
	objects = append(objects, fmt.Sprintf(
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding /FirstChar 32 /LastChar 126 /Widths [%s] >>",
		strings.Join(widths, " ")))

	for i, texts := range pages {
		contentRef := 5 + 2*i
		objects = append(objects, fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>",
			contentRef))

		var stream strings.Builder
		for _, t := range texts {
			size := t.Size
			if size == 0 {
				size = 10
			}
			fmt.Fprintf(&stream, "BT /F1 %g Tf 1 0 0 1 %g %g Tm (%s) Tj ET\n", size, t.X, t.Y, escapePDFString(t.Text))
		}
		objects = append(objects, fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", stream.Len(), stream.String()))
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	return buf.Bytes()
}

// PDFRow lays out cells on one baseline, each cell starting at the given x.
func PDFRow(y float64, xs []float64, cells ...string) []PDFText {
	out := make([]PDFText, 0, len(cells))
	for i, c := range cells {
		if c == "" || i >= len(xs) {
			continue
		}
		out = append(out, PDFText{X: xs[i], Y: y, Size: 10, Text: c})
	}
	return out
}

func escapePDFString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}
