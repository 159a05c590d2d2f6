package layout

import (
	"context"
	"sort"

	"github.com/custodia-labs/rfqx/internal/extractors/pdf"
	"github.com/custodia-labs/rfqx/internal/normtext"
)

// Column detection parameters.
const (
	// columnGap is the narrowest horizontal gap considered a gutter.
	columnGap = 30.0

	// bucketSize groups gap centres so gutters of varying width line up.
	bucketSize = 20.0

	// minRowsPct is the share of lines that must show a gap at a gutter.
	minRowsPct = 25

	// minRowsForColumn is the floor on lines showing a gap at a gutter.
	minRowsForColumn = 3

	// minProseWords is the average words per line a column must carry.
	// Table columns hold short cells and stay below it.
	minProseWords = 3.0
)

func pdfText(ctx context.Context, content []byte) (string, int, error) {
	pages, err := pdf.ReadPages(content)
	if err != nil {
		return "", 0, err
	}

	var b normtext.Builder
	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return "", 0, err
		}
		b.Line("")
		if len(page.Words) == 0 {
			b.Line(page.Plain)
			continue
		}
		for i, column := range splitColumns(page.Words) {
			if i > 0 {
				b.Line("")
			}
			for _, block := range pdf.DetectBlocks(pdf.GroupLines(column), pdf.Relaxed) {
				block.WriteTo(&b)
			}
		}
	}
	return b.String(), len(pages), nil
}

// splitColumns returns the page's words split into columns, left to right.
// A gutter must show a wide gap on enough lines, be crossed by no word,
// and leave prose on both sides.
func splitColumns(words []pdf.Word) [][]pdf.Word {
	lines := pdf.GroupLines(words)
	if len(lines) == 0 {
		return nil
	}

	counts := make(map[int]int)
	for _, line := range lines {
		for i := 1; i < len(line.Words); i++ {
			left, right := line.Words[i-1].Right, line.Words[i].X
			if right-left >= columnGap {
				counts[int((left+right)/2/bucketSize)]++
			}
		}
	}

	minRows := len(lines) * minRowsPct / 100
	if minRows < minRowsForColumn {
		minRows = minRowsForColumn
	}

	var gutters []float64
	for bucket, count := range counts {
		if count < minRows {
			continue
		}
		if x, ok := clearX(words, float64(bucket)*bucketSize); ok {
			gutters = append(gutters, x)
		}
	}
	if len(gutters) == 0 {
		return [][]pdf.Word{words}
	}
	sort.Float64s(gutters)

	merged := gutters[:1]
	for _, g := range gutters[1:] {
		if g-merged[len(merged)-1] > bucketSize*2 {
			merged = append(merged, g)
		}
	}

	columns := make([][]pdf.Word, len(merged)+1)
	for _, w := range words {
		center := (w.X + w.Right) / 2
		k := sort.SearchFloat64s(merged, center)
		columns[k] = append(columns[k], w)
	}

	for _, column := range columns {
		if !proseLike(column) {
			return [][]pdf.Word{words}
		}
	}
	return columns
}

// clearX returns an x position within the bucket that no word covers.
func clearX(words []pdf.Word, bucketStart float64) (float64, bool) {
	for _, x := range []float64{bucketStart + bucketSize/2, bucketStart, bucketStart + bucketSize} {
		covered := false
		for _, w := range words {
			if w.X < x && x < w.Right {
				covered = true
				break
			}
		}
		if !covered {
			return x, true
		}
	}
	return 0, false
}

func proseLike(words []pdf.Word) bool {
	lines := pdf.GroupLines(words)
	if len(lines) == 0 {
		return false
	}
	return float64(len(words))/float64(len(lines)) >= minProseWords
}
