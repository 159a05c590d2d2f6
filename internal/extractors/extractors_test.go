package extractors

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/rfqx/internal/core/domain"
	"github.com/custodia-labs/rfqx/internal/core/ports/driven"
)

type fakeExtractor struct {
	name     string
	kind     domain.StrategyKind
	priority int
	types    []string
}

func (f *fakeExtractor) Name() string                 { return f.name }
func (f *fakeExtractor) Kind() domain.StrategyKind    { return f.kind }
func (f *fakeExtractor) SupportedMIMETypes() []string { return f.types }
func (f *fakeExtractor) Priority() int                { return f.priority }
func (f *fakeExtractor) Extract(context.Context, *domain.SourceFile) (*driven.Extraction, error) {
	return &driven.Extraction{Method: f.name}, nil
}

func names(es []driven.Extractor) []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.Name()
	}
	return out
}

func TestRegistry_Strategies_OrderedByKindThenPriority(t *testing.T) {
	r := NewRegistry()
	r.Register(&fakeExtractor{name: "vision", kind: domain.KindVision, priority: 50, types: []string{MIMEPDF}})
	r.Register(&fakeExtractor{name: "layout", kind: domain.KindLayout, priority: 5, types: []string{Wildcard}})
	r.Register(&fakeExtractor{name: "pdf-basic", kind: domain.KindFormat, priority: 50, types: []string{MIMEPDF}})
	r.Register(&fakeExtractor{name: "pdf-best", kind: domain.KindFormat, priority: 90, types: []string{MIMEPDF}})
	r.Register(&fakeExtractor{name: "docx", kind: domain.KindFormat, priority: 50, types: []string{MIMEDOCX}})
	r.Register(nil)

	got := r.Strategies("application/pdf")

	assert.Equal(t, []string{"pdf-best", "pdf-basic", "layout", "vision"}, names(got))
}

func TestRegistry_Strategies_CanonicalisesMIME(t *testing.T) {
	r := NewRegistry()
	r.Register(&fakeExtractor{name: "text", types: []string{MIMEPlainText}})

	assert.Equal(t, []string{"text"}, names(r.Strategies("Text/Plain; charset=utf-8")))
	assert.Empty(t, r.Strategies("image/tiff"))
}

func TestRegistry_SupportedMIMETypes(t *testing.T) {
	r := NewRegistry()
	r.Register(&fakeExtractor{name: "a", types: []string{MIMEPDF, MIMEDOCX}})
	r.Register(&fakeExtractor{name: "b", types: []string{MIMEPDF, Wildcard}})

	assert.Equal(t, []string{MIMEPDF, MIMEDOCX}, r.SupportedMIMETypes())
}

func TestDetectMIME(t *testing.T) {
	pdfHead := []byte("%PDF-1.4\n%âãÏÓ\n1 0 obj")

	tests := []struct {
		name     string
		filename string
		content  []byte
		want     string
	}{
		{"pdf by extension", "rfq.PDF", nil, MIMEPDF},
		{"markdown by extension", "notes.md", []byte("# Title"), MIMEMarkdown},
		{"csv by extension", "items.csv", []byte("a,b"), MIMECSV},
		{"pdf sniffed", "upload.bin", pdfHead, MIMEPDF},
		{"png sniffed", "scan", []byte("\x89PNG\r\n\x1a\n0000"), MIMEPNG},
		{"text sniffed", "readme", []byte("plain words here"), MIMEPlainText},
		{"empty", "", nil, MIMEOctet},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectMIME(tt.filename, tt.content))
		})
	}
}

func TestCanonical(t *testing.T) {
	assert.Equal(t, "text/html", Canonical("text/html; charset=UTF-8"))
	assert.Equal(t, "application/pdf", Canonical(" application/pdf "))
}

func TestIsImage(t *testing.T) {
	assert.True(t, IsImage(MIMEPNG))
	assert.False(t, IsImage(MIMEPDF))
}

func TestFailed(t *testing.T) {
	cause := errors.New("bad xref")

	err := Failed("pdf", cause)

	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "pdf")
	assert.ErrorIs(t, Failed("pdf", nil), domain.ErrExtractionFailed)
}

func TestRecover(t *testing.T) {
	run := func() (err error) {
		defer Recover("xlsx", &err)
		panic("index out of range")
	}

	err := run()

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
	assert.Contains(t, err.Error(), "index out of range")
}

func TestKnownExtension(t *testing.T) {
	assert.True(t, KnownExtension("RFQ.PDF"))
	assert.True(t, KnownExtension("dir/quote.xlsx"))
	assert.False(t, KnownExtension("archive.zip"))
	assert.False(t, KnownExtension("README"))
}
