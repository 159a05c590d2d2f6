package vision

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/rfqx/internal/core/domain"
	"github.com/custodia-labs/rfqx/internal/core/ports/driven"
	"github.com/custodia-labs/rfqx/internal/extractors"
	"github.com/custodia-labs/rfqx/internal/logger"
	"github.com/custodia-labs/rfqx/internal/normtext"
	"github.com/custodia-labs/rfqx/internal/testutil/fakes"
)

type promptStub struct{ text string }

func (p promptStub) Load(string) (string, error) { return p.text, nil }
func (p promptStub) Reload()                     {}

func pdfFile() *domain.SourceFile {
	return &domain.SourceFile{Name: "scan.pdf", MIMEType: extractors.MIMEPDF, Content: []byte("%PDF-1.4")}
}

func TestNew_Defaults(t *testing.T) {
	e := New(fakes.NewLLM(), nil, nil, Options{})
	assert.Equal(t, "vision", e.Name())
	assert.Equal(t, domain.KindVision, e.Kind())
	assert.Equal(t, 10, e.opts.PageCap)
	assert.Equal(t, 1, e.opts.BatchSize)
	assert.Contains(t, e.SupportedMIMETypes(), extractors.MIMEPDF)
	assert.Contains(t, e.SupportedMIMETypes(), extractors.MIMEJPEG)
}

func TestRegister(t *testing.T) {
	reg := extractors.NewRegistry()
	assert.False(t, Register(reg, nil, nil, nil, Options{}))
	assert.Empty(t, reg.Strategies(extractors.MIMEPDF))

	assert.True(t, Register(reg, fakes.NewLLM(), nil, nil, Options{}))
	assert.Len(t, reg.Strategies(extractors.MIMEPDF), 1)
}

func TestExtract_Image(t *testing.T) {
	llm := fakes.NewLLM("```\n=== TABLE START ===\nHEADERS: Item | Qty\nROW: Pump | 2\n=== TABLE END ===\n```")
	e := New(llm, nil, promptStub{"transcribe"}, Options{})

	out, err := e.Extract(context.Background(), &domain.SourceFile{MIMEType: extractors.MIMEPNG, Content: []byte("img")})
	require.NoError(t, err)
	assert.Equal(t, "=== TABLE START ===\nHEADERS: Item | Qty\nROW: Pump | 2\n=== TABLE END ===", out.Text)
	assert.Equal(t, domain.MethodVision, out.Method)
	assert.Equal(t, 1, out.Pages)

	require.Len(t, llm.Calls, 1)
	msgs := llm.Calls[0]
	require.Len(t, msgs, 2)
	assert.Equal(t, driven.RoleSystem, msgs[0].Role)
	assert.Equal(t, "transcribe", msgs[0].Content)
	require.Len(t, msgs[1].Images, 1)
	assert.Equal(t, extractors.MIMEPNG, msgs[1].Images[0].MIMEType)
	assert.Equal(t, []byte("img"), msgs[1].Images[0].Data)
}

func TestExtract_PageCap(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	t.Cleanup(func() { logger.SetOutput(os.Stderr) })

	renderer := &fakes.Renderer{Pages: 25}
	llm := fakes.NewLLM("page text")
	e := New(llm, renderer, nil, Options{PageCap: 10})

	out, err := e.Extract(context.Background(), pdfFile())
	require.NoError(t, err)
	assert.Equal(t, 10, out.Pages)
	assert.Equal(t, [][2]int{{1, 10}}, renderer.Rendered)
	assert.Equal(t, 10, llm.CallCount())
	assert.Contains(t, buf.String(), "vision page cap reached")
}

func TestExtract_Batches(t *testing.T) {
	renderer := &fakes.Renderer{Pages: 5}
	llm := fakes.NewLLM("a", "b", "c")
	e := New(llm, renderer, nil, Options{BatchSize: 2})

	out, err := e.Extract(context.Background(), pdfFile())
	require.NoError(t, err)
	assert.Equal(t, "a\n\nb\n\nc", out.Text)

	require.Len(t, llm.Calls, 3)
	assert.Len(t, llm.Calls[0][1].Images, 2)
	assert.Len(t, llm.Calls[1][1].Images, 2)
	assert.Len(t, llm.Calls[2][1].Images, 1)
	assert.Equal(t, "Pages 1-2 of 5.", llm.Calls[0][1].Content)
	assert.Equal(t, "Page 5 of 5.", llm.Calls[2][1].Content)
	assert.Equal(t, []byte("page-5"), llm.Calls[2][1].Images[0].Data)
}

func TestExtract_FailedBatchSkipped(t *testing.T) {
	logger.SetOutput(&bytes.Buffer{})
	t.Cleanup(func() { logger.SetOutput(os.Stderr) })

	llm := &fakes.LLM{Script: []fakes.Reply{
		{Text: "first"},
		{Err: errors.New("model overloaded")},
		{Text: "third"},
	}}
	e := New(llm, &fakes.Renderer{Pages: 3}, nil, Options{})

	out, err := e.Extract(context.Background(), pdfFile())
	require.NoError(t, err)
	assert.Equal(t, "first\n\nthird", out.Text)
}

func TestExtract_AllBatchesFail(t *testing.T) {
	logger.SetOutput(&bytes.Buffer{})
	t.Cleanup(func() { logger.SetOutput(os.Stderr) })

	boom := errors.New("boom")
	llm := &fakes.LLM{Script: []fakes.Reply{{Err: boom}}}
	e := New(llm, &fakes.Renderer{Pages: 2}, nil, Options{})

	out, err := e.Extract(context.Background(), pdfFile())
	assert.Nil(t, out)
	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
	assert.ErrorIs(t, err, boom)
}

func TestExtract_RepairsFragments(t *testing.T) {
	llm := fakes.NewLLM("=== TABLE START ===\nHEADERS: A | B\nROW: 1 | 2", "=== TABLE END ===\ntrailing")
	e := New(llm, &fakes.Renderer{Pages: 2}, nil, Options{})

	out, err := e.Extract(context.Background(), pdfFile())
	require.NoError(t, err)
	assert.NoError(t, normtext.CheckIntegrity(out.Text))
}

func TestExtract_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	llm := &fakes.LLM{Respond: func([]driven.ChatMessage) (string, error) {
		cancel()
		return "text", nil
	}}
	e := New(llm, &fakes.Renderer{Pages: 3}, nil, Options{})

	_, err := e.Extract(ctx, pdfFile())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, llm.CallCount())
}

func TestExtract_RunConfigOverridesOptions(t *testing.T) {
	renderer := &fakes.Renderer{Pages: 5}
	llm := fakes.NewLLM("a", "b")
	e := New(llm, renderer, nil, Options{PageCap: 10, BatchSize: 1})

	cfg := domain.DefaultExtractionConfig()
	cfg.VisionPageCap = 4
	cfg.VisionBatchSize = 2
	out, err := e.Extract(driven.WithExtractionConfig(context.Background(), cfg), pdfFile())
	require.NoError(t, err)

	assert.Equal(t, [][2]int{{1, 4}}, renderer.Rendered)
	assert.Equal(t, 4, out.Pages)
	assert.Equal(t, 2, llm.CallCount())
	assert.Equal(t, "a\n\nb", out.Text)
}

func TestExtract_DeadlineKeepsPagesRead(t *testing.T) {
	logger.SetOutput(&bytes.Buffer{})
	t.Cleanup(func() { logger.SetOutput(os.Stderr) })

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	calls := 0
	llm := &fakes.LLM{Respond: func([]driven.ChatMessage) (string, error) {
		calls++
		if calls == 3 {
			<-ctx.Done()
		}
		return fmt.Sprintf("page %d", calls), nil
	}}
	e := New(llm, &fakes.Renderer{Pages: 5}, nil, Options{})

	out, err := e.Extract(ctx, pdfFile())
	require.NoError(t, err)

	assert.Equal(t, "page 1\n\npage 2", out.Text)
	assert.Equal(t, 2, out.Pages)
	assert.Equal(t, 3, llm.CallCount())
}

func TestExtract_DeadlineBeforeAnyPage(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	llm := &fakes.LLM{Respond: func([]driven.ChatMessage) (string, error) {
		<-ctx.Done()
		return "late", nil
	}}
	e := New(llm, &fakes.Renderer{Pages: 2}, nil, Options{})

	out, err := e.Extract(ctx, pdfFile())
	assert.Nil(t, out)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestExtract_RendererErrors(t *testing.T) {
	e := New(fakes.NewLLM(), &fakes.Renderer{CountErr: errors.New("pdfinfo missing")}, nil, Options{})
	_, err := e.Extract(context.Background(), pdfFile())
	assert.ErrorIs(t, err, domain.ErrExtractionFailed)

	e = New(fakes.NewLLM(), nil, nil, Options{})
	_, err = e.Extract(context.Background(), pdfFile())
	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestExtract_UnsupportedTypeIsEmpty(t *testing.T) {
	llm := fakes.NewLLM("x")
	out, err := New(llm, nil, nil, Options{}).Extract(context.Background(), &domain.SourceFile{MIMEType: "text/plain"})
	require.NoError(t, err)
	assert.Empty(t, out.Text)
	assert.Zero(t, llm.CallCount())
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, "a\nb", stripFences("```text\na\nb\n```"))
	assert.Equal(t, "plain", stripFences("  plain  "))
}
