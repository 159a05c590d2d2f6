package pdftoppm

import (
	"context"
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/rfqx/internal/core/domain"
	"github.com/custodia-labs/rfqx/internal/testutil/fakes"
	"github.com/custodia-labs/rfqx/internal/testutil/fixtures"
)

func TestNew_Defaults(t *testing.T) {
	r := New()

	assert.Equal(t, DefaultBinary, r.binary)
	assert.Equal(t, DefaultDPI, r.dpi)
	assert.IsType(t, ExecRunner{}, r.runner)
}

func TestNew_Options(t *testing.T) {
	runner := &fakes.CommandRunner{}
	r := New(WithBinary("/opt/poppler/pdftoppm"), WithDPI(300), WithRunner(runner), WithDPI(0), WithBinary(""))

	assert.Equal(t, "/opt/poppler/pdftoppm", r.binary)
	assert.Equal(t, 300, r.dpi)
	assert.Same(t, runner, r.runner)
}

func TestRenderPages(t *testing.T) {
	runner := &fakes.CommandRunner{Pages: 12}
	r := New(WithRunner(runner))

	images, err := r.RenderPages(context.Background(), []byte("%PDF-1.4"), 9, 11)
	require.NoError(t, err)

	require.Len(t, images, 3)
	assert.Equal(t, "png-9", string(images[0]))
	assert.Equal(t, "png-10", string(images[1]))
	assert.Equal(t, "png-11", string(images[2]))

	require.Len(t, runner.Calls, 1)
	args := runner.Calls[0]
	assert.Equal(t, []string{"pdftoppm", "-r", "150", "-f", "9", "-l", "11", "-png"}, args[:8])
}

func TestRenderPages_Errors(t *testing.T) {
	t.Run("invalid range", func(t *testing.T) {
		_, err := New(WithRunner(&fakes.CommandRunner{})).RenderPages(context.Background(), nil, 3, 2)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("command fails", func(t *testing.T) {
		runner := &fakes.CommandRunner{Err: errors.New("exit status 1"), Stderr: "Syntax Error"}
		_, err := New(WithRunner(runner)).RenderPages(context.Background(), []byte("x"), 1, 1)

		assert.ErrorIs(t, err, domain.ErrExtractionFailed)
		assert.Contains(t, err.Error(), "Syntax Error")
	})

	t.Run("binary missing", func(t *testing.T) {
		runner := &fakes.CommandRunner{Err: exec.ErrNotFound}
		_, err := New(WithRunner(runner)).RenderPages(context.Background(), []byte("x"), 1, 1)

		assert.ErrorIs(t, err, domain.ErrExtractionFailed)
		assert.Contains(t, err.Error(), "not installed")
	})

	t.Run("no images", func(t *testing.T) {
		_, err := New(WithRunner(&fakes.CommandRunner{})).RenderPages(context.Background(), []byte("x"), 1, 1)
		assert.ErrorIs(t, err, domain.ErrExtractionFailed)
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := New(WithRunner(&fakes.CommandRunner{Pages: 1})).RenderPages(ctx, []byte("x"), 1, 1)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestPageCount(t *testing.T) {
	r := New()
	doc := fixtures.PDF(
		[]fixtures.PDFText{{X: 72, Y: 700, Size: 12, Text: "one"}},
		[]fixtures.PDFText{{X: 72, Y: 700, Size: 12, Text: "two"}},
	)

	n, err := r.PageCount(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = r.PageCount(context.Background(), []byte("not a pdf"))
	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
}
