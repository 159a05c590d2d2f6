// Package pdftoppm rasterises PDF pages to PNG with poppler's pdftoppm, for
// the vision extraction strategy.
package pdftoppm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/custodia-labs/rfqx/internal/core/domain"
	"github.com/custodia-labs/rfqx/internal/core/ports/driven"
	"github.com/custodia-labs/rfqx/internal/extractors/pdf"
)

// Ensure Renderer implements the interface.
var _ driven.PageRenderer = (*Renderer)(nil)

// Default configuration values.
const (
	DefaultBinary = "pdftoppm"
	DefaultDPI    = 150
)

// Renderer renders pages through the pdftoppm binary.
type Renderer struct {
	binary string
	dpi    int
	runner CommandRunner
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithBinary sets the pdftoppm binary name or path.
func WithBinary(path string) Option {
	return func(r *Renderer) {
		if path != "" {
			r.binary = path
		}
	}
}

// WithDPI sets the render resolution.
func WithDPI(dpi int) Option {
	return func(r *Renderer) {
		if dpi > 0 {
			r.dpi = dpi
		}
	}
}

// WithRunner replaces the command runner.
func WithRunner(runner CommandRunner) Option {
	return func(r *Renderer) {
		if runner != nil {
			r.runner = runner
		}
	}
}

// New creates a renderer.
func New(opts ...Option) *Renderer {
	r := &Renderer{
		binary: DefaultBinary,
		dpi:    DefaultDPI,
		runner: ExecRunner{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Available reports whether the pdftoppm binary can be found.
func (r *Renderer) Available() bool {
	_, err := exec.LookPath(r.binary)
	return err == nil
}

// PageCount returns the number of pages in a PDF.
func (r *Renderer) PageCount(_ context.Context, content []byte) (int, error) {
	return pdf.PageCount(content)
}

// RenderPages renders pages first..last (1-based, inclusive) as PNG images.
func (r *Renderer) RenderPages(ctx context.Context, content []byte, first, last int) ([][]byte, error) {
	if first < 1 || last < first {
		return nil, fmt.Errorf("%w: invalid page range %d-%d", domain.ErrInvalidInput, first, last)
	}

	dir, err := os.MkdirTemp("", "rfqx-render-*")
	if err != nil {
		return nil, fmt.Errorf("pdftoppm: create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	in := filepath.Join(dir, "in.pdf")
	if err := os.WriteFile(in, content, 0o600); err != nil {
		return nil, fmt.Errorf("pdftoppm: write input: %w", err)
	}

	prefix := filepath.Join(dir, "page")
	_, stderr, err := r.runner.Run(ctx, r.binary,
		"-r", strconv.Itoa(r.dpi),
		"-f", strconv.Itoa(first),
		"-l", strconv.Itoa(last),
		"-png", in, prefix)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, exec.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s not installed: %w", domain.ErrExtractionFailed, r.binary, err)
		}
		return nil, fmt.Errorf("%w: pdftoppm: %s: %w",
			domain.ErrExtractionFailed, strings.TrimSpace(string(stderr)), err)
	}

	files, err := pageFiles(prefix)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: pdftoppm produced no images", domain.ErrExtractionFailed)
	}

	images := make([][]byte, 0, len(files))
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("pdftoppm: read %s: %w", filepath.Base(f), err)
		}
		images = append(images, data)
	}
	return images, nil
}

// pageFiles lists prefix-N.png in page order. pdftoppm zero-pads N to the
// width of the document's page count, so the number is parsed rather than
// sorted as text.
func pageFiles(prefix string) ([]string, error) {
	matches, err := filepath.Glob(prefix + "-*.png")
	if err != nil {
		return nil, err
	}
	page := func(path string) int {
		s := strings.TrimSuffix(strings.TrimPrefix(path, prefix+"-"), ".png")
		n, _ := strconv.Atoi(s)
		return n
	}
	sort.Slice(matches, func(i, j int) bool { return page(matches[i]) < page(matches[j]) })
	return matches, nil
}
