package driven

import "context"

// PageRenderer rasterises document pages for vision models.
type PageRenderer interface {
	// PageCount returns the number of pages in a PDF.
	PageCount(ctx context.Context, pdf []byte) (int, error)

	// RenderPages renders pages first..last (1-based, inclusive) as PNG images.
	RenderPages(ctx context.Context, pdf []byte, first, last int) ([][]byte, error)
}
