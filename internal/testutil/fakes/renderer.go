package fakes

import (
	"context"
	"fmt"

	"github.com/custodia-labs/rfqx/internal/core/ports/driven"
)

// Ensure Renderer implements the interface.
var _ driven.PageRenderer = (*Renderer)(nil)

// Renderer pretends every PDF has Pages pages. Page images are the bytes
// "page-N".
type Renderer struct {
	Pages     int
	CountErr  error
	RenderErr error

	// Rendered records each requested first/last range.
	Rendered [][2]int
}

// PageCount returns Pages.
func (r *Renderer) PageCount(context.Context, []byte) (int, error) {
	return r.Pages, r.CountErr
}

// RenderPages returns one fake image per requested page.
func (r *Renderer) RenderPages(ctx context.Context, _ []byte, first, last int) ([][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.RenderErr != nil {
		return nil, r.RenderErr
	}
	r.Rendered = append(r.Rendered, [2]int{first, last})

	var out [][]byte
	for p := first; p <= last && p <= r.Pages; p++ {
		out = append(out, []byte(fmt.Sprintf("page-%d", p)))
	}
	return out, nil
}
