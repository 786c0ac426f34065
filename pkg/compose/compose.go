// Package compose draws packed designs onto transparent canvases.
//
// Compositing is the only step that touches full-resolution pixels, so it is
// organised around one buffer at a time: [Page] allocates exactly one
// page-sized canvas. Copies of the same design on a page are resampled once
// and drawn many times; the resampled pixels are released as soon as the last
// copy on the page has been drawn.
//
// Drawing uses golang.org/x/image/draw with the Over operator so that the
// transparent margins of neighbouring designs never erase each other.
package compose

import (
	"image"

	xdraw "golang.org/x/image/draw"

	"github.com/matzehuels/gangsheet/pkg/asset"
	"github.com/matzehuels/gangsheet/pkg/layout"
	"github.com/matzehuels/gangsheet/pkg/page"
)

// Lookup returns the asset behind a placement index.
type Lookup func(index int) *asset.Asset

// NewCanvas returns a fully transparent w x h canvas, or nil when either
// dimension is not positive.
func NewCanvas(w, h int) *image.NRGBA {
	if w <= 0 || h <= 0 {
		return nil
	}
	return image.NewNRGBA(image.Rect(0, 0, w, h))
}

// Draw alpha-composites src onto dst with its top-left corner at (x, y).
// Pixels falling outside dst are dropped.
func Draw(dst *image.NRGBA, src image.Image, x, y int) {
	if dst == nil || src == nil {
		return
	}
	b := src.Bounds()
	r := image.Rect(x, y, x+b.Dx(), y+b.Dy())
	xdraw.Draw(dst, r, src, b.Min, xdraw.Over)
}

// Page renders one page at the given canvas width. It returns nil for a page
// of zero height.
func Page(p page.Page, width int, lookup Lookup) *image.NRGBA {
	return render(p.Placements, width, p.Height, lookup)
}

// Roll renders a whole roll as a single image. It is meant for preview-tier
// rolls only; final-tier rolls go through [Page].
func Roll(r layout.Roll, lookup Lookup) *image.NRGBA {
	return render(r.Placements, r.CanvasWidth(), r.Height, lookup)
}

type resizeKey struct {
	id   string
	w, h int
}

// resizer holds resampled design pixels while a canvas is being drawn. An
// entry is released after the last placement that uses it, so at most the
// designs still pending on the current canvas are held.
type resizer struct {
	last map[resizeKey]int
	live map[resizeKey]*image.NRGBA
}

func newResizer(placements []layout.Placement, lookup Lookup) *resizer {
	rs := &resizer{
		last: make(map[resizeKey]int),
		live: make(map[resizeKey]*image.NRGBA),
	}
	for i, p := range placements {
		if a := lookup(p.Index); !a.Empty() {
			rs.last[resizeKey{a.ID, p.W, p.H}] = i
		}
	}
	return rs
}

// get returns a's pixels at the size of placement i.
func (rs *resizer) get(i int, p layout.Placement, a *asset.Asset) *image.NRGBA {
	k := resizeKey{a.ID, p.W, p.H}
	img, ok := rs.live[k]
	if !ok {
		img = a.Resize(layout.Box{W: p.W, H: p.H})
		rs.live[k] = img
	}
	if rs.last[k] == i {
		delete(rs.live, k)
	}
	return img
}

func render(placements []layout.Placement, width, height int, lookup Lookup) *image.NRGBA {
	canvas := NewCanvas(width, height)
	if canvas == nil {
		return nil
	}

	rs := newResizer(placements, lookup)
	for i, p := range placements {
		a := lookup(p.Index)
		if a.Empty() {
			continue
		}
		Draw(canvas, rs.get(i, p, a), p.X, p.Y)
	}
	return canvas
}
