package compose

import (
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/gangsheet/pkg/asset"
	"github.com/matzehuels/gangsheet/pkg/layout"
	"github.com/matzehuels/gangsheet/pkg/page"
)

var (
	red  = color.NRGBA{R: 255, A: 255}
	blue = color.NRGBA{B: 255, A: 255}
)

func lookupOf(assets ...*asset.Asset) Lookup {
	return func(i int) *asset.Asset { return assets[i%len(assets)] }
}

func TestNewCanvas(t *testing.T) {
	tests := []struct {
		w, h    int
		wantNil bool
	}{
		{10, 10, false},
		{10, 0, true},
		{0, 10, true},
		{-1, 5, true},
	}
	for _, tt := range tests {
		got := NewCanvas(tt.w, tt.h)
		if (got == nil) != tt.wantNil {
			t.Errorf("NewCanvas(%d, %d) nil = %v, want %v", tt.w, tt.h, got == nil, tt.wantNil)
		}
	}
	if c := NewCanvas(3, 3); c.NRGBAAt(1, 1).A != 0 {
		t.Error("new canvas should be transparent")
	}
}

func TestDrawOverKeepsUnderlyingPixels(t *testing.T) {
	dst := NewCanvas(4, 1)
	Draw(dst, imaging.New(4, 1, red), 0, 0)

	// A half-transparent overlay with a fully transparent right half.
	src := image.NewNRGBA(image.Rect(0, 0, 4, 1))
	src.SetNRGBA(0, 0, blue)
	src.SetNRGBA(1, 0, blue)
	Draw(dst, src, 0, 0)

	if got := dst.NRGBAAt(0, 0); got != blue {
		t.Errorf("pixel 0 = %v, want blue", got)
	}
	if got := dst.NRGBAAt(3, 0); got != red {
		t.Errorf("pixel 3 = %v, want red preserved under transparent source", got)
	}
}

func TestDrawClipsOutsideCanvas(t *testing.T) {
	dst := NewCanvas(5, 5)
	Draw(dst, imaging.New(4, 4, red), 3, 3)
	if dst.NRGBAAt(4, 4) != red {
		t.Error("in-bounds part of source should be drawn")
	}
	Draw(nil, imaging.New(1, 1, red), 0, 0) // must not panic
}

func TestRollPlacesDesigns(t *testing.T) {
	a := asset.FromImage("a", imaging.New(10, 10, red))
	b := asset.FromImage("b", imaging.New(10, 20, blue))

	r := layout.Pack([]layout.Box{{W: 5, H: 5}, {W: 5, H: 10}}, 20, 2)
	img := Roll(r, lookupOf(a, b))

	if img.Bounds() != image.Rect(0, 0, 20, 10) {
		t.Fatalf("roll canvas = %v, want 20x10", img.Bounds())
	}
	if img.NRGBAAt(2, 2) != red {
		t.Errorf("(2,2) = %v, want red", img.NRGBAAt(2, 2))
	}
	if img.NRGBAAt(9, 8) != blue {
		t.Errorf("(9,8) = %v, want blue", img.NRGBAAt(9, 8))
	}
	if img.NRGBAAt(6, 2).A != 0 {
		t.Error("spacing gap should stay transparent")
	}
}

func TestRollEmpty(t *testing.T) {
	if img := Roll(layout.Pack(nil, 100, 5), lookupOf(nil)); img != nil {
		t.Errorf("Roll(empty) = %v, want nil", img.Bounds())
	}
}

func TestPageUsesLocalCoordinates(t *testing.T) {
	a := asset.FromImage("a", imaging.New(4, 4, red))

	boxes := []layout.Box{{W: 8, H: 8}, {W: 8, H: 8}, {W: 8, H: 8}}
	r := layout.Pack(boxes, 10, 1)
	pages := page.Split(r, 10)
	if len(pages) != 3 {
		t.Fatalf("pages = %d, want 3", len(pages))
	}

	img := Page(pages[2], r.CanvasWidth(), lookupOf(a))
	if img.Bounds() != image.Rect(0, 0, 10, 8) {
		t.Fatalf("page canvas = %v, want 10x8", img.Bounds())
	}
	if img.NRGBAAt(0, 0) != red || img.NRGBAAt(7, 7) != red {
		t.Error("design should start at the page's top-left corner")
	}
}

func TestPageOversizedNotClipped(t *testing.T) {
	a := asset.FromImage("wide", imaging.New(2, 1, red))
	r := layout.Pack([]layout.Box{{W: 30, H: 15}}, 20, 1)
	pages := page.Split(r, 0)

	img := Page(pages[0], r.CanvasWidth(), lookupOf(a))
	if img.Bounds().Dx() != 30 {
		t.Errorf("canvas width = %d, want 30", img.Bounds().Dx())
	}
	if img.NRGBAAt(29, 14) != red {
		t.Error("oversized design should be drawn in full")
	}
}

func TestResizerReleasesAfterLastUse(t *testing.T) {
	a := asset.FromImage("a", imaging.New(4, 4, red))
	b := asset.FromImage("b", imaging.New(4, 4, blue))
	assets := []*asset.Asset{a, a, b, b}

	placements := []layout.Placement{
		{Index: 0, W: 4, H: 4},
		{Index: 1, X: 5, W: 4, H: 4},
		{Index: 2, X: 10, W: 4, H: 4},
		{Index: 3, X: 15, W: 4, H: 4},
	}
	lookup := func(i int) *asset.Asset { return assets[i] }
	rs := newResizer(placements, lookup)

	first := rs.get(0, placements[0], a)
	if len(rs.live) != 1 {
		t.Fatalf("live = %d after first copy, want 1", len(rs.live))
	}
	if again := rs.get(1, placements[1], a); again != first {
		t.Error("second copy should reuse the resampled pixels")
	}
	if len(rs.live) != 0 {
		t.Errorf("live = %d after last copy of a, want 0", len(rs.live))
	}
	rs.get(2, placements[2], b)
	rs.get(3, placements[3], b)
	if len(rs.live) != 0 {
		t.Errorf("live = %d at end of page, want 0", len(rs.live))
	}

	img := render(placements, 20, 4, lookup)
	if img.NRGBAAt(1, 1) != red || img.NRGBAAt(16, 1) != blue {
		t.Error("designs should be drawn after release")
	}
}
