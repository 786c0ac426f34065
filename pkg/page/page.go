// Package page slices a packed roll into length-bounded output pages.
//
// Pages are cut only between shelves, never inside one, so no design is ever
// split across two pages. A page starts at the y coordinate of its first
// shelf and keeps taking shelves while the last one still ends within the
// page length. A shelf that is taller than the page length on its own gets a
// page to itself and that page is allowed to exceed the limit; truncating it
// would destroy artwork.
//
// Origins follow the shelves rather than a fixed grid of page length steps:
// a grid origin would fall inside the spacing above a shelf and give
// negative local coordinates.
//
//	roll y                 pages (T = page length)
//	  0 ┌──────────┐ ┐
//	    │ shelf 0  │ │
//	    ├──────────┤ │ page_01, origin 0
//	    │ shelf 1  │ │
//	    └──────────┘ ┘ ← shelf 2 would end past origin + T
//	    ┌──────────┐ ┐
//	    │ shelf 2  │ │ page_02, origin = shelf 2 y
//	    └──────────┘ ┘
package page

import (
	"fmt"

	"github.com/matzehuels/gangsheet/pkg/layout"
)

// Page is a run of whole shelves from one roll.
//
// Placements are in page-local coordinates: y is relative to Origin.
type Page struct {
	Number     int                `json:"number"` // 1-based
	Origin     int                `json:"origin"` // roll y of the page's first shelf
	Height     int                `json:"height"` // bottom of the last shelf minus Origin
	Shelves    []layout.Shelf     `json:"shelves"`
	Placements []layout.Placement `json:"placements"`
}

// Name returns the page's archive name: page_01, page_02, ... page_100.
func (p Page) Name() string {
	return Name(p.Number)
}

// Overflows reports whether the page is taller than maxHeight. This only
// happens for a page holding a single shelf taller than the page length.
func (p Page) Overflows(maxHeight int) bool {
	return maxHeight > 0 && p.Height > maxHeight
}

// Name formats a 1-based page number as an archive name.
func Name(n int) string {
	return fmt.Sprintf("page_%02d", n)
}

// Split groups the roll's shelves into pages no taller than maxHeight pixels.
// A maxHeight of zero or less puts every shelf on a single page.
// An empty roll yields no pages.
func Split(r layout.Roll, maxHeight int) []Page {
	if len(r.Shelves) == 0 {
		return nil
	}

	var pages []Page
	var cur *Page

	for i, s := range r.Shelves {
		if cur != nil && maxHeight > 0 && s.Bottom()-cur.Origin > maxHeight {
			pages = append(pages, *cur)
			cur = nil
		}
		if cur == nil {
			cur = &Page{Number: len(pages) + 1, Origin: s.Y}
		}

		local := s
		local.Y -= cur.Origin
		local.First = len(cur.Placements)
		cur.Shelves = append(cur.Shelves, local)

		for _, p := range r.ShelfPlacements(i) {
			p.Y -= cur.Origin
			cur.Placements = append(cur.Placements, p)
		}
		cur.Height = s.Bottom() - cur.Origin
	}

	return append(pages, *cur)
}
