package layout

// Box is the pixel size of one item at one resolution tier.
type Box struct {
	W int `json:"w"`
	H int `json:"h"`
}

// Placement is the resolved position of one box on the roll.
// Index refers to the box's position in the slice passed to [Pack].
type Placement struct {
	Index int `json:"index"`
	X     int `json:"x"`
	Y     int `json:"y"`
	W     int `json:"w"`
	H     int `json:"h"`
}

// Right returns the x coordinate just past the placement's right edge.
func (p Placement) Right() int { return p.X + p.W }

// Bottom returns the y coordinate just past the placement's bottom edge.
func (p Placement) Bottom() int { return p.Y + p.H }

// Shelf is one packed row. It owns Placements[First : First+Count] of its Roll.
type Shelf struct {
	Y      int `json:"y"`
	Height int `json:"height"`
	First  int `json:"first"`
	Count  int `json:"count"`
}

// Bottom returns the y coordinate just past the shelf's tallest box.
func (s Shelf) Bottom() int { return s.Y + s.Height }

// Roll is the complete packing of one box sequence at one tier.
type Roll struct {
	Width      int         `json:"width"`   // nominal canvas width
	Spacing    int         `json:"spacing"` // gap between boxes and between shelves
	Height     int         `json:"height"`  // y of last shelf + its height; 0 when empty
	Extent     int         `json:"extent"`  // max right edge, may exceed Width
	Placements []Placement `json:"placements"`
	Shelves    []Shelf     `json:"shelves"`
	Oversized  []int       `json:"oversized,omitempty"` // indexes of boxes wider than Width
}

// Empty reports whether the roll holds no placements.
func (r Roll) Empty() bool { return len(r.Placements) == 0 }

// ShelfPlacements returns the placements owned by shelf i.
func (r Roll) ShelfPlacements(i int) []Placement {
	s := r.Shelves[i]
	return r.Placements[s.First : s.First+s.Count]
}

// CanvasWidth returns the buffer width needed to draw the roll without
// clipping oversized boxes.
func (r Roll) CanvasWidth() int {
	return max(r.Width, r.Extent)
}

// Pack places boxes left to right, top to bottom on a canvas of the given
// width, keeping spacing pixels between neighbours and between shelves.
func Pack(boxes []Box, width, spacing int) Roll {
	r := Roll{
		Width:      width,
		Spacing:    spacing,
		Placements: make([]Placement, 0, len(boxes)),
	}
	if len(boxes) == 0 {
		return r
	}

	x, y, h := 0, 0, 0
	shelf := Shelf{}

	for i, b := range boxes {
		var px int
		switch {
		case x == 0:
			px = 0
		case x+spacing+b.W <= width:
			px = x + spacing
		default:
			shelf.Height = h
			r.Shelves = append(r.Shelves, shelf)
			y += h + spacing
			x, h = 0, 0
			shelf = Shelf{Y: y, First: i}
			px = 0
		}

		p := Placement{Index: i, X: px, Y: y, W: b.W, H: b.H}
		r.Placements = append(r.Placements, p)
		shelf.Count++

		x = px + b.W
		h = max(h, b.H)
		r.Extent = max(r.Extent, p.Right())
		if b.W > width {
			r.Oversized = append(r.Oversized, i)
		}
	}

	shelf.Height = h
	r.Shelves = append(r.Shelves, shelf)
	r.Height = y + h
	return r
}
