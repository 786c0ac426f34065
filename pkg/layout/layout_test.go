package layout

import (
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// Canvas geometry at 10 px/cm: 55 cm roll, 0.5 cm spacing.
const (
	rollW   = 550
	spacing = 5
)

func repeat(b Box, n int) []Box {
	out := make([]Box, n)
	for i := range out {
		out[i] = b
	}
	return out
}

func TestPackEmpty(t *testing.T) {
	r := Pack(nil, rollW, spacing)

	if r.Height != 0 {
		t.Errorf("Height = %d, want 0", r.Height)
	}
	if len(r.Shelves) != 0 {
		t.Errorf("Shelves = %d, want 0", len(r.Shelves))
	}
	if !r.Empty() {
		t.Error("Empty() = false, want true")
	}
	if r.CanvasWidth() != rollW {
		t.Errorf("CanvasWidth() = %d, want %d", r.CanvasWidth(), rollW)
	}
}

func TestPackBackDesigns(t *testing.T) {
	// Three 22.5 cm designs: two fit (22.5+0.5+22.5 = 45.5), a third would need 68.
	const h = 300
	r := Pack(repeat(Box{W: 225, H: h}, 3), rollW, spacing)

	want := []Placement{
		{Index: 0, X: 0, Y: 0, W: 225, H: h},
		{Index: 1, X: 230, Y: 0, W: 225, H: h},
		{Index: 2, X: 0, Y: h + spacing, W: 225, H: h},
	}
	if diff := cmp.Diff(want, r.Placements); diff != "" {
		t.Errorf("Placements mismatch (-want +got):\n%s", diff)
	}

	wantShelves := []Shelf{
		{Y: 0, Height: h, First: 0, Count: 2},
		{Y: h + spacing, Height: h, First: 2, Count: 1},
	}
	if diff := cmp.Diff(wantShelves, r.Shelves); diff != "" {
		t.Errorf("Shelves mismatch (-want +got):\n%s", diff)
	}

	if r.Height != 2*h+spacing {
		t.Errorf("Height = %d, want %d", r.Height, 2*h+spacing)
	}
}

func TestPackExactFill(t *testing.T) {
	// Ten 5 cm designs fill 10*5 + 9*0.5 = 54.5 cm of a 55 cm roll.
	r := Pack(repeat(Box{W: 50, H: 40}, 10), rollW, spacing)
	if len(r.Shelves) != 1 {
		t.Fatalf("10 items: shelves = %d, want 1", len(r.Shelves))
	}
	if last := r.Placements[9]; last.Right() != 545 {
		t.Errorf("last right edge = %d, want 545", last.Right())
	}

	r = Pack(repeat(Box{W: 50, H: 40}, 11), rollW, spacing)
	if len(r.Shelves) != 2 {
		t.Fatalf("11 items: shelves = %d, want 2", len(r.Shelves))
	}
	if p := r.Placements[10]; p.X != 0 || p.Y != 45 {
		t.Errorf("11th item at (%d,%d), want (0,45)", p.X, p.Y)
	}
}

func TestPackShelfHeightIsTallest(t *testing.T) {
	boxes := []Box{{W: 100, H: 30}, {W: 100, H: 80}, {W: 100, H: 50}}
	r := Pack(boxes, rollW, spacing)

	if len(r.Shelves) != 1 {
		t.Fatalf("shelves = %d, want 1", len(r.Shelves))
	}
	if r.Shelves[0].Height != 80 {
		t.Errorf("shelf height = %d, want 80", r.Shelves[0].Height)
	}
	if r.Height != 80 {
		t.Errorf("Height = %d, want 80", r.Height)
	}
}

func TestPackOversized(t *testing.T) {
	boxes := []Box{{W: 100, H: 10}, {W: 700, H: 20}, {W: 100, H: 10}}
	r := Pack(boxes, rollW, spacing)

	if diff := cmp.Diff([]int{1}, r.Oversized); diff != "" {
		t.Errorf("Oversized mismatch (-want +got):\n%s", diff)
	}
	if len(r.Shelves) != 3 {
		t.Fatalf("shelves = %d, want 3 (oversized item alone)", len(r.Shelves))
	}
	if got := r.ShelfPlacements(1); len(got) != 1 || got[0].Index != 1 || got[0].X != 0 {
		t.Errorf("oversized shelf = %+v, want single item at x=0", got)
	}
	if r.Extent != 700 {
		t.Errorf("Extent = %d, want 700", r.Extent)
	}
	if r.CanvasWidth() != 700 {
		t.Errorf("CanvasWidth() = %d, want 700", r.CanvasWidth())
	}
	if r.Height != 10+5+20+5+10 {
		t.Errorf("Height = %d, want %d", r.Height, 10+5+20+5+10)
	}
}

func randomBoxes(rng *rand.Rand, n int) []Box {
	boxes := make([]Box, n)
	for i := range boxes {
		boxes[i] = Box{W: 20 + rng.IntN(300), H: 10 + rng.IntN(400)}
	}
	return boxes
}

func TestPackShelfWidthBound(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for run := 0; run < 50; run++ {
		r := Pack(randomBoxes(rng, 1+rng.IntN(60)), rollW, spacing)

		for i, s := range r.Shelves {
			ps := r.ShelfPlacements(i)
			used := spacing * (len(ps) - 1)
			for _, p := range ps {
				used += p.W
				if p.Y != s.Y {
					t.Fatalf("run %d shelf %d: placement y=%d, shelf y=%d", run, i, p.Y, s.Y)
				}
				if p.H > s.Height {
					t.Fatalf("run %d shelf %d: item taller than shelf", run, i)
				}
			}
			if used > rollW && len(ps) > 1 {
				t.Fatalf("run %d shelf %d: used %d > %d", run, i, used, rollW)
			}
		}
	}
}

func TestPackPreservesOrder(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	r := Pack(randomBoxes(rng, 80), rollW, spacing)

	for i, p := range r.Placements {
		if p.Index != i {
			t.Fatalf("placement %d has index %d", i, p.Index)
		}
		if i == 0 {
			continue
		}
		prev := r.Placements[i-1]
		sameShelf := p.Y == prev.Y
		if sameShelf && p.X != prev.Right()+spacing {
			t.Fatalf("placement %d at x=%d, want %d", i, p.X, prev.Right()+spacing)
		}
		if !sameShelf && (p.X != 0 || p.Y <= prev.Y) {
			t.Fatalf("placement %d wrapped to (%d,%d) after (%d,%d)", i, p.X, p.Y, prev.X, prev.Y)
		}
	}

	for i := 1; i < len(r.Shelves); i++ {
		if want := r.Shelves[i-1].Bottom() + spacing; r.Shelves[i].Y != want {
			t.Errorf("shelf %d y = %d, want %d", i, r.Shelves[i].Y, want)
		}
	}
}

func TestPackIdempotent(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 6))
	boxes := randomBoxes(rng, 40)

	a := Pack(boxes, rollW, spacing)
	b := Pack(boxes, rollW, spacing)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("repeated Pack differs (-first +second):\n%s", diff)
	}
}

func TestPackMonotonicHeight(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 8))
	boxes := randomBoxes(rng, 60)

	prev := 0
	for n := 0; n <= len(boxes); n++ {
		h := Pack(boxes[:n], rollW, spacing).Height
		if h < prev {
			t.Fatalf("height decreased from %d to %d when adding item %d", prev, h, n)
		}
		prev = h
	}
}

func TestPackHeightEqualsShelvesPlusSpacing(t *testing.T) {
	rng := rand.New(rand.NewPCG(9, 10))
	r := Pack(randomBoxes(rng, 70), rollW, spacing)

	sum := 0
	for _, s := range r.Shelves {
		sum += s.Height
	}
	sum += spacing * (len(r.Shelves) - 1)
	if r.Height != sum {
		t.Errorf("Height = %d, want sum of shelves + spacing = %d", r.Height, sum)
	}
}
