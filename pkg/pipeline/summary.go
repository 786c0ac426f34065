package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/matzehuels/gangsheet/pkg/catalog"
	"github.com/matzehuels/gangsheet/pkg/errors"
	"github.com/matzehuels/gangsheet/pkg/layout"
	"github.com/matzehuels/gangsheet/pkg/page"
	"github.com/matzehuels/gangsheet/pkg/tier"
)

// =============================================================================
// Summary
// =============================================================================

// Summary reports the physical size of a montage.
type Summary struct {
	Length    float64 `json:"length_cm"` // final roll length
	Meters    float64 `json:"length_m"`
	Pages     int     `json:"pages"`
	Items     int     `json:"items"`
	Shelves   int     `json:"shelves"`
	Skipped   int     `json:"skipped"`
	Oversized int     `json:"oversized"`
	Overflow  int     `json:"overflow_pages"` // pages longer than the page length
}

// NewSummary measures a final-tier roll and its pages.
func NewSummary(roll layout.Roll, t tier.Tier, pages []page.Page, pageHeight, skipped int) Summary {
	length := t.Units(roll.Height)
	s := Summary{
		Length:    length,
		Meters:    length / 100,
		Pages:     len(pages),
		Items:     len(roll.Placements),
		Shelves:   len(roll.Shelves),
		Skipped:   skipped,
		Oversized: len(roll.Oversized),
	}
	for _, p := range pages {
		if p.Overflows(pageHeight) {
			s.Overflow++
		}
	}
	return s
}

// String renders the summary as shown to operators.
func (s Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Total length: %.1f cm (%.2f m)\n", s.Length, s.Meters)
	fmt.Fprintf(&b, "Pages: %d\n", s.Pages)
	fmt.Fprintf(&b, "Items: %d on %d shelves\n", s.Items, s.Shelves)
	if s.Skipped > 0 {
		fmt.Fprintf(&b, "Skipped requests: %d\n", s.Skipped)
	}
	if s.Oversized > 0 {
		fmt.Fprintf(&b, "Oversized items: %d (wider than the roll)\n", s.Oversized)
	}
	if s.Overflow > 0 {
		fmt.Fprintf(&b, "Overlong pages: %d (single shelf taller than the page length)\n", s.Overflow)
	}
	return b.String()
}

// =============================================================================
// Manifest
// =============================================================================

// Manifest describes a finished run: geometry, pages and every placement in
// final-tier pixels. It is written next to the pages as manifest.json.
type Manifest struct {
	RunID      string         `json:"run_id"`
	CreatedAt  time.Time      `json:"created_at"`
	Tier       string         `json:"tier"`
	PPI        float64        `json:"ppi"`
	RollWidth  float64        `json:"roll_width_cm"`
	Spacing    float64        `json:"spacing_cm"`
	PageLength float64        `json:"page_length_cm"`
	WidthPx    int            `json:"width_px"`
	SpacingPx  int            `json:"spacing_px"`
	Summary    Summary        `json:"summary"`
	Pages      []ManifestPage `json:"pages"`
	Skipped    []ManifestSkip `json:"skipped,omitempty"`
}

// ManifestPage is one page of the manifest.
type ManifestPage struct {
	Name       string              `json:"name"`
	Number     int                 `json:"number"`
	Origin     int                 `json:"origin_px"`
	Height     int                 `json:"height_px"`
	Length     float64             `json:"length_cm"`
	Placements []ManifestPlacement `json:"placements"`
}

// ManifestPlacement locates one design copy on its page.
type ManifestPlacement struct {
	Item     int              `json:"item"`
	Request  int              `json:"request"`
	Copy     int              `json:"copy"`
	Name     string           `json:"name"`
	Category catalog.Category `json:"category"`
	X        int              `json:"x"`
	Y        int              `json:"y"`
	W        int              `json:"w"`
	H        int              `json:"h"`
}

// ManifestSkip records a rejected request.
type ManifestSkip struct {
	Index  int    `json:"index"`
	Name   string `json:"name"`
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

// NewManifest builds the manifest for a completed run.
func NewManifest(res *Result, opts Options) Manifest {
	geo := opts.Geometry(opts.FinalTier)
	m := Manifest{
		RunID:      res.RunID,
		CreatedAt:  time.Now().UTC(),
		Tier:       geo.Tier.Name,
		PPI:        geo.Tier.PPI(),
		RollWidth:  opts.RollWidth,
		Spacing:    opts.SpacingCM(),
		PageLength: opts.PageLength,
		WidthPx:    geo.Width,
		SpacingPx:  geo.Spacing,
		Summary:    res.Summary,
		Pages:      make([]ManifestPage, 0, len(res.Pages)),
	}
	for _, p := range res.Pages {
		mp := ManifestPage{
			Name:       p.Name(),
			Number:     p.Number,
			Origin:     p.Origin,
			Height:     p.Height,
			Length:     geo.Tier.Units(p.Height),
			Placements: make([]ManifestPlacement, len(p.Placements)),
		}
		for i, pl := range p.Placements {
			it := res.Items[pl.Index]
			mp.Placements[i] = ManifestPlacement{
				Item:     pl.Index,
				Request:  it.Request,
				Copy:     it.Copy,
				Name:     it.Name,
				Category: it.Category,
				X:        pl.X,
				Y:        pl.Y,
				W:        pl.W,
				H:        pl.H,
			}
		}
		m.Pages = append(m.Pages, mp)
	}
	for _, s := range res.Skipped {
		m.Skipped = append(m.Skipped, ManifestSkip{
			Index:  s.Index,
			Name:   s.Name,
			Code:   string(errors.GetCode(s.Err)),
			Reason: errors.UserMessage(s.Err),
		})
	}
	return m
}
