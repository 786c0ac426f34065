// Package tier converts physical lengths into pixels for a resolution tier.
//
// A [Tier] is a named resolution expressed in pixels per length unit
// (pixels per centimetre throughout gangsheet). The same logical layout is
// computed once per tier, typically a coarse "preview" tier and a fine
// "final" tier used for print output.
//
// Every tier rounds from physical units. A tier's pixel sizes are never
// derived by rescaling another tier's already-rounded pixels, so rounding
// error does not compound across tiers.
package tier

import (
	"fmt"
	"math"

	"github.com/matzehuels/gangsheet/pkg/errors"
	"github.com/matzehuels/gangsheet/pkg/layout"
)

// CentimetresPerInch converts dots per inch to pixels per centimetre.
const CentimetresPerInch = 2.54

// Default tier names.
const (
	Preview = "preview"
	Final   = "final"
)

// Tier is a named resolution.
type Tier struct {
	Name          string  `json:"name" toml:"name" yaml:"name"`
	PixelsPerUnit float64 `json:"pixels_per_unit" toml:"pixels_per_unit" yaml:"pixels_per_unit"`
}

// FromPPI builds a tier from a resolution in pixels per inch.
func FromPPI(name string, ppi float64) Tier {
	return Tier{Name: name, PixelsPerUnit: ppi / CentimetresPerInch}
}

// PPI returns the tier's resolution in pixels per inch.
func (t Tier) PPI() float64 { return t.PixelsPerUnit * CentimetresPerInch }

// Pixels converts a physical length to whole pixels, rounding half up.
func (t Tier) Pixels(units float64) int {
	return roundHalfUp(units * t.PixelsPerUnit)
}

// Units converts pixels back to a physical length.
func (t Tier) Units(px int) float64 {
	return float64(px) / t.PixelsPerUnit
}

// Scale returns the pixel box of an item that is widthUnits wide with the
// given aspect ratio (height / width). The width is rounded first and the
// height derives from the rounded width. Both sides are at least one pixel.
func (t Tier) Scale(widthUnits, aspect float64) layout.Box {
	w := max(t.Pixels(widthUnits), 1)
	h := max(roundHalfUp(float64(w)*aspect), 1)
	return layout.Box{W: w, H: h}
}

// Validate checks that the tier has a name and a usable resolution.
func (t Tier) Validate() error {
	if t.Name == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "tier name cannot be empty")
	}
	return errors.ValidatePositive(fmt.Sprintf("tier %q pixels_per_unit", t.Name), t.PixelsPerUnit)
}

func (t Tier) String() string {
	return fmt.Sprintf("%s (%.0f ppi)", t.Name, t.PPI())
}

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

// Set is an ordered list of tiers with unique names.
type Set []Tier

// DefaultSet returns the preview (100 ppi) and final (300 ppi) tiers.
func DefaultSet() Set {
	return Set{FromPPI(Preview, 100), FromPPI(Final, 300)}
}

// Validate checks every tier and rejects duplicate names.
func (s Set) Validate() error {
	if len(s) == 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "at least one tier is required")
	}
	seen := make(map[string]bool, len(s))
	for _, t := range s {
		if err := t.Validate(); err != nil {
			return err
		}
		if seen[t.Name] {
			return errors.New(errors.ErrCodeInvalidConfig, "duplicate tier %q", t.Name)
		}
		seen[t.Name] = true
	}
	return nil
}

// Lookup returns the tier with the given name.
func (s Set) Lookup(name string) (Tier, bool) {
	for _, t := range s {
		if t.Name == name {
			return t, true
		}
	}
	return Tier{}, false
}

// Geometry is the pixel geometry of the roll at one tier.
type Geometry struct {
	Tier    Tier
	Width   int // roll width in pixels
	Spacing int // item and shelf spacing in pixels
}

// Geometry derives the tier's canvas width and spacing from physical constants.
func (t Tier) Geometry(rollWidth, spacing float64) Geometry {
	return Geometry{
		Tier:    t,
		Width:   t.Pixels(rollWidth),
		Spacing: t.Pixels(spacing),
	}
}
