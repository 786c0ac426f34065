// Package catalog maps design categories to nominal print widths and expands
// print requests into individually placeable items.
//
// A [Category] is a closed tag such as "back" or "front-7". The catalog is
// validated once when it is built; after that, width lookups cannot fail for
// any category the catalog knows. Free-form user labels (including the older
// display names like "Espalda (22.5 cm)") are resolved with [Catalog.Parse]
// at the edge of the system, never during packing.
//
// # Expansion
//
// [Catalog.Expand] turns an ordered list of [Request] values into one [Item]
// per copy, preserving request order and copy order. Bad requests are
// rejected individually and reported as [Rejection] values so that one
// broken upload does not sink a batch of hundreds.
package catalog

import (
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/gangsheet/pkg/errors"
)

// Category is a design category tag.
type Category string

// Built-in categories.
const (
	Back   Category = "back"
	Front5 Category = "front-5"
	Front7 Category = "front-7"
)

// Entry describes one category: its tag, nominal width in centimetres, a
// human label, and any extra names the parser should accept for it.
type Entry struct {
	Category Category `json:"category" toml:"category" yaml:"category"`
	Width    float64  `json:"width" toml:"width" yaml:"width"`
	Label    string   `json:"label,omitempty" toml:"label" yaml:"label,omitempty"`
	Aliases  []string `json:"aliases,omitempty" toml:"aliases" yaml:"aliases,omitempty"`
}

// DisplayName returns the label, or the tag when no label is set.
func (e Entry) DisplayName() string {
	if e.Label != "" {
		return e.Label
	}
	return string(e.Category)
}

// DefaultEntries returns the standard DTF categories.
func DefaultEntries() []Entry {
	return []Entry{
		{Category: Back, Width: 22.5, Label: "Back (22.5 cm)", Aliases: []string{"Espalda (22.5 cm)", "espalda"}},
		{Category: Front5, Width: 5, Label: "Front (5 cm)", Aliases: []string{"Frontal (5 cm)"}},
		{Category: Front7, Width: 7, Label: "Front (7 cm)", Aliases: []string{"Frontal (7 cm)"}},
	}
}

// Catalog is an immutable category table.
type Catalog struct {
	entries []Entry
	byTag   map[Category]Entry
	byName  map[string]Category
}

// New validates entries and builds a catalog. Tags must be unique, well
// formed and have a positive width; aliases must not collide across
// categories.
func New(entries []Entry) (*Catalog, error) {
	if len(entries) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "catalog has no categories")
	}

	c := &Catalog{
		entries: slices.Clone(entries),
		byTag:   make(map[Category]Entry, len(entries)),
		byName:  make(map[string]Category),
	}
	for _, e := range entries {
		if err := errors.ValidateCategoryLabel(string(e.Category)); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "catalog entry")
		}
		if err := errors.ValidatePositive(fmt.Sprintf("width of %s", e.Category), e.Width); err != nil {
			return nil, err
		}
		if _, dup := c.byTag[e.Category]; dup {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "duplicate category %q", e.Category)
		}
		c.byTag[e.Category] = e

		names := append([]string{string(e.Category), e.Label}, e.Aliases...)
		for _, n := range names {
			key := normalize(n)
			if key == "" {
				continue
			}
			if prev, ok := c.byName[key]; ok && prev != e.Category {
				return nil, errors.New(errors.ErrCodeInvalidConfig,
					"name %q is used by both %s and %s", n, prev, e.Category)
			}
			c.byName[key] = e.Category
		}
	}
	return c, nil
}

// Default returns the catalog built from [DefaultEntries].
func Default() *Catalog {
	c, err := New(DefaultEntries())
	if err != nil {
		panic(err)
	}
	return c
}

// Parse resolves a user supplied label to a category. It accepts the tag
// itself, the display label, or any alias, ignoring case and surrounding
// whitespace.
func (c *Catalog) Parse(label string) (Category, error) {
	if cat, ok := c.byName[normalize(label)]; ok {
		return cat, nil
	}
	return "", errors.New(errors.ErrCodeInvalidCategory, "unknown design category %q (want one of %s)",
		label, strings.Join(c.tags(), ", "))
}

// Width returns the nominal width of cat in centimetres.
func (c *Catalog) Width(cat Category) (float64, bool) {
	e, ok := c.byTag[cat]
	return e.Width, ok
}

// Lookup returns the full entry for cat.
func (c *Catalog) Lookup(cat Category) (Entry, bool) {
	e, ok := c.byTag[cat]
	return e, ok
}

// Entries returns the categories in configuration order.
func (c *Catalog) Entries() []Entry {
	return slices.Clone(c.entries)
}

func (c *Catalog) tags() []string {
	out := make([]string, len(c.entries))
	for i, e := range c.entries {
		out[i] = string(e.Category)
	}
	return out
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
