package catalog

import (
	"fmt"

	"github.com/matzehuels/gangsheet/pkg/asset"
	"github.com/matzehuels/gangsheet/pkg/errors"
)

// Request asks for Copies prints of one asset at one category's width.
type Request struct {
	Name     string
	Asset    *asset.Asset
	Category Category
	Copies   int
}

// Item is one placeable copy of a design. Copies of the same request share
// the Asset pointer, and requests with identical bytes may share it too, so
// Name rather than Asset.Name identifies the request.
type Item struct {
	Seq      int    // position in the expanded sequence
	Request  int    // index of the originating request
	Copy     int    // 0-based copy number within the request
	Name     string // request name
	Asset    *asset.Asset
	Category Category
	Width    float64 // nominal width in centimetres
}

// Aspect returns the height:width ratio used to derive pixel height.
func (it Item) Aspect() float64 { return it.Asset.Aspect() }

// Rejection records a request that was skipped during expansion.
type Rejection struct {
	Index int    // request index
	Name  string // request name, for reporting
	Err   error
}

func (r Rejection) String() string {
	return fmt.Sprintf("#%d %s: %s", r.Index+1, r.Name, errors.UserMessage(r.Err))
}

// Expand produces one item per copy, in request order and then copy order.
// Requests with fewer than one copy, an unknown category, or an asset with no
// visible content are rejected individually and excluded from the result.
func (c *Catalog) Expand(reqs []Request) ([]Item, []Rejection) {
	var (
		items    []Item
		rejected []Rejection
	)
	for i, r := range reqs {
		width, err := c.check(r)
		if err != nil {
			rejected = append(rejected, Rejection{Index: i, Name: r.Name, Err: err})
			continue
		}
		for k := range r.Copies {
			items = append(items, Item{
				Seq:      len(items),
				Request:  i,
				Copy:     k,
				Name:     r.Name,
				Asset:    r.Asset,
				Category: r.Category,
				Width:    width,
			})
		}
	}
	return items, rejected
}

func (c *Catalog) check(r Request) (float64, error) {
	if err := errors.ValidateCopies(r.Copies); err != nil {
		return 0, err
	}
	width, ok := c.Width(r.Category)
	if !ok {
		return 0, errors.New(errors.ErrCodeInvalidRequest, "unknown design category %q", r.Category)
	}
	if r.Asset.Empty() {
		return 0, errors.New(errors.ErrCodeEmptyAsset, "%s has no visible content", r.Name)
	}
	return width, nil
}
