package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/matzehuels/gangsheet/pkg/cache"
	"github.com/matzehuels/gangsheet/pkg/catalog"
	"github.com/matzehuels/gangsheet/pkg/layout"
	"github.com/matzehuels/gangsheet/pkg/observability"
	"github.com/matzehuels/gangsheet/pkg/tier"
)

// =============================================================================
// Scaling and Packing
// =============================================================================

// Scale returns the pixel box of every item at tier t. Each box is rounded
// from the item's physical width, never from another tier's pixels.
func Scale(items []catalog.Item, t tier.Tier) []layout.Box {
	boxes := make([]layout.Box, len(items))
	for i, it := range items {
		boxes[i] = t.Scale(it.Width, it.Aspect())
	}
	return boxes
}

// PackWithCacheInfo scales and packs items at the named tier, using the
// layout cache, and reports whether the roll came from cache.
func (r *Runner) PackWithCacheInfo(ctx context.Context, items []catalog.Item, tierName string, opts Options) (layout.Roll, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return layout.Roll{}, false, err
	}
	r.applyLogger(&opts)

	geo := opts.Geometry(tierName)
	boxes := Scale(items, geo.Tier)

	// Compute cache key
	boxData, err := json.Marshal(boxes)
	if err != nil {
		return layout.Roll{}, false, err
	}
	cacheKey := r.Keyer.LayoutKey(cache.LayoutKeyOpts{
		Boxes:   cache.Hash(boxData),
		Width:   geo.Width,
		Spacing: geo.Spacing,
	})

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var cached layout.Roll
			if err := json.Unmarshal(data, &cached); err == nil && len(cached.Placements) == len(boxes) {
				observability.Cache().OnCacheHit(ctx, "layout")
				return cached, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "layout")
	}

	start := time.Now()
	roll := layout.Pack(boxes, geo.Width, geo.Spacing)
	observability.Pipeline().OnPack(ctx, tierName, len(boxes), len(roll.Shelves), time.Since(start))

	opts.Logger.Debug("packed roll",
		"tier", tierName,
		"items", len(boxes),
		"shelves", len(roll.Shelves),
		"height_px", roll.Height,
		"duration", time.Since(start))

	// Cache the result
	if data, err := json.Marshal(roll); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout); err == nil {
			observability.Cache().OnCacheSet(ctx, "layout", len(data))
		}
	}

	return roll, false, nil
}

// Pack is a convenience wrapper that calls PackWithCacheInfo and discards the cache hit info.
func (r *Runner) Pack(ctx context.Context, items []catalog.Item, tierName string, opts Options) (layout.Roll, error) {
	roll, _, err := r.PackWithCacheInfo(ctx, items, tierName, opts)
	return roll, err
}
