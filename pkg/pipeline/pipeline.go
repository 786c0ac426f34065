// Package pipeline runs a complete montage: decode, expand, scale, pack,
// paginate and compose.
//
// This package is the single orchestration point shared by the CLI and the
// HTTP server. By centralizing the run here, both entry points apply the
// same defaults, the same per-request fault isolation and the same caching.
//
// # Stages
//
//  1. Decode: read each design, crop its transparent border (cached by content hash)
//  2. Expand: turn (design, category, copies) requests into one item per copy
//  3. Pack: scale items for a tier and shelf-pack them (cached per tier)
//  4. Paginate: cut the final-tier roll into pages between shelves
//  5. Compose: draw one page at a time and hand it to a [sink.Sink]
//
// A low-resolution preview is packed and composed separately when the batch
// is small enough. Tiers pack independently; only the final tier is
// paginated.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	inputs := []pipeline.Input{
//	    {Name: "back.png", Data: backPNG, Label: "back", Copies: 12},
//	    {Name: "logo.png", Data: logoPNG, Label: "front-7", Copies: 40},
//	}
//	f, _ := os.Create("montage.zip")
//	z := sink.NewZip(f)
//	result, err := runner.Execute(ctx, inputs, z, pipeline.Options{})
//	z.Close()
//	f.Close()
//	fmt.Println(result.Summary)
package pipeline

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gangsheet/pkg/asset"
	"github.com/matzehuels/gangsheet/pkg/catalog"
	"github.com/matzehuels/gangsheet/pkg/errors"
	"github.com/matzehuels/gangsheet/pkg/layout"
	"github.com/matzehuels/gangsheet/pkg/page"
	"github.com/matzehuels/gangsheet/pkg/tier"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultRollWidth is the printable width of a standard DTF roll, in cm.
	DefaultRollWidth = 55.0

	// DefaultSpacing is the gap between designs and between shelves, in cm.
	DefaultSpacing = 0.5

	// DefaultPageLength is the maximum length of one output page, in cm.
	DefaultPageLength = 100.0

	// DefaultPreviewMaxItems bounds preview cost: batches with this many
	// items or more get no preview.
	DefaultPreviewMaxItems = 300
)

// Output file names inside a sink.
const (
	PreviewName  = "preview"
	ManifestName = "manifest.json"
	SummaryName  = "summary.txt"
)

// =============================================================================
// Options - Run Configuration
// =============================================================================

// Options contains all configuration for a montage run. Lengths are in
// centimetres. The struct loads from JSON, TOML and YAML (see [LoadOptions]).
type Options struct {
	RollWidth  float64  `json:"roll_width,omitempty" toml:"roll_width" yaml:"roll_width,omitempty"`
	Spacing    *float64 `json:"spacing,omitempty" toml:"spacing" yaml:"spacing,omitempty"`             // nil: DefaultSpacing
	PageLength float64  `json:"page_length,omitempty" toml:"page_length" yaml:"page_length,omitempty"` // negative: one page

	Tiers       tier.Set `json:"tiers,omitempty" toml:"tiers" yaml:"tiers,omitempty"`
	PreviewTier string   `json:"preview_tier,omitempty" toml:"preview_tier" yaml:"preview_tier,omitempty"`
	FinalTier   string   `json:"final_tier,omitempty" toml:"final_tier" yaml:"final_tier,omitempty"`

	PreviewMaxItems int  `json:"preview_max_items,omitempty" toml:"preview_max_items" yaml:"preview_max_items,omitempty"`
	SkipPreview     bool `json:"skip_preview,omitempty" toml:"skip_preview" yaml:"skip_preview,omitempty"`

	Categories []catalog.Entry `json:"categories,omitempty" toml:"categories" yaml:"categories,omitempty"`

	MaxAssetPixels int   `json:"max_asset_pixels,omitempty" toml:"max_asset_pixels" yaml:"max_asset_pixels,omitempty"`
	MaxAssetBytes  int64 `json:"max_asset_bytes,omitempty" toml:"max_asset_bytes" yaml:"max_asset_bytes,omitempty"`

	// Refresh bypasses cached assets and layouts (results are still stored).
	Refresh bool `json:"refresh,omitempty" toml:"refresh" yaml:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-" toml:"-" yaml:"-"`

	catalog   *catalog.Catalog
	validated bool
}

// SetDefaults fills zero values with the package defaults.
func (o *Options) SetDefaults() {
	if o.RollWidth == 0 {
		o.RollWidth = DefaultRollWidth
	}
	if o.Spacing == nil {
		o.Spacing = Centimetres(DefaultSpacing)
	}
	if o.PageLength == 0 {
		o.PageLength = DefaultPageLength
	}
	if len(o.Tiers) == 0 {
		o.Tiers = tier.DefaultSet()
	}
	if o.PreviewTier == "" {
		o.PreviewTier = tier.Preview
	}
	if o.FinalTier == "" {
		o.FinalTier = tier.Final
	}
	if o.PreviewMaxItems == 0 {
		o.PreviewMaxItems = DefaultPreviewMaxItems
	}
	if len(o.Categories) == 0 {
		o.Categories = catalog.DefaultEntries()
	}
	if o.MaxAssetPixels == 0 {
		o.MaxAssetPixels = asset.DefaultMaxPixels
	}
	if o.MaxAssetBytes == 0 {
		o.MaxAssetBytes = asset.DefaultMaxBytes
	}
}

// Validate checks the configuration and builds the catalog. It assumes
// SetDefaults has run.
func (o *Options) Validate() error {
	if err := errors.ValidatePositive("roll width", o.RollWidth); err != nil {
		return err
	}
	if o.SpacingCM() < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "spacing cannot be negative, got %v", o.SpacingCM())
	}
	if err := o.Tiers.Validate(); err != nil {
		return err
	}
	if _, ok := o.Tiers.Lookup(o.PreviewTier); !ok {
		return errors.New(errors.ErrCodeInvalidConfig, "preview tier %q is not defined", o.PreviewTier)
	}
	if _, ok := o.Tiers.Lookup(o.FinalTier); !ok {
		return errors.New(errors.ErrCodeInvalidConfig, "final tier %q is not defined", o.FinalTier)
	}
	if o.PreviewMaxItems < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "preview_max_items cannot be negative")
	}
	if o.MaxAssetPixels < 0 || o.MaxAssetBytes < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "asset limits cannot be negative")
	}
	cat, err := catalog.New(o.Categories)
	if err != nil {
		return err
	}
	o.catalog = cat
	return nil
}

// ValidateAndSetDefaults applies defaults and validates.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	o.SetDefaults()
	if err := o.Validate(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// Catalog returns the validated category catalog.
// It is nil until ValidateAndSetDefaults succeeds.
func (o *Options) Catalog() *catalog.Catalog {
	return o.catalog
}

// Geometry returns the pixel geometry of the named tier.
func (o *Options) Geometry(name string) tier.Geometry {
	t, _ := o.Tiers.Lookup(name)
	return t.Geometry(o.RollWidth, o.SpacingCM())
}

// SpacingCM returns the configured spacing, or DefaultSpacing when unset.
// Zero is a valid spacing.
func (o *Options) SpacingCM() float64 {
	if o.Spacing == nil {
		return DefaultSpacing
	}
	return *o.Spacing
}

// Centimetres returns a pointer to v, for optional lengths such as
// [Options.Spacing].
func Centimetres(v float64) *float64 {
	return &v
}

// PageHeight returns the page length in final-tier pixels, or 0 when pages
// are unbounded.
func (o *Options) PageHeight() int {
	if o.PageLength < 0 {
		return 0
	}
	t, _ := o.Tiers.Lookup(o.FinalTier)
	return t.Pixels(o.PageLength)
}

// WantsPreview reports whether a batch of n items gets a preview.
func (o *Options) WantsPreview(n int) bool {
	return !o.SkipPreview && n > 0 && n < o.PreviewMaxItems
}

// AssetOptions returns the decode limits as asset options.
func (o *Options) AssetOptions() []asset.Option {
	return []asset.Option{
		asset.WithMaxPixels(o.MaxAssetPixels),
		asset.WithMaxBytes(o.MaxAssetBytes),
	}
}

// =============================================================================
// Result
// =============================================================================

// Result contains the outputs of a montage run. Page pixels are not kept;
// they went to the sink.
type Result struct {
	// RunID identifies the run in logs, manifests and published object keys.
	RunID string

	// Items is the expanded item sequence.
	Items []catalog.Item

	// Skipped lists requests that were rejected, in request order.
	Skipped []catalog.Rejection

	// Preview is the preview-tier roll, nil when no preview was built.
	Preview *layout.Roll

	// Final is the final-tier roll.
	Final layout.Roll

	// Pages are the final-tier pages, in order.
	Pages []page.Page

	// Summary is the textual length report.
	Summary Summary

	// Stats contains timing information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Empty reports whether no request survived expansion. An empty run writes
// no pages and no preview.
func (r *Result) Empty() bool {
	return r == nil || len(r.Items) == 0
}

// Stats contains run statistics.
type Stats struct {
	DecodeTime  time.Duration
	PackTime    time.Duration
	PreviewTime time.Duration
	ComposeTime time.Duration
	Total       time.Duration
}

// CacheInfo tracks cache hits for each stage.
type CacheInfo struct {
	AssetHits   int  // designs restored from cache
	AssetMisses int  // designs decoded from source
	LayoutHit   bool // whether the final-tier roll came from cache
}
