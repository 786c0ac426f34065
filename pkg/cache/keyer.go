package cache

// Keyer builds cache keys. The pipeline only talks to a Keyer, so a server
// can namespace keys (see [ScopedKeyer]) without touching the pipeline.
type Keyer interface {
	// AssetKey returns the key for a cropped design, given the hash of its
	// encoded source bytes.
	AssetKey(contentHash string) string

	// LayoutKey returns the key for a packed roll.
	LayoutKey(opts LayoutKeyOpts) string
}

// LayoutKeyOpts identifies one packing problem. Boxes is a hash of the
// ordered box sizes; Width and Spacing are in pixels.
type LayoutKeyOpts struct {
	Boxes   string `json:"boxes"`
	Width   int    `json:"width"`
	Spacing int    `json:"spacing"`
}

// DefaultKeyer produces unprefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// AssetKey returns "asset:<hash>".
func (DefaultKeyer) AssetKey(contentHash string) string {
	return "asset:" + contentHash
}

// LayoutKey returns "layout:<sha256 of opts>".
func (DefaultKeyer) LayoutKey(opts LayoutKeyOpts) string {
	return hashKey("layout", opts.Boxes, opts.Width, opts.Spacing)
}
