package cache

// ScopedKeyer wraps a Keyer with a prefix so that several deployments can
// share one Redis instance without seeing each other's entries.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "gangsheet:prod:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// AssetKey generates a prefixed key for a cropped design.
func (k *ScopedKeyer) AssetKey(contentHash string) string {
	return k.prefix + k.inner.AssetKey(contentHash)
}

// LayoutKey generates a prefixed key for a packed roll.
func (k *ScopedKeyer) LayoutKey(opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(opts)
}
