package cache

// ScopedKeyer wraps a Keyer with a prefix for multi-tenant isolation: in a
// shared deployment different users or projects need separate cache
// namespaces.
//
// Example usage:
//
//	// Per-user keys for private sheets
//	userKeyer := NewScopedKeyer(NewDefaultKeyer(), "user:abc123:")
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

// MeasureKey generates a prefixed key for a text measurement.
func (k *ScopedKeyer) MeasureKey(text string, metrics any, width int) string {
	return k.prefix + k.inner.MeasureKey(text, metrics, width)
}

// LayoutKey generates a prefixed key for a layout result.
func (k *ScopedKeyer) LayoutKey(sheetHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(sheetHash, opts)
}
