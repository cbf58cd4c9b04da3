package cache

// ScopedKeyer prefixes every key of an inner Keyer. Several tools can then
// share one Redis or Mongo backend without colliding.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "studio-a:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer means
// [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// FrameKey returns the prefixed key of a rendered frame.
func (k *ScopedKeyer) FrameKey(frameHash string, opts FrameKeyOpts) string {
	return k.prefix + k.inner.FrameKey(frameHash, opts)
}
