package cache

// ScopedKeyer wraps a Keyer with a prefix so that several deployments (or
// several GitHub identities with different visibility) can share one backend
// without reading each other's entries.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "staging:")
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

// HTTPKey generates a prefixed key for HTTP response caching.
func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

// RecordKey generates a prefixed key for health record caching.
func (k *ScopedKeyer) RecordKey(purl string, opts RecordKeyOpts) string {
	return k.prefix + k.inner.RecordKey(purl, opts)
}
