package cache

// ScopedKeyer wraps a Keyer with a prefix so several tenants or deployments
// can share one backend.
//
//	k := cache.NewScopedKeyer(nil, "staging:")
//	k.GridKey(h, opts) // "staging:grid:..."
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer means
// the DefaultKeyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// GridKey returns the prefixed grid key.
func (k *ScopedKeyer) GridKey(pointsHash string, opts GridKeyOpts) string {
	return k.prefix + k.inner.GridKey(pointsHash, opts)
}

// ArtifactKey returns the prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(gridHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(gridHash, opts)
}
