package cache

// ScopedKeyer wraps a Keyer with a prefix for multi-tenant isolation.
// The HTTP service scopes keys per chart owner so that deleting an owner's
// entries never touches another owner's.
//
//	ownerKeyer := NewScopedKeyer(NewDefaultKeyer(), "owner:coach-42:")
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

// ItemsKey generates a prefixed key for normalized items.
func (k *ScopedKeyer) ItemsKey(datasetHash, dataKey string) string {
	return k.prefix + k.inner.ItemsKey(datasetHash, dataKey)
}

// ArtifactKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) ArtifactKey(datasetHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(datasetHash, opts)
}
