package cache

// ScopedKeyer prefixes every key of an inner Keyer. The pipeline scopes keys
// by build version.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner (the default keyer when nil) with prefix.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) AnalysisKey(treeHash string, opts AnalysisKeyOpts) string {
	return k.prefix + k.inner.AnalysisKey(treeHash, opts)
}

func (k *ScopedKeyer) LayoutKey(analysisHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(analysisHash, opts)
}

func (k *ScopedKeyer) ArtifactKey(flowchartHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(flowchartHash, opts)
}
