package pipeline

import (
	"github.com/matzehuels/archtower/pkg/arch"
	"github.com/matzehuels/archtower/pkg/layout"
)

// Layout positions an analysis without caching.
func Layout(a *arch.Analysis, opts Options) *layout.Flowchart {
	opts.SetLayoutDefaults()
	f := layout.Compute(a, opts.LayoutOptions())
	opts.Logger.Debug("computed layout",
		"nodes", len(f.Nodes),
		"connections", len(f.Connections),
		"width", f.Width,
		"height", f.Height)
	return f
}
