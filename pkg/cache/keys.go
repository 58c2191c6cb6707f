package cache

import "slices"

// AnalysisKeyOpts are the parser settings that change an analysis.
type AnalysisKeyOpts struct {
	MaxFileSize int64    `json:"max_file_size"`
	Exclude     []string `json:"exclude,omitempty"`
}

// LayoutKeyOpts are the layout settings that change a flowchart.
type LayoutKeyOpts struct {
	CanvasWidth       float64 `json:"canvas_width"`
	OverlapIterations int     `json:"overlap_iterations"`
}

// ArtifactKeyOpts are the render settings that change an artifact.
type ArtifactKeyOpts struct {
	Format   string `json:"format"`
	Detailed bool   `json:"detailed,omitempty"`
}

// Keyer derives cache keys for each pipeline stage.
type Keyer interface {
	// AnalysisKey keys an analysis by the hash of its input tree.
	AnalysisKey(treeHash string, opts AnalysisKeyOpts) string
	// LayoutKey keys a flowchart by the hash of its analysis.
	LayoutKey(analysisHash string, opts LayoutKeyOpts) string
	// ArtifactKey keys a rendered artifact by the hash of its flowchart.
	ArtifactKey(flowchartHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes the input hash together with the options.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard Keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) AnalysisKey(treeHash string, opts AnalysisKeyOpts) string {
	// Exclusion order does not change the result.
	opts.Exclude = slices.Sorted(slices.Values(opts.Exclude))
	return hashKey("analysis", treeHash, opts)
}

func (DefaultKeyer) LayoutKey(analysisHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", analysisHash, opts)
}

func (DefaultKeyer) ArtifactKey(flowchartHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", flowchartHash, opts)
}
