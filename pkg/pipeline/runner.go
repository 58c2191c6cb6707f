package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/archtower/pkg/arch"
	"github.com/matzehuels/archtower/pkg/buildinfo"
	"github.com/matzehuels/archtower/pkg/cache"
	"github.com/matzehuels/archtower/pkg/graph"
	"github.com/matzehuels/archtower/pkg/layout"
	"github.com/matzehuels/archtower/pkg/observability"
	"github.com/matzehuels/archtower/pkg/source"
)

// Cache stage names reported to observability hooks.
const (
	stageAnalysis = "analysis"
	stageLayout   = "layout"
	stageArtifact = "artifact"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner keeps no pipeline results itself; several goroutines may use
// one Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner. A nil cache disables caching; a nil keyer
// scopes the default keys by the build version.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewScopedKeyer(cache.NewDefaultKeyer(), buildinfo.Version+":")
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Execute runs the complete analyze → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, files []source.File, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{TreeHash: TreeHash(files)}
	result.Stats.FileCount = len(files)

	// Stage 1: Analyze
	start := time.Now()
	a, hit, err := r.AnalyzeWithCacheInfo(ctx, files, opts)
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}
	result.Analysis = a
	result.AnalysisHash = graph.HashAnalysis(a)
	result.Stats.AnalyzeTime = time.Since(start)
	result.Stats.NodeCount = len(a.Nodes)
	result.Stats.EdgeCount = len(a.Edges)
	result.CacheInfo.AnalyzeHit = hit

	r.Logger.Info("analyzed repository",
		"files", len(files),
		"nodes", len(a.Nodes),
		"edges", len(a.Edges),
		"duration", result.Stats.AnalyzeTime)

	// Stage 2: Layout
	start = time.Now()
	f, hit, err := r.LayoutWithCacheInfo(ctx, a, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Flowchart = f
	result.Stats.LayoutTime = time.Since(start)
	result.CacheInfo.LayoutHit = hit

	r.Logger.Info("computed layout",
		"nodes", len(f.Nodes),
		"connections", len(f.Connections),
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	start = time.Now()
	artifacts, hit, err := r.RenderWithCacheInfo(ctx, f, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(start)
	result.CacheInfo.RenderHit = hit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// AnalyzeWithCacheInfo analyzes files with caching and reports whether the
// cache served the result. A cached analysis keeps the run id and timestamp
// of the run that produced it.
func (r *Runner) AnalyzeWithCacheInfo(ctx context.Context, files []source.File, opts Options) (*arch.Analysis, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForAnalyze(); err != nil {
		return nil, false, err
	}

	key := r.Keyer.AnalysisKey(TreeHash(files), opts.AnalysisKeyOpts())
	if !opts.Refresh {
		if data, ok := r.lookup(ctx, key, stageAnalysis); ok {
			if a, err := graph.UnmarshalAnalysis(data); err == nil {
				return a, true, nil
			}
			r.Logger.Debug("discarding undecodable cache entry", "stage", stageAnalysis)
		}
	}

	hooks := observability.Pipeline()
	hooks.OnAnalyzeStart(ctx, len(files))
	start := time.Now()
	a, err := Analyze(ctx, files, opts)
	if err != nil {
		return nil, false, err
	}
	hooks.OnAnalyzeComplete(ctx, len(a.Nodes), len(a.Edges), time.Since(start))

	if data, err := graph.MarshalAnalysis(a); err == nil {
		r.store(ctx, key, stageAnalysis, data, cache.AnalysisTTL)
	}
	return a, false, nil
}

// Analyze is AnalyzeWithCacheInfo without the cache hit flag.
func (r *Runner) Analyze(ctx context.Context, files []source.File, opts Options) (*arch.Analysis, error) {
	a, _, err := r.AnalyzeWithCacheInfo(ctx, files, opts)
	return a, err
}

// LayoutWithCacheInfo lays out an analysis with caching.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, a *arch.Analysis, opts Options) (*layout.Flowchart, bool, error) {
	r.applyLogger(&opts)
	opts.SetLayoutDefaults()

	key := r.Keyer.LayoutKey(graph.HashAnalysis(a), opts.LayoutKeyOpts())
	if data, ok := r.lookup(ctx, key, stageLayout); ok {
		if f, err := graph.UnmarshalFlowchart(data); err == nil {
			return f, true, nil
		}
		r.Logger.Debug("discarding undecodable cache entry", "stage", stageLayout)
	}

	nodes := 0
	if a != nil {
		nodes = len(a.Nodes)
	}
	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, nodes)
	start := time.Now()
	f := Layout(a, opts)
	hooks.OnLayoutComplete(ctx, time.Since(start), nil)

	if data, err := graph.MarshalFlowchart(f); err == nil {
		r.store(ctx, key, stageLayout, data, cache.LayoutTTL)
	}
	return f, false, nil
}

// Layout is LayoutWithCacheInfo without the cache hit flag.
func (r *Runner) Layout(ctx context.Context, a *arch.Analysis, opts Options) (*layout.Flowchart, error) {
	f, _, err := r.LayoutWithCacheInfo(ctx, a, opts)
	return f, err
}

// RenderWithCacheInfo renders artifacts with caching. The hit flag is set
// only when every requested format came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, f *layout.Flowchart, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	hash := graph.HashFlowchart(f)
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, ok := r.lookup(ctx, r.Keyer.ArtifactKey(hash, opts.ArtifactKeyOpts(format)), stageArtifact)
		if !ok {
			break
		}
		artifacts[format] = data
	}
	if len(artifacts) == len(opts.Formats) {
		return artifacts, true, nil
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	rendered, err := Render(ctx, f, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		r.store(ctx, r.Keyer.ArtifactKey(hash, opts.ArtifactKeyOpts(format)), stageArtifact, data, cache.ArtifactTTL)
	}
	return rendered, false, nil
}

// Render is RenderWithCacheInfo without the cache hit flag.
func (r *Runner) Render(ctx context.Context, f *layout.Flowchart, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, f, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// lookup reads key, treating backend errors as misses.
func (r *Runner) lookup(ctx context.Context, key, stage string) ([]byte, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "stage", stage, "err", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, stage)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, stage)
	return data, true
}

// store writes key, logging backend errors. Caching is best-effort.
func (r *Runner) store(ctx context.Context, key, stage string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "stage", stage, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, stage, len(data))
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
