// Package pipeline runs the analyze → layout → render pipeline for archtower.
//
// The CLI and the HTTP server both go through a [Runner], so they share
// defaults, validation and caching.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Analyze: parse files, resolve imports, classify layers, aggregate metrics
//  2. Layout: place nodes on the canvas and route connections
//  3. Render: produce artifacts (flowchart JSON, DOT, SVG)
//
// Each stage is keyed in the cache by the content hash of its input, so a
// re-run over an unchanged tree is served from the cache stage by stage.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, tree.Files(root), pipeline.Options{
//	    Formats: []string{pipeline.FormatSVG},
//	})
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	a, err := runner.Analyze(ctx, files, opts)
//	f, err := runner.Layout(ctx, a, opts)
//	artifacts, err := runner.Render(ctx, f, opts)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/archtower/pkg/arch"
	"github.com/matzehuels/archtower/pkg/cache"
	"github.com/matzehuels/archtower/pkg/errors"
	"github.com/matzehuels/archtower/pkg/layout"
	"github.com/matzehuels/archtower/pkg/source"
)

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
)

// Formats lists the supported output formats.
var Formats = []string{FormatJSON, FormatDOT, FormatSVG}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline. It supports JSON
// for API requests.
type Options struct {
	// Analyze options
	MaxFileSize int64    `json:"max_file_size,omitempty"`
	Exclude     []string `json:"exclude,omitempty"`
	Refresh     bool     `json:"refresh,omitempty"`

	// Layout options
	CanvasWidth       float64 `json:"canvas_width,omitempty"`
	OverlapIterations int     `json:"overlap_iterations,omitempty"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Detailed bool     `json:"detailed,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger      `json:"-"`
	Now    func() time.Time `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	Analysis  *arch.Analysis
	Flowchart *layout.Flowchart

	// TreeHash and AnalysisHash are the content hashes used as cache keys.
	TreeHash     string
	AnalysisHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	FileCount   int
	NodeCount   int
	EdgeCount   int
	AnalyzeTime time.Duration
	LayoutTime  time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	AnalyzeHit bool
	LayoutHit  bool
	RenderHit  bool // all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is supported.
func ValidateFormat(format string) error {
	return errors.ValidateFormat(format, Formats...)
}

// ValidateFormats checks every format.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks and defaults every stage's options.
func (o *Options) ValidateAndSetDefaults() error {
	if err := o.ValidateForAnalyze(); err != nil {
		return err
	}
	o.SetLayoutDefaults()
	return o.ValidateForRender()
}

// ValidateForAnalyze checks the parser settings and applies defaults.
func (o *Options) ValidateForAnalyze() error {
	if o.MaxFileSize < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "max_file_size cannot be negative")
	}
	if o.MaxFileSize == 0 {
		o.MaxFileSize = source.DefaultMaxFileSize
	}
	if _, err := source.NewFilter(o.Exclude...); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "exclude")
	}
	o.setLogger()
	return nil
}

// SetLayoutDefaults applies layout defaults.
func (o *Options) SetLayoutDefaults() {
	if o.CanvasWidth <= 0 {
		o.CanvasWidth = layout.DefaultCanvasWidth
	}
	if o.OverlapIterations <= 0 {
		o.OverlapIterations = layout.DefaultOverlapIterations
	}
	o.setLogger()
}

// ValidateForRender defaults the formats to JSON and checks them.
func (o *Options) ValidateForRender() error {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	o.setLogger()
	return ValidateFormats(o.Formats)
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// SourceOptions returns the parser options.
func (o *Options) SourceOptions() (source.Options, error) {
	filter, err := source.NewFilter(o.Exclude...)
	if err != nil {
		return source.Options{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "exclude")
	}
	return source.Options{MaxFileSize: o.MaxFileSize, Filter: filter, Logger: o.Logger}, nil
}

// LayoutOptions returns the layout engine options.
func (o *Options) LayoutOptions() layout.Options {
	return layout.Options{
		CanvasWidth:       o.CanvasWidth,
		OverlapIterations: o.OverlapIterations,
		Logger:            o.Logger,
	}
}

// AnalysisKeyOpts returns cache key options for analysis.
func (o *Options) AnalysisKeyOpts() cache.AnalysisKeyOpts {
	return cache.AnalysisKeyOpts{MaxFileSize: o.MaxFileSize, Exclude: o.Exclude}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{CanvasWidth: o.CanvasWidth, OverlapIterations: o.OverlapIterations}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{Format: format, Detailed: o.Detailed}
}
