// Package pkg provides the core libraries for Archtower architecture graphs.
//
// # Overview
//
// Archtower reads the source files of a repository and turns them into a
// layered architecture graph: one node per relevant file, one edge per
// resolved import, every node sorted into one of five layers (entry,
// presentation, business, data, infrastructure), and a flowchart layout on
// top. The pkg directory is organized by pipeline stage:
//
//  1. [tree] and [source] - Input (repository snapshots, parsing, metrics)
//  2. [resolve], [analysis] and [hierarchy] - The graph (edges, layers, levels)
//  3. [layout] and [render] - Output (positioned flowcharts, DOT, SVG)
//  4. [pipeline] - Orchestration (analyze → layout → render) with caching
//  5. [graph] - Serialization of analyses and flowcharts
//
// # Architecture
//
// The typical data flow:
//
//	Directory or tree JSON
//	         ↓
//	    [tree] package (snapshot → files)
//	         ↓
//	    [source] package (language, imports, exports, complexity)
//	         ↓
//	    [resolve] package (import specifiers → edges)
//	         ↓
//	    [analysis] package (layers, metrics, cycles)
//	         ↓
//	    [layout] package (levels, bands, overlap removal)
//	         ↓
//	    JSON/DOT/SVG output
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/archtower/pkg/pipeline"
//	    "github.com/matzehuels/archtower/pkg/tree"
//	)
//
//	root, _ := tree.LoadLocal(ctx, "./my-repo", tree.LoadOptions{})
//	runner := pipeline.NewRunner(nil, nil, logger)
//	result, _ := runner.Execute(ctx, tree.Files(root), pipeline.Options{
//	    Formats: []string{pipeline.FormatSVG},
//	})
//	os.WriteFile("my-repo.svg", result.Artifacts[pipeline.FormatSVG], 0o644)
//
// # Supporting Packages
//
// [arch] holds the shared domain types. [cache] stores stage results in a
// directory or Redis, keyed by content hash. [config] loads archtower.toml.
// [errors] carries the error codes that the HTTP server maps to status
// codes. [observability] exposes hooks for logging and metrics.
//
// [tree]: https://pkg.go.dev/github.com/matzehuels/archtower/pkg/tree
// [source]: https://pkg.go.dev/github.com/matzehuels/archtower/pkg/source
// [resolve]: https://pkg.go.dev/github.com/matzehuels/archtower/pkg/resolve
// [analysis]: https://pkg.go.dev/github.com/matzehuels/archtower/pkg/analysis
// [hierarchy]: https://pkg.go.dev/github.com/matzehuels/archtower/pkg/hierarchy
// [layout]: https://pkg.go.dev/github.com/matzehuels/archtower/pkg/layout
// [render]: https://pkg.go.dev/github.com/matzehuels/archtower/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/archtower/pkg/pipeline
// [graph]: https://pkg.go.dev/github.com/matzehuels/archtower/pkg/graph
// [arch]: https://pkg.go.dev/github.com/matzehuels/archtower/pkg/arch
// [cache]: https://pkg.go.dev/github.com/matzehuels/archtower/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/archtower/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/archtower/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/archtower/pkg/observability
package pkg
