// Package analysis builds an architecture graph from a set of source files.
//
// [Analyzer.Analyze] is the entry point. It parses every file with
// [source.Parser], registers the nodes of the run, resolves imports only
// after every node is known (see [resolve.Link]), assigns each node to one of
// five layers with [Classify], and aggregates [ComputeMetrics].
//
// All state lives in the call, so one Analyzer can serve concurrent runs:
//
//	a := analysis.New(analysis.Options{Logger: logger})
//	result := a.Analyze(ctx, files)
//
// The package also offers read-side helpers over a finished analysis:
// [FilterNodes] for folder, language and type queries, [LanguageBreakdown],
// and [Cycles], an informational report of import cycles.
package analysis
