// Package render groups the output renderers for architecture flowcharts.
//
// The [nodelink] subpackage produces Graphviz DOT text and SVG:
//
//	dot := nodelink.ToDOT(flowchart, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// JSON output lives in pkg/graph.
//
// [nodelink]: github.com/matzehuels/archtower/pkg/render/nodelink
package render
