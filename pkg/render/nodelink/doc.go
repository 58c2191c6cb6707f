// Package nodelink turns flowcharts into Graphviz diagrams.
//
// [ToDOT] writes DOT text in which every node is pinned at the position the
// layout engine gave it and grouped in a cluster for its layer. Edge styles
// follow the edge type: imports solid, dependencies dashed, calls dotted,
// exports bold and inheritance with a hollow arrowhead.
//
//	dot := nodelink.ToDOT(flowchart, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// The DOT text is useful on its own: save it and process it with any
// Graphviz tool (neato -n keeps the positions).
//
// # Dependencies
//
// [RenderSVG] uses [github.com/goccy/go-graphviz], which runs Graphviz
// in-process without a system installation.
package nodelink
