package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/archtower/pkg/arch"
	"github.com/matzehuels/archtower/pkg/layout"
)

// pointsPerUnit converts canvas units to Graphviz points; inchesPerUnit
// converts them to the inches used by width and height.
const (
	pointsPerUnit = 1.0
	inchesPerUnit = 1.0 / 72
)

// arrowLength is how far a routed edge's spline stops short of its target,
// leaving room for the arrowhead.
const arrowLength = 10.0

// Options configures diagram generation.
type Options struct {
	// Detailed adds size, complexity, level and importance to node labels.
	// When false, labels show the name, type and language.
	Detailed bool
}

var layerFill = map[string]string{
	"entry":          "#fde68a",
	"presentation":   "#bfdbfe",
	"business":       "#c7d2fe",
	"data":           "#bbf7d0",
	"infrastructure": "#e5e7eb",
}

var edgeStyle = map[arch.EdgeType]string{
	arch.EdgeImport:      `style=solid`,
	arch.EdgeDependency:  `style=dashed`,
	arch.EdgeCall:        `style=dotted`,
	arch.EdgeExport:      `style=bold`,
	arch.EdgeInheritance: `style=solid, arrowhead=onormal`,
}

// ToDOT converts a flowchart to Graphviz DOT. Nodes are grouped in one
// cluster per layer and pinned at their layout positions, and routed
// connections carry their path as a spline, so the text reproduces the
// flowchart when rendered with neato -n2. Node and edge order is canonical:
// equal flowcharts give equal text.
func ToDOT(f *layout.Flowchart, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  splines=true;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontsize=12, fixedsize=true];\n")
	buf.WriteString("  edge [color=\"#475569\"];\n")

	if f == nil {
		buf.WriteString("}\n")
		return buf.String()
	}

	nodes := slices.Clone(f.Nodes)
	slices.SortFunc(nodes, func(a, b layout.Node) int { return strings.Compare(a.ID, b.ID) })

	for _, l := range arch.AllLayers {
		var members []layout.Node
		for _, n := range nodes {
			if n.LayerIndex == l.Index() {
				members = append(members, n)
			}
		}
		if len(members) == 0 {
			continue
		}
		fmt.Fprintf(&buf, "\n  subgraph cluster_%s {\n", l)
		fmt.Fprintf(&buf, "    label=%q;\n", l.String())
		buf.WriteString("    style=dashed;\n")
		for _, n := range members {
			fmt.Fprintf(&buf, "    %q [%s];\n", n.ID, strings.Join(fmtAttrs(n, f.Height, opts.Detailed), ", "))
		}
		buf.WriteString("  }\n")
	}

	conns := slices.Clone(f.Connections)
	slices.SortStableFunc(conns, func(a, b layout.Connection) int {
		if c := strings.Compare(a.From, b.From); c != 0 {
			return c
		}
		return strings.Compare(a.To, b.To)
	})
	buf.WriteString("\n")
	for _, c := range conns {
		style, ok := edgeStyle[c.Type]
		if !ok {
			style = edgeStyle[arch.EdgeImport]
		}
		attrs := []string{style, "penwidth=" + fmtFloat(max(1, c.Strength))}
		if pos := splinePos(c.Path, f.Height); pos != "" {
			attrs = append(attrs, fmt.Sprintf("pos=%q", pos))
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", c.From, c.To, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

// splinePos encodes a routed path as a Graphviz edge pos: an arrowhead
// endpoint followed by cubic B-spline control points. A three-point path is
// a quadratic curve through its middle control point; longer paths are
// polylines. Paths with fewer than two points give "".
func splinePos(path []layout.Point, height float64) string {
	if len(path) < 2 {
		return ""
	}
	end := path[len(path)-1]
	pts := slices.Clone(path)
	pts[len(pts)-1] = shorten(pts[len(pts)-2], end, arrowLength)

	var ctrl []layout.Point
	if len(pts) == 3 {
		p0, q, p2 := pts[0], pts[1], pts[2]
		ctrl = []layout.Point{p0, lerp(p0, q, 2.0/3), lerp(p2, q, 2.0/3), p2}
	} else {
		ctrl = append(ctrl, pts[0])
		for i := 1; i < len(pts); i++ {
			a, b := pts[i-1], pts[i]
			ctrl = append(ctrl, lerp(a, b, 1.0/3), lerp(a, b, 2.0/3), b)
		}
	}

	parts := make([]string, 0, len(ctrl)+1)
	parts = append(parts, "e,"+fmtPoint(end, height))
	for _, p := range ctrl {
		parts = append(parts, fmtPoint(p, height))
	}
	return strings.Join(parts, " ")
}

// shorten moves to back towards from by d, or returns to unchanged when the
// segment is not longer than d.
func shorten(from, to layout.Point, d float64) layout.Point {
	dist := math.Hypot(to.X-from.X, to.Y-from.Y)
	if dist <= d {
		return to
	}
	return lerp(to, from, d/dist)
}

func lerp(a, b layout.Point, t float64) layout.Point {
	return layout.Point{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t}
}

// fmtPoint converts a canvas point to Graphviz points. Graphviz puts the
// origin bottom-left.
func fmtPoint(p layout.Point, height float64) string {
	return fmtFloat(round2(p.X*pointsPerUnit)) + "," + fmtFloat(round2((height-p.Y)*pointsPerUnit))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func fmtLabel(n layout.Node, detailed bool) string {
	label := n.Name + "\n" + string(n.Type) + " · " + string(n.Language)
	if !detailed {
		return label
	}
	return fmt.Sprintf("%s\nloc: %d  complexity: %d\nlevel: %d  importance: %s",
		label, n.LinesOfCode, n.Complexity, n.Level, fmtFloat(n.Importance))
}

func fmtAttrs(n layout.Node, height float64, detailed bool) []string {
	c := n.Center()
	// Graphviz puts the origin bottom-left.
	pos := fmtFloat(c.X*pointsPerUnit) + "," + fmtFloat((height-c.Y)*pointsPerUnit) + "!"
	attrs := []string{
		fmt.Sprintf("label=%q", fmtLabel(n, detailed)),
		fmt.Sprintf("pos=%q", pos),
		fmt.Sprintf("width=%s", fmtFloat(n.Width*inchesPerUnit)),
		fmt.Sprintf("height=%s", fmtFloat(n.Height*inchesPerUnit)),
	}
	if fill, ok := layerFill[n.Layer]; ok {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", fill))
	}
	if n.Metadata.IsEntry {
		attrs = append(attrs, "penwidth=2")
	}
	if n.Type == arch.TypeTest {
		attrs = append(attrs, `style="rounded,filled,dashed"`)
	}
	return attrs
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// RenderSVG renders DOT produced by [ToDOT] to SVG with Graphviz's nop2
// engine (neato -n2), which keeps the pinned node positions and the edge
// splines.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NOP2)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
