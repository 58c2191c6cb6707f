package layout

import (
	"cmp"
	"io"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/archtower/pkg/analysis"
	"github.com/matzehuels/archtower/pkg/arch"
	"github.com/matzehuels/archtower/pkg/hierarchy"
)

// Geometry constants, in canvas units.
const (
	NodeWidth     = 180.0
	NodeHeight    = 60.0
	NodeSpacing   = 40.0  // horizontal gap between nodes in a row
	RowHeight     = 100.0 // vertical pitch of level rows within a layer
	MinBandHeight = 120.0 // height of an empty or single-row layer band
	LayerSpacing  = 40.0  // gap between layer bands
	Margin        = 40.0
)

// Defaults for Options.
const (
	DefaultCanvasWidth       = 1200.0
	DefaultOverlapIterations = 50
)

// Options configures Compute.
type Options struct {
	// CanvasWidth is the width rows are centred in. The flowchart grows
	// wider when a row does not fit.
	CanvasWidth float64 `json:"canvasWidth,omitempty"`

	// OverlapIterations caps the overlap resolution pass.
	OverlapIterations int `json:"overlapIterations,omitempty"`

	Logger *log.Logger `json:"-"`
}

// WithDefaults returns a copy of o with zero fields defaulted.
func (o Options) WithDefaults() Options {
	if o.CanvasWidth <= 0 {
		o.CanvasWidth = DefaultCanvasWidth
	}
	if o.OverlapIterations <= 0 {
		o.OverlapIterations = DefaultOverlapIterations
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return o
}

// Compute lays out an analysis. Each layer gets its own vertical band in the
// fixed order entry, presentation, business, data, infrastructure. Inside a
// band every hierarchy level is a row, lowest level first, and each row is
// ordered by importance (descending) then name.
//
// An empty analysis yields an empty flowchart with zero dimensions.
func Compute(a *arch.Analysis, opts Options) *Flowchart {
	opts = opts.WithDefaults()
	fc := &Flowchart{Nodes: []Node{}, Connections: []Connection{}}
	if a == nil || len(a.Nodes) == 0 {
		return fc
	}

	levels := hierarchy.Build(a.Nodes, a.Edges)
	layerOf := a.Layers.Index()

	byLayer := make(map[arch.Layer][]Node)
	for _, n := range a.Nodes {
		l, ok := layerOf[n.ID]
		if !ok {
			l = analysis.ClassifyNode(n)
		}
		byLayer[l] = append(byLayer[l], Node{
			Node:       *n,
			Width:      NodeWidth,
			Height:     NodeHeight,
			Layer:      l.String(),
			LayerIndex: l.Index(),
			Level:      levels.Of(n.ID),
			Importance: Importance(n),
		})
	}

	top := Margin
	right := opts.CanvasWidth
	for _, l := range arch.AllLayers {
		nodes := byLayer[l]
		slices.SortFunc(nodes, compareNodes)

		rows := groupRows(nodes)
		band := max(MinBandHeight, float64(len(rows))*RowHeight)
		for r, row := range rows {
			y := top + float64(r)*RowHeight + (RowHeight-NodeHeight)/2
			right = max(right, placeRow(row, y, opts.CanvasWidth)+Margin)
		}
		fc.Nodes = append(fc.Nodes, nodes...)
		top += band + LayerSpacing
	}
	fc.Width = right
	fc.Height = top - LayerSpacing + Margin

	iters := ResolveOverlaps(fc.Nodes, opts.OverlapIterations)
	if left := Overlaps(fc.Nodes); len(left) > 0 {
		opts.Logger.Debug("overlaps remain after resolution", "pairs", len(left), "iterations", iters)
	}

	fc.Connections = connect(fc, a.Edges)
	return fc
}

// compareNodes orders nodes by level ascending, importance descending, then
// name and id.
func compareNodes(x, y Node) int {
	return cmp.Or(
		cmp.Compare(x.Level, y.Level),
		cmp.Compare(y.Importance, x.Importance),
		cmp.Compare(x.Name, y.Name),
		cmp.Compare(x.ID, y.ID),
	)
}

// groupRows splits sorted nodes into runs sharing a level. The returned rows
// alias nodes.
func groupRows(nodes []Node) [][]Node {
	var rows [][]Node
	start := 0
	for i := 1; i <= len(nodes); i++ {
		if i == len(nodes) || nodes[i].Level != nodes[start].Level {
			rows = append(rows, nodes[start:i])
			start = i
		}
	}
	return rows
}

// placeRow positions a row at y and returns its right edge. A single node is
// centred; several are spread with NodeSpacing gaps, centred as a group but
// never starting left of the margin.
func placeRow(row []Node, y, canvas float64) float64 {
	if len(row) == 1 {
		row[0].X = max(Margin, (canvas-row[0].Width)/2)
		row[0].Y = y
		return row[0].X + row[0].Width
	}
	total := float64(len(row))*NodeWidth + float64(len(row)-1)*NodeSpacing
	x := max(Margin, (canvas-total)/2)
	for i := range row {
		row[i].X = x
		row[i].Y = y
		x += row[i].Width + NodeSpacing
	}
	return x - NodeSpacing
}

// connect routes every edge between placed nodes. Edges to external ids are
// not drawn.
func connect(fc *Flowchart, edges []arch.Edge) []Connection {
	idx := make(map[string]*Node, len(fc.Nodes))
	for i := range fc.Nodes {
		idx[fc.Nodes[i].ID] = &fc.Nodes[i]
	}

	conns := []Connection{}
	for _, e := range edges {
		from, to := idx[e.From], idx[e.To]
		if from == nil || to == nil {
			continue
		}
		start := SourceAnchor(from, to.Center())
		end := TargetAnchor(to, from.Center())
		conns = append(conns, Connection{
			From:     e.From,
			To:       e.To,
			Type:     e.Type,
			Strength: e.Strength,
			Path:     Route(start, end, to.LayerIndex-from.LayerIndex, e.Type),
		})
	}
	return conns
}
