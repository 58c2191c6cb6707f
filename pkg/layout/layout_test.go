package layout

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/archtower/pkg/analysis"
	"github.com/matzehuels/archtower/pkg/arch"
)

func newNode(id string, typ arch.NodeType, deps ...string) *arch.Node {
	return &arch.Node{
		ID:           id,
		Name:         id,
		Type:         typ,
		FilePath:     id + ".ts",
		Complexity:   1,
		Dependencies: deps,
		Dependents:   []string{},
	}
}

func build(nodes ...*arch.Node) *arch.Analysis {
	a := &arch.Analysis{Nodes: nodes}
	idx := a.NodeIndex()
	for _, n := range nodes {
		for _, d := range n.Dependencies {
			a.Edges = append(a.Edges, arch.Edge{From: n.ID, To: d, Type: arch.EdgeImport, Strength: 1})
			if t := idx[d]; t != nil {
				t.Dependents = append(t.Dependents, n.ID)
			}
		}
	}
	a.Layers = analysis.BuildLayers(nodes)
	return a
}

func TestComputeEmpty(t *testing.T) {
	for _, a := range []*arch.Analysis{nil, {}} {
		fc := Compute(a, Options{})
		require.NotNil(t, fc)
		assert.NotNil(t, fc.Nodes)
		assert.NotNil(t, fc.Connections)
		assert.Empty(t, fc.Nodes)
		assert.Zero(t, fc.Width)
		assert.Zero(t, fc.Height)
	}
}

func TestComputeBandsAndLevels(t *testing.T) {
	a := build(
		newNode("svc_a", arch.TypeService, "svc_b"),
		newNode("svc_b", arch.TypeService, "svc_c", "external_os"),
		newNode("svc_c", arch.TypeService),
		newNode("button", arch.TypeComponent, "svc_a"),
		newNode("db", arch.TypeDatabase),
	)
	fc := Compute(a, Options{})

	require.Len(t, fc.Nodes, 5)
	assert.Equal(t, 3, fc.Node("svc_a").Level)
	assert.Equal(t, 2, fc.Node("svc_b").Level)
	assert.Equal(t, 1, fc.Node("svc_c").Level)

	// Lower levels sit higher within the band.
	assert.Less(t, fc.Node("svc_c").Y, fc.Node("svc_b").Y)
	assert.Less(t, fc.Node("svc_b").Y, fc.Node("svc_a").Y)

	// Bands follow the fixed layer order.
	assert.Less(t, fc.Node("button").Y, fc.Node("svc_c").Y)
	assert.Less(t, fc.Node("svc_a").Y, fc.Node("db").Y)
	assert.Equal(t, arch.LayerData.Index(), fc.Node("db").LayerIndex)
	assert.Equal(t, "data", fc.Node("db").Layer)

	// Connections skip external targets.
	assert.Len(t, fc.Connections, 3)
	for _, c := range fc.Connections {
		assert.False(t, arch.IsExternal(c.To))
		assert.GreaterOrEqual(t, len(c.Path), 3)
	}
	assert.Empty(t, Overlaps(fc.Nodes))
}

func TestComputeUniquePositions(t *testing.T) {
	var nodes []*arch.Node
	for i := range 30 {
		nodes = append(nodes, newNode(fmt.Sprintf("svc%02d", i), arch.TypeService))
	}
	fc := Compute(build(nodes...), Options{CanvasWidth: 800})

	seen := map[Point]string{}
	for _, n := range fc.Nodes {
		p := Point{X: n.X, Y: n.Y}
		if other, dup := seen[p]; dup {
			t.Fatalf("%s and %s share position %v", n.ID, other, p)
		}
		seen[p] = n.ID
		assert.GreaterOrEqual(t, n.X, Margin)
		assert.LessOrEqual(t, n.X+n.Width, fc.Width)
	}
	assert.Empty(t, Overlaps(fc.Nodes))
}

func TestComputeSingleNodeCentered(t *testing.T) {
	fc := Compute(build(newNode("main", arch.TypeModule)), Options{CanvasWidth: 1000})
	require.Len(t, fc.Nodes, 1)
	n := fc.Nodes[0]
	assert.InDelta(t, 500, n.Center().X, 1e-9)
	assert.Equal(t, "entry", n.Layer)
}

func TestComputeRowOrder(t *testing.T) {
	big := newNode("zeta", arch.TypeService)
	big.Metadata.IsEntry = false
	big.Complexity = 30
	a := build(newNode("alpha", arch.TypeService), newNode("beta", arch.TypeService), big)
	fc := Compute(a, Options{})

	// Highest importance first, then by name.
	assert.Less(t, fc.Node("zeta").X, fc.Node("alpha").X)
	assert.Less(t, fc.Node("alpha").X, fc.Node("beta").X)
}

func TestComputeIsDeterministic(t *testing.T) {
	mk := func() *arch.Analysis {
		return build(
			newNode("a", arch.TypeService, "b"),
			newNode("b", arch.TypeService, "a"),
			newNode("c", arch.TypeComponent, "a"),
		)
	}
	assert.Equal(t, Compute(mk(), Options{}), Compute(mk(), Options{}))
}

func TestImportance(t *testing.T) {
	n := &arch.Node{Complexity: 10}
	assert.InDelta(t, 2.0, Importance(n), 1e-9)

	n = &arch.Node{
		Complexity:  5,
		LinesOfCode: 600,
		Dependents:  []string{"x", "y"},
		Metadata: arch.NodeMetadata{
			Patterns: []arch.Pattern{arch.PatternObserver, arch.PatternAsync},
		},
	}
	// 1 + 1 (dependents) + 0.5 (complexity) + 1 (observer) + 1 (size)
	assert.InDelta(t, 4.5, Importance(n), 1e-9)

	n.Metadata.IsEntry = true
	assert.Equal(t, MaxImportance, Importance(n))
}

func TestResolveOverlaps(t *testing.T) {
	nodes := []Node{
		{Node: arch.Node{ID: "a"}, X: 100, Y: 100, Width: NodeWidth, Height: NodeHeight},
		{Node: arch.Node{ID: "b"}, X: 150, Y: 110, Width: NodeWidth, Height: NodeHeight},
		{Node: arch.Node{ID: "c"}, X: 100, Y: 100, Width: NodeWidth, Height: NodeHeight},
	}
	require.NotEmpty(t, Overlaps(nodes))

	iters := ResolveOverlaps(nodes, 200)
	assert.Less(t, iters, 200)
	assert.Empty(t, Overlaps(nodes))
}

func TestResolveOverlapsRespectsCap(t *testing.T) {
	nodes := make([]Node, 20)
	for i := range nodes {
		nodes[i] = Node{Node: arch.Node{ID: fmt.Sprint(i)}, Width: NodeWidth, Height: NodeHeight}
	}
	assert.Equal(t, 1, ResolveOverlaps(nodes, 1))
	assert.Equal(t, 0, ResolveOverlaps(nil, 10))
}

func TestAnchors(t *testing.T) {
	n := &Node{X: 0, Y: 0, Width: 100, Height: 50}
	tests := []struct {
		name   string
		target Point
		want   Point
	}{
		{"below", Point{50, 500}, Point{50, 50}},
		{"right", Point{500, 25}, Point{100, 25}},
		{"left", Point{-500, 25}, Point{0, 25}},
		{"above right", Point{500, -500}, Point{100, 25}},
		{"above left", Point{-500, -500}, Point{0, 25}},
		{"shallow below left", Point{-500, 100}, Point{0, 25}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SourceAnchor(n, tt.target))
		})
	}

	assert.Equal(t, Point{50, 0}, TargetAnchor(n, Point{50, -300}))
	assert.Equal(t, Point{100, 25}, TargetAnchor(n, Point{400, 25}))
}

func TestRoute(t *testing.T) {
	from, to := Point{0, 0}, Point{100, 300}

	elbow := Route(from, to, 2, arch.EdgeInheritance)
	assert.Equal(t, []Point{{0, 0}, {0, 150}, {100, 150}, {100, 300}}, elbow)

	stepped := Route(from, to, 3, arch.EdgeImport)
	require.Len(t, stepped, 6)
	assert.Equal(t, from, stepped[0])
	assert.Equal(t, to, stepped[5])
	assert.InDelta(t, 100, stepped[1].Y, 1e-9)
	assert.InDelta(t, 200, stepped[3].Y, 1e-9)
	assert.Len(t, Route(from, to, -2, arch.EdgeImport), 6)

	curve := Route(from, to, 1, arch.EdgeImport)
	require.Len(t, curve, 3)
	assert.Equal(t, from, curve[0])
	assert.Equal(t, to, curve[2])
	mid := Point{50, 150}
	off := math.Hypot(curve[1].X-mid.X, curve[1].Y-mid.Y)
	assert.InDelta(t, MaxCurveOffset, off, 1e-9)

	short := Curve(Point{0, 0}, Point{100, 0})
	assert.InDelta(t, 20, short[1].Y, 1e-9)

	same := Curve(Point{5, 5}, Point{5, 5})
	assert.Equal(t, []Point{{5, 5}, {5, 5}, {5, 5}}, same)
}
