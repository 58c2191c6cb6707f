package analysis

import (
	"slices"
	"strings"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/matzehuels/archtower/pkg/arch"
)

// Cycles reports the import cycles of an analysis: every strongly connected
// component with more than one node, plus nodes importing themselves. Each
// cycle is sorted by id and the list is sorted by first id. External targets
// never take part in a cycle.
//
// The report is informational. Hierarchy levels are computed without it.
func Cycles(a *arch.Analysis) [][]string {
	g := simple.NewDirectedGraph()
	ids := make(map[string]int64, len(a.Nodes))
	names := make(map[int64]string, len(a.Nodes))
	for i, n := range a.Nodes {
		ids[n.ID] = int64(i)
		names[int64(i)] = n.ID
		g.AddNode(simple.Node(i))
	}

	var cycles [][]string
	for _, e := range a.Edges {
		from, okFrom := ids[e.From]
		to, okTo := ids[e.To]
		if !okFrom || !okTo {
			continue
		}
		if from == to {
			cycles = append(cycles, []string{e.From})
			continue
		}
		g.SetEdge(simple.Edge{F: simple.Node(from), T: simple.Node(to)})
	}

	for _, scc := range topo.TarjanSCC(g) {
		if len(scc) < 2 {
			continue
		}
		cycle := make([]string, 0, len(scc))
		for _, n := range scc {
			cycle = append(cycle, names[n.ID()])
		}
		slices.Sort(cycle)
		cycles = append(cycles, cycle)
	}

	slices.SortFunc(cycles, func(x, y []string) int { return strings.Compare(x[0], y[0]) })
	return cycles
}
