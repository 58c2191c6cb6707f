package resolve

import (
	"github.com/charmbracelet/log"

	"github.com/matzehuels/archtower/pkg/arch"
)

// Link resolves every import of every node and returns the resulting edges.
// It fills each node's Dependencies and Dependents. Edges are deduplicated
// per (from, to) pair and emitted in node-id then import order, so
// Dependents come out sorted. Edges only ever target existing node ids or
// external ids.
func Link(nodes []*arch.Node, logger *log.Logger) []arch.Edge {
	r := New(nodes, logger)
	edges := []arch.Edge{}

	for _, n := range r.order {
		n.Dependencies = []string{}
		n.Dependents = []string{}
	}

	for _, n := range r.order {
		seen := make(map[string]bool, len(n.Imports))
		for _, spec := range n.Imports {
			to, ok := r.Target(n, spec)
			if !ok {
				r.logger.Debug("dropping unresolved import", "node", n.ID, "import", spec)
				continue
			}
			if seen[to] {
				continue
			}
			seen[to] = true

			edges = append(edges, arch.Edge{From: n.ID, To: to, Type: arch.EdgeImport, Strength: 1})
			n.Dependencies = append(n.Dependencies, to)
			if target, ok := r.nodes[to]; ok {
				target.Dependents = append(target.Dependents, n.ID)
			}
		}
	}
	return edges
}
