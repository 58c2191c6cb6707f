package hierarchy

import (
	"slices"

	"github.com/matzehuels/archtower/pkg/arch"
)

// Levels maps node ids to their 1-based hierarchy level.
type Levels map[string]int

// Of returns the level of id, or 1 for ids without one.
func (l Levels) Of(id string) int {
	if v, ok := l[id]; ok {
		return v
	}
	return 1
}

// Max returns the deepest level, or 0 when l is empty.
func (l Levels) Max() int {
	m := 0
	for _, v := range l {
		m = max(m, v)
	}
	return m
}

// Build computes the hierarchy level of every node: 1 plus the highest level
// among the nodes it depends on, so nodes without internal dependencies sit
// at level 1.
//
// Only import and dependency edges between known nodes count; external
// targets are ignored.
//
// # Cycles
//
// The traversal marks nodes in progress. A dependency reached while still in
// progress, which only happens inside a cycle, contributes level 0 instead of
// being followed again. Cycles therefore terminate and every node gets a
// finite level of at least 1, but the node that closes a cycle can be placed
// lower than its true longest chain. Which node that is depends only on id
// order, so results are deterministic.
//
// # Performance
//
// Time complexity is O(V + E). The traversal keeps an explicit stack, so deep
// chains cannot exhaust the goroutine stack.
func Build(nodes []*arch.Node, edges []arch.Edge) Levels {
	adj := adjacency(nodes, edges)

	ids := make([]string, 0, len(nodes))
	for _, n := range nodes {
		ids = append(ids, n.ID)
	}
	slices.Sort(ids)

	const (
		white = iota
		gray
		black
	)
	color := make(map[string]int, len(ids))
	levels := make(Levels, len(ids))

	type frame struct {
		id   string
		next int
		best int
	}

	for _, root := range ids {
		if color[root] != white {
			continue
		}
		color[root] = gray
		stack := []frame{{id: root}}

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			children := adj[top.id]

			if top.next < len(children) {
				child := children[top.next]
				top.next++
				switch color[child] {
				case white:
					color[child] = gray
					stack = append(stack, frame{id: child})
				case black:
					top.best = max(top.best, levels[child])
				}
				continue
			}

			level := top.best + 1
			levels[top.id] = level
			color[top.id] = black
			stack = stack[:len(stack)-1]
			if len(stack) > 0 {
				parent := &stack[len(stack)-1]
				parent.best = max(parent.best, level)
			}
		}
	}
	return levels
}

// adjacency lists, per node, the distinct known nodes it depends on in id
// order.
func adjacency(nodes []*arch.Node, edges []arch.Edge) map[string][]string {
	known := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		known[n.ID] = true
	}
	adj := make(map[string][]string, len(nodes))
	for _, e := range edges {
		if e.Type != arch.EdgeImport && e.Type != arch.EdgeDependency {
			continue
		}
		if !known[e.From] || !known[e.To] {
			continue
		}
		adj[e.From] = append(adj[e.From], e.To)
	}
	for id, deps := range adj {
		slices.Sort(deps)
		adj[id] = slices.Compact(deps)
	}
	return adj
}
