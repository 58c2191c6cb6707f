package analysis

import (
	"math"

	"github.com/matzehuels/archtower/pkg/arch"
)

// ComputeMetrics aggregates totals and ratios over a finished graph. Every
// ratio is 0 when its denominator is 0 and is rounded to two decimals.
func ComputeMetrics(nodes []*arch.Node, edges []arch.Edge) arch.Metrics {
	m := arch.Metrics{TotalFiles: len(nodes)}

	var complexity, deps int
	for _, n := range nodes {
		m.TotalLines += n.LinesOfCode
		complexity += n.Complexity
		deps += len(n.Dependencies)
	}

	internal := 0
	for _, e := range edges {
		if !e.IsExternal() {
			internal++
		}
	}

	m.AverageComplexity = ratio(complexity, len(nodes))
	m.Coupling = ratio(deps, len(nodes))
	m.Cohesion = ratio(internal, len(edges))
	return m
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return round2(float64(num) / float64(den))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
