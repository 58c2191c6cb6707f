package layout

import "github.com/matzehuels/archtower/pkg/arch"

// MaxImportance caps the importance score.
const MaxImportance = 5.0

// Importance scores how prominent a node should be, from 1 to 5. Entry
// points, heavily depended-on, complex, large and pattern-bearing files
// score higher.
func Importance(n *arch.Node) float64 {
	score := 1.0
	if n.Metadata.IsEntry {
		score += 3
	}
	score += 0.5 * float64(len(n.Dependents))
	score += 0.1 * float64(n.Complexity)
	for _, p := range []arch.Pattern{arch.PatternSingleton, arch.PatternObserver, arch.PatternMVC} {
		if n.Metadata.HasPattern(p) {
			score++
		}
	}
	if n.LinesOfCode > 200 {
		score += 0.5
	}
	if n.LinesOfCode > 500 {
		score += 0.5
	}
	return min(score, MaxImportance)
}
