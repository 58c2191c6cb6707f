package analysis

import (
	"maps"
	"slices"
	"strings"

	"github.com/matzehuels/archtower/pkg/arch"
)

// Filter selects nodes for query layers. Zero fields match everything.
type Filter struct {
	// Folder matches nodes whose directory equals Folder or sits below it.
	Folder   string
	Language arch.Language
	Type     arch.NodeType
}

// IsZero reports whether f matches every node.
func (f Filter) IsZero() bool {
	return f == Filter{}
}

// Match reports whether n passes every set criterion.
func (f Filter) Match(n *arch.Node) bool {
	if f.Language != "" && n.Language != f.Language {
		return false
	}
	if f.Type != "" && n.Type != f.Type {
		return false
	}
	if folder := arch.NormalizePath(f.Folder); folder != "" {
		dir := n.Folder()
		if dir != folder && !strings.HasPrefix(dir, folder+"/") {
			return false
		}
	}
	return true
}

// FilterNodes returns the nodes of a that match f, in analysis order.
func FilterNodes(a *arch.Analysis, f Filter) []*arch.Node {
	out := []*arch.Node{}
	for _, n := range a.Nodes {
		if f.Match(n) {
			out = append(out, n)
		}
	}
	return out
}

// LanguageBreakdown counts nodes per language.
func LanguageBreakdown(a *arch.Analysis) map[arch.Language]int {
	counts := make(map[arch.Language]int)
	for _, n := range a.Nodes {
		counts[n.Language]++
	}
	return counts
}

// Folders lists the distinct node directories, sorted. The repository root
// is reported as "".
func Folders(a *arch.Analysis) []string {
	set := make(map[string]struct{})
	for _, n := range a.Nodes {
		set[n.Folder()] = struct{}{}
	}
	return slices.Sorted(maps.Keys(set))
}
