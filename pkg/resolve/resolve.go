package resolve

import (
	"io"
	"path"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/archtower/pkg/arch"
)

// Resolver maps raw import specifiers to node ids or external ids. It
// indexes a complete node set, so it must be built only after every node of
// the run is registered.
type Resolver struct {
	nodes  map[string]*arch.Node
	order  []*arch.Node // sorted by id
	python []pyModule
	logger *log.Logger
}

type pyModule struct {
	id   string
	segs []string
}

// New indexes nodes. A nil logger discards.
func New(nodes []*arch.Node, logger *log.Logger) *Resolver {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	r := &Resolver{
		nodes:  make(map[string]*arch.Node, len(nodes)),
		order:  slices.Clone(nodes),
		logger: logger,
	}
	slices.SortFunc(r.order, func(a, b *arch.Node) int { return strings.Compare(a.ID, b.ID) })
	for _, n := range r.order {
		r.nodes[n.ID] = n
		if n.Language == arch.LangPython {
			r.python = append(r.python, pyModule{id: n.ID, segs: moduleSegments(n.FilePath)})
		}
	}
	return r
}

// Target resolves spec as imported from node from. It returns the id of an
// existing node, an external id, or ok=false when the import points inside
// the repository at something that is not a node.
//
// Order: relative, absolute, bare-name heuristics, external.
func (r *Resolver) Target(from *arch.Node, spec string) (id string, ok bool) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return "", false
	}

	switch {
	case strings.HasPrefix(spec, "./"), strings.HasPrefix(spec, "../"), spec == ".", spec == "..":
		return r.local(path.Join(from.Folder(), spec))
	case strings.HasPrefix(spec, "/"):
		return r.local(spec)
	}

	if from.Language == arch.LangPython {
		if strings.HasPrefix(spec, ".") {
			return r.pythonRelative(from, spec)
		}
		if id, ok := r.pythonBare(spec); ok {
			return id, true
		}
		return arch.ExternalID(spec), true
	}

	if from.Language.IsJSLike() && !strings.ContainsAny(spec, "./") {
		if id, ok := r.byFileName(spec); ok {
			return id, true
		}
	}
	return arch.ExternalID(spec), true
}

// local resolves a repository path to a node id, trying a directory index
// module when the path itself is not a node.
func (r *Resolver) local(p string) (string, bool) {
	id := arch.NodeID(p)
	if _, ok := r.nodes[id]; ok {
		return id, true
	}
	for _, suffix := range []string{"_index", "___init__"} {
		if _, ok := r.nodes[id+suffix]; ok {
			return id + suffix, true
		}
	}
	return "", false
}

// pythonRelative handles "from .mod import x" style specifiers: each leading
// dot past the first climbs one package.
func (r *Resolver) pythonRelative(from *arch.Node, spec string) (string, bool) {
	rest := strings.TrimLeft(spec, ".")
	dir := from.Folder()
	for range len(spec) - len(rest) - 1 {
		dir = path.Dir(dir)
		if dir == "." {
			dir = ""
		}
	}
	if rest == "" {
		return "", false
	}
	if id, ok := r.local(path.Join(dir, strings.ReplaceAll(rest, ".", "/"))); ok {
		return id, true
	}
	return r.pythonBare(rest)
}

// pythonBare matches a dotted module path against the path segments of every
// Python node: first by tail alignment, then by any contiguous run. Nodes are
// scanned in id order, so the first match is deterministic.
func (r *Resolver) pythonBare(spec string) (string, bool) {
	var want []string
	for _, s := range strings.Split(spec, ".") {
		if s != "" {
			want = append(want, s)
		}
	}
	if len(want) == 0 {
		return "", false
	}
	for _, m := range r.python {
		if hasSuffix(m.segs, want) {
			return m.id, true
		}
	}
	for _, m := range r.python {
		if containsRun(m.segs, want) {
			return m.id, true
		}
	}
	return "", false
}

// byFileName finds the first node whose file name without extension equals
// name.
func (r *Resolver) byFileName(name string) (string, bool) {
	for _, n := range r.order {
		_, base := arch.SplitPath(n.FilePath)
		if arch.StripExtension(base) == name {
			return n.ID, true
		}
	}
	return "", false
}

// moduleSegments splits a Python file path into module segments, dropping
// the extension and a trailing __init__.
func moduleSegments(p string) []string {
	segs := strings.Split(arch.StripExtension(arch.NormalizePath(p)), "/")
	if len(segs) > 1 && segs[len(segs)-1] == "__init__" {
		segs = segs[:len(segs)-1]
	}
	return segs
}

func hasSuffix(segs, want []string) bool {
	if len(want) > len(segs) {
		return false
	}
	return slices.Equal(segs[len(segs)-len(want):], want)
}

func containsRun(segs, want []string) bool {
	for i := 0; i+len(want) <= len(segs); i++ {
		if slices.Equal(segs[i:i+len(want)], want) {
			return true
		}
	}
	return false
}
