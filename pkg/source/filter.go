package source

import (
	"fmt"
	"path"
	"strings"

	"github.com/gobwas/glob"

	"github.com/matzehuels/archtower/pkg/arch"
)

// excludedFragments are matched against "/"+lowercase(path). Directory
// fragments carry both slashes so "rebuild/" does not match "/build/".
var excludedFragments = []string{
	"/node_modules/",
	"/dist/",
	"/build/",
	"/vendor/",
	"/.git/",
	"/coverage/",
	"/__pycache__/",
	"/.next/",
	"/.venv/",
	"package-lock.json",
	"yarn.lock",
	"pnpm-lock.yaml",
	"poetry.lock",
	"cargo.lock",
	".min.js",
	".map",
}

// Filter decides which files are relevant to the architecture graph.
// The zero value applies only the built-in rules.
type Filter struct {
	exclude []glob.Glob
}

// NewFilter compiles additional exclusion globs (e.g. "**/generated/**").
// Patterns use '/' as the separator.
func NewFilter(patterns ...string) (*Filter, error) {
	f := &Filter{}
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("compile exclude pattern %q: %w", p, err)
		}
		f.exclude = append(f.exclude, g)
	}
	return f, nil
}

// Relevant applies the built-in relevance rules to p: the file must have a
// known source extension or be an allowlisted config file, and must not sit
// under an excluded path.
func (f *Filter) Relevant(p string) bool {
	p = arch.NormalizePath(p)
	if p == "" {
		return false
	}
	lower := strings.ToLower(p)
	_, base := arch.SplitPath(lower)

	_, known := extLanguages[path.Ext(base)]
	if _, cfg := configFiles[base]; !known && !cfg {
		return false
	}

	probe := "/" + lower
	for _, frag := range excludedFragments {
		if strings.Contains(probe, frag) {
			return false
		}
	}
	if f != nil {
		for _, g := range f.exclude {
			if g.Match(p) {
				return false
			}
		}
	}
	return true
}

// Admit combines the caller's relevance flag with the filter. A non-nil flag
// always wins.
func (f *Filter) Admit(p string, relevant *bool) bool {
	if relevant != nil {
		return *relevant
	}
	return f.Relevant(p)
}
