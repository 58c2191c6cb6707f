package source

import (
	"strings"

	"github.com/matzehuels/archtower/pkg/arch"
)

// genericDirs are parent directories too common to disambiguate a name.
var genericDirs = map[string]bool{
	"":           true,
	"src":        true,
	"lib":        true,
	"components": true,
	"utils":      true,
}

// NodeName derives a display name from a file path: the file name without
// its extension, prefixed by the parent directory unless the parent is a
// generic one.
func NodeName(p string) string {
	dir, base := arch.SplitPath(p)
	name := arch.StripExtension(base)
	parent := dir
	if i := strings.LastIndex(dir, "/"); i >= 0 {
		parent = dir[i+1:]
	}
	if genericDirs[strings.ToLower(parent)] {
		return name
	}
	return parent + "/" + name
}

// InferType classifies a file by path keywords in priority order and falls
// back to content cues, then to TypeModule.
func InferType(p string, lang arch.Language, content string) arch.NodeType {
	lower := strings.ToLower(arch.NormalizePath(p))
	has := func(words ...string) bool {
		for _, w := range words {
			if strings.Contains(lower, w) {
				return true
			}
		}
		return false
	}

	switch {
	case has("component") || isJSXLike(lower):
		return arch.TypeComponent
	case has("service", "api"):
		return arch.TypeService
	case has("util", "helper"):
		return arch.TypeUtility
	case has("config", "setting"):
		return arch.TypeConfig
	case lang.IsJSLike() && has("hook"):
		return arch.TypeHook
	case has("test", "spec"):
		return arch.TypeTest
	case has("database", "db", "model"):
		return arch.TypeDatabase
	}

	switch {
	case strings.Contains(content, "export default"), strings.Contains(content, "ReactDOM.render"):
		return arch.TypeComponent
	case strings.Contains(content, "export function"), strings.Contains(content, "module.exports"):
		return arch.TypeService
	}
	return arch.TypeModule
}
