package source

import (
	"path"
	"strings"

	"github.com/matzehuels/archtower/pkg/arch"
)

// extLanguages maps lowercase file extensions to languages. Extensions not
// listed here are not considered source files by the relevance filter.
var extLanguages = map[string]arch.Language{
	".js":     arch.LangJavaScript,
	".jsx":    arch.LangJavaScript,
	".mjs":    arch.LangJavaScript,
	".cjs":    arch.LangJavaScript,
	".ts":     arch.LangTypeScript,
	".tsx":    arch.LangTypeScript,
	".mts":    arch.LangTypeScript,
	".cts":    arch.LangTypeScript,
	".py":     arch.LangPython,
	".pyi":    arch.LangPython,
	".java":   arch.LangJava,
	".go":     arch.LangGo,
	".rs":     arch.LangRust,
	".rb":     arch.LangRuby,
	".php":    arch.LangPHP,
	".cs":     arch.LangCSharp,
	".cpp":    arch.LangCPP,
	".cc":     arch.LangCPP,
	".hpp":    arch.LangCPP,
	".c":      arch.LangC,
	".h":      arch.LangC,
	".kt":     arch.LangKotlin,
	".swift":  arch.LangSwift,
	".vue":    arch.LangVue,
	".svelte": arch.LangSvelte,
}

// configFiles are admitted by the relevance filter regardless of extension.
var configFiles = map[string]arch.Language{
	"package.json":       arch.LangJSON,
	"tsconfig.json":      arch.LangJSON,
	"composer.json":      arch.LangJSON,
	"requirements.txt":   arch.LangUnknown,
	"setup.py":           arch.LangPython,
	"pyproject.toml":     arch.LangTOML,
	"cargo.toml":         arch.LangTOML,
	"go.mod":             arch.LangUnknown,
	"pom.xml":            arch.LangUnknown,
	"build.gradle":       arch.LangUnknown,
	"gemfile":            arch.LangUnknown,
	"dockerfile":         arch.LangUnknown,
	"docker-compose.yml": arch.LangYAML,
	"makefile":           arch.LangUnknown,
}

// DetectLanguage returns the language for a file path from its extension or,
// for allowlisted config files, its name. Unknown files map to LangUnknown.
func DetectLanguage(p string) arch.Language {
	_, base := arch.SplitPath(p)
	base = strings.ToLower(base)
	if lang, ok := extLanguages[path.Ext(base)]; ok {
		return lang
	}
	if lang, ok := configFiles[base]; ok {
		return lang
	}
	return arch.LangUnknown
}

// isJSXLike reports whether the file uses a JSX-bearing extension.
func isJSXLike(p string) bool {
	ext := strings.ToLower(path.Ext(p))
	return ext == ".jsx" || ext == ".tsx"
}
