package arch

import (
	"path"
	"strings"
)

// ExternalPrefix marks ids of external pseudo-nodes.
const ExternalPrefix = "external_"

// KnownExtensions are stripped from paths and import specifiers before an id
// is derived, so a file and the extensionless imports that name it agree.
var KnownExtensions = []string{
	".d.ts", ".tsx", ".ts", ".mts", ".cts", ".jsx", ".js", ".mjs", ".cjs",
	".py", ".pyi", ".java", ".go", ".rs", ".rb", ".php", ".cs", ".cpp", ".cc",
	".hpp", ".c", ".h", ".kt", ".swift", ".vue", ".svelte", ".json", ".yaml",
	".yml", ".toml",
}

// NormalizePath converts p to a clean, slash-separated, root-relative path.
func NormalizePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	if p == "" {
		return ""
	}
	p = path.Clean(p)
	p = strings.TrimPrefix(p, "./")
	p = strings.TrimLeft(p, "/")
	if p == "." {
		return ""
	}
	return p
}

// StripExtension removes one known extension from the end of p.
func StripExtension(p string) string {
	lower := strings.ToLower(p)
	for _, ext := range KnownExtensions {
		if strings.HasSuffix(lower, ext) && len(p) > len(ext) {
			return p[:len(p)-len(ext)]
		}
	}
	return p
}

// Sanitize replaces every character outside [A-Za-z0-9_] with '_'.
func Sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// NodeID derives the node id for a file path (or an extensionless module
// path). The same path always yields the same id.
func NodeID(p string) string {
	return Sanitize(StripExtension(NormalizePath(p)))
}

// ExternalID derives the pseudo-node id for an unresolved import specifier.
func ExternalID(specifier string) string {
	return ExternalPrefix + Sanitize(specifier)
}

// IsExternal reports whether id names an external pseudo-node.
func IsExternal(id string) bool {
	return strings.HasPrefix(id, ExternalPrefix)
}

// SplitPath splits a normalized path into its directory and base name.
// The directory is "" for root-level files.
func SplitPath(p string) (dir, base string) {
	p = NormalizePath(p)
	dir, base = path.Split(p)
	return strings.TrimSuffix(dir, "/"), base
}
