package source

import (
	"context"
	"regexp"
	"slices"
	"strings"
)

var (
	jsImportFromRe = regexp.MustCompile(`import\s+(?:type\s+)?[\w*\s{},$]*?\s*from\s*['"]([^'"]+)['"]`)
	jsImportBareRe = regexp.MustCompile(`import\s*['"]([^'"]+)['"]`)
	jsRequireRe    = regexp.MustCompile(`require\(\s*['"]([^'"]+)['"]\s*\)`)
	jsExportRe     = regexp.MustCompile(`export\s+(?:default\s+)?(?:async\s+)?(?:function\*?|const|let|var|class)\s+([\w$]+)`)
	jsExportDefRe  = regexp.MustCompile(`export\s+default\s+([\w$]+)`)

	pyImportRe = regexp.MustCompile(`(?m)^[ \t]*import[ \t]+([\w.]+(?:[ \t]+as[ \t]+\w+)?(?:[ \t]*,[ \t]*[\w.]+(?:[ \t]+as[ \t]+\w+)?)*)`)
	pyFromRe   = regexp.MustCompile(`(?m)^[ \t]*from[ \t]+([\w.]+)[ \t]+import\b[ \t]*(\([^)]*\)|[^\n#]*)`)
	pyDefRe    = regexp.MustCompile(`\bdef\s+(\w+)\s*\(`)
	pyClassRe  = regexp.MustCompile(`\bclass\s+(\w+)`)
	pyMainRe   = regexp.MustCompile(`if\s+__name__\s*==\s*['"]__main__['"]`)
)

// jsDefaultKeywords are declaration keywords that jsExportDefRe would
// otherwise capture as a symbol name.
var jsDefaultKeywords = map[string]bool{
	"function": true, "class": true, "async": true, "const": true, "let": true, "var": true,
}

// jsRegexExtractor is the degraded JavaScript/TypeScript path used when the
// syntax tree has errors. It never fails.
type jsRegexExtractor struct{}

func (jsRegexExtractor) Extract(_ context.Context, content []byte, _ string) (Extraction, error) {
	text := string(content)
	var ex Extraction

	// Order by position so imports keep their source order.
	type hit struct {
		pos  int
		spec string
	}
	var hits []hit
	for _, re := range []*regexp.Regexp{jsImportFromRe, jsImportBareRe, jsRequireRe} {
		for _, m := range re.FindAllStringSubmatchIndex(text, -1) {
			hits = append(hits, hit{pos: m[0], spec: text[m[2]:m[3]]})
		}
	}
	slices.SortFunc(hits, func(a, b hit) int { return a.pos - b.pos })
	for _, h := range hits {
		ex.Imports = append(ex.Imports, h.spec)
	}

	for _, m := range jsExportRe.FindAllStringSubmatch(text, -1) {
		ex.Exports = append(ex.Exports, m[1])
	}
	for _, m := range jsExportDefRe.FindAllStringSubmatch(text, -1) {
		if !jsDefaultKeywords[m[1]] {
			ex.Exports = append(ex.Exports, m[1])
		}
	}

	ex.IsEntry = strings.Contains(text, "export default")
	ex.IsAsync = strings.Contains(text, "async")
	ex.HasErrorHandling = strings.Contains(text, "try") && strings.Contains(text, "catch")
	return ex, nil
}

// pythonExtractor extracts Python facts with regular expressions only.
type pythonExtractor struct{}

func (pythonExtractor) Extract(_ context.Context, content []byte, _ string) (Extraction, error) {
	text := string(content)
	var ex Extraction

	type hit struct {
		pos  int
		spec string
	}
	var hits []hit
	for _, m := range pyImportRe.FindAllStringSubmatchIndex(text, -1) {
		for _, name := range pyNames(text[m[2]:m[3]]) {
			hits = append(hits, hit{pos: m[0], spec: name})
		}
	}
	for _, m := range pyFromRe.FindAllStringSubmatchIndex(text, -1) {
		module := text[m[2]:m[3]]
		if strings.Trim(module, ".") != "" {
			hits = append(hits, hit{pos: m[0], spec: module})
			continue
		}
		// "from . import a, b" names sibling modules of the package.
		names := pyNames(text[m[4]:m[5]])
		if len(names) == 0 || slices.Contains(names, "*") {
			hits = append(hits, hit{pos: m[0], spec: module})
			continue
		}
		for _, name := range names {
			hits = append(hits, hit{pos: m[0], spec: module + name})
		}
	}
	slices.SortStableFunc(hits, func(a, b hit) int { return a.pos - b.pos })
	for _, h := range hits {
		ex.Imports = append(ex.Imports, h.spec)
	}

	for _, m := range pyDefRe.FindAllStringSubmatch(text, -1) {
		ex.Exports = append(ex.Exports, m[1])
	}
	for _, m := range pyClassRe.FindAllStringSubmatch(text, -1) {
		ex.Exports = append(ex.Exports, m[1])
	}

	ex.IsEntry = pyMainRe.MatchString(text)
	ex.IsAsync = strings.Contains(text, "async def")
	ex.HasErrorHandling = strings.Contains(text, "try:") || strings.Contains(text, "except:")
	return ex, nil
}

// pyNames splits an import list such as "a.b as c, d" or "(x,\n y)" into
// its module or member names, dropping aliases.
func pyNames(list string) []string {
	list = strings.Trim(strings.TrimSpace(list), "()")
	var out []string
	for _, part := range strings.Split(list, ",") {
		if fields := strings.Fields(part); len(fields) > 0 {
			out = append(out, fields[0])
		}
	}
	return out
}
