package source

import (
	"math"
	"regexp"
	"strings"

	"github.com/matzehuels/archtower/pkg/arch"
)

// branchTokens each add one to a file's complexity per occurrence. "else if"
// is counted on top of its "else" and "if"; this is a token count, not a
// branch count.
var branchTokens = []*regexp.Regexp{
	regexp.MustCompile(`\bif\b`),
	regexp.MustCompile(`\belse\s+if\b`),
	regexp.MustCompile(`\belse\b`),
	regexp.MustCompile(`\bfor\b`),
	regexp.MustCompile(`\bwhile\b`),
	regexp.MustCompile(`\bdo\b`),
	regexp.MustCompile(`\bswitch\b`),
	regexp.MustCompile(`\bcase\b`),
	regexp.MustCompile(`\btry\b`),
	regexp.MustCompile(`\bcatch\b`),
	regexp.MustCompile(`&&`),
	regexp.MustCompile(`\|\|`),
}

// asyncTokens each add half a point for JavaScript and TypeScript.
var asyncTokens = []*regexp.Regexp{
	regexp.MustCompile(`\basync\b`),
	regexp.MustCompile(`\bawait\b`),
	regexp.MustCompile(`\bPromise\b`),
	regexp.MustCompile(`=>`),
}

// Complexity scores content with the token-count heuristic: 1, plus 1 per
// branching token, plus 0.5 per async token for JS-like languages, rounded
// to the nearest integer. The result is always at least 1.
func Complexity(content string, lang arch.Language) int {
	score := 1.0
	for _, re := range branchTokens {
		score += float64(len(re.FindAllStringIndex(content, -1)))
	}
	score += float64(countTernaries(content))
	if lang.IsJSLike() {
		for _, re := range asyncTokens {
			score += 0.5 * float64(len(re.FindAllStringIndex(content, -1)))
		}
	}
	return max(1, int(math.Round(score)))
}

// countTernaries counts '?' characters that are not part of "?.", "??" or a
// "??=" operator. A '?' directly followed by ':', ')', ',' or ']' marks an
// optional parameter, property or tuple element and is not counted.
func countTernaries(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] != '?' {
			continue
		}
		if i+1 < len(s) && (s[i+1] == '.' || s[i+1] == '?') {
			i++
			continue
		}
		if i > 0 && s[i-1] == '?' {
			continue
		}
		if next := strings.TrimLeft(s[i+1:], " \t"); next != "" && strings.IndexByte(":),]", next[0]) >= 0 {
			continue
		}
		n++
	}
	return n
}

// LinesOfCode counts lines that are non-empty after trimming and do not
// start with "//" or "*". Block comments are not tracked.
func LinesOfCode(content string) int {
	n := 0
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "//") || strings.HasPrefix(line, "*") {
			continue
		}
		n++
	}
	return n
}

// patternProbes maps each pattern tag to the substrings that signal it.
// Probes run against lowercased content; any hit tags the file.
var patternProbes = []struct {
	pattern arch.Pattern
	probes  []string
}{
	{arch.PatternInheritance, []string{"extends ", "implements ", "super("}},
	{arch.PatternSingleton, []string{"getinstance", "singleton"}},
	{arch.PatternObserver, []string{"addeventlistener", "subscribe", ".on(", "emit(", "observer"}},
	{arch.PatternFactory, []string{"factory"}},
	{arch.PatternMiddleware, []string{"middleware", "app.use(", "next()"}},
	{arch.PatternRouting, []string{"route", "navigate"}},
	{arch.PatternMVC, []string{"controller", "viewmodel"}},
	{arch.PatternAsync, []string{"async ", "await ", "promise"}},
	{arch.PatternCallback, []string{"callback", "cb("}},
}

// DetectPatterns returns every pattern whose probes occur in content, in
// declaration order. Tags are independent; several may apply.
func DetectPatterns(content string) []arch.Pattern {
	lower := strings.ToLower(content)
	patterns := []arch.Pattern{}
	for _, pp := range patternProbes {
		for _, probe := range pp.probes {
			if strings.Contains(lower, probe) {
				patterns = append(patterns, pp.pattern)
				break
			}
		}
	}
	return patterns
}
