// Package source turns individual source files into architecture graph nodes.
//
// A [Parser] applies the relevance filter and size ceiling, detects the
// language from the file extension, and extracts imports, exports and
// metadata flags through a per-language [Strategy]. JavaScript and
// TypeScript are parsed with tree-sitter; when the syntax tree contains
// errors, extraction falls back to regular expressions and never fails.
// Python is handled with regular expressions only. Other languages produce
// generic nodes with no imports.
//
// Complexity, lines of code and pattern tags are content heuristics:
//
//	node, err := source.NewParser(source.Options{}).Parse(ctx, source.File{
//	    Path:    "src/index.ts",
//	    Content: &content,
//	})
//	if source.IsSkip(err) {
//	    // excluded, not an error
//	}
package source
