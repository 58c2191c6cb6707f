package source

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// astExtractor walks a tree-sitter syntax tree of a JavaScript or TypeScript
// module. A tree containing error nodes is reported as ErrSyntax so the
// caller can fall back to regex extraction.
type astExtractor struct{}

func grammarFor(filePath string) *sitter.Language {
	lower := strings.ToLower(filePath)
	switch {
	case strings.HasSuffix(lower, ".tsx"):
		return tsx.GetLanguage()
	case strings.HasSuffix(lower, ".ts"), strings.HasSuffix(lower, ".mts"), strings.HasSuffix(lower, ".cts"):
		return typescript.GetLanguage()
	default:
		return javascript.GetLanguage()
	}
}

func (astExtractor) Extract(ctx context.Context, content []byte, filePath string) (Extraction, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(grammarFor(filePath))

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return Extraction{}, fmt.Errorf("tree-sitter parse: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return Extraction{}, fmt.Errorf("%w: empty tree", ErrSyntax)
	}
	if root.HasError() {
		return Extraction{}, ErrSyntax
	}

	w := &astWalker{src: content}
	w.walk(root)
	return w.ex, nil
}

type astWalker struct {
	src []byte
	ex  Extraction
}

// walk visits every node in source order without recursion.
func (w *astWalker) walk(root *sitter.Node) {
	stack := []*sitter.Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		w.visit(n)

		for i := int(n.ChildCount()) - 1; i >= 0; i-- {
			if c := n.Child(i); c != nil {
				stack = append(stack, c)
			}
		}
	}
}

func (w *astWalker) visit(n *sitter.Node) {
	switch n.Type() {
	case "import_statement":
		if src := n.ChildByFieldName("source"); src != nil {
			w.addImport(src)
		}
	case "export_statement":
		w.visitExport(n)
	case "call_expression":
		w.visitCall(n)
	case "try_statement":
		w.ex.HasErrorHandling = true
	case "async":
		w.ex.IsAsync = true
	}
}

func (w *astWalker) visitExport(n *sitter.Node) {
	if src := n.ChildByFieldName("source"); src != nil {
		w.addImport(src)
	}

	isDefault := false
	for i := 0; i < int(n.ChildCount()); i++ {
		if c := n.Child(i); c != nil && c.Type() == "default" {
			isDefault = true
			break
		}
	}

	if decl := n.ChildByFieldName("declaration"); decl != nil {
		names := declarationNames(decl, w.src)
		if isDefault && len(names) == 0 {
			names = []string{"default"}
		}
		w.ex.Exports = append(w.ex.Exports, names...)
	} else if isDefault {
		name := "default"
		if v := n.ChildByFieldName("value"); v != nil {
			switch {
			case v.Type() == "identifier":
				name = v.Content(w.src)
			case v.ChildByFieldName("name") != nil:
				name = v.ChildByFieldName("name").Content(w.src)
			}
		}
		w.ex.Exports = append(w.ex.Exports, name)
	}

	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c == nil || c.Type() != "export_clause" {
			continue
		}
		for j := 0; j < int(c.NamedChildCount()); j++ {
			spec := c.NamedChild(j)
			if spec == nil || spec.Type() != "export_specifier" {
				continue
			}
			name := spec.ChildByFieldName("alias")
			if name == nil {
				name = spec.ChildByFieldName("name")
			}
			if name != nil {
				w.ex.Exports = append(w.ex.Exports, unquote(name.Content(w.src)))
			}
		}
	}

	if isDefault {
		w.ex.IsEntry = true
	}
}

// visitCall records require('x') and dynamic import('x').
func (w *astWalker) visitCall(n *sitter.Node) {
	fn := n.ChildByFieldName("function")
	if fn == nil {
		return
	}
	isImport := fn.Type() == "import" || (fn.Type() == "identifier" && fn.Content(w.src) == "require")
	if !isImport {
		return
	}
	args := n.ChildByFieldName("arguments")
	if args == nil || args.NamedChildCount() == 0 {
		return
	}
	if first := args.NamedChild(0); first != nil && first.Type() == "string" {
		w.addImport(first)
	}
}

func (w *astWalker) addImport(str *sitter.Node) {
	if spec := unquote(str.Content(w.src)); spec != "" {
		w.ex.Imports = append(w.ex.Imports, spec)
	}
}

// declarationNames returns the bound names of an exported declaration.
func declarationNames(decl *sitter.Node, src []byte) []string {
	switch decl.Type() {
	case "lexical_declaration", "variable_declaration":
		var names []string
		for i := 0; i < int(decl.NamedChildCount()); i++ {
			d := decl.NamedChild(i)
			if d == nil || d.Type() != "variable_declarator" {
				continue
			}
			if name := d.ChildByFieldName("name"); name != nil && name.Type() == "identifier" {
				names = append(names, name.Content(src))
			}
		}
		return names
	default:
		if name := decl.ChildByFieldName("name"); name != nil {
			return []string{name.Content(src)}
		}
		return nil
	}
}

func unquote(s string) string {
	return strings.Trim(strings.TrimSpace(s), "\"'`")
}
