package arch

import "time"

// NodeType classifies a source file by its architectural role.
type NodeType string

const (
	TypeComponent NodeType = "component"
	TypeService   NodeType = "service"
	TypeUtility   NodeType = "utility"
	TypeAPI       NodeType = "api"
	TypeDatabase  NodeType = "database"
	TypeConfig    NodeType = "config"
	TypeHook      NodeType = "hook"
	TypeModule    NodeType = "module"
	TypeTest      NodeType = "test"
)

// NodeTypes lists every node type in declaration order.
var NodeTypes = []NodeType{
	TypeComponent, TypeService, TypeUtility, TypeAPI, TypeDatabase,
	TypeConfig, TypeHook, TypeModule, TypeTest,
}

// Valid reports whether t is one of the declared node types.
func (t NodeType) Valid() bool {
	for _, known := range NodeTypes {
		if t == known {
			return true
		}
	}
	return false
}

// EdgeType describes the relationship an edge represents.
type EdgeType string

const (
	EdgeImport      EdgeType = "import"
	EdgeExport      EdgeType = "export"
	EdgeCall        EdgeType = "call"
	EdgeDependency  EdgeType = "dependency"
	EdgeInheritance EdgeType = "inheritance"
)

// Language is the detected source language of a file.
type Language string

const (
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
	LangPython     Language = "python"
	LangJava       Language = "java"
	LangGo         Language = "go"
	LangRust       Language = "rust"
	LangRuby       Language = "ruby"
	LangPHP        Language = "php"
	LangCSharp     Language = "csharp"
	LangCPP        Language = "cpp"
	LangC          Language = "c"
	LangKotlin     Language = "kotlin"
	LangSwift      Language = "swift"
	LangVue        Language = "vue"
	LangSvelte     Language = "svelte"
	LangJSON       Language = "json"
	LangYAML       Language = "yaml"
	LangTOML       Language = "toml"
	LangUnknown    Language = "unknown"
)

// IsJSLike reports whether the language gets the JavaScript/TypeScript
// treatment (AST extraction, hook typing, async complexity weights).
func (l Language) IsJSLike() bool {
	return l == LangJavaScript || l == LangTypeScript
}

// Pattern is a design-pattern tag detected in a file's content.
type Pattern string

const (
	PatternInheritance Pattern = "inheritance"
	PatternSingleton   Pattern = "singleton"
	PatternObserver    Pattern = "observer"
	PatternFactory     Pattern = "factory"
	PatternMiddleware  Pattern = "middleware"
	PatternRouting     Pattern = "routing"
	PatternMVC         Pattern = "mvc"
	PatternAsync       Pattern = "async"
	PatternCallback    Pattern = "callback"
)

// NodeMetadata carries the boolean flags and pattern tags extracted from a file.
type NodeMetadata struct {
	IsEntry          bool      `json:"isEntry"`
	IsAsync          bool      `json:"isAsync"`
	HasErrorHandling bool      `json:"hasErrorHandling"`
	Patterns         []Pattern `json:"patterns"`
}

// HasPattern reports whether p was detected.
func (m NodeMetadata) HasPattern(p Pattern) bool {
	for _, have := range m.Patterns {
		if have == p {
			return true
		}
	}
	return false
}

// Node is a parsed, relevant source file.
//
// Imports holds the raw specifiers in source order. Dependencies holds the
// resolved targets (node ids or external ids) and Dependents the reverse
// relation over real nodes; both are filled in by resolution.
type Node struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Type         NodeType     `json:"type"`
	FilePath     string       `json:"filePath"`
	Language     Language     `json:"language"`
	LinesOfCode  int          `json:"linesOfCode"`
	Complexity   int          `json:"complexity"`
	Imports      []string     `json:"imports"`
	Exports      []string     `json:"exports"`
	Dependencies []string     `json:"dependencies"`
	Dependents   []string     `json:"dependents"`
	Metadata     NodeMetadata `json:"metadata"`
}

// Folder returns the directory portion of the node's file path ("" at the root).
func (n *Node) Folder() string {
	dir, _ := SplitPath(n.FilePath)
	return dir
}

// Edge is a directed relationship between two nodes. To is either a node id
// or an external id.
type Edge struct {
	From     string   `json:"from"`
	To       string   `json:"to"`
	Type     EdgeType `json:"type"`
	Strength float64  `json:"strength"`
}

// IsExternal reports whether either end of the edge is an external pseudo-node.
func (e Edge) IsExternal() bool {
	return IsExternal(e.From) || IsExternal(e.To)
}

// Metrics aggregates size and structure figures over a finished graph.
// Ratios are rounded to two decimals and are zero on empty graphs.
type Metrics struct {
	TotalFiles        int     `json:"totalFiles"`
	TotalLines        int     `json:"totalLines"`
	AverageComplexity float64 `json:"averageComplexity"`
	Coupling          float64 `json:"coupling"`
	Cohesion          float64 `json:"cohesion"`
}

// Analysis is the complete output of one analysis run.
type Analysis struct {
	RunID       string    `json:"runId,omitempty"`
	GeneratedAt time.Time `json:"generatedAt,omitzero"`
	Nodes       []*Node   `json:"nodes"`
	Edges       []Edge    `json:"edges"`
	Layers      Layers    `json:"layers"`
	Metrics     Metrics   `json:"metrics"`
}

// Node returns the node with the given id, or nil.
func (a *Analysis) Node(id string) *Node {
	for _, n := range a.Nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}

// NodeIndex returns the nodes keyed by id.
func (a *Analysis) NodeIndex() map[string]*Node {
	idx := make(map[string]*Node, len(a.Nodes))
	for _, n := range a.Nodes {
		idx[n.ID] = n
	}
	return idx
}
