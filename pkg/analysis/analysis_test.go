package analysis

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/archtower/pkg/arch"
	"github.com/matzehuels/archtower/pkg/source"
)

func file(path, content string) source.File {
	return source.File{Path: path, Content: &content, Size: int64(len(content))}
}

func analyze(files ...source.File) *arch.Analysis {
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	return New(Options{Now: func() time.Time { return fixed }}).Analyze(context.Background(), files)
}

func ids(a *arch.Analysis) []string {
	out := make([]string, len(a.Nodes))
	for i, n := range a.Nodes {
		out[i] = n.ID
	}
	return out
}

func TestEntryScenario(t *testing.T) {
	a := analyze(file("src/index.ts", "export default function main() {}\n"))

	require.Len(t, a.Nodes, 1)
	assert.True(t, a.Nodes[0].Metadata.IsEntry)
	assert.Equal(t, []string{"src_index"}, a.Layers.Entry)
	assert.Empty(t, a.Edges)
	assert.NotEmpty(t, a.RunID)
}

func TestChainScenario(t *testing.T) {
	a := analyze(
		file("a.ts", "import { b } from './b';\nexport const a = b;\n"),
		file("b.ts", "import { c } from './c';\nexport const b = c;\n"),
		file("c.ts", "export const c = 1;\n"),
	)

	assert.Equal(t, []string{"a", "b", "c"}, ids(a))
	assert.Equal(t, []arch.Edge{
		{From: "a", To: "b", Type: arch.EdgeImport, Strength: 1},
		{From: "b", To: "c", Type: arch.EdgeImport, Strength: 1},
	}, a.Edges)
}

func TestCycleScenario(t *testing.T) {
	a := analyze(
		file("a.ts", "import { b } from './b';\nexport const a = 1;\n"),
		file("b.ts", "import { a } from './a';\nexport const b = 2;\n"),
	)

	assert.Len(t, a.Nodes, 2)
	assert.Len(t, a.Edges, 2)
	assert.Equal(t, [][]string{{"a", "b"}}, Cycles(a))
}

func TestPythonScenario(t *testing.T) {
	a := analyze(
		file("x.py", "import os\nfrom mypkg.util import helper\n"),
		file("mypkg/util.py", "def helper():\n    pass\n"),
	)

	assert.ElementsMatch(t, []arch.Edge{
		{From: "x", To: "external_os", Type: arch.EdgeImport, Strength: 1},
		{From: "x", To: "mypkg_util", Type: arch.EdgeImport, Strength: 1},
	}, a.Edges)
	for _, n := range a.Nodes {
		assert.False(t, arch.IsExternal(n.ID))
	}
}

func sampleRepo() []source.File {
	return []source.File{
		file("src/index.tsx", "import App from './App';\nimport React from 'react';\nReactDOM.render(App);\n"),
		file("src/App.tsx", "import { useAuth } from './hooks/useAuth';\nexport default function App() { return null; }\n"),
		file("src/hooks/useAuth.ts", "import { api } from '../services/api';\nexport function useAuth() { return api(); }\n"),
		file("src/services/api.ts", "import axios from 'axios';\nexport async function api() { try { await axios.get('/'); } catch (e) {} }\n"),
		file("src/models/user.ts", "export class User {}\n"),
		file("src/config.ts", "export const config = {};\n"),
		file("src/utils/format.js", "module.exports = function format(x) { return x ? x : ''; };\n"),
		file("scripts/build.py", "import sys\nfrom src import config\n"),
		file("README.md", "# readme\n"),
		file("node_modules/react/index.js", "module.exports = {};\n"),
	}
}

func TestLayerPartition(t *testing.T) {
	a := analyze(sampleRepo()...)

	seen := map[string]int{}
	for _, l := range arch.AllLayers {
		for _, id := range a.Layers.IDs(l) {
			seen[id]++
		}
	}
	require.Len(t, seen, len(a.Nodes))
	for _, n := range a.Nodes {
		assert.Equal(t, 1, seen[n.ID], "node %s", n.ID)
		assert.GreaterOrEqual(t, n.Complexity, 1)
	}
}

func TestEdgesTargetKnownIDs(t *testing.T) {
	a := analyze(sampleRepo()...)
	idx := a.NodeIndex()
	for _, e := range a.Edges {
		_, known := idx[e.To]
		assert.True(t, known || arch.IsExternal(e.To), "edge %s -> %s", e.From, e.To)
	}
}

func TestDeterministicAcrossArrivalOrder(t *testing.T) {
	files := sampleRepo()
	want := analyze(files...)

	rng := rand.New(rand.NewPCG(1, 2))
	for range 5 {
		shuffled := append([]source.File(nil), files...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		got := analyze(shuffled...)

		assert.Equal(t, ids(want), ids(got))
		assert.Equal(t, want.Edges, got.Edges)
		assert.Equal(t, want.Layers, got.Layers)
		assert.Equal(t, want.Metrics, got.Metrics)
	}
}

func TestDuplicateIDFirstPathWins(t *testing.T) {
	a := analyze(
		file("lib/a-b.ts", "export const second = 1;\n"),
		file("lib/a_b.ts", "export const first = 1;\n"),
	)
	require.Len(t, a.Nodes, 1)
	assert.Equal(t, "lib/a-b.ts", a.Nodes[0].FilePath)
}

func TestEmptyInput(t *testing.T) {
	a := analyze()

	assert.NotNil(t, a.Nodes)
	assert.NotNil(t, a.Edges)
	assert.Equal(t, 0, a.Layers.Len())
	assert.Equal(t, arch.Metrics{}, a.Metrics)
}

func TestCancelledContextStillAnalyzes(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := New(Options{}).Analyze(ctx, []source.File{
		file("a.ts", "import './b';\n"),
		file("b.ts", "export const b = 1;\n"),
	})
	assert.Len(t, a.Nodes, 2)
	assert.Equal(t, []string{"b"}, a.Node("a").Dependencies)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		typ     arch.NodeType
		isEntry bool
		path    string
		want    arch.Layer
	}{
		{arch.TypeModule, true, "lib/x.ts", arch.LayerEntry},
		{arch.TypeModule, false, "src/index.ts", arch.LayerEntry},
		{arch.TypeModule, false, "cmd/main.py", arch.LayerEntry},
		{arch.TypeComponent, false, "src/Button.tsx", arch.LayerPresentation},
		{arch.TypeModule, false, "app/views/home.py", arch.LayerPresentation},
		{arch.TypeService, false, "src/user.ts", arch.LayerBusiness},
		{arch.TypeAPI, false, "src/user.ts", arch.LayerBusiness},
		{arch.TypeDatabase, false, "src/repo.ts", arch.LayerData},
		{arch.TypeModule, false, "src/models/user.ts", arch.LayerData},
		{arch.TypeUtility, false, "src/fmt.ts", arch.LayerInfrastructure},
		{arch.TypeConfig, false, "src/env.ts", arch.LayerInfrastructure},
		{arch.TypeModule, false, "src/config/env.ts", arch.LayerInfrastructure},
		{arch.TypeModule, false, "src/other.ts", arch.LayerBusiness},
		{arch.TypeTest, false, "src/other.test.ts", arch.LayerBusiness},
	}
	for _, tt := range tests {
		if got := Classify(tt.typ, tt.isEntry, tt.path); got != tt.want {
			t.Errorf("Classify(%v, %v, %q) = %v, want %v", tt.typ, tt.isEntry, tt.path, got, tt.want)
		}
	}
}

func TestComputeMetrics(t *testing.T) {
	nodes := []*arch.Node{
		{ID: "a", LinesOfCode: 10, Complexity: 2, Dependencies: []string{"b", "external_os"}},
		{ID: "b", LinesOfCode: 5, Complexity: 3, Dependencies: []string{}},
		{ID: "c", LinesOfCode: 1, Complexity: 2, Dependencies: []string{"b"}},
	}
	edges := []arch.Edge{
		{From: "a", To: "b"},
		{From: "a", To: "external_os"},
		{From: "c", To: "b"},
	}

	got := ComputeMetrics(nodes, edges)
	assert.Equal(t, arch.Metrics{
		TotalFiles:        3,
		TotalLines:        16,
		AverageComplexity: 2.33,
		Coupling:          1,
		Cohesion:          0.67,
	}, got)

	zero := ComputeMetrics(nil, nil)
	assert.Equal(t, arch.Metrics{}, zero)
}

func TestFilterNodes(t *testing.T) {
	a := analyze(sampleRepo()...)

	ts := FilterNodes(a, Filter{Language: arch.LangPython})
	require.Len(t, ts, 1)
	assert.Equal(t, "scripts_build", ts[0].ID)

	hooks := FilterNodes(a, Filter{Folder: "src/hooks"})
	require.Len(t, hooks, 1)
	assert.Equal(t, arch.TypeHook, hooks[0].Type)

	assert.Len(t, FilterNodes(a, Filter{Folder: "src"}), 7)
	assert.Len(t, FilterNodes(a, Filter{}), len(a.Nodes))
	assert.Empty(t, FilterNodes(a, Filter{Folder: "sr"}))

	assert.Equal(t, 1, LanguageBreakdown(a)[arch.LangJavaScript])
	assert.Contains(t, Folders(a), "src/services")
}

func TestCyclesSelfLoop(t *testing.T) {
	a := &arch.Analysis{
		Nodes: []*arch.Node{{ID: "a"}, {ID: "b"}},
		Edges: []arch.Edge{{From: "a", To: "a"}, {From: "a", To: "b"}, {From: "b", To: "external_x"}},
	}
	assert.Equal(t, [][]string{{"a"}}, Cycles(a))
}

func TestDuplicatePathsOrderInsensitive(t *testing.T) {
	withImport := file("src/a.ts", "import { d } from './dep';\nexport const a = d;\n")
	plain := file("src/a.ts", "export const a = 1;\n")
	dep := file("src/dep.ts", "export const d = 1;\n")

	first := analyze(withImport, plain, dep)
	second := analyze(plain, dep, withImport)

	assert.Equal(t, ids(first), ids(second))
	assert.Equal(t, first.Edges, second.Edges)
	assert.Equal(t, first.Metrics, second.Metrics)
}

func TestCompareDuplicatePaths(t *testing.T) {
	x := file("src/a.ts", "a")
	y := file("src/a.ts", "b")
	assert.Negative(t, source.Compare(x, y))
	assert.Positive(t, source.Compare(y, x))
	assert.Zero(t, source.Compare(x, file("src/a.ts", "a")))
	assert.Negative(t, source.Compare(source.File{Path: "src/a.ts"}, x))
}
