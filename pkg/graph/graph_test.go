package graph

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/archtower/pkg/arch"
	"github.com/matzehuels/archtower/pkg/layout"
)

func sampleAnalysis() *arch.Analysis {
	layers := arch.NewLayers()
	layers.Add(arch.LayerEntry, "src_index")
	layers.Add(arch.LayerBusiness, "src_app")
	return &arch.Analysis{
		RunID:       "run-1",
		GeneratedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Nodes: []*arch.Node{
			{ID: "src_index", Name: "index", Type: arch.TypeModule, FilePath: "src/index.ts", Language: arch.LangTypeScript, Dependencies: []string{"src_app"}},
			{ID: "src_app", Name: "app", Type: arch.TypeModule, FilePath: "src/app.ts", Language: arch.LangTypeScript, Dependents: []string{"src_index"}},
		},
		Edges: []arch.Edge{
			{From: "src_index", To: "src_app", Type: arch.EdgeImport, Strength: 1},
			{From: "src_app", To: "external_react", Type: arch.EdgeImport, Strength: 1},
		},
		Layers:  layers,
		Metrics: arch.Metrics{TotalFiles: 2},
	}
}

func TestMarshalAnalysisRoundTrip(t *testing.T) {
	a := sampleAnalysis()
	data, err := MarshalAnalysis(a)
	if err != nil {
		t.Fatalf("MarshalAnalysis() error = %v", err)
	}

	got, err := UnmarshalAnalysis(data)
	if err != nil {
		t.Fatalf("UnmarshalAnalysis() error = %v", err)
	}
	if got.RunID != a.RunID || !got.GeneratedAt.Equal(a.GeneratedAt) {
		t.Errorf("run stamp = %q %v, want %q %v", got.RunID, got.GeneratedAt, a.RunID, a.GeneratedAt)
	}
	if len(got.Nodes) != 2 || got.Nodes[0].ID != "src_app" {
		t.Errorf("nodes not sorted by id: %+v", got.Nodes)
	}
	if got.Edges[0].From != "src_app" {
		t.Errorf("edges not sorted: %+v", got.Edges)
	}
	if a.Nodes[0].ID != "src_index" {
		t.Error("MarshalAnalysis() reordered its input")
	}

	again, _ := MarshalAnalysis(got)
	if !bytes.Equal(data, again) {
		t.Errorf("re-marshal differs:\n%s\n---\n%s", data, again)
	}
}

func TestMarshalAnalysisDeterministic(t *testing.T) {
	a := sampleAnalysis()
	b := sampleAnalysis()
	b.Nodes[0], b.Nodes[1] = b.Nodes[1], b.Nodes[0]
	b.Edges[0], b.Edges[1] = b.Edges[1], b.Edges[0]

	da, _ := MarshalAnalysis(a)
	db, _ := MarshalAnalysis(b)
	if !bytes.Equal(da, db) {
		t.Error("MarshalAnalysis() depends on input order")
	}
}

func TestHashAnalysisIgnoresRunStamp(t *testing.T) {
	a := sampleAnalysis()
	b := sampleAnalysis()
	b.RunID = "run-2"
	b.GeneratedAt = b.GeneratedAt.Add(time.Hour)
	if HashAnalysis(a) != HashAnalysis(b) {
		t.Error("HashAnalysis() changed with run id or timestamp")
	}

	b.Metrics.TotalFiles = 3
	if HashAnalysis(a) == HashAnalysis(b) {
		t.Error("HashAnalysis() ignored a content change")
	}
}

func TestReadAnalysisNormalizes(t *testing.T) {
	got, err := UnmarshalAnalysis([]byte(`{"nodes": null, "layers": {"entry": ["a"]}}`))
	if err != nil {
		t.Fatalf("UnmarshalAnalysis() error = %v", err)
	}
	if got.Nodes == nil || got.Edges == nil {
		t.Error("nil slices not normalized")
	}
	if got.Layers.Data == nil || len(got.Layers.Entry) != 1 {
		t.Errorf("layers = %+v", got.Layers)
	}

	if _, err := UnmarshalAnalysis([]byte(`{`)); err == nil {
		t.Error("UnmarshalAnalysis() accepted malformed JSON")
	}
}

func TestFlowchartRoundTrip(t *testing.T) {
	f := layout.Compute(sampleAnalysis(), layout.Options{})
	path := filepath.Join(t.TempDir(), "flowchart.json")
	if err := WriteFlowchartFile(f, path); err != nil {
		t.Fatalf("WriteFlowchartFile() error = %v", err)
	}

	data, _ := MarshalFlowchart(f)
	got, err := UnmarshalFlowchart(data)
	if err != nil {
		t.Fatalf("UnmarshalFlowchart() error = %v", err)
	}
	if len(got.Nodes) != len(f.Nodes) || got.Width != f.Width || got.Height != f.Height {
		t.Errorf("flowchart = %d nodes %vx%v, want %d nodes %vx%v",
			len(got.Nodes), got.Width, got.Height, len(f.Nodes), f.Width, f.Height)
	}
	if HashFlowchart(got) != HashFlowchart(f) {
		t.Error("HashFlowchart() differs after round trip")
	}
}

func TestAnalysisFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "analysis.json")
	if err := WriteAnalysisFile(sampleAnalysis(), path); err != nil {
		t.Fatalf("WriteAnalysisFile() error = %v", err)
	}
	got, err := ReadAnalysisFile(path)
	if err != nil {
		t.Fatalf("ReadAnalysisFile() error = %v", err)
	}
	if got.Node("src_index") == nil {
		t.Error("node src_index missing after file round trip")
	}
	if _, err := ReadAnalysisFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("ReadAnalysisFile() on missing file returned nil error")
	}
}
