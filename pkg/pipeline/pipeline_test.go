package pipeline

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/archtower/pkg/cache"
	"github.com/matzehuels/archtower/pkg/errors"
	"github.com/matzehuels/archtower/pkg/graph"
	"github.com/matzehuels/archtower/pkg/observability"
	"github.com/matzehuels/archtower/pkg/source"
)

func ptr[T any](v T) *T { return &v }

func sampleFiles() []source.File {
	return []source.File{
		{Path: "src/index.ts", Content: ptr("import { App } from './App'\nexport default App")},
		{Path: "src/App.tsx", Content: ptr("import { api } from './services/api'\nexport function App() { return null }")},
		{Path: "src/services/api.ts", Content: ptr("import axios from 'axios'\nexport const api = axios.create()")},
	}
}

func fixedNow() time.Time { return time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC) }

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"json", false},
		{"dot", false},
		{"svg", false},
		{"png", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %v, want %v", tt.format, errors.GetCode(err), errors.ErrCodeInvalidFormat)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"json", "dot"}); err != nil {
		t.Errorf("valid formats should pass: %v", err)
	}
	if err := ValidateFormats([]string{"json", "pdf"}); err == nil {
		t.Error("invalid format should fail")
	}
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("empty formats should pass: %v", err)
	}
}

func TestOptionsDefaults(t *testing.T) {
	var opts Options
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error = %v", err)
	}
	if opts.MaxFileSize != source.DefaultMaxFileSize {
		t.Errorf("MaxFileSize = %d, want %d", opts.MaxFileSize, source.DefaultMaxFileSize)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatJSON {
		t.Errorf("Formats = %v, want [json]", opts.Formats)
	}
	if opts.Logger == nil {
		t.Error("Logger not defaulted")
	}

	bad := Options{Exclude: []string{"["}}
	if err := bad.ValidateAndSetDefaults(); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("bad exclude error = %v, want %v", err, errors.ErrCodeInvalidInput)
	}
}

func TestTreeHashOrderIndependent(t *testing.T) {
	files := sampleFiles()
	reversed := []source.File{files[2], files[1], files[0]}
	if TreeHash(files) != TreeHash(reversed) {
		t.Error("TreeHash() depends on file order")
	}

	changed := sampleFiles()
	changed[0].Content = ptr("export default 1")
	if TreeHash(files) == TreeHash(changed) {
		t.Error("TreeHash() ignored a content change")
	}
}

func TestTreeHashDuplicatePaths(t *testing.T) {
	withImport := source.File{Path: "src/a.ts", Content: ptr("import { d } from './dep'\n")}
	plain := source.File{Path: "src/a.ts", Content: ptr("export const a = 1\n")}
	dep := source.File{Path: "src/dep.ts", Content: ptr("export const d = 1\n")}

	if TreeHash([]source.File{withImport, plain, dep}) != TreeHash([]source.File{plain, dep, withImport}) {
		t.Error("TreeHash() depends on the order of duplicate paths")
	}
}

func TestExecute(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	res, err := runner.Execute(context.Background(), sampleFiles(), Options{
		Formats: []string{FormatJSON, FormatDOT},
		Now:     fixedNow,
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if res.Stats.NodeCount != 3 {
		t.Errorf("NodeCount = %d, want 3", res.Stats.NodeCount)
	}
	if res.Stats.EdgeCount != 3 {
		t.Errorf("EdgeCount = %d, want 3", res.Stats.EdgeCount)
	}
	if len(res.Flowchart.Nodes) != 3 {
		t.Errorf("flowchart nodes = %d, want 3", len(res.Flowchart.Nodes))
	}
	if !strings.HasPrefix(string(res.Artifacts[FormatDOT]), "digraph G") {
		t.Errorf("dot artifact = %q", res.Artifacts[FormatDOT])
	}
	f, err := graph.UnmarshalFlowchart(res.Artifacts[FormatJSON])
	if err != nil {
		t.Fatalf("json artifact does not decode: %v", err)
	}
	if len(f.Connections) != len(res.Flowchart.Connections) {
		t.Errorf("json artifact has %d connections, want %d", len(f.Connections), len(res.Flowchart.Connections))
	}
	if res.CacheInfo != (CacheInfo{}) {
		t.Errorf("CacheInfo = %+v with caching disabled", res.CacheInfo)
	}
}

func TestExecuteInvalidFormat(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	_, err := runner.Execute(context.Background(), sampleFiles(), Options{Formats: []string{"pdf"}})
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Execute() error = %v, want %v", err, errors.ErrCodeInvalidFormat)
	}
}

type countingCacheHooks struct {
	observability.NoopCacheHooks
	hits, misses, sets int
}

func (c *countingCacheHooks) OnCacheHit(context.Context, string)      { c.hits++ }
func (c *countingCacheHooks) OnCacheMiss(context.Context, string)     { c.misses++ }
func (c *countingCacheHooks) OnCacheSet(context.Context, string, int) { c.sets++ }

func TestExecuteCached(t *testing.T) {
	hooks := &countingCacheHooks{}
	observability.SetCacheHooks(hooks)
	defer observability.Reset()

	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	runner := NewRunner(fc, nil, nil)
	defer runner.Close()
	opts := Options{Formats: []string{FormatJSON, FormatDOT}, Now: fixedNow}

	first, err := runner.Execute(context.Background(), sampleFiles(), opts)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if first.CacheInfo.AnalyzeHit || first.CacheInfo.LayoutHit || first.CacheInfo.RenderHit {
		t.Errorf("first run CacheInfo = %+v, want all misses", first.CacheInfo)
	}
	if hooks.sets != 4 {
		t.Errorf("cache sets = %d, want 4 (analysis, layout, two artifacts)", hooks.sets)
	}

	second, err := runner.Execute(context.Background(), sampleFiles(), opts)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	want := CacheInfo{AnalyzeHit: true, LayoutHit: true, RenderHit: true}
	if second.CacheInfo != want {
		t.Errorf("second run CacheInfo = %+v, want %+v", second.CacheInfo, want)
	}
	if second.Analysis.RunID != first.Analysis.RunID {
		t.Error("cached analysis lost its run id")
	}
	if string(second.Artifacts[FormatDOT]) != string(first.Artifacts[FormatDOT]) {
		t.Error("cached dot artifact differs")
	}

	refreshed, err := runner.Analyze(context.Background(), sampleFiles(), Options{Refresh: true, Now: fixedNow})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if refreshed.RunID == first.Analysis.RunID {
		t.Error("Refresh served the cached analysis")
	}
}

func TestLayoutKeyedByAnalysisContent(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	runner := NewRunner(fc, nil, nil)
	ctx := context.Background()

	a, _ := Analyze(ctx, sampleFiles(), Options{})
	b, _ := Analyze(ctx, sampleFiles(), Options{})
	if a.RunID == b.RunID {
		t.Fatal("expected distinct run ids")
	}

	if _, hit, _ := runner.LayoutWithCacheInfo(ctx, a, Options{}); hit {
		t.Error("first layout was a cache hit")
	}
	if _, hit, _ := runner.LayoutWithCacheInfo(ctx, b, Options{}); !hit {
		t.Error("layout of an equal analysis from another run missed the cache")
	}
	if _, hit, _ := runner.LayoutWithCacheInfo(ctx, b, Options{CanvasWidth: 2000}); hit {
		t.Error("layout with a different canvas width hit the cache")
	}
}

type recordingPipelineHooks struct {
	observability.NoopPipelineHooks
	events []string
}

func (h *recordingPipelineHooks) OnAnalyzeStart(context.Context, int) {
	h.events = append(h.events, "analyze")
}

func (h *recordingPipelineHooks) OnLayoutStart(context.Context, int) {
	h.events = append(h.events, "layout")
}

func (h *recordingPipelineHooks) OnRenderStart(context.Context, []string) {
	h.events = append(h.events, "render")
}

func TestExecuteCallsPipelineHooks(t *testing.T) {
	hooks := &recordingPipelineHooks{}
	observability.SetPipelineHooks(hooks)
	defer observability.Reset()

	if _, err := NewRunner(nil, nil, nil).Execute(context.Background(), sampleFiles(), Options{}); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got := strings.Join(hooks.events, ","); got != "analyze,layout,render" {
		t.Errorf("hook events = %s, want analyze,layout,render", got)
	}
}

func TestRenderSVG(t *testing.T) {
	if testing.Short() {
		t.Skip("graphviz rendering in -short mode")
	}
	res, err := NewRunner(nil, nil, nil).Execute(context.Background(), sampleFiles(), Options{Formats: []string{FormatSVG}})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(string(res.Artifacts[FormatSVG]), "<svg") {
		t.Error("svg artifact is not SVG")
	}
}
