package graph

import (
	"bytes"
	"cmp"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/matzehuels/archtower/pkg/arch"
	"github.com/matzehuels/archtower/pkg/cache"
	"github.com/matzehuels/archtower/pkg/layout"
)

// =============================================================================
// Analysis Serialization API
// =============================================================================

// MarshalAnalysis converts an analysis to canonical JSON bytes.
func MarshalAnalysis(a *arch.Analysis) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteAnalysis(a, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteAnalysis writes an analysis as indented JSON.
func WriteAnalysis(a *arch.Analysis, w io.Writer) error {
	return encode(w, canonicalAnalysis(a))
}

// WriteAnalysisFile writes an analysis to path.
func WriteAnalysisFile(a *arch.Analysis, path string) error {
	return writeFile(path, func(w io.Writer) error { return WriteAnalysis(a, w) })
}

// UnmarshalAnalysis decodes an analysis from JSON bytes.
func UnmarshalAnalysis(data []byte) (*arch.Analysis, error) {
	return ReadAnalysis(bytes.NewReader(data))
}

// ReadAnalysis decodes an analysis. Missing layer slices come back empty and
// nil node slices are normalized so the result serializes the same way a
// fresh analysis does.
func ReadAnalysis(r io.Reader) (*arch.Analysis, error) {
	var a arch.Analysis
	if err := json.NewDecoder(r).Decode(&a); err != nil {
		return nil, fmt.Errorf("decode analysis: %w", err)
	}
	normalizeAnalysis(&a)
	return &a, nil
}

// ReadAnalysisFile decodes the analysis stored at path.
func ReadAnalysisFile(path string) (*arch.Analysis, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadAnalysis(f)
}

// HashAnalysis returns a content hash of the analysis that ignores the run
// id and timestamp, so two runs over the same tree hash the same.
func HashAnalysis(a *arch.Analysis) string {
	c := canonicalAnalysis(a)
	c.RunID = ""
	c.GeneratedAt = time.Time{}
	data, _ := json.Marshal(c)
	return cache.Hash(data)
}

// =============================================================================
// Flowchart Serialization API
// =============================================================================

// MarshalFlowchart converts a flowchart to canonical JSON bytes.
func MarshalFlowchart(f *layout.Flowchart) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteFlowchart(f, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFlowchart writes a flowchart as indented JSON.
func WriteFlowchart(f *layout.Flowchart, w io.Writer) error {
	return encode(w, canonicalFlowchart(f))
}

// WriteFlowchartFile writes a flowchart to path.
func WriteFlowchartFile(f *layout.Flowchart, path string) error {
	return writeFile(path, func(w io.Writer) error { return WriteFlowchart(f, w) })
}

// UnmarshalFlowchart decodes a flowchart from JSON bytes.
func UnmarshalFlowchart(data []byte) (*layout.Flowchart, error) {
	return ReadFlowchart(bytes.NewReader(data))
}

// ReadFlowchart decodes a flowchart.
func ReadFlowchart(r io.Reader) (*layout.Flowchart, error) {
	var f layout.Flowchart
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode flowchart: %w", err)
	}
	if f.Nodes == nil {
		f.Nodes = []layout.Node{}
	}
	if f.Connections == nil {
		f.Connections = []layout.Connection{}
	}
	return &f, nil
}

// HashFlowchart returns a content hash of the flowchart.
func HashFlowchart(f *layout.Flowchart) string {
	data, _ := json.Marshal(canonicalFlowchart(f))
	return cache.Hash(data)
}

// =============================================================================
// Internal Implementation
// =============================================================================

func encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func compareEdges(a, b arch.Edge) int {
	return cmp.Or(
		strings.Compare(a.From, b.From),
		strings.Compare(a.To, b.To),
		strings.Compare(string(a.Type), string(b.Type)),
	)
}

// canonicalAnalysis returns a shallow copy with sorted node and edge slices.
// The input is not modified.
func canonicalAnalysis(a *arch.Analysis) *arch.Analysis {
	if a == nil {
		a = &arch.Analysis{}
	}
	c := *a
	c.Nodes = slices.Clone(a.Nodes)
	c.Edges = slices.Clone(a.Edges)
	normalizeAnalysis(&c)
	slices.SortStableFunc(c.Nodes, func(x, y *arch.Node) int { return strings.Compare(x.ID, y.ID) })
	slices.SortStableFunc(c.Edges, compareEdges)
	return &c
}

func normalizeAnalysis(a *arch.Analysis) {
	if a.Nodes == nil {
		a.Nodes = []*arch.Node{}
	}
	if a.Edges == nil {
		a.Edges = []arch.Edge{}
	}
	for _, s := range []*[]string{
		&a.Layers.Entry, &a.Layers.Presentation, &a.Layers.Business,
		&a.Layers.Data, &a.Layers.Infrastructure,
	} {
		if *s == nil {
			*s = []string{}
		}
	}
}

func canonicalFlowchart(f *layout.Flowchart) *layout.Flowchart {
	if f == nil {
		f = &layout.Flowchart{}
	}
	c := *f
	c.Nodes = slices.Clone(f.Nodes)
	c.Connections = slices.Clone(f.Connections)
	if c.Nodes == nil {
		c.Nodes = []layout.Node{}
	}
	if c.Connections == nil {
		c.Connections = []layout.Connection{}
	}
	slices.SortStableFunc(c.Nodes, func(x, y layout.Node) int { return strings.Compare(x.ID, y.ID) })
	slices.SortStableFunc(c.Connections, func(x, y layout.Connection) int {
		return cmp.Or(
			strings.Compare(x.From, y.From),
			strings.Compare(x.To, y.To),
			strings.Compare(string(x.Type), string(y.Type)),
		)
	})
	return &c
}
