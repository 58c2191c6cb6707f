package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/archtower/pkg/graph"
	"github.com/matzehuels/archtower/pkg/layout"
	"github.com/matzehuels/archtower/pkg/render/nodelink"
)

// Render generates artifacts in the requested formats without caching. The
// DOT text is built at most once and shared by the dot and svg formats.
func Render(ctx context.Context, f *layout.Flowchart, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	var dot string
	dotText := func() string {
		if dot == "" {
			dot = nodelink.ToDOT(f, nodelink.Options{Detailed: opts.Detailed})
		}
		return dot
	}

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatJSON:
			data, err = graph.MarshalFlowchart(f)
		case FormatDOT:
			data = []byte(dotText())
		case FormatSVG:
			data, err = nodelink.RenderSVG(ctx, dotText())
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}
