package pipeline

import (
	"context"
	"encoding/json"
	"slices"

	"github.com/matzehuels/archtower/pkg/analysis"
	"github.com/matzehuels/archtower/pkg/arch"
	"github.com/matzehuels/archtower/pkg/cache"
	"github.com/matzehuels/archtower/pkg/source"
)

// Analyze builds the architecture graph for files without caching.
func Analyze(ctx context.Context, files []source.File, opts Options) (*arch.Analysis, error) {
	if err := opts.ValidateForAnalyze(); err != nil {
		return nil, err
	}
	srcOpts, err := opts.SourceOptions()
	if err != nil {
		return nil, err
	}
	a := analysis.New(analysis.Options{Parser: srcOpts, Logger: opts.Logger, Now: opts.Now})
	return a.Analyze(ctx, files), nil
}

// hashedFile is the part of a file that changes its analysis.
type hashedFile struct {
	Path     string  `json:"path"`
	Content  *string `json:"content,omitempty"`
	Size     int64   `json:"size,omitempty"`
	Relevant *bool   `json:"relevant,omitempty"`
}

// TreeHash hashes the input files independently of their order.
func TreeHash(files []source.File) string {
	sorted := slices.SortedFunc(slices.Values(files), source.Compare)
	hashed := make([]hashedFile, len(sorted))
	for i, f := range sorted {
		hashed[i] = hashedFile{Path: f.Path, Content: f.Content, Size: f.Size, Relevant: f.Relevant}
	}
	data, _ := json.Marshal(hashed)
	return cache.Hash(data)
}
