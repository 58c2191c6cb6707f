package analysis

import (
	"cmp"
	"context"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/archtower/pkg/arch"
	"github.com/matzehuels/archtower/pkg/resolve"
	"github.com/matzehuels/archtower/pkg/source"
)

// Options configures an Analyzer.
type Options struct {
	Parser source.Options

	// Logger receives debug messages about skipped files and fallbacks.
	// Nil discards.
	Logger *log.Logger

	// Now stamps GeneratedAt. Defaults to time.Now.
	Now func() time.Time
}

// Analyzer runs the file → graph stages. It keeps no state between calls and
// may analyze several repositories concurrently.
type Analyzer struct {
	parser *source.Parser
	logger *log.Logger
	now    func() time.Time
}

// New returns an Analyzer.
func New(opts Options) *Analyzer {
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if opts.Parser.Logger == nil {
		opts.Parser.Logger = opts.Logger
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Analyzer{
		parser: source.NewParser(opts.Parser),
		logger: opts.Logger,
		now:    opts.Now,
	}
}

// run is the state owned by a single Analyze call.
type run struct {
	nodes   map[string]*arch.Node
	order   []*arch.Node
	skipped map[string]int
}

// Analyze parses files, resolves imports, classifies layers and aggregates
// metrics. It accepts any subset of a repository, including the partial set
// left by a cancelled walk, and never fails: unparseable files degrade and
// irrelevant ones are skipped.
//
// Files are processed in [source.Compare] order, so the result does not
// depend on the order they arrived in. When two files map to the same node id
// the first in that order wins.
func (a *Analyzer) Analyze(ctx context.Context, files []source.File) *arch.Analysis {
	files = slices.Clone(files)
	for i := range files {
		files[i].Path = arch.NormalizePath(files[i].Path)
	}
	slices.SortFunc(files, source.Compare)

	r := &run{
		nodes:   make(map[string]*arch.Node, len(files)),
		skipped: make(map[string]int),
	}
	for _, f := range files {
		n, err := a.parser.Parse(ctx, f)
		if err != nil {
			r.skipped[err.Error()]++
			a.logger.Debug("skipping file", "path", f.Path, "reason", err)
			continue
		}
		if prev, dup := r.nodes[n.ID]; dup {
			a.logger.Debug("duplicate node id", "id", n.ID, "kept", prev.FilePath, "dropped", n.FilePath)
			continue
		}
		r.nodes[n.ID] = n
		r.order = append(r.order, n)
	}

	slices.SortFunc(r.order, func(x, y *arch.Node) int { return cmp.Compare(x.ID, y.ID) })
	if r.order == nil {
		r.order = []*arch.Node{}
	}

	edges := resolve.Link(r.order, a.logger)

	result := &arch.Analysis{
		RunID:       uuid.NewString(),
		GeneratedAt: a.now().UTC(),
		Nodes:       r.order,
		Edges:       edges,
		Layers:      BuildLayers(r.order),
		Metrics:     ComputeMetrics(r.order, edges),
	}
	a.logger.Debug("analysis complete",
		"files", len(files), "nodes", len(result.Nodes), "edges", len(result.Edges), "skipped", r.skipped)
	return result
}
