package tree

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/archtower/pkg/source"
)

// skipDirs are never descended into.
var skipDirs = map[string]bool{
	".git": true, ".hg": true, ".svn": true,
	"node_modules": true, "vendor": true, "__pycache__": true,
	".venv": true, "venv": true, ".next": true, ".nuxt": true,
	"dist": true, "build": true, "coverage": true, "target": true,
}

// LoadOptions configures LoadLocal.
type LoadOptions struct {
	// MaxFileSize bounds the files whose content is read. Larger files are
	// listed with their size only. Defaults to source.DefaultMaxFileSize.
	MaxFileSize int64

	// Filter selects the files worth reading. Nil applies the built-in
	// relevance rules.
	Filter *source.Filter

	// Concurrency caps parallel reads. Defaults to 4 × GOMAXPROCS.
	Concurrency int

	Logger *log.Logger
}

// LoadLocal builds a tree from the directory dir. Contents of relevant files
// are read concurrently.
//
// When ctx is cancelled the walk stops; LoadLocal then returns the partial
// tree together with ctx.Err(). Entries whose content never arrived keep a
// nil Content and are skipped by the analyzer.
func LoadLocal(ctx context.Context, dir string, opts LoadOptions) (*Entry, error) {
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = source.DefaultMaxFileSize
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4 * runtime.GOMAXPROCS(0)
	}
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, &fs.PathError{Op: "load", Path: dir, Err: fs.ErrInvalid}
	}

	root := &Entry{Name: filepath.Base(abs), Type: TypeDir}
	dirs := map[string]*Entry{".": root}
	var reads []*Entry

	walkErr := filepath.WalkDir(abs, func(p string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			opts.Logger.Debug("skip unreadable path", "path", p, "err", err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(abs, p)
		if err != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)
		parent := dirs[filepath.ToSlash(filepath.Dir(filepath.FromSlash(rel)))]
		if parent == nil {
			return nil
		}

		if d.IsDir() {
			if skipDirs[d.Name()] {
				return fs.SkipDir
			}
			e := &Entry{Name: d.Name(), Path: rel, Type: TypeDir}
			parent.Children = append(parent.Children, e)
			dirs[rel] = e
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		e := &Entry{Name: d.Name(), Path: rel, Type: TypeFile}
		if fi, err := d.Info(); err == nil {
			e.Size = fi.Size()
		}
		parent.Children = append(parent.Children, e)
		if e.Size <= opts.MaxFileSize && opts.Filter.Relevant(rel) {
			reads = append(reads, e)
		}
		return nil
	})

	var g errgroup.Group
	g.SetLimit(opts.Concurrency)
	for _, e := range reads {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			data, err := os.ReadFile(filepath.Join(abs, filepath.FromSlash(e.Path)))
			if err != nil {
				opts.Logger.Debug("skip unreadable file", "path", e.Path, "err", err)
				return nil
			}
			content := string(data)
			e.Content = &content
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return root, err
	}
	if walkErr != nil {
		return root, walkErr
	}
	files, _ := Stats(root)
	opts.Logger.Debug("loaded tree", "dir", abs, "entries", files, "read", len(reads))
	return root, nil
}
