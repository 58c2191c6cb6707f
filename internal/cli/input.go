package cli

import (
	"context"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/archtower/pkg/errors"
	"github.com/matzehuels/archtower/pkg/source"
	"github.com/matzehuels/archtower/pkg/tree"
)

// stdio names stdin as an input and stdout as an output.
const stdio = "-"

// inputOpts controls how a repository snapshot is loaded.
type inputOpts struct {
	maxFileSize int64
	exclude     []string
	walkTimeout time.Duration // 0 waits for the whole walk
}

// loadFiles reads input into analyzer files. input is a directory, a tree
// JSON file, or "-" for tree JSON on stdin.
//
// A directory walk that exceeds walkTimeout is not an error: the files read
// so far are analyzed and a warning is printed.
func loadFiles(ctx context.Context, input string, opts inputOpts) ([]source.File, error) {
	st := startStage(ctx, "load")

	root, err := loadTree(ctx, input, opts)
	if err != nil {
		return nil, err
	}

	files := tree.Files(root)
	nFiles, nDirs := tree.Stats(root)
	st.done("Loaded %d files in %d directories", nFiles, nDirs)
	return files, nil
}

func loadTree(ctx context.Context, input string, opts inputOpts) (*tree.Entry, error) {
	logger := loggerFromContext(ctx)
	if input == stdio {
		return tree.Decode(os.Stdin, logger)
	}

	info, err := os.Stat(input)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "input %s", input)
	}
	if !info.IsDir() {
		return decodeTreeFile(input, logger)
	}

	filter, err := source.NewFilter(opts.exclude...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "exclude patterns")
	}

	walkCtx := ctx
	if opts.walkTimeout > 0 {
		var cancel context.CancelFunc
		walkCtx, cancel = context.WithTimeout(ctx, opts.walkTimeout)
		defer cancel()
	}

	root, err := tree.LoadLocal(walkCtx, input, tree.LoadOptions{
		MaxFileSize: opts.maxFileSize,
		Filter:      filter,
		Logger:      logger,
	})
	if err != nil {
		if root != nil && stderrors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			printWarning("Directory walk timed out after %s; analyzing a partial tree", opts.walkTimeout)
			return root, nil
		}
		return nil, err
	}
	return root, nil
}

func decodeTreeFile(path string, logger *log.Logger) (*tree.Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	defer f.Close()
	return tree.Decode(f, logger)
}

// inputBase derives the default output base name for an input: the
// directory name for a directory, the file name without extension
// otherwise.
func inputBase(input string) string {
	if input == stdio {
		return "tree"
	}
	if info, err := os.Stat(input); err == nil && info.IsDir() {
		abs, err := filepath.Abs(input)
		if err != nil {
			return filepath.Base(input)
		}
		return filepath.Base(abs)
	}
	return strings.TrimSuffix(input, filepath.Ext(input))
}

// writeOutput writes data to path, or to w when path is empty.
func writeOutput(w io.Writer, path string, data []byte) error {
	if path == "" {
		_, err := w.Write(data)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
