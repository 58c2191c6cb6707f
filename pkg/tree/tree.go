// Package tree models the nested file tree handed to the analyzer.
//
// A tree arrives either as JSON from a repository-content service
// ([Decode]) or from a local checkout ([LoadLocal]). Either way the analyzer
// only sees the flattened file entries:
//
//	root, err := tree.Decode(r, logger)
//	a := analysis.New(analysis.Options{}).Analyze(ctx, tree.Files(root))
package tree

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"path"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/archtower/pkg/errors"
	"github.com/matzehuels/archtower/pkg/source"
)

// Entry types.
const (
	TypeFile = "file"
	TypeDir  = "dir"
)

// Entry is a file or directory. Content is nil when it was not fetched;
// Relevant, when set, overrides the analyzer's relevance filter.
type Entry struct {
	Name     string   `json:"name"`
	Path     string   `json:"path"`
	Type     string   `json:"type"`
	Size     int64    `json:"size,omitempty"`
	Content  *string  `json:"content,omitempty"`
	Relevant *bool    `json:"relevant,omitempty"`
	Children []*Entry `json:"children,omitempty"`
}

// IsDir reports whether e is a directory.
func (e *Entry) IsDir() bool { return e.Type == TypeDir }

// Walk visits e and its descendants depth-first, parents first. Returning
// false from fn skips the entry's children.
func (e *Entry) Walk(fn func(*Entry) bool) {
	stack := []*Entry{e}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur == nil || !fn(cur) {
			continue
		}
		for i := len(cur.Children) - 1; i >= 0; i-- {
			stack = append(stack, cur.Children[i])
		}
	}
}

// Flatten returns the file entries under root sorted by path.
func Flatten(root *Entry) []*Entry {
	var files []*Entry
	if root == nil {
		return files
	}
	root.Walk(func(e *Entry) bool {
		if e.Type == TypeFile {
			files = append(files, e)
		}
		return true
	})
	slices.SortStableFunc(files, func(a, b *Entry) int { return strings.Compare(a.Path, b.Path) })
	return files
}

// Files converts the file entries under root into analyzer input.
func Files(root *Entry) []source.File {
	entries := Flatten(root)
	files := make([]source.File, len(entries))
	for i, e := range entries {
		files[i] = source.File{Path: e.Path, Content: e.Content, Size: e.Size, Relevant: e.Relevant}
	}
	return files
}

// Stats counts files and directories under root, root included.
func Stats(root *Entry) (files, dirs int) {
	if root == nil {
		return 0, 0
	}
	root.Walk(func(e *Entry) bool {
		if e.IsDir() {
			dirs++
		} else {
			files++
		}
		return true
	})
	return files, dirs
}

// Decode reads a JSON tree. The document is either a single root entry or
// an array of top-level entries, which are wrapped in an unnamed root.
// Missing paths are derived from the parent path and the entry name.
//
// An entry whose path is absolute or climbs out of the repository is dropped
// together with its children and logged at debug level; the rest of the tree
// is kept. Structural errors reject the whole document. A nil logger
// discards.
func Decode(r io.Reader, logger *log.Logger) (*Entry, error) {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidTree, err, "read tree")
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidTree, "empty tree document")
	}

	root := &Entry{Type: TypeDir}
	if data[0] == '[' {
		if err := json.Unmarshal(data, &root.Children); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidTree, err, "decode tree")
		}
	} else if err := json.Unmarshal(data, root); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidTree, err, "decode tree")
	}

	if err := validate(root, "", true, logger); err != nil {
		return nil, err
	}
	return root, nil
}

// Encode writes root as indented JSON.
func Encode(w io.Writer, root *Entry) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(root); err != nil {
		return fmt.Errorf("encode tree: %w", err)
	}
	return nil
}

// badPathError marks an entry that is dropped instead of failing the tree.
type badPathError struct{ err error }

func (e *badPathError) Error() string { return e.err.Error() }
func (e *badPathError) Unwrap() error { return e.err }

func validate(e *Entry, parent string, isRoot bool, logger *log.Logger) error {
	if e == nil {
		return errors.New(errors.ErrCodeInvalidTree, "null entry under %q", parent)
	}
	switch e.Type {
	case TypeFile, TypeDir:
	case "":
		if len(e.Children) > 0 {
			e.Type = TypeDir
		} else {
			e.Type = TypeFile
		}
	default:
		return errors.New(errors.ErrCodeInvalidTree, "entry %q: unknown type %q", e.Name, e.Type)
	}

	if e.Path == "" && e.Name != "" && !isRoot {
		e.Path = path.Join(parent, e.Name)
	}
	if e.Path != "" || !isRoot {
		if err := errors.ValidatePath(e.Path); err != nil {
			if isRoot {
				return err
			}
			return &badPathError{err: err}
		}
	}
	if e.Name == "" {
		_, e.Name = path.Split(strings.TrimSuffix(e.Path, "/"))
	}
	if e.Size < 0 {
		return errors.New(errors.ErrCodeInvalidTree, "entry %q: negative size", e.Path)
	}
	if e.Type == TypeFile && len(e.Children) > 0 {
		return errors.New(errors.ErrCodeInvalidTree, "file %q has children", e.Path)
	}

	kept := e.Children[:0]
	for _, c := range e.Children {
		err := validate(c, e.Path, false, logger)
		var bad *badPathError
		switch {
		case stderrors.As(err, &bad):
			logger.Debug("skip tree entry", "path", c.Path, "err", bad.err)
		case err != nil:
			return err
		default:
			kept = append(kept, c)
		}
	}
	clear(e.Children[len(kept):])
	e.Children = kept
	return nil
}
