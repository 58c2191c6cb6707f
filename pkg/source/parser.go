package source

import (
	"cmp"
	"context"
	"errors"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/archtower/pkg/arch"
)

// DefaultMaxFileSize is the size ceiling above which files are skipped.
const DefaultMaxFileSize = 100 * 1024

// Skip reasons. Parse returns these instead of a node; callers treat them as
// silent exclusions, not failures.
var (
	ErrNotRelevant  = errors.New("file is not relevant")
	ErrNoContent    = errors.New("file has no content")
	ErrFileTooLarge = errors.New("file exceeds size ceiling")
)

// IsSkip reports whether err is one of the skip reasons.
func IsSkip(err error) bool {
	return errors.Is(err, ErrNotRelevant) || errors.Is(err, ErrNoContent) || errors.Is(err, ErrFileTooLarge)
}

// File is one input file. Content is nil when the caller did not fetch it.
// Relevant, when set, overrides the relevance filter.
type File struct {
	Path     string
	Content  *string
	Size     int64
	Relevant *bool
}

// Compare orders files by path, then by content, size and relevance, so
// that duplicate paths sort the same way regardless of arrival order.
func Compare(x, y File) int {
	return cmp.Or(
		cmp.Compare(x.Path, y.Path),
		compareOptional(x.Content, y.Content),
		cmp.Compare(x.Size, y.Size),
		compareOptional(boolKey(x.Relevant), boolKey(y.Relevant)),
	)
}

// compareOptional sorts nil before any value.
func compareOptional[T cmp.Ordered](x, y *T) int {
	switch {
	case x == nil && y == nil:
		return 0
	case x == nil:
		return -1
	case y == nil:
		return 1
	}
	return cmp.Compare(*x, *y)
}

func boolKey(b *bool) *int {
	if b == nil {
		return nil
	}
	v := 0
	if *b {
		v = 1
	}
	return &v
}

// Options configures a Parser.
type Options struct {
	// MaxFileSize is the size ceiling in bytes (default DefaultMaxFileSize).
	MaxFileSize int64

	// Filter adds user exclusion globs to the built-in relevance rules.
	Filter *Filter

	// Logger receives debug messages about fallbacks. Nil discards.
	Logger *log.Logger
}

// Parser turns files into graph nodes. It holds no per-run state and is safe
// for concurrent use.
type Parser struct {
	maxSize int64
	filter  *Filter
	logger  *log.Logger
}

// NewParser returns a Parser with defaults applied to opts.
func NewParser(opts Options) *Parser {
	p := &Parser{maxSize: opts.MaxFileSize, filter: opts.Filter, logger: opts.Logger}
	if p.maxSize <= 0 {
		p.maxSize = DefaultMaxFileSize
	}
	if p.logger == nil {
		p.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return p
}

// Parse builds the node for f. It returns a skip error (see IsSkip) for files
// that are irrelevant, have no content, or exceed the size ceiling. Syntax
// errors never surface: they degrade to regex extraction.
func (p *Parser) Parse(ctx context.Context, f File) (*arch.Node, error) {
	filePath := arch.NormalizePath(f.Path)
	if !p.filter.Admit(filePath, f.Relevant) {
		return nil, ErrNotRelevant
	}
	if f.Content == nil {
		return nil, ErrNoContent
	}
	size := max(f.Size, int64(len(*f.Content)))
	if size > p.maxSize {
		return nil, ErrFileTooLarge
	}

	content := *f.Content
	lang := DetectLanguage(filePath)

	ex := runStrategy(ctx, lang, []byte(content), filePath)
	if ex.fellBack {
		p.logger.Debug("ast extraction failed, using regex", "file", filePath, "err", ex.cause)
	}

	return &arch.Node{
		ID:           arch.NodeID(filePath),
		Name:         NodeName(filePath),
		Type:         InferType(filePath, lang, content),
		FilePath:     filePath,
		Language:     lang,
		LinesOfCode:  LinesOfCode(content),
		Complexity:   Complexity(content, lang),
		Imports:      nonNil(ex.Imports),
		Exports:      nonNil(ex.Exports),
		Dependencies: []string{},
		Dependents:   []string{},
		Metadata: arch.NodeMetadata{
			IsEntry:          ex.IsEntry,
			IsAsync:          ex.IsAsync,
			HasErrorHandling: ex.HasErrorHandling,
			Patterns:         DetectPatterns(content),
		},
	}, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
