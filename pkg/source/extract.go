package source

import (
	"context"
	"errors"

	"github.com/matzehuels/archtower/pkg/arch"
)

// ErrSyntax is returned by an AST extractor when the source does not parse
// cleanly. Callers fall back to regex extraction.
var ErrSyntax = errors.New("source contains syntax errors")

// Extraction is what a language strategy pulls out of one file.
type Extraction struct {
	Imports          []string
	Exports          []string
	IsEntry          bool
	IsAsync          bool
	HasErrorHandling bool
}

// Extractor pulls imports, exports and flags out of file content.
type Extractor interface {
	Extract(ctx context.Context, content []byte, filePath string) (Extraction, error)
}

// Strategy pairs a primary extractor with an optional fallback used when the
// primary returns an error. Fallbacks must never fail.
type Strategy struct {
	Primary  Extractor
	Fallback Extractor
}

// strategies is the per-language extraction table. Languages absent from the
// table produce generic nodes with no imports or exports.
var strategies = map[arch.Language]Strategy{
	arch.LangJavaScript: {Primary: astExtractor{}, Fallback: jsRegexExtractor{}},
	arch.LangTypeScript: {Primary: astExtractor{}, Fallback: jsRegexExtractor{}},
	arch.LangPython:     {Primary: pythonExtractor{}},
}

// extraction is the outcome of running a language strategy.
type extraction struct {
	Extraction
	fellBack bool
	cause    error
}

// runStrategy extracts with the language's primary extractor and switches to
// the fallback on error. A strategy without a fallback yields an empty
// extraction on error.
func runStrategy(ctx context.Context, lang arch.Language, content []byte, filePath string) extraction {
	s, ok := strategies[lang]
	if !ok || s.Primary == nil {
		return extraction{}
	}
	ex, err := s.Primary.Extract(ctx, content, filePath)
	if err == nil {
		return extraction{Extraction: ex}
	}
	if s.Fallback == nil {
		return extraction{fellBack: true, cause: err}
	}
	ex, _ = s.Fallback.Extract(ctx, content, filePath)
	return extraction{Extraction: ex, fellBack: true, cause: err}
}
