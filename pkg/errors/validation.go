package errors

import (
	"slices"
	"strings"
	"unicode"
)

// MaxPathLength bounds file paths accepted in input trees.
const MaxPathLength = 1024

// ValidatePath checks a file path taken from an input tree. Paths must be
// relative, free of control characters and must not climb out of the
// repository.
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}
	if len(path) > MaxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", MaxPathLength)
	}
	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}
	normalized := strings.ReplaceAll(path, "\\", "/")
	if strings.HasPrefix(normalized, "/") {
		return New(ErrCodeInvalidPath, "path must be relative: %q", path)
	}
	if slices.Contains(strings.Split(normalized, "/"), "..") {
		return New(ErrCodeInvalidPath, "path cannot contain '..': %q", path)
	}
	return nil
}

// ValidateFormat checks that format is one of allowed.
func ValidateFormat(format string, allowed ...string) error {
	if slices.Contains(allowed, format) {
		return nil
	}
	return New(ErrCodeInvalidFormat, "invalid format %q (must be one of: %s)", format, strings.Join(allowed, ", "))
}
