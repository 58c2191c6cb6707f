package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidTree, "entry %q has no path", "a")

	if err.Code != ErrCodeInvalidTree {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidTree)
	}
	want := `INVALID_TREE: entry "a" has no path`
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("no such file")
	err := Wrap(ErrCodeFileNotFound, cause, "open %s", "tree.json")

	if errors.Unwrap(err) != cause {
		t.Errorf("Unwrap() = %v, want %v", errors.Unwrap(err), cause)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
	if got := UserMessage(err); got != "open tree.json" {
		t.Errorf("UserMessage() = %q, want %q", got, "open tree.json")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code Code
		want bool
	}{
		{"matching code", New(ErrCodeInvalidConfig, "x"), ErrCodeInvalidConfig, true},
		{"other code", New(ErrCodeInvalidConfig, "x"), ErrCodeInvalidPath, false},
		{"wrapped by fmt", fmt.Errorf("load: %w", New(ErrCodeTimeout, "x")), ErrCodeTimeout, true},
		{"plain error", errors.New("x"), ErrCodeInternal, false},
		{"nil", nil, ErrCodeInternal, false},
		{"empty code never matches", errors.New("x"), "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.want {
				t.Errorf("Is() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(Wrap(ErrCodeUnsupported, errors.New("x"), "y")); got != ErrCodeUnsupported {
		t.Errorf("GetCode() = %v, want %v", got, ErrCodeUnsupported)
	}
	if got := GetCode(errors.New("x")); got != "" {
		t.Errorf("GetCode() = %v, want empty", got)
	}
	if got := UserMessage(errors.New("plain")); got != "plain" {
		t.Errorf("UserMessage() = %q, want %q", got, "plain")
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{ErrCodeInvalidTree, http.StatusBadRequest},
		{ErrCodeInvalidFormat, http.StatusBadRequest},
		{ErrCodeFileNotFound, http.StatusNotFound},
		{ErrCodeTimeout, http.StatusGatewayTimeout},
		{ErrCodeUnsupported, http.StatusNotImplemented},
		{ErrCodeInternal, http.StatusInternalServerError},
		{"", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := tt.code.HTTPStatus(); got != tt.want {
			t.Errorf("%q.HTTPStatus() = %d, want %d", tt.code, got, tt.want)
		}
	}
}
