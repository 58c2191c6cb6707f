package buildinfo

import (
	"strings"
	"testing"
)

func TestGet(t *testing.T) {
	old := Version
	defer func() { Version = old }()
	Version = "v1.2.3"

	if got := Get().Version; got != "v1.2.3" {
		t.Errorf("Get().Version = %q, want %q", got, "v1.2.3")
	}
	if !strings.Contains(String(), "version: v1.2.3") {
		t.Errorf("String() = %q, want version line", String())
	}
	if !strings.HasPrefix(Template(), "{{.Name}} version v1.2.3") {
		t.Errorf("Template() = %q", Template())
	}
}
