package arch

import "testing"

func TestNodeID(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"src/index.ts", "src_index"},
		{"./src/index.ts", "src_index"},
		{"/src/index.ts", "src_index"},
		{"src\\app\\main.py", "src_app_main"},
		{"types/global.d.ts", "types_global"},
		{"Dockerfile", "Dockerfile"},
		{"src/styles.css", "src_styles_css"},
		{"a/../b.js", "b"},
	}

	for _, tt := range tests {
		if got := NodeID(tt.path); got != tt.want {
			t.Errorf("NodeID(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestNodeIDDeterministic(t *testing.T) {
	if NodeID("pkg/util.py") != NodeID("pkg/util.py") {
		t.Error("NodeID should be deterministic")
	}
	if NodeID("pkg/util.py") != NodeID("pkg/util") {
		t.Error("file path and extensionless module path should share an id")
	}
}

func TestExternalID(t *testing.T) {
	tests := []struct {
		spec string
		want string
	}{
		{"os", "external_os"},
		{"@angular/core", "external__angular_core"},
		{"lodash.debounce", "external_lodash_debounce"},
	}
	for _, tt := range tests {
		got := ExternalID(tt.spec)
		if got != tt.want {
			t.Errorf("ExternalID(%q) = %q, want %q", tt.spec, got, tt.want)
		}
		if !IsExternal(got) {
			t.Errorf("IsExternal(%q) = false", got)
		}
	}
	if IsExternal("src_index") {
		t.Error("IsExternal(src_index) = true")
	}
}

func TestSplitPath(t *testing.T) {
	dir, base := SplitPath("src/components/Button.tsx")
	if dir != "src/components" || base != "Button.tsx" {
		t.Errorf("SplitPath() = (%q, %q)", dir, base)
	}
	dir, base = SplitPath("main.go")
	if dir != "" || base != "main.go" {
		t.Errorf("SplitPath(root) = (%q, %q)", dir, base)
	}
}

func TestLayers(t *testing.T) {
	ls := NewLayers()
	ls.Add(LayerEntry, "a")
	ls.Add(LayerData, "b")

	if got, ok := ls.Of("b"); !ok || got != LayerData {
		t.Errorf("Of(b) = %v, %v", got, ok)
	}
	if ls.Len() != 2 {
		t.Errorf("Len() = %d, want 2", ls.Len())
	}
	if LayerInfrastructure.String() != "infrastructure" {
		t.Errorf("String() = %q", LayerInfrastructure.String())
	}
	if l, ok := ParseLayer("presentation"); !ok || l != LayerPresentation {
		t.Errorf("ParseLayer(presentation) = %v, %v", l, ok)
	}
}
