package tree

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/archtower/pkg/errors"
)

const sampleTree = `{
  "name": "repo", "path": "", "type": "dir",
  "children": [
    {"name": "src", "path": "src", "type": "dir", "children": [
      {"name": "b.ts", "path": "src/b.ts", "type": "file", "content": "export const b = 1"},
      {"name": "a.ts", "type": "file", "content": "import { b } from './b'"}
    ]},
    {"name": "README.md", "path": "README.md", "type": "file", "relevant": false}
  ]
}`

func TestDecode(t *testing.T) {
	root, err := Decode(strings.NewReader(sampleTree), nil)
	require.NoError(t, err)

	files := Flatten(root)
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
	}
	assert.Equal(t, []string{"README.md", "src/a.ts", "src/b.ts"}, paths, "sorted, with derived paths")

	in := Files(root)
	require.Len(t, in, 3)
	require.NotNil(t, in[0].Relevant)
	assert.False(t, *in[0].Relevant)
	require.NotNil(t, in[1].Content)

	nFiles, nDirs := Stats(root)
	assert.Equal(t, 3, nFiles)
	assert.Equal(t, 2, nDirs)
}

func TestDecodeArray(t *testing.T) {
	root, err := Decode(strings.NewReader(`[{"name": "main.py", "path": "main.py", "content": "print(1)"}]`), nil)
	require.NoError(t, err)
	assert.True(t, root.IsDir())
	require.Len(t, Flatten(root), 1)
	assert.Equal(t, TypeFile, root.Children[0].Type, "type inferred")
}

func TestDecodeRejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		code errors.Code
	}{
		{"empty", "  ", errors.ErrCodeInvalidTree},
		{"malformed", `{"name":`, errors.ErrCodeInvalidTree},
		{"absolute root", `{"name": "repo", "path": "/srv/repo", "type": "dir"}`, errors.ErrCodeInvalidPath},
		{"bad type", `[{"name": "x", "path": "x", "type": "link"}]`, errors.ErrCodeInvalidTree},
		{"file children", `[{"name": "x", "path": "x", "type": "file", "children": [{"name": "y", "path": "x/y"}]}]`, errors.ErrCodeInvalidTree},
		{"negative size", `[{"name": "x", "path": "x", "type": "file", "size": -1}]`, errors.ErrCodeInvalidTree},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.doc), nil)
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.GetCode(err))
		})
	}
}

func TestDecodeSkipsBadPaths(t *testing.T) {
	doc := `[
  {"name": "x", "path": "../x.ts", "type": "file"},
  {"name": "etc", "path": "/etc", "type": "dir", "children": [
    {"name": "passwd", "path": "/etc/passwd", "type": "file"}
  ]},
  {"name": "src", "type": "dir", "children": [
    {"name": "a.ts", "type": "file", "content": "export const a = 1"},
    {"name": "b.ts", "path": "src/../../b.ts", "type": "file"}
  ]}
]`
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})

	root, err := Decode(strings.NewReader(doc), logger)
	require.NoError(t, err)

	files := Flatten(root)
	require.Len(t, files, 1)
	assert.Equal(t, "src/a.ts", files[0].Path)
	assert.Equal(t, 3, strings.Count(buf.String(), "skip tree entry"))
}

func TestEncodeRoundTrip(t *testing.T) {
	root, err := Decode(strings.NewReader(sampleTree), nil)
	require.NoError(t, err)

	var buf strings.Builder
	require.NoError(t, Encode(&buf, root))
	again, err := Decode(strings.NewReader(buf.String()), nil)
	require.NoError(t, err)
	assert.Equal(t, root, again)
}

func writeFile(t *testing.T, dir, rel, body string) {
	t.Helper()
	p := filepath.Join(dir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
}

func TestLoadLocal(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "src/index.ts", "import './app'")
	writeFile(t, dir, "src/app.ts", "export default function app() {}")
	writeFile(t, dir, "node_modules/react/index.js", "module.exports = {}")
	writeFile(t, dir, "docs/guide.md", "# guide")
	writeFile(t, dir, "big.js", strings.Repeat("x", 64))

	root, err := LoadLocal(context.Background(), dir, LoadOptions{MaxFileSize: 32})
	require.NoError(t, err)

	byPath := map[string]*Entry{}
	for _, f := range Flatten(root) {
		byPath[f.Path] = f
	}
	assert.NotContains(t, byPath, "node_modules/react/index.js")
	require.Contains(t, byPath, "src/index.ts")
	require.NotNil(t, byPath["src/index.ts"].Content)
	assert.Equal(t, "import './app'", *byPath["src/index.ts"].Content)

	require.Contains(t, byPath, "docs/guide.md")
	assert.Nil(t, byPath["docs/guide.md"].Content, "irrelevant files are listed, not read")

	require.Contains(t, byPath, "big.js")
	assert.Nil(t, byPath["big.js"].Content)
	assert.Equal(t, int64(64), byPath["big.js"].Size)
}

func TestLoadLocalCancelled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.ts", "export const a = 1")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	root, err := LoadLocal(ctx, dir, LoadOptions{})
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, root, "partial tree is returned")
	assert.True(t, root.IsDir())
}

func TestLoadLocalNotDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.ts", "")
	_, err := LoadLocal(context.Background(), filepath.Join(dir, "a.ts"), LoadOptions{})
	assert.Error(t, err)
}
