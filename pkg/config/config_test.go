package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/archtower/pkg/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[parser]
max_file_size = 2048
exclude = ["vendor/**"]

[layout]
canvas_width = 1600

[cache]
backend = "redis"
redis_addr = "cache:6379"
ttl = "12h"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, int64(2048), cfg.Parser.MaxFileSize)
	assert.Equal(t, []string{"vendor/**"}, cfg.Parser.Exclude)
	assert.Equal(t, 1600.0, cfg.Layout.CanvasWidth)
	assert.Equal(t, 50, cfg.Layout.OverlapIterations, "unset keys keep defaults")
	assert.Equal(t, BackendRedis, cfg.Cache.Backend)
	assert.Equal(t, 12*time.Hour, cfg.Cache.TTL.Duration)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoadMissingFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	_, err = Load("does-not-exist.toml")
	assert.True(t, errors.Is(err, errors.ErrCodeFileNotFound))
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown key", "[parser]\nmax_size = 1\n"},
		{"bad syntax", "[parser\n"},
		{"bad backend", "[cache]\nbackend = \"memcached\"\n"},
		{"bad ttl", "[cache]\nttl = \"soon\"\n"},
		{"bad glob", "[parser]\nexclude = [\"[\"]\n"},
		{"zero size", "[parser]\nmax_file_size = 0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeInvalidConfig), "got %v", err)
		})
	}
}

func TestDefaultCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg")
	assert.Equal(t, filepath.Join("/tmp/xdg", "archtower"), DefaultCacheDir())
}
