// Package config loads archtower settings from a TOML file.
//
// Every field has a default, so a missing file is not an error when the
// path was not given explicitly:
//
//	[parser]
//	max_file_size = 102400
//	exclude = ["**/*.generated.ts", "vendor/**"]
//
//	[layout]
//	canvas_width = 1600
//	overlap_iterations = 50
//
//	[cache]
//	backend = "redis"          # none | file | redis
//	redis_addr = "localhost:6379"
//	ttl = "12h"
//
//	[server]
//	addr = ":8080"
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/archtower/pkg/errors"
	"github.com/matzehuels/archtower/pkg/layout"
	"github.com/matzehuels/archtower/pkg/source"
)

// FileName is the config file looked up in the working directory.
const FileName = "archtower.toml"

// Cache backends.
const (
	BackendNone  = "none"
	BackendFile  = "file"
	BackendRedis = "redis"
)

// Config is the decoded config file.
type Config struct {
	Parser ParserConfig `toml:"parser"`
	Layout LayoutConfig `toml:"layout"`
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
}

type ParserConfig struct {
	MaxFileSize int64    `toml:"max_file_size"`
	Exclude     []string `toml:"exclude"`
}

type LayoutConfig struct {
	CanvasWidth       float64 `toml:"canvas_width"`
	OverlapIterations int     `toml:"overlap_iterations"`
}

type CacheConfig struct {
	Backend   string   `toml:"backend"`
	Dir       string   `toml:"dir"`
	RedisAddr string   `toml:"redis_addr"`
	TTL       Duration `toml:"ttl"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
	// MaxBodyBytes caps request bodies.
	MaxBodyBytes int64 `toml:"max_body_bytes"`
}

// Duration decodes TOML strings such as "12h" or "30m".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Parser: ParserConfig{MaxFileSize: source.DefaultMaxFileSize},
		Layout: LayoutConfig{
			CanvasWidth:       layout.DefaultCanvasWidth,
			OverlapIterations: layout.DefaultOverlapIterations,
		},
		Cache: CacheConfig{
			Backend:   BackendFile,
			Dir:       DefaultCacheDir(),
			RedisAddr: "localhost:6379",
		},
		Server: ServerConfig{Addr: ":8080", MaxBodyBytes: 32 << 20},
	}
}

// DefaultCacheDir follows XDG: $XDG_CACHE_HOME/archtower or ~/.cache/archtower.
// It returns "" when no home directory is known.
func DefaultCacheDir() string {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, "archtower")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".cache", "archtower")
}

// Load reads path over the defaults. With an empty path it tries FileName
// in the working directory and falls back to Default when that is absent.
// Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = FileName
	}

	if _, err := os.Stat(path); err != nil {
		if !explicit && os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, errors.New(errors.ErrCodeInvalidConfig, "unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}
	return cfg, cfg.Validate()
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.Parser.MaxFileSize <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "parser.max_file_size must be positive")
	}
	if _, err := source.NewFilter(c.Parser.Exclude...); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "parser.exclude")
	}
	if c.Layout.CanvasWidth < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "layout.canvas_width cannot be negative")
	}
	if c.Layout.OverlapIterations < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "layout.overlap_iterations cannot be negative")
	}
	switch c.Cache.Backend {
	case BackendNone, BackendFile, BackendRedis:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "cache.backend %q (must be one of: none, file, redis)", c.Cache.Backend)
	}
	if c.Cache.Backend == BackendRedis && c.Cache.RedisAddr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.redis_addr is required for the redis backend")
	}
	if c.Cache.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.ttl cannot be negative")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "server.max_body_bytes must be positive")
	}
	return nil
}

// String renders the config as TOML.
func (c Config) String() string {
	var b strings.Builder
	if err := toml.NewEncoder(&b).Encode(c); err != nil {
		return fmt.Sprintf("<config: %v>", err)
	}
	return b.String()
}
