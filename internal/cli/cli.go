package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/archtower/pkg/buildinfo"
	"github.com/matzehuels/archtower/pkg/cache"
	"github.com/matzehuels/archtower/pkg/config"
	"github.com/matzehuels/archtower/pkg/errors"
	"github.com/matzehuels/archtower/pkg/observability"
	"github.com/matzehuels/archtower/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "archtower"
)

// Log levels for New.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	config     config.Config
	verbose    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		config: config.Default(),
	}
}

// SetLogLevel updates the logger's level. Timestamps are shown at debug
// level only.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	c.Logger.SetReportTimestamp(verboseLevel(level))
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "archtower",
		Short: "Archtower maps a repository's architecture as a layered graph",
		Long: `Archtower parses the source files of a repository, resolves their imports into
a dependency graph, sorts every file into one of five architectural layers
(entry, presentation, business, data, infrastructure) and lays the result out
as a flowchart.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.SetLogLevel(LogDebug)
			}
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			c.config = cfg
			c.Logger.Debugf("Loaded config (cache backend: %s)", cfg.Cache.Backend)

			observability.SetPipelineHooks(observability.NewLogHooks(c.Logger))
			observability.SetCacheHooks(observability.NewLogHooks(c.Logger))
			cmd.SetContext(withLogger(cmd.Context(), c.commandLogger(cmd)))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: ./"+config.FileName+" if present)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")

	// Register all subcommands
	root.AddCommand(c.snapshotCommand())
	root.AddCommand(c.analyzeCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())
	registerCompletions(root)

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cache, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cache, nil, c.Logger), nil
}

// newCache opens the configured cache backend. A file backend without a
// usable directory degrades to no caching.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	cfg := c.config.Cache
	if noCache || cfg.Backend == config.BackendNone {
		return cache.NewNullCache(), nil
	}

	var (
		backend cache.Cache
		err     error
	)
	switch cfg.Backend {
	case config.BackendRedis:
		backend, err = cache.NewRedisCache(ctx, cache.RedisOptions{Addr: cfg.RedisAddr})
		if err != nil {
			return nil, fmt.Errorf("connect cache: %w", err)
		}
	default:
		dir, dirErr := c.cacheDir()
		if dirErr != nil {
			c.Logger.Warnf("Caching disabled: %v", dirErr)
			return cache.NewNullCache(), nil
		}
		backend, err = cache.NewFileCache(dir)
		if err != nil {
			return nil, fmt.Errorf("open cache: %w", err)
		}
	}
	return cache.WithTTL(backend, cfg.TTL.Duration), nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the file cache directory from the config, which defaults
// to the XDG location (~/.cache/archtower/).
func (c *CLI) cacheDir() (string, error) {
	if c.config.Cache.Dir == "" {
		return "", errors.New(errors.ErrCodeInvalidConfig, "no cache directory (set cache.dir or $XDG_CACHE_HOME)")
	}
	return c.config.Cache.Dir, nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// pipelineOptions seeds pipeline options from the loaded config. Flags
// override the returned values.
func (c *CLI) pipelineOptions() pipeline.Options {
	return pipeline.Options{
		MaxFileSize:       c.config.Parser.MaxFileSize,
		Exclude:           c.config.Parser.Exclude,
		CanvasWidth:       c.config.Layout.CanvasWidth,
		OverlapIterations: c.config.Layout.OverlapIterations,
		Logger:            c.Logger,
	}
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatJSON}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
