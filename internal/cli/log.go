// Package cli implements the archtower command-line interface.
//
// Commands are methods on [CLI] built with cobra. Human-facing output goes
// through the lipgloss helpers in ui.go; diagnostics go through the
// charmbracelet logger.
//
// # Commands
//
// The main commands are:
//   - snapshot: Capture a directory as tree JSON
//   - analyze: Parse a directory or tree JSON into an analysis (nodes, edges, layers, metrics)
//   - layout: Position an analysis as a flowchart
//   - render: Run the whole pipeline and write json, dot or svg artifacts
//   - explore: Browse an analysis interactively by layer and language
//   - serve: Expose the pipeline over HTTP
//   - cache: Manage the analysis cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// turns on timestamps and replaces the spinner with log lines. Each command
// receives a logger prefixed with its name through context.Context, so
// helpers such as loadFiles report under the command that called them.
package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

const timeFormat = "15:04:05.00"

// newLogger creates the CLI logger. Timestamps are only reported at debug
// level.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: verboseLevel(level),
		TimeFormat:      timeFormat,
		Level:           level,
	})
}

func verboseLevel(level log.Level) bool {
	return level <= log.DebugLevel
}

// commandLogger returns the logger handed to cmd: the CLI logger, prefixed
// with the subcommand name.
func (c *CLI) commandLogger(cmd *cobra.Command) *log.Logger {
	if cmd == nil || !cmd.HasParent() {
		return c.Logger
	}
	return c.Logger.WithPrefix(cmd.Name())
}

// stage times one step of a command, such as loading the input tree.
type stage struct {
	logger *log.Logger
	name   string
	start  time.Time
}

// startStage begins timing name with the logger from ctx.
func startStage(ctx context.Context, name string) *stage {
	l := loggerFromContext(ctx)
	l.Debug("stage started", "stage", name)
	return &stage{logger: l, name: name, start: time.Now()}
}

// done logs the stage summary at info level with the elapsed time.
func (s *stage) done(format string, args ...any) {
	s.logger.Info(fmt.Sprintf(format, args...), "stage", s.name, "elapsed", s.elapsed())
}

func (s *stage) elapsed() time.Duration {
	return time.Since(s.start).Round(time.Millisecond)
}

type loggerKey struct{}

var discardLogger = log.NewWithOptions(io.Discard, log.Options{})

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// loggerFromContext returns the command logger, or a logger that discards
// everything when ctx carries none.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*log.Logger); ok && l != nil {
		return l
	}
	return discardLogger
}
