package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/archtower/pkg/analysis"
	"github.com/matzehuels/archtower/pkg/graph"
	"github.com/matzehuels/archtower/pkg/pipeline"
)

// maxCyclesShown bounds the cycles listed after an analysis.
const maxCyclesShown = 5

// analyzeFlags are the parser flags shared by analyze, render and explore.
// Zero values fall back to the config file.
type analyzeFlags struct {
	maxFileSize int64
	exclude     []string
	walkTimeout time.Duration
	refresh     bool
	noCache     bool
}

func (f *analyzeFlags) register(cmd *cobra.Command) {
	cmd.Flags().Int64Var(&f.maxFileSize, "max-file-size", 0, "skip files larger than this many bytes (default from config: 102400)")
	cmd.Flags().StringSliceVar(&f.exclude, "exclude", nil, "additional exclusion globs, e.g. '**/generated/**' (repeatable)")
	cmd.Flags().DurationVar(&f.walkTimeout, "walk-timeout", 0, "stop walking a directory after this long and analyze what was read")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "recompute the analysis even if it is cached")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
}

func (f *analyzeFlags) apply(opts *pipeline.Options) {
	if f.maxFileSize != 0 {
		opts.MaxFileSize = f.maxFileSize
	}
	if len(f.exclude) > 0 {
		opts.Exclude = append(append([]string{}, opts.Exclude...), f.exclude...)
	}
	opts.Refresh = f.refresh
}

func (f *analyzeFlags) inputOpts(opts pipeline.Options) inputOpts {
	return inputOpts{maxFileSize: opts.MaxFileSize, exclude: opts.Exclude, walkTimeout: f.walkTimeout}
}

// analyzeCommand creates the analyze command.
func (c *CLI) analyzeCommand() *cobra.Command {
	var (
		flags  analyzeFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "analyze <dir|tree.json|->",
		Short: "Build the architecture graph of a repository",
		Long: `Build the architecture graph of a repository.

The input is a directory, a tree JSON file (a root entry or an array of
entries with name, path, type and content), or "-" to read tree JSON from
stdin. The output is an analysis JSON with nodes, edges, layers and metrics
that 'layout' and 'explore' consume.

Results are cached by the content hash of the input files.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runAnalyze(cmd.Context(), args[0], flags, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, '-' for stdout (default: <input>.analysis.json)")
	flags.register(cmd)

	return cmd
}

// runAnalyze loads the input, analyzes it, and writes the analysis.
func (c *CLI) runAnalyze(ctx context.Context, input string, flags analyzeFlags, output string) error {
	opts := c.pipelineOptions()
	flags.apply(&opts)
	if err := opts.ValidateForAnalyze(); err != nil {
		return err
	}

	files, err := loadFiles(ctx, input, flags.inputOpts(opts))
	if err != nil {
		return fmt.Errorf("load %s: %w", input, err)
	}

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Analyzing %d files...", len(files)))
	spinner.Start()

	a, cacheHit, err := runner.AnalyzeWithCacheInfo(ctx, files, opts)
	if err != nil {
		spinner.StopWithError("Analysis failed")
		return fmt.Errorf("analyze: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	if output == stdio {
		return graph.WriteAnalysis(a, os.Stdout)
	}
	outputPath := output
	if outputPath == "" {
		outputPath = inputBase(input) + ".analysis.json"
	}
	if err := graph.WriteAnalysisFile(a, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Analysis complete")
	printFile(outputPath)
	printStats(len(a.Nodes), len(a.Edges), cacheHit)
	printNewline()
	printLayers(a.Layers)
	printNewline()
	printMetrics(a.Metrics)
	printCycles(analysis.Cycles(a))
	printNewline()
	printNextStep("Lay out", "archtower layout "+outputPath)

	return nil
}

// printCycles lists the first few import cycles.
func printCycles(cycles [][]string) {
	if len(cycles) == 0 {
		return
	}
	printNewline()
	printWarning("%d import cycle(s)", len(cycles))
	for i, cycle := range cycles {
		if i == maxCyclesShown {
			printDetail("... and %d more", len(cycles)-maxCyclesShown)
			break
		}
		printDetail("%s", strings.Join(cycle, " → "))
	}
}
