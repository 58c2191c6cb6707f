package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/archtower/pkg/graph"
	"github.com/matzehuels/archtower/pkg/pipeline"
)

// layoutFlags are the layout flags shared by layout and render. Zero values
// fall back to the config file.
type layoutFlags struct {
	canvasWidth       float64
	overlapIterations int
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.canvasWidth, "canvas-width", 0, "canvas width in pixels (default from config: 1200)")
	cmd.Flags().IntVar(&f.overlapIterations, "overlap-iterations", 0, "maximum overlap-resolution passes (default from config: 50)")
}

func (f *layoutFlags) apply(opts *pipeline.Options) {
	if f.canvasWidth != 0 {
		opts.CanvasWidth = f.canvasWidth
	}
	if f.overlapIterations != 0 {
		opts.OverlapIterations = f.overlapIterations
	}
}

// layoutCommand creates the layout command for positioning an analysis.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		flags   layoutFlags
		output  string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "layout <analysis.json>",
		Short: "Position an analysis as a layered flowchart",
		Long: `Position an analysis as a layered flowchart.

The layout command takes an analysis.json file (produced by 'analyze') and
places every node in the horizontal band of its layer, ordered by hierarchy
level and importance, with overlaps resolved and every edge routed. The output
is a flowchart.json file (same format as 'render -f json').

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], flags, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.flowchart.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	flags.register(cmd)

	return cmd
}

// runLayout loads the analysis, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, input string, flags layoutFlags, output string, noCache bool) error {
	a, err := graph.ReadAnalysisFile(input)
	if err != nil {
		return fmt.Errorf("load analysis %s: %w", input, err)
	}

	opts := c.pipelineOptions()
	flags.apply(&opts)
	opts.SetLayoutDefaults()

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Laying out %d nodes...", len(a.Nodes)))
	spinner.Start()

	f, cacheHit, err := runner.LayoutWithCacheInfo(ctx, a, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	if ctx.Err() != nil {
		spinner.Stop()
		return ctx.Err()
	}
	spinner.StopWithSuccess("Layout complete")

	outputPath := output
	if outputPath == "" {
		outputPath = layoutOutputPath(input)
	}

	if err := graph.WriteFlowchartFile(f, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printFile(outputPath)
	printStats(len(f.Nodes), len(f.Connections), cacheHit)
	printDetail("canvas %.0f × %.0f", f.Width, f.Height)
	printNewline()
	printNextStep("Explore", "archtower explore "+input)

	return nil
}

// layoutOutputPath maps "repo.analysis.json" to "repo.flowchart.json" and
// any other "x.json" to "x.flowchart.json".
func layoutOutputPath(input string) string {
	base := strings.TrimSuffix(input, filepath.Ext(input))
	base = strings.TrimSuffix(base, ".analysis")
	return base + ".flowchart.json"
}
