package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/archtower/pkg/pipeline"
)

// formatExt maps an output format to the file suffix written for it.
var formatExt = map[string]string{
	pipeline.FormatJSON: ".flowchart.json",
	pipeline.FormatDOT:  ".dot",
	pipeline.FormatSVG:  ".svg",
}

// renderCommand creates the render command, which runs the whole pipeline.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		analyze    analyzeFlags
		lay        layoutFlags
		formatsStr string
		output     string
		detailed   bool
	)

	cmd := &cobra.Command{
		Use:   "render <dir|tree.json|->",
		Short: "Analyze, lay out and render a repository in one step",
		Long: `Analyze, lay out and render a repository in one step.

Formats:
  json  positioned flowchart (nodes with coordinates, routed connections)
  dot   Graphviz source with pinned positions and one cluster per layer
  svg   the DOT output rendered by Graphviz

Every stage is cached, so re-rendering an unchanged repository in another
format only runs the render stage.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats := parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], renderParams{
				analyze:  analyze,
				layout:   lay,
				formats:  formats,
				output:   output,
				detailed: detailed,
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): json (default), dot, svg (comma-separated)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "label nodes with metrics (dot, svg)")
	analyze.register(cmd)
	lay.register(cmd)

	return cmd
}

type renderParams struct {
	analyze  analyzeFlags
	layout   layoutFlags
	formats  []string
	output   string
	detailed bool
}

// runRender loads the input, runs every stage, and writes one file per format.
func (c *CLI) runRender(ctx context.Context, input string, p renderParams) error {
	opts := c.pipelineOptions()
	p.analyze.apply(&opts)
	p.layout.apply(&opts)
	opts.Formats = p.formats
	opts.Detailed = p.detailed

	files, err := loadFiles(ctx, input, p.analyze.inputOpts(opts))
	if err != nil {
		return fmt.Errorf("load %s: %w", input, err)
	}

	runner, err := c.newRunner(ctx, p.analyze.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", strings.Join(p.formats, ", ")))
	spinner.Start()

	result, err := runner.Execute(ctx, files, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	printSuccess("Rendered %d format(s)", len(result.Artifacts))
	for _, format := range p.formats {
		path := artifactPath(p.output, input, format, len(p.formats))
		if err := writeOutput(nil, path, result.Artifacts[format]); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	printStats(result.Stats.NodeCount, result.Stats.EdgeCount,
		result.CacheInfo.AnalyzeHit && result.CacheInfo.LayoutHit && result.CacheInfo.RenderHit)
	printDetail("analyze %s · layout %s · render %s",
		result.Stats.AnalyzeTime.Round(time.Millisecond), result.Stats.LayoutTime.Round(time.Millisecond), result.Stats.RenderTime.Round(time.Millisecond))

	return nil
}

// artifactPath picks the file for one format. A single format with an
// explicit output writes exactly there; otherwise the output (or input) is
// a base path that gets the format's suffix.
func artifactPath(output, input, format string, nFormats int) string {
	if output != "" && nFormats == 1 {
		return output
	}
	return basePath(output, input) + formatExt[format]
}

// basePath derives the base output path from the output and input paths.
// If output is empty, it is derived from the input. If output carries a
// format suffix (.svg, .dot, .json), that suffix is stripped.
func basePath(output, input string) string {
	if output == "" {
		return inputBase(input)
	}
	for _, ext := range sortedExts() {
		if strings.HasSuffix(output, ext) {
			return strings.TrimSuffix(output, ext)
		}
	}
	if ext := filepath.Ext(output); ext == ".json" {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// sortedExts returns the format suffixes longest first so ".flowchart.json"
// wins over ".json".
func sortedExts() []string {
	exts := make([]string, 0, len(formatExt))
	for _, ext := range formatExt {
		exts = append(exts, ext)
	}
	slices.SortFunc(exts, func(a, b string) int { return len(b) - len(a) })
	return exts
}
