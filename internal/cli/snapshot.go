package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/archtower/pkg/tree"
)

// snapshotCommand creates the snapshot command, which captures a directory
// as tree JSON.
func (c *CLI) snapshotCommand() *cobra.Command {
	var (
		flags  analyzeFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "snapshot <dir>",
		Short: "Capture a directory as tree JSON",
		Long: `Capture a directory as tree JSON.

The snapshot holds the directory structure and the contents of every relevant
file. It is the request body the HTTP endpoints expect and can be analyzed
later without access to the directory:

  archtower snapshot ./repo -o repo.json
  curl --data-binary @repo.json localhost:8080/v1/analyze`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSnapshot(cmd.Context(), args[0], flags, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, '-' for stdout (default: <dir>.json)")
	flags.register(cmd)

	return cmd
}

func (c *CLI) runSnapshot(ctx context.Context, dir string, flags analyzeFlags, output string) error {
	opts := c.pipelineOptions()
	flags.apply(&opts)
	if err := opts.ValidateForAnalyze(); err != nil {
		return err
	}

	root, err := loadTree(ctx, dir, flags.inputOpts(opts))
	if err != nil {
		return fmt.Errorf("load %s: %w", dir, err)
	}

	if output == stdio {
		return tree.Encode(os.Stdout, root)
	}
	if output == "" {
		output = inputBase(dir) + ".json"
	}
	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create %s: %w", output, err)
	}
	if err := tree.Encode(f, root); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	nFiles, nDirs := tree.Stats(root)
	printSuccess("Snapshot complete")
	printFile(output)
	printDetail("%d files in %d directories", nFiles, nDirs)
	printNewline()
	printNextStep("Analyze", "archtower analyze "+output)
	return nil
}
