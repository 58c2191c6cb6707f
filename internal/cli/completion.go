package cli

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/archtower/pkg/config"
	"github.com/matzehuels/archtower/pkg/pipeline"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for ` + appName + `.

Besides commands and flags, the scripts complete input paths (directories and
.json trees or analyses), --format lists and --config files.

  $ source <(archtower completion bash)
  $ archtower completion zsh > "${fpath[1]}/_archtower"
  $ archtower completion fish > ~/.config/fish/completions/archtower.fish
  PS> archtower completion powershell | Out-String | Invoke-Expression`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}

	return cmd
}

// inputCommands take a repository input as their only argument.
var inputCommands = []string{"snapshot", "analyze", "layout", "render", "explore"}

// registerCompletions attaches argument and flag completions to the
// subcommands of root.
func registerCompletions(root *cobra.Command) {
	_ = root.RegisterFlagCompletionFunc("config", completeExt(strings.TrimPrefix(filepath.Ext(config.FileName), ".")))

	for _, cmd := range root.Commands() {
		if slices.Contains(inputCommands, cmd.Name()) {
			cmd.ValidArgsFunction = completeInput
		}
		if cmd.Flags().Lookup("format") != nil {
			_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)
		}
		if cmd.Flags().Lookup("exclude") != nil {
			_ = cmd.RegisterFlagCompletionFunc("exclude", cobra.NoFileCompletions)
		}
	}
}

// completeInput offers directories and JSON files for the first argument.
func completeInput(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return []string{"json"}, cobra.ShellCompDirectiveFilterFileExt
}

func completeExt(ext string) cobra.CompletionFunc {
	return func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{ext}, cobra.ShellCompDirectiveFilterFileExt
	}
}

// completeFormats completes the last entry of a comma-separated format list,
// skipping formats already listed.
func completeFormats(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	head, last := "", toComplete
	if i := strings.LastIndex(toComplete, ","); i >= 0 {
		head, last = toComplete[:i+1], toComplete[i+1:]
	}
	used := parseFormats(head)
	if head == "" {
		used = nil
	}

	var out []string
	for _, f := range pipeline.Formats {
		if strings.HasPrefix(f, last) && !slices.Contains(used, f) {
			out = append(out, head+f)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
}
