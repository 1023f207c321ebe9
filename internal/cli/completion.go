package cli

import (
	"github.com/spf13/cobra"
)

// completionCommand prints a completion script for the requested shell.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a shell completion script for heatmap.

The script completes the subcommands (render, grid, preview, serve, cache,
completion), their flags, and the fixed values of --format (png, tiff, bmp,
json, chart), --ramp presets and --resample.

  bash        source <(heatmap completion bash)
  zsh         heatmap completion zsh > "${fpath[1]}/_heatmap"
  fish        heatmap completion fish > ~/.config/fish/completions/heatmap.fish
  powershell  heatmap completion powershell | Out-String | Invoke-Expression

Zsh needs "autoload -U compinit; compinit" in ~/.zshrc. Start a new shell
after installing a script.`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(c.out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(c.out)
			case "fish":
				return cmd.Root().GenFishCompletion(c.out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(c.out)
			}
			return nil
		},
	}

	return cmd
}
