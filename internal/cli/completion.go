package cli

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for gangsheet.

To load completions:

Bash:
  $ source <(gangsheet completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ gangsheet completion bash > /etc/bash_completion.d/gangsheet
  # macOS:
  $ gangsheet completion bash > $(brew --prefix)/etc/bash_completion.d/gangsheet

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ gangsheet completion zsh > "${fpath[1]}/_gangsheet"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ gangsheet completion fish | source

  # To load completions for each session, execute once:
  $ gangsheet completion fish > ~/.config/fish/completions/gangsheet.fish

PowerShell:
  PS> gangsheet completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> gangsheet completion powershell > gangsheet.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}

	return cmd
}

// completeDesignArg completes the category in path:category arguments and
// leaves plain paths to the shell's file completion.
func (c *CLI) completeDesignArg(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	path, rest, ok := strings.Cut(toComplete, ":")
	if !ok {
		return nil, cobra.ShellCompDirectiveDefault
	}
	if strings.Contains(rest, ":") {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	opts, err := c.loadOptions()
	if err != nil || opts.ValidateAndSetDefaults() != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	var out []string
	for _, e := range opts.Catalog().Entries() {
		if strings.HasPrefix(string(e.Category), rest) {
			out = append(out, path+":"+string(e.Category)+"\t"+e.DisplayName())
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
}
