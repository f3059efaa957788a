package main

import (
	"os"

	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for tilegate.

To load completions:

Bash:
  $ source <(tilegate completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ tilegate completion bash > /etc/bash_completion.d/tilegate
  # macOS:
  $ tilegate completion bash > $(brew --prefix)/etc/bash_completion.d/tilegate

Zsh:
  $ source <(tilegate completion zsh)

  # To load completions for each session, execute once:
  $ tilegate completion zsh > "${fpath[1]}/_tilegate"

Fish:
  $ tilegate completion fish | source

  # To load completions for each session, execute once:
  $ tilegate completion fish > ~/.config/fish/completions/tilegate.fish

PowerShell:
  PS> tilegate completion powershell | Out-String | Invoke-Expression
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

func init() {
	rootCmd.AddCommand(completionCmd)
}
