// Package completion provides shell completion generation commands.
package completion

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

type shell struct {
	name    string
	install string
	gen     func(root *cobra.Command, w io.Writer) error
}

var shells = []shell{
	{
		name: "bash",
		install: `  # Linux
  mdit completion bash > /etc/bash_completion.d/mdit

  # macOS (requires bash-completion)
  mdit completion bash > $(brew --prefix)/etc/bash_completion.d/mdit`,
		gen: func(root *cobra.Command, w io.Writer) error { return root.GenBashCompletion(w) },
	},
	{
		name: "zsh",
		install: `  # Ensure compinit runs in ~/.zshrc, then
  mdit completion zsh > "${fpath[1]}/_mdit"`,
		gen: func(root *cobra.Command, w io.Writer) error { return root.GenZshCompletion(w) },
	},
	{
		name:    "fish",
		install: `  mdit completion fish > ~/.config/fish/completions/mdit.fish`,
		gen:     func(root *cobra.Command, w io.Writer) error { return root.GenFishCompletion(w, true) },
	},
	{
		name: "powershell",
		install: `  # Add to your PowerShell profile
  mdit completion powershell | Out-String | Invoke-Expression`,
		gen: func(root *cobra.Command, w io.Writer) error { return root.GenPowerShellCompletionWithDesc(w) },
	},
}

// NewCmdCompletion creates the completion command.
func NewCmdCompletion() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for mdit.

These scripts enable tab-completion for commands, flags, and arguments.
See each sub-command's help for installation instructions.`,
	}

	for _, sh := range shells {
		cmd.AddCommand(newCmdShell(sh))
	}

	return cmd
}

func newCmdShell(sh shell) *cobra.Command {
	return &cobra.Command{
		Use:   sh.name,
		Short: fmt.Sprintf("Generate %s completion script", sh.name),
		Long: fmt.Sprintf(`Generate %[1]s completion script for mdit.

To load completions for every new session:

%[2]s`, sh.name, sh.install),
		Example:               fmt.Sprintf("  # Load in current session\n  source <(mdit completion %s)", sh.name),
		Args:                  cobra.NoArgs,
		DisableFlagsInUseLine: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return sh.gen(cmd.Root(), cmd.OutOrStdout())
		},
	}
}
