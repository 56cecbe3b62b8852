// Package root provides the root command for the mdit CLI.
package root

import (
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/mdit/internal/cmd/cmdutil"
	"github.com/open-cli-collective/mdit/internal/cmd/compare"
	"github.com/open-cli-collective/mdit/internal/cmd/completion"
	"github.com/open-cli-collective/mdit/internal/cmd/configcmd"
	"github.com/open-cli-collective/mdit/internal/cmd/initcmd"
	"github.com/open-cli-collective/mdit/internal/cmd/plugins"
	"github.com/open-cli-collective/mdit/internal/cmd/render"
	"github.com/open-cli-collective/mdit/internal/cmd/tree"
	"github.com/open-cli-collective/mdit/internal/cmd/unrender"
	"github.com/open-cli-collective/mdit/internal/version"
)

// NewCmdRoot creates the root command for mdit.
func NewCmdRoot() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mdit",
		Short: "An extensible markdown parser and renderer",
		Long: `mdit parses markdown into a syntax tree and renders it as HTML.

Grammar comes from plugins: pick a preset (zero, commonmark, gfm, chat)
and enable more with --plugin. Run 'mdit plugins' to see them all.

Get started by running: mdit init`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version.Version,
	}

	cmdutil.AddGlobalFlags(cmd)

	cmd.SetVersionTemplate(version.String() + "\n")

	// Subcommands
	cmd.AddCommand(initcmd.NewCmdInit())
	cmd.AddCommand(render.NewCmdRender())
	cmd.AddCommand(tree.NewCmdTree())
	cmd.AddCommand(compare.NewCmdCompare())
	cmd.AddCommand(unrender.NewCmdUnrender())
	cmd.AddCommand(plugins.NewCmdPlugins())
	cmd.AddCommand(configcmd.NewCmdConfig())
	cmd.AddCommand(completion.NewCmdCompletion())

	return cmd
}
