// Package plugins provides the plugins command.
package plugins

import (
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/mdit/internal/cmd/cmdutil"
	"github.com/open-cli-collective/mdit/pkg/markup"
	"github.com/open-cli-collective/mdit/pkg/mdit/plugins/cmark"
)

type pluginsOptions struct {
	cmdutil.GlobalOptions
	presets bool
}

// NewCmdPlugins creates the plugins command.
func NewCmdPlugins() *cobra.Command {
	opts := &pluginsOptions{}

	cmd := &cobra.Command{
		Use:   "plugins",
		Short: "List plugins and presets",
		Long: `List every name accepted by --plugin and the config file's plugins list.

Single CommonMark rules (for example "heading" or "emphasis_star") can be
enabled on their own on top of the zero preset.`,
		Example: `  # List plugins
  mdit plugins

  # List presets and what they enable
  mdit plugins --presets -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.GlobalOptions = cmdutil.Global(cmd)
			return runPlugins(opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&opts.presets, "presets", false, "List presets instead of plugins")

	return cmd
}

func runPlugins(opts *pluginsOptions, out io.Writer) error {
	renderer, err := opts.Renderer(nil, out)
	if err != nil {
		return err
	}

	if opts.presets {
		var rows [][]string
		for _, name := range markup.ListPresets() {
			enabled, _ := markup.PresetPlugins(name)
			rows = append(rows, []string{name, strings.Join(enabled, ",")})
		}
		renderer.RenderTable([]string{"NAME", "PLUGINS"}, rows)
		return nil
	}

	rules := cmark.RuleNames()
	var rows [][]string
	for _, name := range markup.ListPlugins() {
		kind := "plugin"
		if slices.Contains(rules, name) {
			kind = "rule"
		}
		rows = append(rows, []string{name, kind, strings.Join(presetsWith(name), ",")})
	}
	renderer.RenderTable([]string{"NAME", "KIND", "PRESETS"}, rows)
	return nil
}

// presetsWith lists the presets that enable name.
func presetsWith(name string) []string {
	var in []string
	for _, preset := range markup.ListPresets() {
		enabled, _ := markup.PresetPlugins(preset)
		if slices.Contains(enabled, name) {
			in = append(in, preset)
		}
	}
	return in
}
