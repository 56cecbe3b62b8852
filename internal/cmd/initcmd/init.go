// Package initcmd provides the init command for mdit.
package initcmd

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/mdit/internal/config"
	"github.com/open-cli-collective/mdit/pkg/markup"
)

type initOptions struct {
	configPath string
	preset     string
	plugins    []string
	yes        bool
}

// NewCmdInit creates the init command.
func NewCmdInit() *cobra.Command {
	opts := &initOptions{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize mdit configuration",
		Long: `Create an mdit configuration file.

This command guides you through choosing a parser preset and any extra
plugins. The configuration is saved to ~/.config/mdit/config.yml unless
--config names another file.`,
		Example: `  # Interactive setup
  mdit init

  # Non-interactive
  mdit init --preset gfm --plugin footnote --yes`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.configPath, _ = cmd.Flags().GetString("config")
			if opts.configPath == "" {
				opts.configPath = config.DefaultConfigPath()
			}
			if opts.yes {
				return writeConfig(opts, cmd.OutOrStdout())
			}
			return runInit(opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.preset, "preset", "", "Preset to preselect")
	cmd.Flags().StringSliceVar(&opts.plugins, "plugin", nil, "Plugins to preselect")
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "Write the flags without prompting")

	return cmd
}

func runInit(opts *initOptions, out io.Writer) error {
	// Check if config already exists
	if _, err := os.Stat(opts.configPath); err == nil {
		var overwrite bool
		err := huh.NewConfirm().
			Title("Configuration already exists").
			Description(fmt.Sprintf("Overwrite %s?", opts.configPath)).
			Value(&overwrite).
			Run()
		if err != nil {
			return err
		}
		if !overwrite {
			fmt.Fprintln(out, "Initialization cancelled.")
			return nil
		}
	}

	if opts.preset == "" {
		opts.preset = config.DefaultPreset
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Preset").
				Description("Base grammar every document is parsed with").
				Options(huh.NewOptions(markup.ListPresets()...)...).
				Value(&opts.preset),

			huh.NewMultiSelect[string]().
				Title("Extra plugins").
				Description("Enabled on top of the preset").
				Options(pluginOptions(opts.preset)...).
				Value(&opts.plugins),
		),
	)

	if err := form.Run(); err != nil {
		return err
	}

	return writeConfig(opts, out)
}

// pluginOptions lists the plugins the preset does not already enable.
func pluginOptions(preset string) []huh.Option[string] {
	enabled, _ := markup.PresetPlugins(preset)
	skip := make(map[string]bool, len(enabled))
	for _, name := range enabled {
		skip[name] = true
	}
	var options []huh.Option[string]
	for _, name := range markup.ListPlugins() {
		if !skip[name] {
			options = append(options, huh.NewOption(name, name))
		}
	}
	return options
}

func writeConfig(opts *initOptions, out io.Writer) error {
	cfg := &config.Config{Preset: opts.preset, Plugins: opts.plugins}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := cfg.Save(opts.configPath); err != nil {
		return err
	}

	fmt.Fprintf(out, "Configuration saved to %s\n", opts.configPath)
	fmt.Fprintln(out, "\nYou're all set! Try running:")
	fmt.Fprintln(out, "  mdit render README.md")
	fmt.Fprintln(out, "  mdit tree README.md")

	return nil
}
