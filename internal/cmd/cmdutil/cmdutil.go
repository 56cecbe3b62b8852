// Package cmdutil holds the plumbing shared by mdit subcommands: global
// flags, input reading and parser construction.
package cmdutil

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/mdit/internal/config"
	"github.com/open-cli-collective/mdit/internal/view"
	"github.com/open-cli-collective/mdit/pkg/markup"
)

// GlobalOptions are the persistent flags every subcommand sees.
type GlobalOptions struct {
	ConfigPath string
	Output     string
	NoColor    bool
	Verbose    bool
	Preset     string
	Plugins    []string

	// Stderr receives verbose logging. Nil means os.Stderr.
	Stderr io.Writer
}

// AddGlobalFlags registers the persistent flags on the root command.
func AddGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringP("config", "c", "", "config file (default: ~/.config/mdit/config.yml)")
	cmd.PersistentFlags().StringP("output", "o", "", "output format: table, json, plain")
	cmd.PersistentFlags().Bool("no-color", false, "disable colored output")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "log parser activity to stderr")
	cmd.PersistentFlags().StringP("preset", "p", "", "parser preset: "+strings.Join(markup.ListPresets(), ", "))
	cmd.PersistentFlags().StringSlice("plugin", nil, "enable an extra plugin (repeatable)")
}

// Global reads the persistent flags of cmd.
func Global(cmd *cobra.Command) GlobalOptions {
	var g GlobalOptions
	g.ConfigPath, _ = cmd.Flags().GetString("config")
	g.Output, _ = cmd.Flags().GetString("output")
	g.NoColor, _ = cmd.Flags().GetBool("no-color")
	g.Verbose, _ = cmd.Flags().GetBool("verbose")
	g.Preset, _ = cmd.Flags().GetString("preset")
	g.Plugins, _ = cmd.Flags().GetStringSlice("plugin")
	g.Stderr = cmd.ErrOrStderr()
	return g
}

// Config loads the config file and environment, then applies flag
// overrides on top. A bad --output flag is reported as such rather than as
// a config problem.
func (g GlobalOptions) Config() (*config.Config, error) {
	if err := view.ValidateFormat(g.Output); err != nil {
		return nil, err
	}
	path := g.ConfigPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
	cfg, err := config.LoadWithEnv(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if g.Preset != "" {
		cfg.Preset = g.Preset
	}
	cfg.Plugins = append(cfg.Plugins, g.Plugins...)
	if g.Output != "" {
		cfg.OutputFormat = g.Output
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w (run 'mdit init' to configure)", err)
	}
	return cfg, nil
}

// Logger returns a console logger on Stderr when Verbose is set and a
// disabled logger otherwise.
func (g GlobalOptions) Logger() zerolog.Logger {
	if !g.Verbose {
		return zerolog.Nop()
	}
	w := g.Stderr
	if w == nil {
		w = os.Stderr
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: g.NoColor}).
		Level(zerolog.DebugLevel).
		With().Timestamp().Logger()
}

// Parser builds a parser from the merged configuration.
func (g GlobalOptions) Parser(more ...markup.Option) (*markup.Parser, *config.Config, error) {
	cfg, err := g.Config()
	if err != nil {
		return nil, nil, err
	}
	p, err := cfg.NewParser(append([]markup.Option{markup.WithLogger(g.Logger())}, more...)...)
	if err != nil {
		return nil, nil, err
	}
	return p, cfg, nil
}

// Renderer returns a view renderer for the configured output format.
func (g GlobalOptions) Renderer(cfg *config.Config, out io.Writer) (*view.Renderer, error) {
	format := g.Output
	if format == "" && cfg != nil {
		format = cfg.OutputFormat
	}
	if err := view.ValidateFormat(format); err != nil {
		return nil, err
	}
	r := view.NewRenderer(view.Format(format), g.NoColor)
	r.SetWriter(out)
	return r, nil
}

// ReadInput returns the contents of path, or of stdin when path is empty
// or "-".
func ReadInput(path string, stdin io.Reader) (string, error) {
	if path == "" || path == "-" {
		if stdin == nil {
			stdin = os.Stdin
		}
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return string(data), nil
}

// InputArg returns the optional file argument of a command.
func InputArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
