package configcmd

import (
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/mdit/internal/config"
	"github.com/open-cli-collective/mdit/internal/view"
)

type showOptions struct {
	path    string
	output  string
	noColor bool
}

// NewCmdShow creates the config show command.
func NewCmdShow() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		Long:  `Display the effective mdit configuration and where each value comes from.`,
		Example: `  # Show current config
  mdit config show

  # As JSON
  mdit config show -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := &showOptions{path: configPath(cmd)}
			opts.output, _ = cmd.Flags().GetString("output")
			opts.noColor, _ = cmd.Flags().GetBool("no-color")
			return runShow(opts, cmd.OutOrStdout())
		},
	}

	return cmd
}

// setting is one configuration value and where it came from: "config",
// the overriding environment variable, or "-" for the built-in default.
type setting struct {
	Key    string `json:"key"`
	Label  string `json:"-"`
	Value  string `json:"value"`
	Source string `json:"source,omitempty"`
}

type showResult struct {
	ConfigFile string    `json:"config_file"`
	Found      bool      `json:"found"`
	Settings   []setting `json:"settings"`
}

func runShow(opts *showOptions, out io.Writer) error {
	if err := view.ValidateFormat(opts.output); err != nil {
		return err
	}
	r := view.NewRenderer(view.Format(opts.output), opts.noColor)
	r.SetWriter(out)

	// Load file config (may not exist)
	fileCfg, fileErr := config.Load(opts.path)
	if fileErr != nil {
		fileCfg = &config.Config{}
	}

	// Load full config with env overrides
	cfg, _ := config.LoadWithEnv(opts.path)

	result := showResult{ConfigFile: opts.path, Found: fileErr == nil}
	add := func(key, label, value, fileValue, envVar string) {
		s := setting{Key: key, Label: label, Value: value}
		if value != "" {
			s.Source = "config"
			switch {
			case envVar != "" && os.Getenv(envVar) != "":
				s.Source = envVar
			case fileErr != nil || fileValue != value:
				s.Source = "-"
			}
		}
		result.Settings = append(result.Settings, s)
	}

	add("preset", "Preset", cfg.PresetOrDefault(), fileCfg.PresetOrDefault(), "MDIT_PRESET")
	add("plugins", "Plugins", strings.Join(cfg.Plugins, ", "), strings.Join(fileCfg.Plugins, ", "), "MDIT_PLUGINS")
	add("xhtml", "XHTML", strconv.FormatBool(cfg.XHTML), strconv.FormatBool(fileCfg.XHTML), "MDIT_XHTML")
	add("sanitize", "Sanitize", strconv.FormatBool(cfg.Sanitize), strconv.FormatBool(fileCfg.Sanitize), "MDIT_SANITIZE")
	add("lang_prefix", "Lang prefix", langPrefix(cfg), langPrefix(fileCfg), "MDIT_LANG_PREFIX")
	add("highlight_style", "Highlight style", cfg.HighlightStyle, fileCfg.HighlightStyle, "MDIT_HIGHLIGHT_STYLE")
	add("output_format", "Output", cfg.OutputFormat, fileCfg.OutputFormat, "")

	if r.Format() == view.FormatJSON {
		return r.RenderJSON(result)
	}

	for _, s := range result.Settings {
		if s.Value == "" {
			r.RenderKeyValue(s.Label, "-")
			continue
		}
		r.RenderKeyValue(s.Label, s.Value+"  (source: "+s.Source+")")
	}
	r.RenderText("")
	r.RenderKeyValue("Config file", opts.path)
	if !result.Found {
		r.RenderText("(file not found)")
	}
	return nil
}

func langPrefix(cfg *config.Config) string {
	if cfg.LangPrefix == nil {
		return ""
	}
	return strconv.Quote(*cfg.LangPrefix)
}
