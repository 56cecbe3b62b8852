// Package config provides configuration management for mdit.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/open-cli-collective/mdit/pkg/markup"
	"github.com/open-cli-collective/mdit/pkg/mdit/plugins/highlight"
)

// DefaultPreset is used when neither the file nor the environment names one.
const DefaultPreset = markup.PresetCommonMark

// Config holds the mdit configuration.
type Config struct {
	Preset         string   `yaml:"preset,omitempty"`
	Plugins        []string `yaml:"plugins,omitempty"`
	XHTML          bool     `yaml:"xhtml,omitempty"`
	Sanitize       bool     `yaml:"sanitize,omitempty"`
	LangPrefix     *string  `yaml:"lang_prefix,omitempty"`
	HighlightStyle string   `yaml:"highlight_style,omitempty"`
	OutputFormat   string   `yaml:"output_format,omitempty"`
}

// Validate checks that the preset and every plugin name are known.
func (c *Config) Validate() error {
	if c.Preset != "" && !slices.Contains(markup.ListPresets(), c.Preset) {
		return fmt.Errorf("unknown preset %q (valid: %s)", c.Preset, strings.Join(markup.ListPresets(), ", "))
	}
	known := markup.ListPlugins()
	for _, name := range c.Plugins {
		if !slices.Contains(known, name) {
			return fmt.Errorf("unknown plugin %q (run 'mdit plugins' to list them)", name)
		}
	}
	switch c.OutputFormat {
	case "", "table", "json", "plain":
	default:
		return errors.New("output_format must be one of table, json, plain")
	}
	return nil
}

// PresetOrDefault returns the configured preset or DefaultPreset.
func (c *Config) PresetOrDefault() string {
	if c.Preset == "" {
		return DefaultPreset
	}
	return c.Preset
}

// Options translates the configuration into parser options.
func (c *Config) Options() []markup.Option {
	opts := []markup.Option{markup.WithSanitize(c.Sanitize)}
	if c.LangPrefix != nil {
		opts = append(opts, markup.WithLangPrefix(*c.LangPrefix))
	}
	if c.HighlightStyle != "" {
		hl := highlight.DefaultConfig()
		hl.Style = c.HighlightStyle
		hl.Classes = false
		opts = append(opts, markup.WithHighlight(hl))
	}
	return opts
}

// NewParser builds a parser for the configured preset with the configured
// plugins enabled on top. Options in more are applied last.
func (c *Config) NewParser(more ...markup.Option) (*markup.Parser, error) {
	p, err := markup.New(c.PresetOrDefault(), append(c.Options(), more...)...)
	if err != nil {
		return nil, err
	}
	if err := p.EnableMany(c.Plugins...); err != nil {
		return nil, err
	}
	return p, nil
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables override existing values only if set and non-empty,
// except MDIT_LANG_PREFIX, which may be set to the empty string.
func (c *Config) LoadFromEnv() {
	if preset := os.Getenv("MDIT_PRESET"); preset != "" {
		c.Preset = preset
	}
	if plugins := os.Getenv("MDIT_PLUGINS"); plugins != "" {
		c.Plugins = splitList(plugins)
	}
	if v, ok := envBool("MDIT_XHTML"); ok {
		c.XHTML = v
	}
	if v, ok := envBool("MDIT_SANITIZE"); ok {
		c.Sanitize = v
	}
	if prefix, ok := os.LookupEnv("MDIT_LANG_PREFIX"); ok {
		c.LangPrefix = &prefix
	}
	if style := os.Getenv("MDIT_HIGHLIGHT_STYLE"); style != "" {
		c.HighlightStyle = style
	}
}

func envBool(name string) (bool, bool) {
	raw := os.Getenv(name)
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// EnvVars lists the environment variables LoadFromEnv reads.
func EnvVars() []string {
	return []string{"MDIT_PRESET", "MDIT_PLUGINS", "MDIT_XHTML", "MDIT_SANITIZE", "MDIT_LANG_PREFIX", "MDIT_HIGHLIGHT_STYLE"}
}

// DefaultConfigPath returns the default configuration file path.
func DefaultConfigPath() string {
	// Try XDG config directory first
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "mdit", "config.yml")
	}

	// Fall back to ~/.config/mdit/config.yml
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".mdit", "config.yml")
	}

	return filepath.Join(home, ".config", "mdit", "config.yml")
}

// Save writes the configuration to the specified path.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Load reads the configuration from the specified path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}

// LoadWithEnv loads configuration from file and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		// If file doesn't exist, start with empty config
		cfg = &Config{}
	}

	cfg.LoadFromEnv()
	return cfg, nil
}
