package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
		errMsg  string
	}{
		{
			name:    "empty config",
			config:  Config{},
			wantErr: false,
		},
		{
			name: "valid config",
			config: Config{
				Preset:       "gfm",
				Plugins:      []string{"footnote", "heading_anchors"},
				OutputFormat: "json",
			},
			wantErr: false,
		},
		{
			name:    "unknown preset",
			config:  Config{Preset: "markdown-extra"},
			wantErr: true,
			errMsg:  `unknown preset "markdown-extra"`,
		},
		{
			name:    "unknown plugin",
			config:  Config{Plugins: []string{"footnote", "tables"}},
			wantErr: true,
			errMsg:  `unknown plugin "tables"`,
		},
		{
			name:    "invalid output format",
			config:  Config{OutputFormat: "xml"},
			wantErr: true,
			errMsg:  "output_format must be one of",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_PresetOrDefault(t *testing.T) {
	assert.Equal(t, DefaultPreset, (&Config{}).PresetOrDefault())
	assert.Equal(t, "gfm", (&Config{Preset: "gfm"}).PresetOrDefault())
}

func TestConfig_LoadFromEnv(t *testing.T) {
	t.Run("loads all env vars", func(t *testing.T) {
		t.Setenv("MDIT_PRESET", "chat")
		t.Setenv("MDIT_PLUGINS", "footnote, sourcepos,,")
		t.Setenv("MDIT_XHTML", "true")
		t.Setenv("MDIT_SANITIZE", "1")
		t.Setenv("MDIT_LANG_PREFIX", "")
		t.Setenv("MDIT_HIGHLIGHT_STYLE", "monokai")

		cfg := &Config{}
		cfg.LoadFromEnv()

		assert.Equal(t, "chat", cfg.Preset)
		assert.Equal(t, []string{"footnote", "sourcepos"}, cfg.Plugins)
		assert.True(t, cfg.XHTML)
		assert.True(t, cfg.Sanitize)
		require.NotNil(t, cfg.LangPrefix)
		assert.Equal(t, "", *cfg.LangPrefix)
		assert.Equal(t, "monokai", cfg.HighlightStyle)
	})

	t.Run("env vars override existing values", func(t *testing.T) {
		t.Setenv("MDIT_PRESET", "zero")
		t.Setenv("MDIT_PLUGINS", "")
		t.Setenv("MDIT_XHTML", "not-a-bool")

		cfg := &Config{
			Preset:  "gfm",
			Plugins: []string{"footnote"},
			XHTML:   true,
		}
		cfg.LoadFromEnv()

		// Preset should be overridden
		assert.Equal(t, "zero", cfg.Preset)
		// Plugins and XHTML should remain (empty or invalid env var doesn't override)
		assert.Equal(t, []string{"footnote"}, cfg.Plugins)
		assert.True(t, cfg.XHTML)
	})
}

func TestDefaultConfigPath(t *testing.T) {
	t.Run("under home directory", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "")
		path := DefaultConfigPath()

		home, err := os.UserHomeDir()
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(path, home))
		assert.Contains(t, path, "mdit")
		assert.True(t, filepath.Ext(path) == ".yml" || filepath.Ext(path) == ".yaml")
	})

	t.Run("honors XDG_CONFIG_HOME", func(t *testing.T) {
		dir := t.TempDir()
		t.Setenv("XDG_CONFIG_HOME", dir)
		assert.Equal(t, filepath.Join(dir, "mdit", "config.yml"), DefaultConfigPath())
	})
}

func TestConfig_Save_and_Load(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "nested", "config.yml")

	prefix := "lang-"
	original := Config{
		Preset:         "gfm",
		Plugins:        []string{"footnote"},
		XHTML:          true,
		LangPrefix:     &prefix,
		HighlightStyle: "dracula",
		OutputFormat:   "json",
	}

	require.NoError(t, original.Save(configPath))

	loaded, err := Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, original, *loaded)
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yml")
	require.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("plugins: [unclosed"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoadWithEnv_MissingFile(t *testing.T) {
	t.Setenv("MDIT_PRESET", "gfm")

	cfg, err := LoadWithEnv(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)
	assert.Equal(t, "gfm", cfg.Preset)
}

func TestConfig_NewParser(t *testing.T) {
	prefix := ""
	cfg := &Config{Preset: "commonmark", Plugins: []string{"heading_anchors"}, LangPrefix: &prefix}

	p, err := cfg.NewParser()
	require.NoError(t, err)

	html, err := p.Render("# Hi\n\n```go\nx\n```", false)
	require.NoError(t, err)
	assert.Equal(t, "<h1 id=\"hi\">Hi</h1>\n<pre><code class=\"go\">x\n</code></pre>\n", html)
}

func TestConfig_NewParser_UnknownPlugin(t *testing.T) {
	cfg := &Config{Plugins: []string{"nope"}}
	_, err := cfg.NewParser()
	require.Error(t, err)
}
