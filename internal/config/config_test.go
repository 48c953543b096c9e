package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	dataDir := t.TempDir()

	cfg, err := Load(filepath.Join(dataDir, "nope.yaml"), dataDir)
	require.NoError(t, err)

	assert.Equal(t, "Arial", cfg.Editor.FontFamily)
	assert.Equal(t, 10, cfg.Editor.FontSize)
	assert.Equal(t, 1200, cfg.Drawing.Width)
	assert.Equal(t, 900, cfg.Drawing.Height)
	assert.Equal(t, 30*time.Second, cfg.Session.AutosaveInterval)
	assert.Equal(t, filepath.Join(dataDir, "session"), cfg.Session.Dir)
	assert.Equal(t, dataDir, cfg.DataDir)
	assert.Equal(t, filepath.Join(dataDir, "inkpad.log"), cfg.LogFile())
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dataDir := t.TempDir()
	path := filepath.Join(dataDir, "config.yaml")
	content := `
editor:
  font_family: Courier
drawing:
  width: 640
  height: 480
appearance:
  theme: sepia
session:
  autosave_interval: 2m
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path, dataDir)
	require.NoError(t, err)

	assert.Equal(t, "Courier", cfg.Editor.FontFamily)
	assert.Equal(t, 10, cfg.Editor.FontSize, "unset keys keep defaults")
	assert.Equal(t, 640, cfg.Drawing.Width)
	assert.Equal(t, "sepia", cfg.Appearance.Theme)
	assert.Equal(t, 2*time.Minute, cfg.Session.AutosaveInterval)
}

func TestLoad_EnvOverride(t *testing.T) {
	dataDir := t.TempDir()
	t.Setenv("INKPAD_DRAWING_BRUSH_SIZE", "12")

	cfg, err := Load("", dataDir)
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Drawing.BrushSize)
}

func TestLoad_InvalidTheme(t *testing.T) {
	dataDir := t.TempDir()
	path := filepath.Join(dataDir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("appearance:\n  theme: neon\n"), 0o644))

	_, err := Load(path, dataDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "appearance.theme")
}

func TestSave_RoundTrip(t *testing.T) {
	dataDir := t.TempDir()
	path := filepath.Join(dataDir, "nested", "config.yaml")

	cfg := DefaultConfig(dataDir)
	cfg.Drawing.BrushSize = 7
	cfg.Appearance.Theme = "blue"
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path, dataDir)
	require.NoError(t, err)
	assert.Equal(t, 7, loaded.Drawing.BrushSize)
	assert.Equal(t, "blue", loaded.Appearance.Theme)
	assert.Equal(t, cfg.Session.AutosaveInterval, loaded.Session.AutosaveInterval)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{name: "empty font", mutate: func(c *Config) { c.Editor.FontFamily = "" }, wantErr: "font_family"},
		{name: "zero font size", mutate: func(c *Config) { c.Editor.FontSize = 0 }, wantErr: "font_size"},
		{name: "zero width", mutate: func(c *Config) { c.Drawing.Width = 0 }, wantErr: "drawing.width"},
		{name: "brush too large", mutate: func(c *Config) { c.Drawing.BrushSize = 51 }, wantErr: "brush_size"},
		{name: "unknown theme", mutate: func(c *Config) { c.Appearance.Theme = "neon" }, wantErr: "theme"},
		{name: "fast autosave", mutate: func(c *Config) { c.Session.AutosaveInterval = time.Millisecond }, wantErr: "autosave_interval"},
		{name: "negative suggestions", mutate: func(c *Config) { c.Spell.MaxSuggestions = -1 }, wantErr: "max_suggestions"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig("/tmp/inkpad")
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, "", ExpandPath(""))
	assert.Equal(t, filepath.Join(home, "notes"), ExpandPath("~/notes"))
	assert.True(t, filepath.IsAbs(ExpandPath("relative/dir")))
}
