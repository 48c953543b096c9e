// Package config handles configuration loading and validation for inkpad.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Themes that both text and drawing tabs understand.
var Themes = []string{"light", "dark", "sepia", "blue", "green"}

// Config holds the application configuration.
type Config struct {
	Editor     EditorConfig     `mapstructure:"editor" yaml:"editor"`
	Drawing    DrawingConfig    `mapstructure:"drawing" yaml:"drawing"`
	Appearance AppearanceConfig `mapstructure:"appearance" yaml:"appearance"`
	Session    SessionConfig    `mapstructure:"session" yaml:"session"`
	Spell      SpellConfig      `mapstructure:"spell" yaml:"spell"`
	DataDir    string           `mapstructure:"-" yaml:"-"` // set by caller, not from config file
}

// EditorConfig holds the default character formatting of text tabs.
type EditorConfig struct {
	FontFamily string `mapstructure:"font_family" yaml:"font_family"`
	FontSize   int    `mapstructure:"font_size" yaml:"font_size"`
}

// DrawingConfig holds the fixed size and brush defaults of drawing tabs.
type DrawingConfig struct {
	Width     int `mapstructure:"width" yaml:"width"`
	Height    int `mapstructure:"height" yaml:"height"`
	BrushSize int `mapstructure:"brush_size" yaml:"brush_size"`
}

// AppearanceConfig holds the theme applied to new tabs.
type AppearanceConfig struct {
	Theme    string `mapstructure:"theme" yaml:"theme"`
	DarkMode bool   `mapstructure:"dark_mode" yaml:"dark_mode"`
}

// SessionConfig controls session persistence.
type SessionConfig struct {
	Dir              string        `mapstructure:"dir" yaml:"dir"`
	AutosaveInterval time.Duration `mapstructure:"autosave_interval" yaml:"autosave_interval"`
}

// SpellConfig controls the spell checker.
type SpellConfig struct {
	Enabled            bool   `mapstructure:"enabled" yaml:"enabled"`
	Dictionary         string `mapstructure:"dictionary" yaml:"dictionary"`
	PersonalDictionary string `mapstructure:"personal_dictionary" yaml:"personal_dictionary"`
	MaxSuggestions     int    `mapstructure:"max_suggestions" yaml:"max_suggestions"`
}

// DefaultConfig returns a Config with sensible defaults for the given data directory.
func DefaultConfig(dataDir string) Config {
	return Config{
		Editor: EditorConfig{
			FontFamily: "Arial",
			FontSize:   10,
		},
		Drawing: DrawingConfig{
			Width:     1200,
			Height:    900,
			BrushSize: 3,
		},
		Appearance: AppearanceConfig{
			Theme: "light",
		},
		Session: SessionConfig{
			Dir:              filepath.Join(dataDir, "session"),
			AutosaveInterval: 30 * time.Second,
		},
		Spell: SpellConfig{
			Enabled:            true,
			Dictionary:         "/usr/share/dict/words",
			PersonalDictionary: filepath.Join(dataDir, "personal_dict.txt"),
			MaxSuggestions:     10,
		},
		DataDir: dataDir,
	}
}

// Load reads configuration from the given path and sets the data directory.
// A missing file yields the defaults. Environment variables prefixed with
// INKPAD_ override file values (editor.font_size -> INKPAD_EDITOR_FONT_SIZE).
func Load(configPath, dataDir string) (*Config, error) {
	defaults := DefaultConfig(dataDir)

	v := viper.New()
	setDefaults(v, defaults)

	v.SetConfigType("yaml")
	v.SetEnvPrefix("INKPAD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			v.SetConfigFile(configPath)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	cfg.DataDir = dataDir

	cfg.Session.Dir = ExpandPath(cfg.Session.Dir)
	cfg.Spell.Dictionary = ExpandPath(cfg.Spell.Dictionary)
	cfg.Spell.PersonalDictionary = ExpandPath(cfg.Spell.PersonalDictionary)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("editor.font_family", d.Editor.FontFamily)
	v.SetDefault("editor.font_size", d.Editor.FontSize)
	v.SetDefault("drawing.width", d.Drawing.Width)
	v.SetDefault("drawing.height", d.Drawing.Height)
	v.SetDefault("drawing.brush_size", d.Drawing.BrushSize)
	v.SetDefault("appearance.theme", d.Appearance.Theme)
	v.SetDefault("appearance.dark_mode", d.Appearance.DarkMode)
	v.SetDefault("session.dir", d.Session.Dir)
	v.SetDefault("session.autosave_interval", d.Session.AutosaveInterval)
	v.SetDefault("spell.enabled", d.Spell.Enabled)
	v.SetDefault("spell.dictionary", d.Spell.Dictionary)
	v.SetDefault("spell.personal_dictionary", d.Spell.PersonalDictionary)
	v.SetDefault("spell.max_suggestions", d.Spell.MaxSuggestions)
}

// Save writes cfg as YAML to path, creating the parent directory if needed.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Editor.FontFamily == "" {
		return fmt.Errorf("editor.font_family cannot be empty")
	}
	if c.Editor.FontSize < 1 {
		return fmt.Errorf("editor.font_size must be at least 1")
	}
	if c.Drawing.Width < 1 || c.Drawing.Height < 1 {
		return fmt.Errorf("drawing.width and drawing.height must be positive")
	}
	if c.Drawing.BrushSize < 1 || c.Drawing.BrushSize > 50 {
		return fmt.Errorf("drawing.brush_size must be between 1 and 50")
	}
	if !IsTheme(c.Appearance.Theme) {
		return fmt.Errorf("appearance.theme %q is not one of %s", c.Appearance.Theme, strings.Join(Themes, ", "))
	}
	if c.Session.Dir == "" {
		return fmt.Errorf("session.dir cannot be empty")
	}
	if c.Session.AutosaveInterval < time.Second {
		return fmt.Errorf("session.autosave_interval must be at least 1s")
	}
	if c.Spell.MaxSuggestions < 0 {
		return fmt.Errorf("spell.max_suggestions cannot be negative")
	}
	return nil
}

// IsTheme reports whether name is a known theme.
func IsTheme(name string) bool {
	for _, t := range Themes {
		if t == name {
			return true
		}
	}
	return false
}

// ExpandPath expands a leading ~ and makes relative paths absolute.
func ExpandPath(p string) string {
	if p == "" {
		return p
	}
	if strings.HasPrefix(p, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	if !filepath.IsAbs(p) {
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
	}
	return p
}

// LogFile returns the default log file path inside the data directory.
func (c *Config) LogFile() string {
	return filepath.Join(c.DataDir, "inkpad.log")
}
