package main

import (
	"os"
	"path/filepath"

	"inkpad/internal/config"
)

// Flags holds the global command line options.
type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string
	DataDir    string
}

// logPath is the --log-file flag, or the log file inside the data directory.
func (f Flags) logPath() string {
	if f.LogFile != "" {
		return f.LogFile
	}
	cfg := config.DefaultConfig(f.DataDir)
	return cfg.LogFile()
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "inkpad", "config.yaml")
}

// DefaultDataDir returns the default data directory using XDG_DATA_HOME.
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "inkpad")
}

// withExt appends ext to path when it has no extension.
func withExt(path, ext string) string {
	if filepath.Ext(path) == "" {
		return path + ext
	}
	return path
}
