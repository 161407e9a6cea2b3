package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// ErrInvalid is returned by Validate for settings the editor cannot run with.
var ErrInvalid = errors.New("invalid config")

// Load loads configuration with priority: defaults < file < flags.
func Load() (*Config, error) {
	cfg := Default()

	// Explicit path takes priority over the standard locations
	configPath := ConfigPath()
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings that would otherwise fail deep inside the
// editor.
func (c *Config) Validate() error {
	if c.Terrain.GATFile == "" && (c.Terrain.Width <= 0 || c.Terrain.Depth <= 0) {
		return fmt.Errorf("%w: terrain size %dx%d", ErrInvalid, c.Terrain.Width, c.Terrain.Depth)
	}
	if c.Brush.Radius < 0 {
		return fmt.Errorf("%w: negative brush radius %v", ErrInvalid, c.Brush.Radius)
	}
	if c.Editor.UndoDepth < 0 {
		return fmt.Errorf("%w: negative undo depth %d", ErrInvalid, c.Editor.UndoDepth)
	}
	return nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		"./editor.yaml",
		filepath.Join(ConfigDir(), "editor.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "MidgardEditor")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "MidgardEditor")
	default: // Linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "midgard-editor")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "midgard-editor")
	}
}

// loadFromFile loads config from a YAML file, merging with existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}
