// Package config handles editor configuration loading and management.
package config

import (
	"github.com/Faultbox/midgard-editor/internal/brush"
)

// Config holds all editor settings.
type Config struct {
	Terrain TerrainConfig `yaml:"terrain"`
	Brush   brush.State   `yaml:"brush"`
	Tools   ToolsConfig   `yaml:"tools"`
	Editor  EditorConfig  `yaml:"editor"`
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
}

// TerrainConfig describes the grid created when no GAT file is loaded, and
// the scales applied to every grid.
type TerrainConfig struct {
	Width      int        `yaml:"width"`
	Depth      int        `yaml:"depth"`
	WorldScale [3]float32 `yaml:"world_scale"`
	LocalScale [3]float32 `yaml:"local_scale"`
	GATFile    string     `yaml:"gat_file"` // Loaded instead of a flat grid when set
}

// ToolsConfig holds the starting parameters of each tool.
type ToolsConfig struct {
	Raise RaiseConfig `yaml:"raise"`
	Level LevelConfig `yaml:"level"`
	Rough RoughConfig `yaml:"rough"`
	Slope SlopeConfig `yaml:"slope"`
}

// RaiseConfig holds raise/lower settings.
type RaiseConfig struct {
	Invert bool `yaml:"invert"`
}

// LevelConfig holds level settings.
type LevelConfig struct {
	DesiredHeight float32 `yaml:"desired_height"`
	Precision     bool    `yaml:"precision"`
	SnapFactor    float32 `yaml:"snap_factor"`
	MinStep       float32 `yaml:"min_step"`
}

// RoughConfig holds roughen settings.
type RoughConfig struct {
	Roughness  float32 `yaml:"roughness"`
	Frequency  float32 `yaml:"frequency"`
	Lacunarity float32 `yaml:"lacunarity"`
	Octaves    int     `yaml:"octaves"`
	Scale      float32 `yaml:"scale"`
	Seed       int64   `yaml:"seed"`
}

// SlopeConfig holds slope settings.
type SlopeConfig struct {
	Precision  bool    `yaml:"precision"`
	Lock       bool    `yaml:"lock"`
	SnapFactor float32 `yaml:"snap_factor"`
	MinStep    float32 `yaml:"min_step"`
}

// EditorConfig holds gesture and history settings.
type EditorConfig struct {
	UndoDepth        int  `yaml:"undo_depth"`
	RollbackOnCancel bool `yaml:"rollback_on_cancel"`
	SkipEmptyCommits bool `yaml:"skip_empty_commits"`
	QueueSize        int  `yaml:"queue_size"` // Background worker buffer
}

// ServerConfig holds websocket bridge settings.
type ServerConfig struct {
	Addr string `yaml:"addr"`
	Path string `yaml:"path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Terrain: TerrainConfig{
			Width:      129,
			Depth:      129,
			WorldScale: [3]float32{1, 1, 1},
			LocalScale: [3]float32{1, 1, 1},
		},
		Brush: brush.State{
			Radius: 5,
			Power:  1,
			Color:  0xffcc00ff,
		},
		Tools: ToolsConfig{
			Level: LevelConfig{
				SnapFactor: 0.1,
				MinStep:    0.001,
			},
			Rough: RoughConfig{
				Roughness:  1.2,
				Frequency:  0.2,
				Lacunarity: 2.12,
				Octaves:    8,
				Scale:      1,
			},
			Slope: SlopeConfig{
				Lock:       true,
				SnapFactor: 0.1,
				MinStep:    0.001,
			},
		},
		Editor: EditorConfig{
			UndoDepth:        100,
			RollbackOnCancel: true,
			SkipEmptyCommits: true,
			QueueSize:        64,
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:7070",
			Path: "/ws",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
