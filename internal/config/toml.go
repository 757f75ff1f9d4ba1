// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Game GameFileConfig `toml:"game"`
	Log  LogFileConfig  `toml:"log"`
}

// GameFileConfig maps session settings.
type GameFileConfig struct {
	Duration *int     `toml:"duration"`
	Radius   *float64 `toml:"radius"`
	Targets  *int     `toml:"targets"`
	HoldMs   *float64 `toml:"hold-ms"`
	Seed     *int64   `toml:"seed"`
	Sound    *bool    `toml:"sound"`
}

// LogFileConfig maps logging settings.
type LogFileConfig struct {
	Level *string `toml:"level"`
	File  *string `toml:"file"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
