package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Game.Radius != nil || cfg.Log.Level != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfigValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `[game]
duration = 45
radius = 3.5
targets = 4
hold-ms = 650
seed = 7
sound = false

[log]
level = "debug"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if *cfg.Game.Duration != 45 || *cfg.Game.Radius != 3.5 || *cfg.Game.Targets != 4 {
		t.Fatalf("unexpected game config: %+v", cfg.Game)
	}
	if *cfg.Game.HoldMs != 650 || *cfg.Game.Seed != 7 || *cfg.Game.Sound {
		t.Fatalf("unexpected game config: %+v", cfg.Game)
	}
	if *cfg.Log.Level != "debug" || cfg.Log.File != nil {
		t.Fatalf("unexpected log config: %+v", cfg.Log)
	}
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[game]\nradios = 3\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "game.radios") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestXDGPaths(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))

	if got := DefaultConfigPath(); got != filepath.Join(dir, "config", "tuihold", "config.toml") {
		t.Fatalf("unexpected config path: %s", got)
	}
	if got := DefaultDBPath(); got != filepath.Join(dir, "data", "tuihold", "tuihold.db") {
		t.Fatalf("unexpected db path: %s", got)
	}
	if got := DefaultLogPath(); got != filepath.Join(dir, "state", "tuihold", "tuihold.log") {
		t.Fatalf("unexpected log path: %s", got)
	}
}

func TestLoadEnv(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	content := "TUIHOLD_DB=/tmp/from-dotenv.db\nTUIHOLD_LOG_LEVEL=warn\n"
	if err := os.WriteFile(envFile, []byte(content), 0o644); err != nil {
		t.Fatalf("write env: %v", err)
	}
	t.Setenv(EnvDBPath, "/tmp/from-env.db")
	t.Setenv(EnvLogLevel, "")
	t.Setenv(EnvLogFile, "")
	// godotenv.Load does not override set variables; clear the level so the file wins.
	if err := os.Unsetenv(EnvLogLevel); err != nil {
		t.Fatalf("unsetenv: %v", err)
	}

	env, err := LoadEnv(envFile)
	if err != nil {
		t.Fatalf("load env: %v", err)
	}
	if env.DBPath == nil || *env.DBPath != "/tmp/from-env.db" {
		t.Fatalf("expected process env to win, got %v", env.DBPath)
	}
	if env.LogLevel == nil || *env.LogLevel != "warn" {
		t.Fatalf("expected dotenv level, got %v", env.LogLevel)
	}
	if env.LogFile != nil {
		t.Fatalf("expected no log file override, got %v", *env.LogFile)
	}

	if _, err := LoadEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("missing dotenv must not fail: %v", err)
	}
}
