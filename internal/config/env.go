package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// Environment variables read by LoadEnv.
const (
	EnvDBPath   = "TUIHOLD_DB"
	EnvLogLevel = "TUIHOLD_LOG_LEVEL"
	EnvLogFile  = "TUIHOLD_LOG_FILE"
)

// Env holds overrides taken from the environment. Unset values are nil.
type Env struct {
	DBPath   *string
	LogLevel *string
	LogFile  *string
}

// LoadEnv loads dotenv files (a missing file is not an error) without
// overriding variables that are already set, then reads the overrides.
func LoadEnv(files ...string) (Env, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Env{}, err
		}
	}
	return Env{
		DBPath:   lookup(EnvDBPath),
		LogLevel: lookup(EnvLogLevel),
		LogFile:  lookup(EnvLogFile),
	}, nil
}

func lookup(key string) *string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return &v
	}
	return nil
}
