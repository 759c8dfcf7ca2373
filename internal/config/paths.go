package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// appDir is the name of the per-user directories mee keeps its files in.
const appDir = "mathexpr"

// Environment variables that override directory locations.
const (
	EnvConfigDir = "MEE_CONFIG_DIR"
	EnvDataDir   = "MEE_DATA_DIR"
)

// platformDir holds the platform lookups so tests can replace them.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the platform default configuration directory:
// $XDG_CONFIG_HOME/mathexpr or ~/.config/mathexpr on Linux, and
// os.UserConfigDir()/mathexpr elsewhere.
func DefaultConfigDir() (string, error) {
	if runtime.GOOS == "linux" {
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, appDir), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", appDir), nil
	}
	dir, err := platformDir.userConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appDir), nil
}

// DefaultDataDir returns the platform default data directory, which holds the
// evaluation history database and the REPL line history.
func DefaultDataDir() (string, error) {
	if env := os.Getenv(EnvDataDir); env != "" {
		return filepath.Abs(env)
	}
	if runtime.GOOS == "linux" {
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			return filepath.Join(xdg, appDir), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".local", "share", appDir), nil
	}
	return DefaultConfigDir()
}

// ResolveConfigDir picks the configuration directory: flag if non-empty, then
// $MEE_CONFIG_DIR, then DefaultConfigDir.
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultConfigDir()
}
