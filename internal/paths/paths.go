// Package paths resolves the frontdesk configuration and data directories.
// Each directory follows the chain flag > config value > environment >
// platform default.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/caarlos0/env/v11"
)

// appName is the directory name used under the platform roots.
const appName = "frontdesk"

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "FRONTDESK_CONFIG_DIR"
	EnvDataDir   = "FRONTDESK_DATA_DIR"
)

// Env holds the directory overrides read from the environment.
type Env struct {
	ConfigDir string `env:"FRONTDESK_CONFIG_DIR"`
	DataDir   string `env:"FRONTDESK_DATA_DIR"`
}

// LoadEnv parses the directory overrides.
func LoadEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, fmt.Errorf("parse environment: %w", err)
	}
	return e, nil
}

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the platform-specific default configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/frontdesk (fallback ~/.config/frontdesk)
// macOS:   ~/Library/Application Support/frontdesk
// Windows: %APPDATA%/frontdesk
func DefaultConfigDir() (string, error) {
	return platformRoot("XDG_CONFIG_HOME", ".config")
}

// DefaultDataDir returns the platform-specific default data directory, where
// recordings are kept.
//
// Linux:   $XDG_DATA_HOME/frontdesk (fallback ~/.local/share/frontdesk)
// macOS:   ~/Library/Application Support/frontdesk
// Windows: %APPDATA%/frontdesk
func DefaultDataDir() (string, error) {
	return platformRoot("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

func platformRoot(xdgVar, homeRel string) (string, error) {
	if runtime.GOOS == "linux" {
		if xdg := os.Getenv(xdgVar); xdg != "" {
			return filepath.Join(xdg, appName), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, homeRel, appName), nil
	}
	// macOS and Windows use os.UserConfigDir for both roots.
	dir, err := platformDir.userConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName), nil
}

// ResolveConfigDir returns the configuration directory following the
// precedence chain: flag > FRONTDESK_CONFIG_DIR > DefaultConfigDir().
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	e, err := LoadEnv()
	if err != nil {
		return "", err
	}
	if e.ConfigDir != "" {
		return filepath.Abs(e.ConfigDir)
	}
	return DefaultConfigDir()
}

// ResolveDataDir returns the data directory following the precedence chain:
// flag > configYAMLValue > FRONTDESK_DATA_DIR > DefaultDataDir().
func ResolveDataDir(flag, configYAMLValue string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if configYAMLValue != "" {
		return filepath.Abs(configYAMLValue)
	}
	e, err := LoadEnv()
	if err != nil {
		return "", err
	}
	if e.DataDir != "" {
		return filepath.Abs(e.DataDir)
	}
	return DefaultDataDir()
}

// ResolveIn returns path unchanged when it is absolute, otherwise joined
// onto dir.
func ResolveIn(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}
