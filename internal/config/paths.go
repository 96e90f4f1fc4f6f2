// Package config provides configuration management for the Rescale browser.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// ConfigDir is the directory name under the user config directory.
const ConfigDir = "rescale"

func getConfigDir() string {
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "Rescale", "Browse")
		}
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, ConfigDir)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", ConfigDir)
	}
	return ""
}

// GetDefaultConfigPath returns the path of config.csv.
func GetDefaultConfigPath() string {
	dir := getConfigDir()
	if dir == "" {
		return "config.csv"
	}
	return filepath.Join(dir, "config.csv")
}

// GetDefaultTokenPath returns the path of the default token file, or "" when no
// config directory can be determined.
func GetDefaultTokenPath() string {
	dir := getConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "token")
}

// EnsureConfigDir creates the config directory with owner-only permissions.
func EnsureConfigDir() error {
	dir := getConfigDir()
	if dir == "" {
		return fmt.Errorf("could not determine config directory")
	}
	return os.MkdirAll(dir, 0700)
}
