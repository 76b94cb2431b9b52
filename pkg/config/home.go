package config

import (
	"os"
	"path/filepath"
	"sync"
)

const envHome = "OPTICS_HOME"

var (
	homeOnce sync.Once
	homeDir  string
)

// GetHome returns the optics home directory.
//
// Resolution order:
//  1. $OPTICS_HOME environment variable
//  2. ~/.optics
//  3. Current working directory (development fallback)
func GetHome() string {
	homeOnce.Do(func() {
		homeDir = resolveHome()
	})
	return homeDir
}

// GlobalConfigPath returns <home>/global_config.yaml.
func GlobalConfigPath() string {
	return filepath.Join(GetHome(), "global_config.yaml")
}

func resolveHome() string {
	if env := os.Getenv(envHome); env != "" {
		return env
	}

	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".optics")
	}

	if cwd, err := os.Getwd(); err == nil {
		return cwd
	}
	return "."
}

// resetHome clears the cached home directory. Test helper.
func resetHome() {
	homeOnce = sync.Once{}
	homeDir = ""
}
