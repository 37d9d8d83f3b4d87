package core

import (
	"os"
	"path/filepath"
	"runtime"
)

// GetAzaleaConfigDir returns the folder the user-level config file is read from
func GetAzaleaConfigDir() (string, error) {
	if //goland:noinspection GoBoolExpressions
	runtime.GOOS == "linux" {
		configHome := os.Getenv("XDG_CONFIG_HOME")
		if configHome != "" {
			return filepath.Join(configHome, "azalea"), nil
		}
	}
	userConfigDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(userConfigDir, "azalea"), nil
}
