// Package config loads spice settings from viper: the database location and
// the recurring.* detection parameters.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath expands ~ and $VAR references in a configured path such as
// database.path, whose default lives under $HOME.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	// First expand tilde if present
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = home
		}
	}

	// Then expand environment variables
	return os.ExpandEnv(path)
}
