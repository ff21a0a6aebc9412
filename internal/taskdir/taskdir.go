// Package taskdir provides constants and utilities for the .taskpad directory structure.
package taskdir

import "path/filepath"

const (
	// Dir is the name of the taskpad state directory.
	Dir = ".taskpad"

	// DefaultConfigFile is the default config file name (inside .taskpad
	// in the user's home directory).
	DefaultConfigFile = "taskpad.toml"
)

// DirPath returns the full path to the .taskpad directory within a work directory.
func DirPath(workDir string) string {
	if workDir == "." || workDir == "" {
		return Dir
	}
	return filepath.Join(workDir, Dir)
}

// ConfigPath returns the full path to the config file within a work directory.
func ConfigPath(workDir string) string {
	return filepath.Join(DirPath(workDir), DefaultConfigFile)
}
