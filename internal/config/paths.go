package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/nibzard/taskpad/internal/taskdir"
)

// projectConfigNames are tried in order in the project root.
var projectConfigNames = []string{taskdir.DefaultConfigFile, "." + taskdir.DefaultConfigFile}

// findProjectConfigFile returns the absolute path of the project config
// file in root, or "".
func findProjectConfigFile(root string) string {
	for _, name := range projectConfigNames {
		if path := filepath.Join(root, name); isFile(path) {
			return path
		}
	}
	return ""
}

// findUserConfigFile prefers ~/.taskpad/taskpad.toml and falls back to
// <os config dir>/taskpad/taskpad.toml.
func findUserConfigFile() string {
	for _, path := range userConfigCandidates() {
		if isFile(path) {
			return path
		}
	}
	return ""
}

func userConfigCandidates() []string {
	var paths []string
	home, err := os.UserHomeDir()
	if err == nil {
		paths = append(paths, taskdir.ConfigPath(home))
	}

	var dir string
	switch runtime.GOOS {
	case "windows":
		dir = os.Getenv("APPDATA")
	case "darwin":
		if home != "" {
			dir = filepath.Join(home, "Library", "Application Support")
		}
	default:
		dir = os.Getenv("XDG_CONFIG_HOME")
		if dir == "" && home != "" {
			dir = filepath.Join(home, ".config")
		}
	}
	if dir != "" {
		paths = append(paths, filepath.Join(dir, "taskpad", taskdir.DefaultConfigFile))
	}
	return paths
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// expandPath expands $VARS and a leading ~ in data and log directories.
func expandPath(p string) string {
	p = os.ExpandEnv(p)
	if p != "~" && !strings.HasPrefix(p, "~/") && !strings.HasPrefix(p, `~`+string(filepath.Separator)) {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[1:])
}
