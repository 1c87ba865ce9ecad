package infra

import (
	"os"
	"path/filepath"
	"runtime"
)

const (
	AppName = "tradelink"
)

// GetWorkspaceDir returns the root directory for all runtime data.
// A local "_workspace" directory wins if present (portable/dev mode),
// otherwise the OS-standard data directory is used.
func GetWorkspaceDir() string {
	localDir := "_workspace"
	if _, err := os.Stat(localDir); err == nil {
		return localDir
	}

	var baseDir string
	switch runtime.GOOS {
	case "windows":
		baseDir = os.Getenv("APPDATA")
		if baseDir == "" {
			baseDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, _ := os.UserHomeDir()
		baseDir = filepath.Join(home, "Library", "Application Support")
	case "linux":
		baseDir = os.Getenv("XDG_DATA_HOME")
		if baseDir == "" {
			home, _ := os.UserHomeDir()
			baseDir = filepath.Join(home, ".local", "share")
		}
	default:
		return localDir
	}

	return filepath.Join(baseDir, AppName)
}

// EnsureDir creates the directory if it doesn't exist (0755).
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// ConfigKeyDBPath is the SQLite file holding the cached gateway config keys.
func ConfigKeyDBPath(workDir string) string {
	return filepath.Join(workDir, "data", "gateway.db")
}

// SnapshotDir holds the status snapshots written by the monitor.
func SnapshotDir(workDir string) string {
	return filepath.Join(workDir, "snapshots")
}

// ResolveConfigPath finds config.yaml.
// Priority: TRADELINK_CONFIG, ./configs, OS config dir.
func ResolveConfigPath() string {
	if p := os.Getenv("TRADELINK_CONFIG"); p != "" {
		return p
	}

	defaultPath := filepath.Join("configs", "config.yaml")
	if _, err := os.Stat(defaultPath); err == nil {
		return defaultPath
	}

	configRoot, err := os.UserConfigDir()
	if err == nil {
		osPath := filepath.Join(configRoot, AppName, "config.yaml")
		if _, err := os.Stat(osPath); err == nil {
			return osPath
		}
	}

	// Let LoadConfig report the missing file
	return defaultPath
}
