package config

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/nibzard/obsidian-tasks/internal/vault"
)

// userConfigDirName is the directory holding the user config file.
const userConfigDirName = "obsidian-tasks"

// configFileName is the user config file name.
const configFileName = "config.toml"

// vaultConfigNames are looked up in the vault root, first match wins.
var vaultConfigNames = []string{".obsidian-tasks.toml", "obsidian-tasks.toml"}

// findVaultConfigFile looks for a config file in the vault root.
func findVaultConfigFile(root string) string {
	if root == "" {
		return ""
	}
	for _, name := range vaultConfigNames {
		p := filepath.Join(root, name)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

// findUserConfigFile looks for a user-level config file.
// Checks ~/.obsidian-tasks/config.toml first, then falls back to OS-specific
// config directories.
func findUserConfigFile() string {
	home, err := os.UserHomeDir()
	if err == nil {
		userConfigPath := filepath.Join(home, "."+userConfigDirName, configFileName)
		if _, err := os.Stat(userConfigPath); err == nil {
			return userConfigPath
		}
	}

	if cfgDir := osUserConfigDir(); cfgDir != "" {
		userConfigPath := filepath.Join(cfgDir, userConfigDirName, configFileName)
		if _, err := os.Stat(userConfigPath); err == nil {
			return userConfigPath
		}
	}

	return ""
}

// osUserConfigDir returns the OS-specific user config directory.
// Returns empty string if the directory cannot be determined.
func osUserConfigDir() string {
	switch runtime.GOOS {
	case "windows":
		if appdata := os.Getenv("APPDATA"); appdata != "" {
			return appdata
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, "Library", "Application Support")
		}
	case "linux", "openbsd", "freebsd", "netbsd":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return xdg
		}
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, ".config")
		}
	}
	return ""
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	cfg.Extensions = vault.DefaultExtensions()
	cfg.DoneStatus = DefaultDoneStatus
	cfg.ArchiveDir = DefaultArchiveDir
	cfg.ScanArchive = false
	cfg.Indent = DefaultIndent
	cfg.LogLevel = DefaultLogLevel
	cfg.LogFormat = DefaultLogFormat
}

// configFields returns the list of configurable field names for source tracking.
func configFields() []string {
	return []string{
		"extensions",
		"done_status",
		"scan_archive",
		"archive_dir",
		"schema_file",
		"indent",
		"compact",
		"log_level",
		"log_format",
		"log_timestamps",
		"log_caller",
	}
}

// Fields returns the tracked field names in display order.
func Fields() []string {
	return configFields()
}
