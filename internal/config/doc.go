// Package config handles configuration loading and defaults.
//
// Configuration is loaded from multiple sources in priority order:
// 1. Built-in defaults
// 2. User config file (~/.obsidian-tasks/config.toml or OS-specific config directory)
// 3. Vault config file (.obsidian-tasks.toml or obsidian-tasks.toml in the vault root)
// 4. Environment variables (OBSIDIAN_TASKS_*)
// 5. CLI flags
//
// Each level overrides the previous one, so CLI flags take precedence. An
// explicit --config file replaces both file lookups.
//
// User-level config locations:
// - ~/.obsidian-tasks/config.toml (preferred)
// - Windows: %APPDATA%\obsidian-tasks\config.toml
// - macOS: ~/Library/Application Support/obsidian-tasks/config.toml
// - Linux/BSD: $XDG_CONFIG_HOME/obsidian-tasks/config.toml or ~/.config/obsidian-tasks/config.toml
package config
