package config

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	SourceDefault    ConfigSource = "default"
	SourceUserFile   ConfigSource = "user file"
	SourceVaultFile  ConfigSource = "vault file"
	SourceConfigFile ConfigSource = "config file"
	SourceEnv        ConfigSource = "environment"
	SourceFlag       ConfigSource = "flag"
)

// ConfigWithSources holds configuration along with source information for each field.
type ConfigWithSources struct {
	Config  *Config
	Sources map[string]ConfigSource
	// Files lists the config files that were read, in load order.
	Files []string
	// Unknown lists keys present in a config file that no field consumed.
	Unknown []string
}

// Default values.
const (
	DefaultDoneStatus = "done"
	DefaultArchiveDir = "Archive"
	DefaultIndent     = "  "
	DefaultLogLevel   = "warn"
	DefaultLogFormat  = "text"
)

// Config holds the full configuration for obsidian-tasks.
type Config struct {
	// Scanning
	Extensions  []string `toml:"extensions"`
	ScanArchive bool     `toml:"scan_archive"`
	ArchiveDir  string   `toml:"archive_dir"`

	// Parsing
	DoneStatus string `toml:"done_status"`
	SchemaFile string `toml:"schema_file"`

	// Output
	Indent  string `toml:"indent"`
	Compact bool   `toml:"compact"`

	// Logging configuration
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`
	LogCaller     bool   `toml:"log_caller"`

	// Vault root (from --path, never from a file)
	VaultPath string `toml:"-"`
}
