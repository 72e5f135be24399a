package config

import (
	"flag"
)

// Flags holds the global command-line options. The same Flags value may be
// registered on several flag sets so options are accepted both before and
// after the command name.
type Flags struct {
	Path       string
	ConfigFile string
	LogLevel   string
	LogFormat  string
	Compact    bool
	Archive    bool

	set map[string]bool
}

// RegisterFlags defines the global options on fs, bound to f.
func RegisterFlags(fs *flag.FlagSet, f *Flags) {
	fs.StringVar(&f.Path, "path", f.Path, "Vault root directory (required)")
	fs.StringVar(&f.ConfigFile, "config", f.ConfigFile, "Config file to use instead of the user and vault files")
	fs.StringVar(&f.LogLevel, "log-level", f.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&f.LogFormat, "log-format", f.LogFormat, "Log format (text, json, logfmt)")
	fs.BoolVar(&f.Compact, "compact", f.Compact, "Print JSON on a single line")
	fs.BoolVar(&f.Archive, "archive", f.Archive, "Also scan the archive directory next to the vault")
}

// Track records which flags were explicitly set on a parsed flag set.
func (f *Flags) Track(fs *flag.FlagSet) {
	if f.set == nil {
		f.set = make(map[string]bool)
	}
	fs.Visit(func(fl *flag.Flag) {
		f.set[fl.Name] = true
	})
}

// IsSet reports whether the named flag was given on the command line.
func (f *Flags) IsSet(name string) bool {
	return f != nil && f.set[name]
}

// applyFlags copies explicitly set flags onto cfg, the last layer.
func applyFlags(cfg *Config, f *Flags, sources map[string]ConfigSource) {
	if f == nil {
		return
	}
	cfg.VaultPath = f.Path

	// Map flag names to source field names
	flagToSource := map[string]string{
		"log-level":  "log_level",
		"log-format": "log_format",
		"compact":    "compact",
		"archive":    "scan_archive",
	}
	for name, field := range flagToSource {
		if f.IsSet(name) && sources != nil {
			sources[field] = SourceFlag
		}
	}

	if f.IsSet("log-level") {
		cfg.LogLevel = f.LogLevel
	}
	if f.IsSet("log-format") {
		cfg.LogFormat = f.LogFormat
	}
	if f.IsSet("compact") {
		cfg.Compact = f.Compact
	}
	if f.IsSet("archive") {
		cfg.ScanArchive = f.Archive
	}
}
