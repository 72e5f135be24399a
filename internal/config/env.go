package config

import (
	"os"
	"strings"

	"github.com/nibzard/obsidian-tasks/internal/utils"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "OBSIDIAN_TASKS_"

// loadFromEnv overrides config from environment variables and records the
// source of each value that was set.
func loadFromEnv(cfg *Config, sources map[string]ConfigSource) {
	set := func(field string) {
		if sources != nil {
			sources[field] = SourceEnv
		}
	}

	if v := os.Getenv(EnvPrefix + "EXTENSIONS"); v != "" {
		cfg.Extensions = utils.SplitAndTrim(v, ",")
		set("extensions")
	}
	if v := os.Getenv(EnvPrefix + "DONE_STATUS"); v != "" {
		cfg.DoneStatus = v
		set("done_status")
	}
	if v := os.Getenv(EnvPrefix + "SCAN_ARCHIVE"); v != "" {
		cfg.ScanArchive = boolFromString(v)
		set("scan_archive")
	}
	if v := os.Getenv(EnvPrefix + "ARCHIVE_DIR"); v != "" {
		cfg.ArchiveDir = v
		set("archive_dir")
	}
	if v := os.Getenv(EnvPrefix + "SCHEMA"); v != "" {
		cfg.SchemaFile = v
		set("schema_file")
	}
	if v := os.Getenv(EnvPrefix + "COMPACT"); v != "" {
		cfg.Compact = boolFromString(v)
		set("compact")
	}

	// Logging configuration
	if v := os.Getenv(EnvPrefix + "LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
		set("log_level")
	}
	if v := os.Getenv(EnvPrefix + "LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
		set("log_format")
	}
	if v := os.Getenv(EnvPrefix + "LOG_TIMESTAMPS"); v != "" {
		cfg.LogTimestamps = boolFromString(v)
		set("log_timestamps")
	}
	if v := os.Getenv(EnvPrefix + "LOG_CALLER"); v != "" {
		cfg.LogCaller = boolFromString(v)
		set("log_caller")
	}
}

func boolFromString(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "1" || s == "true" || s == "yes" || s == "on"
}
