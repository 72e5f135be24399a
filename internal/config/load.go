package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/nibzard/obsidian-tasks/internal/logging"
	"github.com/nibzard/obsidian-tasks/internal/utils"
)

// LoadWithSources loads configuration and tracks the source of each value.
// Returns ConfigWithSources containing the config and a map of field names to their sources.
func LoadWithSources(flags *Flags) (*ConfigWithSources, error) {
	sources := make(map[string]ConfigSource)
	cws := &ConfigWithSources{Sources: sources}
	cfg := &Config{}

	// 1. Set defaults (all fields start with default source)
	setDefaults(cfg)
	for _, field := range configFields() {
		sources[field] = SourceDefault
	}

	vault := ""
	explicit := ""
	if flags != nil {
		vault = expandPath(flags.Path)
		explicit = flags.ConfigFile
	}

	if explicit != "" {
		// An explicit file replaces discovery.
		path := expandPath(explicit)
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
		if err := loadConfigFile(cws, cfg, path, SourceConfigFile); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	} else {
		// 2. Try to load from user config file
		if userConfigFile := findUserConfigFile(); userConfigFile != "" {
			if err := loadConfigFile(cws, cfg, userConfigFile, SourceUserFile); err != nil {
				return nil, fmt.Errorf("loading user config file %s: %w", userConfigFile, err)
			}
		}

		// 3. Try to load from the vault config file (overrides user config)
		if vaultConfigFile := findVaultConfigFile(vault); vaultConfigFile != "" {
			if err := loadConfigFile(cws, cfg, vaultConfigFile, SourceVaultFile); err != nil {
				return nil, fmt.Errorf("loading vault config file %s: %w", vaultConfigFile, err)
			}
		}
	}

	// 4. Override from environment
	loadFromEnv(cfg, sources)

	// 5. CLI flags override everything
	applyFlags(cfg, flags, sources)

	// 6. Compute derived values
	if err := finalizeConfig(cfg); err != nil {
		return nil, fmt.Errorf("finalizing config: %w", err)
	}

	cws.Config = cfg
	return cws, nil
}

// loadConfigFile decodes a TOML file over cfg. Only keys present in the file
// change cfg, and those keys are attributed to source.
func loadConfigFile(cws *ConfigWithSources, cfg *Config, path string, source ConfigSource) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return err
	}
	for _, field := range configFields() {
		if md.IsDefined(field) {
			cws.Sources[field] = source
		}
	}
	for _, key := range md.Undecoded() {
		cws.Unknown = append(cws.Unknown, fmt.Sprintf("%s: %s", path, key.String()))
	}
	cws.Files = append(cws.Files, path)
	return nil
}

// finalizeConfig computes derived values and validates settings.
func finalizeConfig(cfg *Config) error {
	cfg.VaultPath = expandPath(cfg.VaultPath)

	cfg.Extensions = utils.NormalizeExtensions(cfg.Extensions)
	if len(cfg.Extensions) == 0 {
		return errors.New("extensions must list at least one file extension")
	}
	if cfg.DoneStatus == "" {
		return errors.New("done_status must not be empty")
	}
	if cfg.ScanArchive && cfg.ArchiveDir == "" {
		return errors.New("archive_dir must be set when scan_archive is enabled")
	}
	if !logging.ValidLevel(cfg.LogLevel) {
		return fmt.Errorf("invalid log_level %q", cfg.LogLevel)
	}
	if !logging.ValidFormat(cfg.LogFormat) {
		return fmt.Errorf("invalid log_format %q", cfg.LogFormat)
	}

	// Relative schema paths are resolved against the vault root.
	cfg.SchemaFile = resolvePath(cfg.SchemaFile, cfg.VaultPath)
	return nil
}
