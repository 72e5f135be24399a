package config

import (
	"path/filepath"
)

// ArchiveRoot returns the archive directory scanned alongside the vault, or
// "" when archive scanning is off. A relative archive_dir names a sibling of
// the vault root.
func (c *Config) ArchiveRoot() string {
	if !c.ScanArchive || c.ArchiveDir == "" {
		return ""
	}
	root := c.VaultPath
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	return filepath.Clean(resolvePath(c.ArchiveDir, filepath.Dir(filepath.Clean(root))))
}

// SourceOf returns where field was set, or SourceDefault.
func (cws *ConfigWithSources) SourceOf(field string) ConfigSource {
	if s, ok := cws.Sources[field]; ok {
		return s
	}
	return SourceDefault
}
