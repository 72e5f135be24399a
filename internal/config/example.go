package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# obsidian-tasks configuration file
# Save as ~/.obsidian-tasks/config.toml, or as .obsidian-tasks.toml in the vault root.
# Values can be overridden by OBSIDIAN_TASKS_* environment variables or CLI flags.

# Note file extensions to scan (case-insensitive)
extensions = [".md"]

# Status value that marks a task as done (exact match)
done_status = "done"

# Also scan a sibling archive directory next to the vault
scan_archive = false
archive_dir = "Archive"

# JSON Schema used to type check frontmatter (relative to the vault root).
# The built-in schema is used when unset.
# schema_file = "task.schema.json"

# JSON output
indent = "  "
compact = false

# Diagnostics on stderr
log_level = "warn"     # debug, info, warn, error
log_format = "text"    # text, json, logfmt
log_timestamps = false
log_caller = false
`
}
