// Package logging builds the diagnostic logger used for per-note warnings and
// scan summaries. Diagnostics always go to stderr so stdout stays reserved for
// the report.
package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
)

// DefaultPrefix tags every diagnostic line.
const DefaultPrefix = "obsidian-tasks"

// Options holds configuration for the diagnostic logger.
type Options struct {
	Level      log.Level
	Formatter  log.Formatter
	Timestamps bool
	Caller     bool
	Prefix     string
}

// DefaultOptions returns warn-level text logging without timestamps.
func DefaultOptions() Options {
	return Options{
		Level:     log.WarnLevel,
		Formatter: log.TextFormatter,
		Prefix:    DefaultPrefix,
	}
}

// New creates a logger writing to w.
func New(w io.Writer, opts Options) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           opts.Level,
		Formatter:       opts.Formatter,
		ReportTimestamp: opts.Timestamps,
		ReportCaller:    opts.Caller,
		Prefix:          opts.Prefix,
	})
}

// FromStrings creates a logger from configuration values. Unknown level or
// format names are an error.
func FromStrings(w io.Writer, level, format string, timestamps, caller bool) (*log.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	f, err := ParseFormatter(format)
	if err != nil {
		return nil, err
	}
	opts := DefaultOptions()
	opts.Level = lvl
	opts.Formatter = f
	opts.Timestamps = timestamps
	opts.Caller = caller
	return New(w, opts), nil
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return New(io.Discard, DefaultOptions())
}

// ParseLevel parses a level name. An empty name means warn.
func ParseLevel(level string) (log.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DebugLevel, nil
	case "info":
		return log.InfoLevel, nil
	case "", "warn", "warning":
		return log.WarnLevel, nil
	case "error":
		return log.ErrorLevel, nil
	}
	return 0, fmt.Errorf("invalid log level %q (want debug, info, warn or error)", level)
}

// ParseFormatter parses a formatter name. An empty name means text.
func ParseFormatter(format string) (log.Formatter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "text":
		return log.TextFormatter, nil
	case "json":
		return log.JSONFormatter, nil
	case "logfmt":
		return log.LogfmtFormatter, nil
	}
	return 0, fmt.Errorf("invalid log format %q (want text, json or logfmt)", format)
}

// ValidLevel reports whether level is a known level name.
func ValidLevel(level string) bool {
	_, err := ParseLevel(level)
	return err == nil
}

// ValidFormat reports whether format is a known formatter name.
func ValidFormat(format string) bool {
	_, err := ParseFormatter(format)
	return err == nil
}
