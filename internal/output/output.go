// Package output renders task reports on stdout.
package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/nibzard/obsidian-tasks/internal/task"
)

// DefaultIndent is used for pretty printed lists.
const DefaultIndent = "  "

// Formatter writes task lists as JSON arrays and counts as bare integers.
type Formatter struct {
	// Indent is the per-level indent. Empty means compact output.
	Indent string
}

// NewFormatter returns a compact formatter, or a pretty printing one using
// indent. An empty indent falls back to DefaultIndent.
func NewFormatter(compact bool, indent string) *Formatter {
	if compact {
		return &Formatter{}
	}
	if indent == "" {
		indent = DefaultIndent
	}
	return &Formatter{Indent: indent}
}

// WriteList writes tasks as a JSON array followed by a newline. An empty or
// nil list is written as [].
func (f *Formatter) WriteList(w io.Writer, tasks []task.Task) error {
	if tasks == nil {
		tasks = []task.Task{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if f.Indent != "" {
		enc.SetIndent("", f.Indent)
	}
	if err := enc.Encode(tasks); err != nil {
		return fmt.Errorf("write tasks: %w", err)
	}
	return nil
}

// WriteCount writes n followed by a newline.
func (f *Formatter) WriteCount(w io.Writer, n int) error {
	if _, err := fmt.Fprintln(w, n); err != nil {
		return fmt.Errorf("write count: %w", err)
	}
	return nil
}
