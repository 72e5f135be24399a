// Package cmd provides tests for CLI command handlers.
package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/nibzard/obsidian-tasks/internal/ui"
	"github.com/nibzard/obsidian-tasks/internal/vault"
)

type testApp struct {
	*App
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

// newTestApp returns an app frozen at noon on 2026-01-30 with no user
// config or environment overrides in effect.
func newTestApp(t *testing.T) *testApp {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("APPDATA", filepath.Join(home, "AppData"))
	for _, name := range []string{
		"EXTENSIONS", "DONE_STATUS", "SCAN_ARCHIVE", "ARCHIVE_DIR", "SCHEMA", "COMPACT",
		"LOG_LEVEL", "LOG_FORMAT", "LOG_TIMESTAMPS", "LOG_CALLER",
	} {
		t.Setenv("OBSIDIAN_TASKS_"+name, "")
	}

	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	now := time.Date(2026, time.January, 30, 12, 0, 0, 0, time.Local)
	return &testApp{
		App:    &App{Stdout: stdout, Stderr: stderr, Now: func() time.Time { return now }},
		stdout: stdout,
		stderr: stderr,
	}
}

func (a *testApp) run(args ...string) error {
	a.stdout.Reset()
	a.stderr.Reset()
	return a.Run(context.Background(), args)
}

func writeNote(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

// exampleVault holds task A due today and task B, done, due yesterday.
func exampleVault(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeNote(t, root, "Tasks/A.md", "---\nstatus: todo\ndue: 2026-01-30\n---\nPaint the fence.\n")
	writeNote(t, root, "Tasks/B.md", "---\nstatus: done\ndue: 2026-01-29\ncompletedDate: 2026-01-30\n---\n")
	writeNote(t, root, "Daily/2026-01-30.md", "# Daily note\n")
	return root
}

// listed decodes a JSON array from out and returns each task's note name.
func listed(t *testing.T, out string) []string {
	t.Helper()
	var tasks []struct {
		SourcePath string `json:"sourcePath"`
	}
	if err := json.Unmarshal([]byte(out), &tasks); err != nil {
		t.Fatalf("output is not a JSON array: %v\n%s", err, out)
	}
	names := make([]string, 0, len(tasks))
	for _, tk := range tasks {
		names = append(names, strings.TrimSuffix(filepath.Base(tk.SourcePath), ".md"))
	}
	return names
}

func assertUsageError(t *testing.T, app *testApp, err error) {
	t.Helper()
	var ue *UsageError
	if !errors.As(err, &ue) {
		t.Fatalf("error = %v, want *UsageError", err)
	}
	if !strings.Contains(app.stderr.String(), "Usage:") {
		t.Errorf("usage text not written to stderr:\n%s", app.stderr.String())
	}
	if app.stdout.Len() != 0 {
		t.Errorf("stdout not empty on usage error: %q", app.stdout.String())
	}
}

// TestRun tests the help and version entry points.
func TestRun(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"--help"}, "Usage:"},
		{[]string{"-h"}, "Usage:"},
		{[]string{"help"}, "Commands:"},
		{[]string{"--version"}, "obsidian-tasks version"},
		{[]string{"-v"}, "obsidian-tasks version"},
		{[]string{"version"}, "obsidian-tasks version"},
		{[]string{"help", "config"}, "done_status"},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			app := newTestApp(t)
			if err := app.run(tt.args...); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !strings.Contains(app.stdout.String(), tt.want) {
				t.Errorf("stdout missing %q:\n%s", tt.want, app.stdout.String())
			}
		})
	}
}

func TestUsageErrors(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "does-not-exist")
	tests := []struct {
		name string
		args []string
	}{
		{"no command", nil},
		{"unknown command", []string{"--path", missing, "tomorrow"}},
		{"missing path for all", []string{"all"}},
		{"missing path for today", []string{"today"}},
		{"missing path for overdue", []string{"overdue"}},
		{"missing path for pending", []string{"pending"}},
		{"missing path for count", []string{"count", "--today"}},
		{"missing path for doctor", []string{"doctor"}},
		{"count flags exclusive", []string{"count", "--path", missing, "--today", "--overdue"}},
		{"count flags exclusive with completed", []string{"count", "--path", missing, "--overdue", "--completed-today"}},
		{"unknown global flag", []string{"--colour", "all"}},
		{"unknown command flag", []string{"today", "--path", missing, "--tomorrow"}},
		{"extra arguments", []string{"all", "--path", missing, "extra"}},
		{"bad tui view", []string{"tui", "--path", missing, "--view", "someday"}},
		{"unknown help topic", []string{"help", "everything"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t)
			err := app.run(tt.args...)
			assertUsageError(t, app, err)
		})
	}
}

func TestUsageErrorBeforeConfigLoad(t *testing.T) {
	app := newTestApp(t)
	vault := t.TempDir()
	writeNote(t, vault, ".obsidian-tasks.toml", "this is not toml")

	err := app.run("count", "--path", vault, "--today", "--overdue")
	assertUsageError(t, app, err)
}

func TestListCommands(t *testing.T) {
	root := exampleVault(t)
	tests := []struct {
		command string
		want    []string
	}{
		{"all", []string{"A", "B"}},
		{"today", []string{"A"}},
		{"overdue", []string{}},
		{"pending", []string{"A"}},
		{"completed-today", []string{"B"}},
	}
	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			app := newTestApp(t)
			if err := app.run("--path", root, tt.command); err != nil {
				t.Fatalf("run error = %v", err)
			}
			got := listed(t, app.stdout.String())
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("%s = %v, want %v", tt.command, got, tt.want)
			}
			if app.stderr.Len() != 0 {
				t.Errorf("unexpected diagnostics:\n%s", app.stderr.String())
			}
		})
	}
}

func TestEmptyListIsEmptyArray(t *testing.T) {
	app := newTestApp(t)
	if err := app.run("overdue", "--path", exampleVault(t)); err != nil {
		t.Fatal(err)
	}
	if app.stdout.String() != "[]\n" {
		t.Errorf("stdout = %q, want %q", app.stdout.String(), "[]\n")
	}
}

func TestCount(t *testing.T) {
	root := exampleVault(t)
	tests := []struct {
		flags []string
		want  string
	}{
		{nil, "1\n"},
		{[]string{"--today"}, "1\n"},
		{[]string{"--overdue"}, "0\n"},
		{[]string{"--completed-today"}, "1\n"},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.flags, " "), func(t *testing.T) {
			app := newTestApp(t)
			args := append([]string{"count", "--path", root}, tt.flags...)
			if err := app.run(args...); err != nil {
				t.Fatalf("run error = %v", err)
			}
			if app.stdout.String() != tt.want {
				t.Errorf("count %v = %q, want %q", tt.flags, app.stdout.String(), tt.want)
			}
		})
	}
}

func TestCountMatchesPendingList(t *testing.T) {
	root := exampleVault(t)
	writeNote(t, root, "Tasks/C.md", "---\nstatus: in-progress\n---\n")
	writeNote(t, root, "Tasks/D.md", "---\nstatus: Done\ndue: 2026-01-01\n---\n")

	app := newTestApp(t)
	if err := app.run("pending", "--path", root); err != nil {
		t.Fatal(err)
	}
	pending := listed(t, app.stdout.String())

	if err := app.run("count", "--path", root); err != nil {
		t.Fatal(err)
	}
	if want := strings.TrimSpace(app.stdout.String()); want != "3" || len(pending) != 3 {
		t.Errorf("count = %s, pending = %v", want, pending)
	}
}

func TestMalformedNotesAreSkipped(t *testing.T) {
	root := exampleVault(t)
	writeNote(t, root, "Tasks/Bad date.md", "---\nstatus: todo\ndue: 2026-02-30\n---\n")
	writeNote(t, root, "Tasks/Bad yaml.md", "---\nstatus: [todo\n---\n")
	writeNote(t, root, "Tasks/Unclosed.md", "---\nstatus: todo\ndue: 2026-01-30\n")

	app := newTestApp(t)
	if err := app.run("today", "--path", root); err != nil {
		t.Fatalf("run error = %v", err)
	}
	if got := listed(t, app.stdout.String()); strings.Join(got, ",") != "A" {
		t.Errorf("today = %v, want [A]", got)
	}
	stderr := app.stderr.String()
	for _, want := range []string{"skipping note", "Bad date.md", "Bad yaml.md", "Unclosed.md"} {
		if !strings.Contains(stderr, want) {
			t.Errorf("stderr missing %q:\n%s", want, stderr)
		}
	}
	if strings.Contains(stderr, "Daily") {
		t.Errorf("note without frontmatter logged at default level:\n%s", stderr)
	}
}

func TestPathNotFound(t *testing.T) {
	app := newTestApp(t)
	err := app.run("all", "--path", filepath.Join(t.TempDir(), "missing"))
	if !errors.Is(err, vault.ErrPathNotFound) {
		t.Fatalf("error = %v, want ErrPathNotFound", err)
	}
	var ue *UsageError
	if errors.As(err, &ue) {
		t.Error("path errors are not usage errors")
	}
	if app.stdout.Len() != 0 {
		t.Errorf("stdout not empty: %q", app.stdout.String())
	}
}

func TestPathAfterCommandAndCompact(t *testing.T) {
	root := exampleVault(t)
	app := newTestApp(t)
	if err := app.run("today", "--compact", "--path", root); err != nil {
		t.Fatal(err)
	}
	out := app.stdout.String()
	if strings.Count(out, "\n") != 1 || !strings.HasPrefix(out, `[{"status":"todo","due":"2026-01-30"`) {
		t.Errorf("compact output = %q", out)
	}
}

func TestIdempotentOutput(t *testing.T) {
	root := exampleVault(t)
	app := newTestApp(t)
	if err := app.run("all", "--path", root); err != nil {
		t.Fatal(err)
	}
	first := app.stdout.String()
	if err := app.run("all", "--path", root); err != nil {
		t.Fatal(err)
	}
	if app.stdout.String() != first {
		t.Errorf("second run differs:\n%s\n---\n%s", first, app.stdout.String())
	}
}

func TestVaultConfig(t *testing.T) {
	root := exampleVault(t)
	writeNote(t, root, "Tasks/C.markdown", "---\nstatus: closed\ndue: 2026-01-02\n---\n")
	writeNote(t, root, ".obsidian-tasks.toml", "extensions = [\".md\", \".markdown\"]\ndone_status = \"closed\"\n")

	app := newTestApp(t)
	if err := app.run("all", "--path", root); err != nil {
		t.Fatal(err)
	}
	if got := listed(t, app.stdout.String()); len(got) != 3 {
		t.Errorf("all = %v, want 3 tasks", got)
	}

	// With done_status = closed, B's "done" is an open status.
	if err := app.run("overdue", "--path", root); err != nil {
		t.Fatal(err)
	}
	if got := listed(t, app.stdout.String()); strings.Join(got, ",") != "B" {
		t.Errorf("overdue = %v, want [B]", got)
	}
}

func TestMalformedConfigIsFatal(t *testing.T) {
	root := exampleVault(t)
	writeNote(t, root, ".obsidian-tasks.toml", "done_status = ")

	app := newTestApp(t)
	err := app.run("all", "--path", root)
	if err == nil || !strings.Contains(err.Error(), "loading config") {
		t.Fatalf("error = %v, want config error", err)
	}
	if app.stdout.Len() != 0 {
		t.Errorf("stdout not empty: %q", app.stdout.String())
	}
}

func TestSymlinkedVaultRoot(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	target := exampleVault(t)
	base := t.TempDir()
	link := filepath.Join(base, "Vault")
	if err := os.Symlink(target, link); err != nil {
		t.Fatal(err)
	}

	app := newTestApp(t)
	if err := app.run("count", "--today", "--path", link); err != nil {
		t.Fatal(err)
	}
	if app.stdout.String() != "1\n" {
		t.Errorf("count --today = %q, want %q", app.stdout.String(), "1\n")
	}

	if err := app.run("all", "--path", link); err != nil {
		t.Fatal(err)
	}
	var tasks []struct {
		SourcePath string `json:"sourcePath"`
	}
	if err := json.Unmarshal(app.stdout.Bytes(), &tasks); err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 2 || tasks[0].SourcePath != filepath.Join(link, "Tasks", "A.md") {
		t.Errorf("all = %+v, want sourcePath below %s", tasks, link)
	}

	// The archive sibling may be a symlink too.
	archive := t.TempDir()
	writeNote(t, archive, "Old.md", "---\nstatus: todo\ndue: 2025-12-01\n---\n")
	if err := os.Symlink(archive, filepath.Join(base, "Archive")); err != nil {
		t.Fatal(err)
	}
	if err := app.run("overdue", "--archive", "--path", link); err != nil {
		t.Fatal(err)
	}
	if got := listed(t, app.stdout.String()); strings.Join(got, ",") != "Old" {
		t.Errorf("overdue with symlinked archive = %v, want [Old]", got)
	}
}

func TestArchiveScanning(t *testing.T) {
	base := t.TempDir()
	root := filepath.Join(base, "Vault")
	writeNote(t, root, "A.md", "---\nstatus: todo\n---\n")
	writeNote(t, base, "Archive/Old.md", "---\nstatus: todo\ndue: 2025-12-01\n---\n")

	app := newTestApp(t)
	if err := app.run("all", "--path", root); err != nil {
		t.Fatal(err)
	}
	if got := listed(t, app.stdout.String()); len(got) != 1 {
		t.Errorf("without --archive: %v", got)
	}

	if err := app.run("overdue", "--archive", "--path", root); err != nil {
		t.Fatal(err)
	}
	if got := listed(t, app.stdout.String()); strings.Join(got, ",") != "Old" {
		t.Errorf("with --archive: overdue = %v, want [Old]", got)
	}
}

func TestDebugLogging(t *testing.T) {
	app := newTestApp(t)
	if err := app.run("all", "--log-level", "debug", "--path", exampleVault(t)); err != nil {
		t.Fatal(err)
	}
	stderr := app.stderr.String()
	for _, want := range []string{"no frontmatter", "scan complete"} {
		if !strings.Contains(stderr, want) {
			t.Errorf("stderr missing %q:\n%s", want, stderr)
		}
	}
}

func TestDoctor(t *testing.T) {
	root := exampleVault(t)
	writeNote(t, root, "Tasks/Bad.md", "---\nstatus: todo\ndue: soon\n---\n")

	app := newTestApp(t)
	if err := app.run("doctor", "--path", root); err != nil {
		t.Fatalf("doctor error = %v", err)
	}
	out := app.stdout.String()
	for _, want := range []string{
		"Obsidian Tasks Doctor",
		"✅ OK",
		"done_status",
		"(default)",
		"Schema: embedded",
		"Notes scanned: 4",
		"Tasks parsed: 2",
		"Without frontmatter: 1",
		"Skipped: 1",
		"Bad.md: due: invalid date",
		"today",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("doctor output missing %q:\n%s", want, out)
		}
	}
	if app.stderr.Len() != 0 {
		t.Errorf("doctor wrote diagnostics:\n%s", app.stderr.String())
	}
}

func TestDoctorMissingVault(t *testing.T) {
	app := newTestApp(t)
	err := app.run("doctor", "--path", filepath.Join(t.TempDir(), "missing"))
	if !errors.Is(err, vault.ErrPathNotFound) {
		t.Fatalf("error = %v, want ErrPathNotFound", err)
	}
	if !strings.Contains(app.stdout.String(), "❌") {
		t.Errorf("doctor output does not flag the root:\n%s", app.stdout.String())
	}
}

func TestTUIRequiresTerminal(t *testing.T) {
	app := newTestApp(t)
	err := app.run("tui", "--path", exampleVault(t))
	if !errors.Is(err, ui.ErrNotTTY) {
		t.Errorf("error = %v, want ErrNotTTY", err)
	}
}
