// Package cmd implements the CLI command structure for obsidian-tasks.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nibzard/obsidian-tasks/internal/config"
	"github.com/nibzard/obsidian-tasks/internal/filter"
	"github.com/nibzard/obsidian-tasks/internal/logging"
	"github.com/nibzard/obsidian-tasks/internal/output"
	"github.com/nibzard/obsidian-tasks/internal/task"
	"github.com/nibzard/obsidian-tasks/internal/ui"
	"github.com/nibzard/obsidian-tasks/internal/vault"
)

// Version is set via ldflags at build time.
var Version = "dev"

const programName = "obsidian-tasks"

// UsageError reports a malformed command line. Usage text has already been
// written to the error stream when it is returned.
type UsageError struct {
	Err error
}

func (e *UsageError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *UsageError) Unwrap() error {
	return e.Err
}

// App carries the streams and clock a command runs against.
type App struct {
	Stdout io.Writer
	Stderr io.Writer
	// Now returns the current time; "today" is its local calendar date.
	Now func() time.Time
}

// Run executes the obsidian-tasks CLI on the process streams.
func Run(ctx context.Context, args []string) error {
	app := &App{Stdout: os.Stdout, Stderr: os.Stderr, Now: time.Now}
	return app.Run(ctx, args)
}

// Run parses args and dispatches to a command. Command lines are fully
// validated before any configuration or vault file is read.
func (a *App) Run(ctx context.Context, args []string) error {
	if a.Now == nil {
		a.Now = time.Now
	}

	// Create a flag set for global options
	gf := &config.Flags{}
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")
	config.RegisterFlags(fs, gf)

	if err := fs.Parse(args); err != nil {
		return a.usage(err)
	}
	gf.Track(fs)

	if *help {
		printUsage(a.Stdout)
		return nil
	}
	if *showVersion {
		return a.versionCommand()
	}

	remaining := fs.Args()
	if len(remaining) == 0 {
		return a.usage(errors.New("missing command"))
	}
	command, remaining := remaining[0], remaining[1:]

	switch command {
	case "all", "today", "overdue", "pending", "completed-today":
		return a.listCommand(ctx, filter.View(command), gf, remaining)
	case "count":
		return a.countCommand(ctx, gf, remaining)
	case "doctor":
		return a.doctorCommand(ctx, gf, remaining)
	case "tui":
		return a.tuiCommand(ctx, gf, remaining)
	case "version":
		return a.versionCommand()
	case "help":
		return a.helpCommand(remaining)
	default:
		return a.usage(fmt.Errorf("unknown command: %s", command))
	}
}

// usage prints err and the usage text to the error stream.
func (a *App) usage(err error) error {
	fmt.Fprintf(a.Stderr, "Error: %v\n\n", err)
	printUsage(a.Stderr)
	return &UsageError{Err: err}
}

// parseCommandFlags parses a command's own flags. The global options are
// registered again so they may follow the command name. With requirePath,
// a missing --path is a usage error.
func (a *App) parseCommandFlags(name string, gf *config.Flags, args []string, requirePath bool, define func(*flag.FlagSet)) (bool, error) {
	fs := flag.NewFlagSet(programName+" "+name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	config.RegisterFlags(fs, gf)
	if define != nil {
		define(fs)
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printCommandUsage(a.Stdout, fs)
			return false, nil
		}
		return false, a.usage(fmt.Errorf("%s: %w", name, err))
	}
	gf.Track(fs)

	if rest := fs.Args(); len(rest) > 0 {
		return false, a.usage(fmt.Errorf("%s: unexpected arguments: %v", name, rest))
	}
	if requirePath && gf.Path == "" {
		return false, a.usage(fmt.Errorf("%s: missing required --path", name))
	}
	return true, nil
}

// session holds everything built from configuration for one command.
type session struct {
	cws       *config.ConfigWithSources
	cfg       *config.Config
	logger    *log.Logger
	parser    *task.Parser
	collector *vault.Collector
}

// newSession loads configuration and wires the pipeline. A quiet session
// discards per-note diagnostics.
func (a *App) newSession(gf *config.Flags, quiet bool) (*session, error) {
	cws, err := config.LoadWithSources(gf)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	cfg := cws.Config

	logger, err := logging.FromStrings(a.Stderr, cfg.LogLevel, cfg.LogFormat, cfg.LogTimestamps, cfg.LogCaller)
	if err != nil {
		return nil, fmt.Errorf("configuring logging: %w", err)
	}
	for _, key := range cws.Unknown {
		logger.Warn("unknown config key", "key", key)
	}

	parser, err := task.NewParser(task.ParserOptions{SchemaPath: cfg.SchemaFile})
	if err != nil {
		return nil, fmt.Errorf("loading task schema: %w", err)
	}

	noteLogger := logger
	if quiet {
		noteLogger = logging.Discard()
	}
	return &session{
		cws:       cws,
		cfg:       cfg,
		logger:    logger,
		parser:    parser,
		collector: vault.NewCollector(vault.NewWalker(cfg.Extensions), parser, noteLogger),
	}, nil
}

// collect scans the vault root and, when enabled, the archive directory.
func (s *session) collect(ctx context.Context) (*vault.Result, error) {
	var extra []string
	if archive := s.cfg.ArchiveRoot(); archive != "" {
		extra = append(extra, archive)
	}
	return s.collector.Collect(ctx, s.cfg.VaultPath, extra...)
}

func (s *session) engine(now time.Time) *filter.Engine {
	return filter.New(filter.Today(now), s.cfg.DoneStatus)
}

func (s *session) formatter() *output.Formatter {
	return output.NewFormatter(s.cfg.Compact, s.cfg.Indent)
}

// listCommand prints the tasks in one view as a JSON array.
func (a *App) listCommand(ctx context.Context, view filter.View, gf *config.Flags, args []string) error {
	ok, err := a.parseCommandFlags(string(view), gf, args, true, nil)
	if !ok {
		return err
	}

	s, err := a.newSession(gf, false)
	if err != nil {
		return err
	}
	res, err := s.collect(ctx)
	if err != nil {
		return err
	}
	tasks := s.engine(a.Now()).Apply(view, res.Tasks)
	return s.formatter().WriteList(a.Stdout, tasks)
}

// countCommand prints the number of pending tasks, or of the view selected
// by one of its flags.
func (a *App) countCommand(ctx context.Context, gf *config.Flags, args []string) error {
	var today, overdue, completedToday bool
	ok, err := a.parseCommandFlags("count", gf, args, true, func(fs *flag.FlagSet) {
		fs.BoolVar(&today, "today", false, "Count tasks due today")
		fs.BoolVar(&overdue, "overdue", false, "Count overdue tasks")
		fs.BoolVar(&completedToday, "completed-today", false, "Count tasks completed today")
	})
	if !ok {
		return err
	}

	view := filter.ViewPending
	selected := 0
	for _, opt := range []struct {
		set  bool
		view filter.View
	}{
		{today, filter.ViewToday},
		{overdue, filter.ViewOverdue},
		{completedToday, filter.ViewCompletedToday},
	} {
		if opt.set {
			view = opt.view
			selected++
		}
	}
	if selected > 1 {
		return a.usage(errors.New("count: --today, --overdue and --completed-today are mutually exclusive"))
	}

	s, err := a.newSession(gf, false)
	if err != nil {
		return err
	}
	res, err := s.collect(ctx)
	if err != nil {
		return err
	}
	return s.formatter().WriteCount(a.Stdout, s.engine(a.Now()).Count(view, res.Tasks))
}

// tuiCommand launches the read-only task browser.
func (a *App) tuiCommand(ctx context.Context, gf *config.Flags, args []string) error {
	viewName := string(filter.ViewAll)
	ok, err := a.parseCommandFlags("tui", gf, args, true, func(fs *flag.FlagSet) {
		fs.StringVar(&viewName, "view", viewName, "View shown first (all, today, overdue, pending, completed-today)")
	})
	if !ok {
		return err
	}
	view, err := filter.ParseView(viewName)
	if err != nil {
		return a.usage(fmt.Errorf("tui: %w", err))
	}

	// Diagnostics would draw over the alternate screen.
	s, err := a.newSession(gf, true)
	if err != nil {
		return err
	}
	if err := vault.CheckRoot(s.cfg.VaultPath); err != nil {
		return err
	}

	load := func(ctx context.Context) (*ui.Snapshot, error) {
		res, err := s.collect(ctx)
		if err != nil {
			return nil, err
		}
		return &ui.Snapshot{
			Root:    s.cfg.VaultPath,
			Today:   filter.Today(a.Now()),
			Tasks:   res.Tasks,
			Skipped: len(res.Skipped),
		}, nil
	}
	return ui.RunTUI(ctx, a.Stdout, load, ui.WithDoneStatus(s.cfg.DoneStatus), ui.WithView(view))
}

func (a *App) versionCommand() error {
	fmt.Fprintf(a.Stdout, "%s version %s\n", programName, Version)
	return nil
}

// helpCommand prints usage, or the example configuration for "help config".
func (a *App) helpCommand(args []string) error {
	if len(args) == 0 {
		printUsage(a.Stdout)
		return nil
	}
	switch args[0] {
	case "config":
		fmt.Fprint(a.Stdout, config.ExampleConfig())
		return nil
	default:
		return a.usage(fmt.Errorf("no help topic %q", args[0]))
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "obsidian-tasks - query task notes in an Obsidian vault")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  obsidian-tasks [global options] <command> [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  all              List every task as JSON")
	fmt.Fprintln(w, "  today            List open tasks due today")
	fmt.Fprintln(w, "  overdue          List open tasks due before today")
	fmt.Fprintln(w, "  pending          List tasks that are not done")
	fmt.Fprintln(w, "  completed-today  List tasks completed today")
	fmt.Fprintln(w, "  count            Print the number of pending tasks")
	fmt.Fprintln(w, "  doctor           Check the vault, config and schema and report skipped notes")
	fmt.Fprintln(w, "  tui              Browse tasks in a terminal UI")
	fmt.Fprintln(w, "  version          Show version information")
	fmt.Fprintln(w, "  help [config]    Show this help, or an example config file")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options (also accepted after the command):")
	fmt.Fprintln(w, "  --path string")
	fmt.Fprintln(w, "        Vault root directory (required)")
	fmt.Fprintln(w, "  --config string")
	fmt.Fprintln(w, "        Config file to use instead of the user and vault files")
	fmt.Fprintln(w, "  --log-level string")
	fmt.Fprintln(w, "        Log level (debug, info, warn, error) (default warn)")
	fmt.Fprintln(w, "  --log-format string")
	fmt.Fprintln(w, "        Log format (text, json, logfmt) (default text)")
	fmt.Fprintln(w, "  --compact")
	fmt.Fprintln(w, "        Print JSON on a single line")
	fmt.Fprintln(w, "  --archive")
	fmt.Fprintln(w, "        Also scan the archive directory next to the vault")
	fmt.Fprintln(w, "  -h, --help")
	fmt.Fprintln(w, "        Show help")
	fmt.Fprintln(w, "  -v, --version")
	fmt.Fprintln(w, "        Show version")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Count Options (use with 'count' command, at most one):")
	fmt.Fprintln(w, "  --today            Count open tasks due today")
	fmt.Fprintln(w, "  --overdue          Count open tasks due before today")
	fmt.Fprintln(w, "  --completed-today  Count tasks completed today")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Tui Options (use with 'tui' command):")
	fmt.Fprintln(w, "  --view string")
	fmt.Fprintln(w, "        View shown first (default all)")
}

func printCommandUsage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintf(w, "Usage of %s:\n", fs.Name())
	fs.SetOutput(w)
	fs.PrintDefaults()
}
