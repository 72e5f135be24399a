// Package ui provides optional terminal interfaces.
package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nibzard/obsidian-tasks/internal/filter"
	"github.com/nibzard/obsidian-tasks/internal/task"
)

// ErrNotTTY is returned when the TUI is started without a terminal.
var ErrNotTTY = errors.New("tui requires a TTY")

// Snapshot is one scan of the vault.
type Snapshot struct {
	Root    string
	Today   task.Date
	Tasks   []task.Task
	Skipped int
}

// Loader scans the vault. It is called on start and on every rescan.
type Loader func(ctx context.Context) (*Snapshot, error)

// TUIOption configures the TUI behavior.
type TUIOption func(*tuiConfig)

// tuiConfig holds TUI configuration.
type tuiConfig struct {
	doneStatus string
	view       filter.View
}

// WithDoneStatus sets the status that marks a task complete.
func WithDoneStatus(status string) TUIOption {
	return func(c *tuiConfig) {
		c.doneStatus = status
	}
}

// WithView selects the view shown first.
func WithView(v filter.View) TUIOption {
	return func(c *tuiConfig) {
		c.view = v
	}
}

// RunTUI starts the read-only task browser on out.
func RunTUI(ctx context.Context, out io.Writer, load Loader, opts ...TUIOption) error {
	if !IsTTY(out) {
		return ErrNotTTY
	}
	model := newTUIModel(ctx, load, opts...)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx), tea.WithOutput(out))
	_, err := program.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return ctx.Err()
}

// defaultRows is the task list height before the terminal size is known.
const defaultRows = 20

type tuiModel struct {
	ctx        context.Context
	load       Loader
	doneStatus string
	view       filter.View
	snapshot   *Snapshot
	engine     *filter.Engine
	loadErr    error
	rows       int
	showHelp   bool
}

func newTUIModel(ctx context.Context, load Loader, opts ...TUIOption) *tuiModel {
	c := &tuiConfig{view: filter.ViewAll}
	for _, opt := range opts {
		opt(c)
	}
	return &tuiModel{
		ctx:        ctx,
		load:       load,
		doneStatus: c.doneStatus,
		view:       c.view,
		rows:       defaultRows,
	}
}

func (m *tuiModel) Init() tea.Cmd {
	m.refresh()
	return nil
}

// viewKeys maps number keys to views.
var viewKeys = map[string]filter.View{
	"1": filter.ViewAll,
	"2": filter.ViewToday,
	"3": filter.ViewOverdue,
	"4": filter.ViewPending,
	"5": filter.ViewCompletedToday,
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		key := msg.String()
		if v, ok := viewKeys[key]; ok {
			m.view = v
			return m, nil
		}
		switch key {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r", "f5":
			m.refresh()
		case "h", "?":
			m.showHelp = !m.showHelp
		}
	case tea.WindowSizeMsg:
		// title, counts, view header, footer
		if rows := msg.Height - 9; rows > 0 {
			m.rows = rows
		}
	}
	return m, nil
}

func (m *tuiModel) View() string {
	var b strings.Builder
	writeTitle(&b)

	if m.showHelp {
		writeHelp(&b)
		writeFooter(&b)
		return b.String()
	}

	if m.loadErr != nil {
		b.WriteString("Error scanning vault:\n")
		b.WriteString("  " + m.loadErr.Error() + "\n\n")
		writeFooter(&b)
		return b.String()
	}
	if m.snapshot == nil {
		b.WriteString("Loading...\n\n")
		writeFooter(&b)
		return b.String()
	}

	writeOverview(&b, m.snapshot, m.engine)
	writeTasks(&b, m.view, m.engine.Apply(m.view, m.snapshot.Tasks), m.rows)
	writeFooter(&b)
	return b.String()
}

func (m *tuiModel) refresh() {
	snap, err := m.load(m.ctx)
	if err != nil {
		m.loadErr = err
		m.snapshot = nil
		return
	}
	m.loadErr = nil
	m.snapshot = snap
	m.engine = filter.New(snap.Today, m.doneStatus)
}

func writeTitle(b *strings.Builder) {
	title := "Obsidian Tasks"
	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat("=", len(title)) + "\n\n")
}

func writeOverview(b *strings.Builder, snap *Snapshot, e *filter.Engine) {
	fmt.Fprintf(b, "%s  (today %s)\n", snap.Root, snap.Today)
	fmt.Fprintf(b, "  All: %d  Today: %d  Overdue: %d  Pending: %d  Completed today: %d",
		e.Count(filter.ViewAll, snap.Tasks),
		e.Count(filter.ViewToday, snap.Tasks),
		e.Count(filter.ViewOverdue, snap.Tasks),
		e.Count(filter.ViewPending, snap.Tasks),
		e.Count(filter.ViewCompletedToday, snap.Tasks),
	)
	if snap.Skipped > 0 {
		fmt.Fprintf(b, "  Skipped: %d", snap.Skipped)
	}
	b.WriteString("\n\n")
}

func writeTasks(b *strings.Builder, v filter.View, tasks []task.Task, rows int) {
	fmt.Fprintf(b, "View: %s (%d)\n\n", v, len(tasks))
	if len(tasks) == 0 {
		b.WriteString("  No tasks.\n\n")
		return
	}
	for i := range tasks {
		if i == rows {
			fmt.Fprintf(b, "  ... %d more\n", len(tasks)-rows)
			break
		}
		b.WriteString(formatTask(&tasks[i]))
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func writeHelp(b *strings.Builder) {
	b.WriteString("Keyboard Shortcuts\n\n")
	b.WriteString("  q, ctrl+c    Quit\n")
	b.WriteString("  r, F5        Rescan the vault\n")
	b.WriteString("  h, ?         Toggle this help screen\n")
	b.WriteString("  1            All tasks\n")
	b.WriteString("  2            Due today\n")
	b.WriteString("  3            Overdue\n")
	b.WriteString("  4            Pending\n")
	b.WriteString("  5            Completed today\n\n")
}

func writeFooter(b *strings.Builder) {
	b.WriteString("Press h for help | 1-5 to switch view | r to rescan | q to quit\n")
}

func formatTask(t *task.Task) string {
	due := "          "
	if t.Due != nil {
		due = t.Due.String()
	}
	line := fmt.Sprintf("  %s  %-12s %s", due, t.Status, t.SourcePath)
	if t.Priority != "" {
		line += " (" + t.Priority + ")"
	}
	return line
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
