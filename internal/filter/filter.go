// Package filter selects tasks for each report view relative to a reference
// date.
package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/nibzard/obsidian-tasks/internal/task"
)

// View names a task selection.
type View string

const (
	ViewAll            View = "all"
	ViewToday          View = "today"
	ViewOverdue        View = "overdue"
	ViewPending        View = "pending"
	ViewCompletedToday View = "completed-today"
)

// Views lists every view in display order.
var Views = []View{ViewAll, ViewToday, ViewOverdue, ViewPending, ViewCompletedToday}

// ParseView resolves a view name, case-insensitively.
func ParseView(s string) (View, error) {
	v := View(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Views {
		if v == known {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown view %q", s)
}

// Today returns the calendar date of now in the local time zone.
func Today(now time.Time) task.Date {
	return task.DateOf(now.Local())
}

// Engine applies views against a fixed reference date.
type Engine struct {
	Today      task.Date
	DoneStatus string
}

// New returns an engine for the given reference date. An empty doneStatus
// means task.DoneStatus.
func New(today task.Date, doneStatus string) *Engine {
	if doneStatus == "" {
		doneStatus = task.DoneStatus
	}
	return &Engine{Today: today, DoneStatus: doneStatus}
}

// IsDone reports whether t is complete. The match is exact.
func (e *Engine) IsDone(t *task.Task) bool {
	return t.Status == e.DoneStatus
}

// Match reports whether t belongs to view.
func (e *Engine) Match(view View, t *task.Task) bool {
	switch view {
	case ViewAll:
		return true
	case ViewToday:
		return !e.IsDone(t) && t.DueOn(e.Today)
	case ViewOverdue:
		return !e.IsDone(t) && t.DueBefore(e.Today)
	case ViewPending:
		return !e.IsDone(t)
	case ViewCompletedToday:
		return t.CompletedOn(e.Today)
	}
	return false
}

// Apply returns the tasks in view, preserving input order. The result is
// never nil.
func (e *Engine) Apply(view View, tasks []task.Task) []task.Task {
	out := make([]task.Task, 0, len(tasks))
	for i := range tasks {
		if e.Match(view, &tasks[i]) {
			out = append(out, tasks[i])
		}
	}
	return out
}

// Count returns how many tasks are in view.
func (e *Engine) Count(view View, tasks []task.Task) int {
	n := 0
	for i := range tasks {
		if e.Match(view, &tasks[i]) {
			n++
		}
	}
	return n
}
