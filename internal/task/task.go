// Package task models a task note and parses its frontmatter.
//
// A task is one note file whose frontmatter block decodes into the fields
// below. Keys that are not listed are ignored so newer note formats keep
// working.
//
//	---
//	status: todo
//	priority: medium
//	dateCreated: 2026-01-15T10:30:00.000-05:00
//	due: 2026-01-30
//	completedDate: 2026-01-31
//	tags:
//	  - task
//	projects:
//	  - "[[Home Renovation]]"
//	taskSourceType: taskNotes
//	---
//
// # Type checking
//
// Before the block is decoded it is validated against a JSON Schema
// (task.schema.json, embedded). The schema rejects values of the wrong shape,
// for example a numeric status or a scalar where tags should be a list. A
// different schema file can be supplied with ParserOptions.SchemaPath.
//
// # Dates
//
// due and completedDate are calendar dates. A time of day or zone offset after
// the date is accepted and dropped. Any other value fails the whole note.
package task

// DoneStatus is the status value that marks a task complete.
const DoneStatus = "done"

// Task is the structured record derived from one note's frontmatter.
type Task struct {
	Status         string   `yaml:"status" json:"status"`
	Priority       string   `yaml:"priority" json:"priority,omitempty"`
	DateCreated    string   `yaml:"dateCreated" json:"dateCreated,omitempty"`
	Due            *Date    `yaml:"due" json:"due,omitempty"`
	CompletedDate  *Date    `yaml:"completedDate" json:"completedDate,omitempty"`
	Tags           []string `yaml:"tags" json:"tags"`
	Projects       []string `yaml:"projects" json:"projects"`
	TaskSourceType string   `yaml:"taskSourceType" json:"taskSourceType,omitempty"`

	// SourcePath is the note the task was read from. It is the task's identity.
	SourcePath string `yaml:"-" json:"sourcePath"`
}

// DueOn reports whether the task is due on d.
func (t *Task) DueOn(d Date) bool {
	return t.Due != nil && *t.Due == d
}

// DueBefore reports whether the task is due strictly before d.
func (t *Task) DueBefore(d Date) bool {
	return t.Due != nil && t.Due.Before(d)
}

// CompletedOn reports whether the task was completed on d.
func (t *Task) CompletedOn(d Date) bool {
	return t.CompletedDate != nil && *t.CompletedDate == d
}

// normalize replaces nil lists so they render as empty arrays.
func (t *Task) normalize() {
	if t.Tags == nil {
		t.Tags = []string{}
	}
	if t.Projects == nil {
		t.Projects = []string{}
	}
}
