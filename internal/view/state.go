package view

import (
	"time"

	"github.com/leonbytyqi1709-sketch/bycore/internal/autosave"
	"github.com/leonbytyqi1709-sketch/bycore/internal/mutate"
	"github.com/leonbytyqi1709-sketch/bycore/internal/records"
)

// Transient per-module UI state. None of it is persisted; the router resets a module's state
// when the module is deactivated.

type NotesState struct {
	SelectedID string
	Query      string
	Preview    bool
	SaveStatus autosave.Status
	// Draft holds edits to the selected note that the autosave has not written yet.
	Draft *NoteDraft
}

type NoteDraft struct {
	ID      string
	Title   string
	Content string
}

const (
	ModeKanban = "kanban"
	ModeList   = "list"
)

type TasksState struct {
	Filter string
	Mode   string
	Form   *TaskForm
}

func DefaultTasksState() TasksState {
	return TasksState{Filter: records.FilterAll, Mode: ModeKanban}
}

// TaskForm is the open create/edit modal. ID is empty when creating.
type TaskForm struct {
	ID    string
	Input mutate.TaskInput
	// Field and Message describe the last validation failure.
	Field   string
	Message string
}

type CalendarState struct {
	Year     int
	Month    time.Month
	Selected string
	Form     *EventForm
}

// NewCalendarState opens the calendar on today's month with today selected.
func NewCalendarState(now time.Time) CalendarState {
	return CalendarState{Year: now.Year(), Month: now.Month(), Selected: records.DateString(now)}
}

type EventForm struct {
	ID      string
	Input   mutate.EventInput
	Field   string
	Message string
}

type SettingsState struct {
	Notice string
	Error  string
}
