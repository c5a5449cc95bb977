package model

import "time"

// Note is a free-form Markdown note.
type Note struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	Content string    `json:"content"`
	Created time.Time `json:"created"`
	Updated time.Time `json:"updated"`
	Pinned  bool      `json:"pinned"`
}

type Priority string

const (
	PriorityImportant Priority = "important"
	PriorityNormal    Priority = "normal"
	PriorityOptional  Priority = "optional"
)

// Priorities lists priorities in display order.
var Priorities = []Priority{PriorityImportant, PriorityNormal, PriorityOptional}

func (p Priority) Valid() bool {
	switch p {
	case PriorityImportant, PriorityNormal, PriorityOptional:
		return true
	}
	return false
}

type Status string

const (
	StatusTodo     Status = "todo"
	StatusProgress Status = "progress"
	StatusDone     Status = "done"
)

// Statuses lists statuses in board column order.
var Statuses = []Status{StatusTodo, StatusProgress, StatusDone}

func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusProgress, StatusDone:
		return true
	}
	return false
}

// Task is a board card. Done mirrors Status == StatusDone and must never diverge from it.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Priority    Priority  `json:"priority"`
	Status      Status    `json:"status"`
	Done        bool      `json:"done"`
	Created     time.Time `json:"created"`
	DueDate     string    `json:"dueDate"` // YYYY-MM-DD or ""
}

// SetStatus sets the status and re-derives Done.
func (t *Task) SetStatus(s Status) {
	t.Status = s
	t.Done = s == StatusDone
}

type Color string

const (
	ColorBlue   Color = "blue"
	ColorGreen  Color = "green"
	ColorRed    Color = "red"
	ColorOrange Color = "orange"
	ColorPurple Color = "purple"
)

var Colors = []Color{ColorBlue, ColorGreen, ColorRed, ColorOrange, ColorPurple}

func (c Color) Valid() bool {
	switch c {
	case ColorBlue, ColorGreen, ColorRed, ColorOrange, ColorPurple:
		return true
	}
	return false
}

// CalendarEvent is a dated appointment. Date is YYYY-MM-DD; StartTime/EndTime are zero-padded HH:MM
// (or empty), so string order equals chronological order.
type CalendarEvent struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        string    `json:"date"`
	StartTime   string    `json:"startTime"`
	EndTime     string    `json:"endTime"`
	Color       Color     `json:"color"`
	Created     time.Time `json:"created"`
}

type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

func (t Theme) Valid() bool { return t == ThemeDark || t == ThemeLight }

// Module names accepted by the router.
const (
	ModuleDashboard = "dashboard"
	ModuleNotes     = "notes"
	ModuleTasks     = "tasks"
	ModuleCalendar  = "calendar"
	ModuleSystem    = "system"
	ModuleSettings  = "settings"
)

var Modules = []string{ModuleDashboard, ModuleNotes, ModuleTasks, ModuleCalendar, ModuleSystem, ModuleSettings}

func ValidModule(name string) bool {
	for _, m := range Modules {
		if m == name {
			return true
		}
	}
	return false
}
