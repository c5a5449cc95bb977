package view

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/leonbytyqi1709-sketch/bycore/internal/autosave"
	"github.com/leonbytyqi1709-sketch/bycore/internal/model"
	"github.com/leonbytyqi1709-sketch/bycore/internal/mutate"
	"github.com/leonbytyqi1709-sketch/bycore/internal/records"
	"github.com/leonbytyqi1709-sketch/bycore/internal/store"
)

var now = time.Date(2025, 6, 10, 14, 30, 5, 0, time.UTC)

func newRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := New(Options{})
	require.NoError(t, err)
	return r
}

func sampleNotes() []model.Note {
	return []model.Note{
		{ID: "1", Title: "Old", Content: "old body", Updated: now.Add(-2 * time.Hour)},
		{ID: "2", Title: "", Content: "# Heading\n\n**bold**", Updated: now.Add(-time.Hour)},
		{ID: "3", Title: "Pinned", Content: "pin", Updated: now.Add(-3 * time.Hour), Pinned: true},
	}
}

func sampleTasks() []model.Task {
	return []model.Task{
		{ID: "t1", Title: "Write report", Priority: model.PriorityImportant, Status: model.StatusTodo, DueDate: "2025-06-01"},
		{ID: "t2", Title: "Review", Priority: model.PriorityNormal, Status: model.StatusProgress},
		{ID: "t3", Title: "Ship", Priority: model.PriorityOptional, Status: model.StatusDone, Done: true, DueDate: "2025-06-01"},
	}
}

func sampleEvents() []model.CalendarEvent {
	return []model.CalendarEvent{
		{ID: "e1", Title: "Yesterday", Date: "2025-06-09", StartTime: "09:00", Color: model.ColorRed},
		{ID: "e2", Title: "Standup", Date: "2025-06-10", StartTime: "09:30", EndTime: "09:45", Color: model.ColorBlue},
		{ID: "e3", Title: "Lunch", Date: "2025-06-10", StartTime: "12:00", Color: model.ColorGreen},
		{ID: "e4", Title: "Retro", Date: "2025-06-12", Color: model.ColorPurple},
	}
}

func TestRender_IsDeterministic(t *testing.T) {
	r := newRenderer(t)
	renders := map[string]func() (string, error){
		"dashboard": func() (string, error) {
			return r.Dashboard(DashboardData{Now: now, Username: "Ada", Notes: sampleNotes(), Tasks: sampleTasks(), Events: sampleEvents()})
		},
		"notes": func() (string, error) {
			return r.Notes(sampleNotes(), NotesState{SelectedID: "2", Preview: true})
		},
		"tasks": func() (string, error) {
			return r.Tasks(sampleTasks(), DefaultTasksState(), now)
		},
		"calendar": func() (string, error) {
			return r.Calendar(sampleEvents(), NewCalendarState(now), "2025-06-10")
		},
		"system": func() (string, error) {
			return r.System(SystemData{Usage: store.Usage{Keys: 3, Bytes: 2048}})
		},
		"settings": func() (string, error) {
			return r.Settings(SettingsData{Username: "Ada", Theme: model.ThemeLight})
		},
	}
	for name, render := range renders {
		t.Run(name, func(t *testing.T) {
			a, err := render()
			require.NoError(t, err)
			b, err := render()
			require.NoError(t, err)
			if diff := cmp.Diff(a, b); diff != "" {
				t.Fatalf("render not deterministic (-first +second):\n%s", diff)
			}
			require.NotContains(t, a, "ZgotmplZ")
		})
	}
}

func TestApp_NavAndTheme(t *testing.T) {
	r := newRenderer(t)
	out, err := r.App(AppData{Theme: model.ThemeLight, Active: model.ModuleTasks, Module: "<p>x</p>"})
	require.NoError(t, err)
	require.Contains(t, out, `id="bycore-main"`)
	require.Contains(t, out, `data-theme="light"`)
	require.Contains(t, out, `class="nav-item active" data-module="tasks"`)
	require.Contains(t, out, "<p>x</p>")
	require.Contains(t, out, "module=notes")

	out, err = r.App(AppData{Active: model.ModuleNotes})
	require.NoError(t, err)
	require.Contains(t, out, `data-theme="dark"`, "unknown theme falls back to dark")
}

func TestPage_EmbedsStreamAndMain(t *testing.T) {
	r := newRenderer(t)
	out, err := r.Page(PageData{Main: `<div id="bycore-main"></div>`, DatastarURL: "/static/datastar.js", StreamURL: "/events"})
	require.NoError(t, err)
	require.Contains(t, out, `data-init="@get('/events')"`)
	require.Contains(t, out, `src="/static/datastar.js"`)
	require.Contains(t, out, `<div id="bycore-main"></div>`)
}

func TestDashboard_Content(t *testing.T) {
	r := newRenderer(t)
	out, err := r.Dashboard(DashboardData{Now: now, Username: "Ada", Notes: sampleNotes(), Tasks: sampleTasks(), Events: sampleEvents()})
	require.NoError(t, err)
	require.Contains(t, out, "Good afternoon,")
	require.Contains(t, out, "Ada 👋")
	require.Contains(t, out, "14:30:05")
	require.Contains(t, out, "Tuesday, June 10, 2025")
	// 1 of 3 tasks done.
	require.Contains(t, out, `<span class="dash-ring-num">33%</span>`)
	require.Contains(t, out, `stroke-dasharray="82.9 251.2"`)
	require.NotContains(t, out, "Yesterday")
	require.Contains(t, out, "Standup")
	require.Contains(t, out, "Today")
	require.Contains(t, out, QuoteFor(now).Author)
}

func TestGreetingAndQuote(t *testing.T) {
	require.Equal(t, "Good morning", Greeting(0))
	require.Equal(t, "Good morning", Greeting(11))
	require.Equal(t, "Good afternoon", Greeting(12))
	require.Equal(t, "Good evening", Greeting(18))

	morning := time.Date(2025, 6, 10, 1, 0, 0, 0, time.UTC)
	night := time.Date(2025, 6, 10, 23, 0, 0, 0, time.UTC)
	require.Equal(t, QuoteFor(morning), QuoteFor(night))
	require.NotEqual(t, QuoteFor(morning), QuoteFor(morning.AddDate(0, 0, 1)))
}

func TestNotes_SortedSidebarAndEditor(t *testing.T) {
	r := newRenderer(t)
	out, err := r.Notes(sampleNotes(), NotesState{SelectedID: "2", SaveStatus: autosave.StatusEditing})
	require.NoError(t, err)

	pinned := strings.Index(out, `data-note-id="3"`)
	newer := strings.Index(out, `data-note-id="2"`)
	older := strings.Index(out, `data-note-id="1"`)
	require.True(t, pinned < newer && newer < older, "sidebar order: pinned, then newest")

	require.Contains(t, out, "Untitled")
	require.Contains(t, out, `<textarea class="note-textarea" name="content"`)
	require.Contains(t, out, "Saving…")
	require.Contains(t, out, "19 characters · 3 words")
}

func TestNotes_PreviewAndDraft(t *testing.T) {
	r := newRenderer(t)
	st := NotesState{SelectedID: "2", Preview: true, Draft: &NoteDraft{ID: "2", Title: "Draft title", Content: "**draft**"}}
	out, err := r.Notes(sampleNotes(), st)
	require.NoError(t, err)
	require.Contains(t, out, "<strong>draft</strong>")
	require.Contains(t, out, `value="Draft title"`)
	require.NotContains(t, out, "<textarea")
}

func TestNotes_SanitizerRunsOnPreview(t *testing.T) {
	r, err := New(Options{Sanitize: func(s string) string { return strings.ReplaceAll(s, "strong", "b") }})
	require.NoError(t, err)
	out, err := r.Notes(sampleNotes(), NotesState{SelectedID: "2", Preview: true})
	require.NoError(t, err)
	require.Contains(t, out, "<b>bold</b>")
}

func TestNotes_SearchAndEmpty(t *testing.T) {
	r := newRenderer(t)
	out, err := r.Notes(sampleNotes(), NotesState{Query: "PIN"})
	require.NoError(t, err)
	require.Contains(t, out, `data-note-id="3"`)
	require.NotContains(t, out, `data-note-id="1"`)
	require.Contains(t, out, "Pick a note")

	out, err = r.Notes(nil, NotesState{})
	require.NoError(t, err)
	require.Contains(t, out, "No notes yet")
}

func TestTasks_KanbanColumnsAndOverdue(t *testing.T) {
	r := newRenderer(t)
	out, err := r.Tasks(sampleTasks(), DefaultTasksState(), now)
	require.NoError(t, err)
	require.Equal(t, 3, strings.Count(out, `class="kanban-column"`))
	require.Contains(t, out, `task-due-tag overdue`)
	require.Equal(t, 1, strings.Count(out, "overdue"), "done tasks are never overdue")
	require.Contains(t, out, "status=progress")
	require.Contains(t, out, `data-on:drop=`)
}

func TestTasks_FilterListAndForm(t *testing.T) {
	r := newRenderer(t)
	st := TasksState{Filter: string(model.PriorityImportant), Mode: ModeList, Form: &TaskForm{
		Input:   mutate.TaskInput{Title: "", Priority: model.PriorityOptional},
		Field:   "title",
		Message: "invalid title: required",
	}}
	out, err := r.Tasks(sampleTasks(), st, now)
	require.NoError(t, err)
	require.Contains(t, out, "Write report")
	require.NotContains(t, out, "Review")
	require.Contains(t, out, `class="tasks-list-view"`)
	require.Contains(t, out, "New task")
	require.Contains(t, out, "modal-input input-error")
	require.Contains(t, out, `<option value="optional" selected>`)
	require.Contains(t, out, "invalid title: required")
}

func TestCalendar_GridSidebarAndUpcoming(t *testing.T) {
	r := newRenderer(t)
	out, err := r.Calendar(sampleEvents(), NewCalendarState(now), "2025-06-10")
	require.NoError(t, err)
	require.Contains(t, out, "June 2025")
	require.Equal(t, records.GridCells, strings.Count(out, `data-date=`))
	require.Contains(t, out, `class="calendar-day today selected" data-date="2025-06-10"`)
	require.Contains(t, out, "Tuesday")
	require.Contains(t, out, "09:30 – 09:45")

	standup := strings.Index(out, `<div class="sidebar-event-title">Standup`)
	lunch := strings.Index(out, `<div class="sidebar-event-title">Lunch`)
	require.True(t, standup > 0 && standup < lunch)

	upcoming := out[strings.Index(out, "calendar-upcoming"):]
	require.NotContains(t, upcoming, "Yesterday")
	require.Contains(t, upcoming, "Retro")
}

func TestSystem_WaitingAndSnapshot(t *testing.T) {
	r := newRenderer(t)
	out, err := r.System(SystemData{})
	require.NoError(t, err)
	require.Contains(t, out, "Waiting for the first system snapshot")

	snap := &model.SystemSnapshot{
		CPU:     12.4,
		RAM:     model.Usage{Used: 4 << 30, Total: 16 << 30},
		Disk:    model.Usage{Used: 50 << 30, Total: 200 << 30},
		Network: model.Network{Online: true, Speed: "1000 Mbit/s"},
		TakenAt: now,
	}
	out, err = r.System(SystemData{Snapshot: snap, Usage: store.Usage{Keys: 2, Bytes: 1536}})
	require.NoError(t, err)
	require.Contains(t, out, "Online")
	require.Contains(t, out, "12%")
	require.Contains(t, out, "4.0 GiB / 16 GiB")
	require.Contains(t, out, "25.0%")
	require.Contains(t, out, "1.5 KiB")
}

func TestSettings_FlashMessages(t *testing.T) {
	r := newRenderer(t)
	out, err := r.Settings(SettingsData{Username: "Ada", State: SettingsState{Error: "invalid file"}})
	require.NoError(t, err)
	require.Contains(t, out, `value="Ada"`)
	require.Contains(t, out, "invalid file")
	require.Contains(t, out, `class="settings-theme-btn active"`)
}

func TestErrorPanel(t *testing.T) {
	r := newRenderer(t)
	out, err := r.ErrorPanel("notes", errors.New("corrupt collection bycore-notes"))
	require.NoError(t, err)
	require.Contains(t, out, "corrupt collection bycore-notes")
}
