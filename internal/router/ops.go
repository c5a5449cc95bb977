package router

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/leonbytyqi1709-sketch/bycore/internal/model"
	"github.com/leonbytyqi1709-sketch/bycore/internal/mutate"
	"github.com/leonbytyqi1709-sketch/bycore/internal/records"
	"github.com/leonbytyqi1709-sketch/bycore/internal/store"
	"github.com/leonbytyqi1709-sketch/bycore/internal/view"
)

var ErrInvalidArgument = errors.New("invalid argument")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// write serialises collection read-modify-write cycles, including the ones the autosave timer
// runs outside mu.
func (r *Router) write(fn func() error) error {
	r.kvMu.Lock()
	defer r.kvMu.Unlock()
	return fn()
}

// Notes

// selectDefaultNoteLocked keeps the selection pointing at an existing note, falling back to the
// first sorted one.
func (r *Router) selectDefaultNoteLocked(notes []model.Note) {
	for _, n := range notes {
		if n.ID == r.notesState.SelectedID {
			return
		}
	}
	r.notesState.SelectedID = ""
	if sorted := records.SortNotes(notes); len(sorted) > 0 {
		r.notesState.SelectedID = sorted[0].ID
	}
}

func (r *Router) NewNote(ctx context.Context) (model.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.flushLocked(ctx); err != nil {
		return model.Note{}, err
	}
	var n model.Note
	err := r.write(func() error {
		var err error
		n, err = r.notes.Create(ctx, "", "")
		return err
	})
	if err != nil {
		return model.Note{}, err
	}
	r.notesState.SelectedID = n.ID
	r.notesState.Preview = false
	return n, nil
}

// SelectNote saves any pending edit to the current note before switching.
func (r *Router) SelectNote(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.flushLocked(ctx); err != nil {
		return err
	}
	r.notesState.SelectedID = id
	r.notesState.Preview = false
	return nil
}

// EditNote records an edit of the selected note. The write happens once the editor has been
// quiet for the autosave delay, or earlier on Flush.
func (r *Router) EditNote(ctx context.Context, id, title, content string) error {
	if id == "" {
		return invalid("note id is empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.notesState.SelectedID != id {
		if err := r.flushLocked(ctx); err != nil {
			return err
		}
		r.notesState.SelectedID = id
	}
	r.notesState.Draft = &view.NoteDraft{ID: id, Title: title, Content: content}
	r.autosave.Touch(func(ctx context.Context) error {
		return r.write(func() error {
			_, err := r.notes.Update(ctx, id, title, content)
			return err
		})
	})
	return nil
}

func (r *Router) TogglePin(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.flushLocked(ctx); err != nil {
		return err
	}
	return r.write(func() error {
		_, err := r.notes.TogglePin(ctx, id)
		return err
	})
}

// DeleteNote drops any pending edit of the note, deletes it and selects the first remaining one.
func (r *Router) DeleteNote(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d := r.notesState.Draft; d != nil && d.ID == id {
		r.autosave.Cancel()
		r.notesState.Draft = nil
	}
	if err := r.flushLocked(ctx); err != nil {
		return err
	}
	return r.write(func() error {
		next, _, err := r.notes.Delete(ctx, id)
		if err != nil {
			return err
		}
		r.notesState.SelectedID = next
		return nil
	})
}

func (r *Router) SetNoteQuery(q string) {
	r.mu.Lock()
	r.notesState.Query = q
	r.mu.Unlock()
}

func (r *Router) SetNotePreview(on bool) {
	r.mu.Lock()
	r.notesState.Preview = on
	r.mu.Unlock()
}

// Tasks

func (r *Router) SetTaskFilter(f string) error {
	if !records.ValidFilter(f) {
		return invalid("task filter %q", f)
	}
	r.mu.Lock()
	r.tasksState.Filter = f
	r.mu.Unlock()
	return nil
}

func (r *Router) SetTaskMode(mode string) error {
	if mode != view.ModeKanban && mode != view.ModeList {
		return invalid("task view %q", mode)
	}
	r.mu.Lock()
	r.tasksState.Mode = mode
	r.mu.Unlock()
	return nil
}

// OpenTaskForm opens the modal empty (id == "") or filled from the task.
func (r *Router) OpenTaskForm(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	form := &view.TaskForm{Input: mutate.TaskInput{Priority: model.PriorityNormal, Status: model.StatusTodo}}
	if id != "" {
		t, err := r.tasks.Get(ctx, id)
		if err != nil {
			return err
		}
		form.ID = t.ID
		form.Input = mutate.TaskInput{
			Title:       t.Title,
			Description: t.Description,
			Priority:    t.Priority,
			Status:      t.Status,
			DueDate:     t.DueDate,
		}
	}
	r.tasksState.Form = form
	return nil
}

func (r *Router) CloseTaskForm() {
	r.mu.Lock()
	r.tasksState.Form = nil
	r.mu.Unlock()
}

// SubmitTask creates (id == "") or updates a task. A rejected input keeps the form open with
// the offending field marked, and the ValidationError is returned.
func (r *Router) SubmitTask(ctx context.Context, id string, in mutate.TaskInput) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	err := r.write(func() error {
		if id == "" {
			_, err := r.tasks.Create(ctx, in)
			return err
		}
		_, err := r.tasks.Update(ctx, id, in)
		return err
	})
	var verr mutate.ValidationError
	if errors.As(err, &verr) {
		r.tasksState.Form = &view.TaskForm{ID: id, Input: in, Field: verr.Field, Message: verr.Error()}
		return err
	}
	if err != nil {
		return err
	}
	r.tasksState.Form = nil
	return nil
}

func (r *Router) ToggleTask(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.write(func() error {
		_, err := r.tasks.ToggleDone(ctx, id)
		return err
	})
}

func (r *Router) MoveTask(ctx context.Context, id string, status model.Status) error {
	if !status.Valid() {
		return invalid("task status %q", status)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.write(func() error {
		_, err := r.tasks.Move(ctx, id, status)
		return err
	})
}

func (r *Router) DeleteTask(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.write(func() error {
		_, err := r.tasks.Delete(ctx, id)
		return err
	})
}

// Calendar

func (r *Router) ShiftMonth(delta int) {
	r.mu.Lock()
	r.calState.Year, r.calState.Month = records.ShiftMonth(r.calState.Year, r.calState.Month, delta)
	r.mu.Unlock()
}

// CalendarToday jumps back to the current month and selects today.
func (r *Router) CalendarToday() {
	r.mu.Lock()
	form := r.calState.Form
	r.calState = view.NewCalendarState(r.now())
	r.calState.Form = form
	r.mu.Unlock()
}

func (r *Router) SelectDate(date string) error {
	if _, err := time.Parse(records.DateLayout, date); err != nil {
		return invalid("date %q", date)
	}
	r.mu.Lock()
	r.calState.Selected = date
	r.mu.Unlock()
	return nil
}

// OpenEventForm opens the modal for a new event on date (the selected day when empty), or
// filled from an existing event when id is set.
func (r *Router) OpenEventForm(ctx context.Context, id, date string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if date == "" {
		date = r.calState.Selected
	}
	form := &view.EventForm{Input: mutate.EventInput{Date: date, Color: model.ColorBlue}}
	if id != "" {
		e, err := r.events.Get(ctx, id)
		if err != nil {
			return err
		}
		form.ID = e.ID
		form.Input = mutate.EventInput{
			Title:       e.Title,
			Description: e.Description,
			Date:        e.Date,
			StartTime:   e.StartTime,
			EndTime:     e.EndTime,
			Color:       e.Color,
		}
	}
	r.calState.Form = form
	return nil
}

func (r *Router) CloseEventForm() {
	r.mu.Lock()
	r.calState.Form = nil
	r.mu.Unlock()
}

// SubmitEvent creates (id == "") or updates an event and selects its day.
func (r *Router) SubmitEvent(ctx context.Context, id string, in mutate.EventInput) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	err := r.write(func() error {
		if id == "" {
			_, err := r.events.Create(ctx, in)
			return err
		}
		_, err := r.events.Update(ctx, id, in)
		return err
	})
	var verr mutate.ValidationError
	if errors.As(err, &verr) {
		r.calState.Form = &view.EventForm{ID: id, Input: in, Field: verr.Field, Message: verr.Error()}
		return err
	}
	if err != nil {
		return err
	}
	r.calState.Form = nil
	r.calState.Selected = in.Date
	return nil
}

func (r *Router) DeleteEvent(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.write(func() error {
		_, err := r.events.Delete(ctx, id)
		return err
	})
}

// Settings

func (r *Router) SetUsername(ctx context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := store.SetUsername(ctx, r.kv, name); err != nil {
		return err
	}
	r.settingState = view.SettingsState{Notice: "Name saved."}
	return nil
}

func (r *Router) SetTheme(ctx context.Context, theme model.Theme) error {
	if !theme.Valid() {
		return invalid("theme %q", theme)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return store.SetTheme(ctx, r.kv, theme)
}

// Import overwrites stored keys from a backup document and reloads every module from storage.
// An unreadable document writes nothing and is reported on the settings page.
func (r *Router) Import(ctx context.Context, doc []byte) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.flushLocked(ctx); err != nil {
		return nil, err
	}
	var keys []string
	err := r.write(func() error {
		var err error
		keys, err = store.Import(ctx, r.kv, doc)
		return err
	})
	if err != nil {
		r.settingState = view.SettingsState{Error: err.Error()}
		return nil, err
	}
	r.log.Info("backup imported", zap.Int("keys", len(keys)))
	if err := r.reloadLocked(ctx); err != nil {
		return keys, err
	}
	r.settingState = view.SettingsState{Notice: fmt.Sprintf("Imported %d keys.", len(keys))}
	return keys, nil
}

// Reset deletes all application data, drops any pending edit and returns to the dashboard.
func (r *Router) Reset(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.autosave.Cancel()
	r.notesState.Draft = nil
	var n int
	err := r.write(func() error {
		var err error
		n, err = store.Reset(ctx, r.kv)
		return err
	})
	if err != nil {
		return 0, err
	}
	r.log.Info("data reset", zap.Int("keys", n))
	r.resetState()
	return n, r.loadLocked(ctx, model.ModuleDashboard)
}

// reloadLocked discards all transient state and re-enters the persisted module.
func (r *Router) reloadLocked(ctx context.Context) error {
	r.resetState()
	name, err := store.ActiveModule(ctx, r.kv)
	if err != nil {
		return err
	}
	r.active = ""
	return r.loadLocked(ctx, name)
}
