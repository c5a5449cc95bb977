package router

import (
	"context"
	"strings"

	"github.com/leonbytyqi1709-sketch/bycore/internal/model"
	"github.com/leonbytyqi1709-sketch/bycore/internal/mutate"
	"github.com/leonbytyqi1709-sketch/bycore/internal/view"
)

// Params carries an action's arguments: the bound query parameters merged with any submitted
// form fields.
type Params interface {
	Get(key string) string
}

// Dispatch runs a bound page action. Backup imports carry a file and go through Import instead.
func (r *Router) Dispatch(ctx context.Context, a view.Action, p Params) error {
	switch a {
	case view.ModuleLoad:
		return r.Load(ctx, p.Get("module"))

	case view.NoteNew:
		_, err := r.NewNote(ctx)
		return err
	case view.NoteSelect:
		return r.SelectNote(ctx, p.Get("id"))
	case view.NoteEdit:
		return r.EditNote(ctx, p.Get("id"), p.Get("title"), p.Get("content"))
	case view.NotePin:
		return r.TogglePin(ctx, p.Get("id"))
	case view.NoteDelete:
		return r.DeleteNote(ctx, p.Get("id"))
	case view.NotePreview:
		r.SetNotePreview(true)
		return nil
	case view.NoteWrite:
		r.SetNotePreview(false)
		return nil
	case view.NoteSearch:
		r.SetNoteQuery(p.Get("q"))
		return nil

	case view.TaskNew:
		return r.OpenTaskForm(ctx, "")
	case view.TaskEdit:
		return r.OpenTaskForm(ctx, p.Get("id"))
	case view.TaskCancel:
		r.CloseTaskForm()
		return nil
	case view.TaskSave:
		return r.SubmitTask(ctx, p.Get("id"), mutate.TaskInput{
			Title:       strings.TrimSpace(p.Get("title")),
			Description: strings.TrimSpace(p.Get("description")),
			Priority:    model.Priority(p.Get("priority")),
			Status:      model.Status(p.Get("status")),
			DueDate:     p.Get("dueDate"),
		})
	case view.TaskToggle:
		return r.ToggleTask(ctx, p.Get("id"))
	case view.TaskMove, view.TaskDrop, view.TaskStatus:
		return r.MoveTask(ctx, p.Get("id"), model.Status(p.Get("status")))
	case view.TaskDelete:
		return r.DeleteTask(ctx, p.Get("id"))
	case view.TaskFilter:
		return r.SetTaskFilter(p.Get("filter"))
	case view.TaskMode:
		return r.SetTaskMode(p.Get("mode"))

	case view.CalendarPrev:
		r.ShiftMonth(-1)
		return nil
	case view.CalendarNext:
		r.ShiftMonth(1)
		return nil
	case view.CalendarToday:
		r.CalendarToday()
		return nil
	case view.CalendarSelect:
		return r.SelectDate(p.Get("date"))
	case view.EventNew:
		return r.OpenEventForm(ctx, "", p.Get("date"))
	case view.EventEdit:
		return r.OpenEventForm(ctx, p.Get("id"), "")
	case view.EventCancel:
		r.CloseEventForm()
		return nil
	case view.EventSave:
		return r.SubmitEvent(ctx, p.Get("id"), mutate.EventInput{
			Title:       strings.TrimSpace(p.Get("title")),
			Description: strings.TrimSpace(p.Get("description")),
			Date:        p.Get("date"),
			StartTime:   p.Get("startTime"),
			EndTime:     p.Get("endTime"),
			Color:       model.Color(p.Get("color")),
		})
	case view.EventDelete:
		return r.DeleteEvent(ctx, p.Get("id"))

	case view.SettingsName:
		return r.SetUsername(ctx, p.Get("username"))
	case view.SettingsTheme:
		return r.SetTheme(ctx, model.Theme(p.Get("theme")))
	case view.ResetAll:
		_, err := r.Reset(ctx)
		return err
	}
	return invalid("action %q", a)
}
