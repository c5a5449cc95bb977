package mutate

import (
	"strings"
	"time"

	"github.com/leonbytyqi1709-sketch/bycore/internal/model"
)

const dateLayout = "2006-01-02"

type TaskInput struct {
	Title       string
	Description string
	Priority    model.Priority
	Status      model.Status
	DueDate     string
}

type TaskResult struct {
	Tasks   []model.Task
	Task    *model.Task
	Changed bool
}

func (in *TaskInput) normalize() error {
	in.Title = strings.TrimSpace(in.Title)
	in.DueDate = strings.TrimSpace(in.DueDate)
	if in.Title == "" {
		return ValidationError{Field: "title", Reason: "required"}
	}
	if in.Priority == "" {
		in.Priority = model.PriorityNormal
	}
	if !in.Priority.Valid() {
		return ValidationError{Field: "priority", Reason: string(in.Priority)}
	}
	if in.Status == "" {
		in.Status = model.StatusTodo
	}
	if !in.Status.Valid() {
		return ValidationError{Field: "status", Reason: string(in.Status)}
	}
	if in.DueDate != "" {
		if _, err := time.Parse(dateLayout, in.DueDate); err != nil {
			return ValidationError{Field: "dueDate", Reason: "expected YYYY-MM-DD"}
		}
	}
	return nil
}

// CreateTask prepends a task. New tasks always start in todo, whatever in.Status says.
func CreateTask(tasks []model.Task, in TaskInput, now time.Time) (TaskResult, error) {
	in.Status = ""
	if err := in.normalize(); err != nil {
		return TaskResult{Tasks: tasks}, err
	}
	now = now.UTC()
	t := model.Task{
		ID:          NewID(now, idSet(tasks, func(t model.Task) string { return t.ID })),
		Title:       in.Title,
		Description: in.Description,
		Priority:    in.Priority,
		Created:     now,
		DueDate:     in.DueDate,
	}
	t.SetStatus(model.StatusTodo)
	out := make([]model.Task, 0, len(tasks)+1)
	out = append(out, t)
	out = append(out, tasks...)
	return TaskResult{Tasks: out, Task: &out[0], Changed: true}, nil
}

// UpdateTask overwrites every editable field. Input is validated before the lookup, so a bad
// form is reported even for a task that has since been deleted.
func UpdateTask(tasks []model.Task, id string, in TaskInput) (TaskResult, error) {
	if err := in.normalize(); err != nil {
		return TaskResult{Tasks: tasks}, err
	}
	i := findTask(tasks, id)
	if i < 0 {
		return TaskResult{Tasks: tasks}, nil
	}
	t := &tasks[i]
	t.Title = in.Title
	t.Description = in.Description
	t.Priority = in.Priority
	t.DueDate = in.DueDate
	t.SetStatus(in.Status)
	return TaskResult{Tasks: tasks, Task: t, Changed: true}, nil
}

// ToggleTaskDone flips done; the status follows (done or back to todo).
func ToggleTaskDone(tasks []model.Task, id string) TaskResult {
	i := findTask(tasks, id)
	if i < 0 {
		return TaskResult{Tasks: tasks}
	}
	t := &tasks[i]
	if t.Done {
		t.SetStatus(model.StatusTodo)
	} else {
		t.SetStatus(model.StatusDone)
	}
	return TaskResult{Tasks: tasks, Task: t, Changed: true}
}

func MoveTask(tasks []model.Task, id string, status model.Status) (TaskResult, error) {
	if !status.Valid() {
		return TaskResult{Tasks: tasks}, ValidationError{Field: "status", Reason: string(status)}
	}
	i := findTask(tasks, id)
	if i < 0 {
		return TaskResult{Tasks: tasks}, nil
	}
	t := &tasks[i]
	if t.Status == status && t.Done == (status == model.StatusDone) {
		return TaskResult{Tasks: tasks, Task: t}, nil
	}
	t.SetStatus(status)
	return TaskResult{Tasks: tasks, Task: t, Changed: true}, nil
}

func DeleteTask(tasks []model.Task, id string) TaskResult {
	i := findTask(tasks, id)
	if i < 0 {
		return TaskResult{Tasks: tasks}
	}
	out := make([]model.Task, 0, len(tasks)-1)
	out = append(out, tasks[:i]...)
	out = append(out, tasks[i+1:]...)
	return TaskResult{Tasks: out, Changed: true}
}

func findTask(tasks []model.Task, id string) int {
	for i := range tasks {
		if tasks[i].ID == id {
			return i
		}
	}
	return -1
}
