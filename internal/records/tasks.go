package records

import (
	"context"
	"time"

	"github.com/leonbytyqi1709-sketch/bycore/internal/model"
	"github.com/leonbytyqi1709-sketch/bycore/internal/mutate"
	"github.com/leonbytyqi1709-sketch/bycore/internal/store"
)

const FilterAll = "all"

type Tasks struct {
	kv  store.KV
	now Clock
}

func NewTasks(kv store.KV, now Clock) *Tasks {
	return &Tasks{kv: kv, now: orNow(now)}
}

func (m *Tasks) Load(ctx context.Context) ([]model.Task, error) {
	return store.LoadCollection[model.Task](ctx, m.kv, store.KeyTasks)
}

func (m *Tasks) Save(ctx context.Context, tasks []model.Task) error {
	return store.SaveCollection(ctx, m.kv, store.KeyTasks, tasks)
}

func (m *Tasks) Get(ctx context.Context, id string) (model.Task, error) {
	tasks, err := m.Load(ctx)
	if err != nil {
		return model.Task{}, err
	}
	for _, t := range tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return model.Task{}, mutate.NotFoundError{Kind: "task", ID: id}
}

func (m *Tasks) Create(ctx context.Context, in mutate.TaskInput) (model.Task, error) {
	tasks, err := m.Load(ctx)
	if err != nil {
		return model.Task{}, err
	}
	res, err := mutate.CreateTask(tasks, in, m.now())
	if err != nil {
		return model.Task{}, err
	}
	if err := m.Save(ctx, res.Tasks); err != nil {
		return model.Task{}, err
	}
	return *res.Task, nil
}

func (m *Tasks) Update(ctx context.Context, id string, in mutate.TaskInput) (bool, error) {
	tasks, err := m.Load(ctx)
	if err != nil {
		return false, err
	}
	res, err := mutate.UpdateTask(tasks, id, in)
	if err != nil || !res.Changed {
		return false, err
	}
	return true, m.Save(ctx, res.Tasks)
}

func (m *Tasks) ToggleDone(ctx context.Context, id string) (bool, error) {
	tasks, err := m.Load(ctx)
	if err != nil {
		return false, err
	}
	res := mutate.ToggleTaskDone(tasks, id)
	if !res.Changed {
		return false, nil
	}
	return true, m.Save(ctx, res.Tasks)
}

func (m *Tasks) Move(ctx context.Context, id string, status model.Status) (bool, error) {
	tasks, err := m.Load(ctx)
	if err != nil {
		return false, err
	}
	res, err := mutate.MoveTask(tasks, id, status)
	if err != nil || !res.Changed {
		return false, err
	}
	return true, m.Save(ctx, res.Tasks)
}

func (m *Tasks) Delete(ctx context.Context, id string) (bool, error) {
	tasks, err := m.Load(ctx)
	if err != nil {
		return false, err
	}
	res := mutate.DeleteTask(tasks, id)
	if !res.Changed {
		return false, nil
	}
	return true, m.Save(ctx, res.Tasks)
}

// ValidFilter reports whether f is "all" or a priority.
func ValidFilter(f string) bool {
	return f == FilterAll || model.Priority(f).Valid()
}

// FilterTasks keeps tasks of the given priority; "all" (or "") keeps everything.
func FilterTasks(tasks []model.Task, filter string) []model.Task {
	if filter == "" || filter == FilterAll {
		return tasks
	}
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if string(t.Priority) == filter {
			out = append(out, t)
		}
	}
	return out
}

// Columns is the kanban partition of a task list, each column in collection order.
type Columns struct {
	Todo     []model.Task
	Progress []model.Task
	Done     []model.Task
}

func (c Columns) ByStatus(s model.Status) []model.Task {
	switch s {
	case model.StatusProgress:
		return c.Progress
	case model.StatusDone:
		return c.Done
	default:
		return c.Todo
	}
}

func PartitionTasks(tasks []model.Task) Columns {
	var c Columns
	for _, t := range tasks {
		switch t.Status {
		case model.StatusProgress:
			c.Progress = append(c.Progress, t)
		case model.StatusDone:
			c.Done = append(c.Done, t)
		default:
			c.Todo = append(c.Todo, t)
		}
	}
	return c
}

// IsOverdue reports whether due (YYYY-MM-DD) is strictly before today. Blank or unparseable
// dates are never overdue.
func IsOverdue(due string, today time.Time) bool {
	if due == "" {
		return false
	}
	if _, err := time.Parse(DateLayout, due); err != nil {
		return false
	}
	return due < DateString(today)
}

type TaskSummary struct {
	Total     int `json:"total"`
	Open      int `json:"open"`
	Done      int `json:"done"`
	Important int `json:"important"`
	Normal    int `json:"normal"`
	Optional  int `json:"optional"`
	// Percent is done/total rounded to the nearest integer; 0 for no tasks.
	Percent int `json:"percent"`
}

func Summarize(tasks []model.Task) TaskSummary {
	s := TaskSummary{Total: len(tasks)}
	for _, t := range tasks {
		if t.Done {
			s.Done++
			continue
		}
		s.Open++
		switch t.Priority {
		case model.PriorityImportant:
			s.Important++
		case model.PriorityNormal:
			s.Normal++
		case model.PriorityOptional:
			s.Optional++
		}
	}
	if s.Total > 0 {
		s.Percent = (s.Done*100 + s.Total/2) / s.Total
	}
	return s
}
