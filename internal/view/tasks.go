package view

import (
	"time"

	"github.com/leonbytyqi1709-sketch/bycore/internal/model"
	"github.com/leonbytyqi1709-sketch/bycore/internal/records"
)

var priorityIcons = map[model.Priority]string{
	model.PriorityImportant: "🔴",
	model.PriorityNormal:    "🟡",
	model.PriorityOptional:  "🟢",
}

var priorityText = map[model.Priority]string{
	model.PriorityImportant: "Important",
	model.PriorityNormal:    "Normal",
	model.PriorityOptional:  "Optional",
}

var statusText = map[model.Status]string{
	model.StatusTodo:     "To Do",
	model.StatusProgress: "In Progress",
	model.StatusDone:     "Done",
}

var columnIcons = map[model.Status]string{
	model.StatusTodo:     "📋",
	model.StatusProgress: "🔄",
	model.StatusDone:     "✅",
}

// nextMove is the single forward (or reopen) step offered on a kanban card.
var nextMove = map[model.Status]struct {
	To    model.Status
	Icon  string
	Label string
	Class string
}{
	model.StatusTodo:     {model.StatusProgress, "▶️", "Start", "accent"},
	model.StatusProgress: {model.StatusDone, "✅", "Finish", "success"},
	model.StatusDone:     {model.StatusTodo, "↩️", "Reopen", ""},
}

type option struct {
	Value    string
	Label    string
	Selected bool
}

type taskVM struct {
	ID           string
	Title        string
	Description  string
	Short        string
	Priority     model.Priority
	PriorityIcon string
	PriorityText string
	Status       model.Status
	Statuses     []option
	Done         bool
	Due          string
	Overdue      bool
	MoveTo       string
	MoveIcon     string
	MoveLabel    string
	MoveClass    string
}

type columnVM struct {
	Status string
	Icon   string
	Title  string
	Cards  []taskVM
}

type taskFormVM struct {
	ID          string
	Heading     string
	Title       string
	Description string
	DueDate     string
	Priorities  []option
	Statuses    []option
	Field       string
	Message     string
}

type tasksVM struct {
	Mode    string
	Tabs    []option
	Columns []columnVM
	List    []taskVM
	Form    *taskFormVM
}

func newTaskVM(t model.Task, today time.Time) taskVM {
	vm := taskVM{
		ID:           t.ID,
		Title:        t.Title,
		Description:  t.Description,
		Short:        truncateRunes(t.Description, 50),
		Priority:     t.Priority,
		PriorityIcon: priorityIcons[t.Priority],
		PriorityText: priorityText[t.Priority],
		Status:       t.Status,
		Done:         t.Done,
		Overdue:      !t.Done && records.IsOverdue(t.DueDate, today),
	}
	if t.DueDate != "" {
		vm.Due = longDate(t.DueDate)
	}
	for _, s := range model.Statuses {
		vm.Statuses = append(vm.Statuses, option{Value: string(s), Label: statusText[s], Selected: s == t.Status})
	}
	if m, ok := nextMove[t.Status]; ok {
		vm.MoveTo, vm.MoveIcon, vm.MoveLabel, vm.MoveClass = string(m.To), m.Icon, m.Label, m.Class
	}
	return vm
}

// Tasks renders the filter tabs and either the kanban board or the list, plus the modal form
// when one is open. today decides which due dates are overdue.
func (r *Renderer) Tasks(tasks []model.Task, st TasksState, today time.Time) (string, error) {
	if st.Filter == "" {
		st.Filter = records.FilterAll
	}
	if st.Mode != ModeList {
		st.Mode = ModeKanban
	}
	vm := tasksVM{Mode: st.Mode}

	vm.Tabs = append(vm.Tabs, option{Value: records.FilterAll, Label: "All", Selected: st.Filter == records.FilterAll})
	for _, p := range model.Priorities {
		vm.Tabs = append(vm.Tabs, option{Value: string(p), Label: priorityIcons[p] + " " + priorityText[p], Selected: st.Filter == string(p)})
	}

	filtered := records.FilterTasks(tasks, st.Filter)
	if st.Mode == ModeKanban {
		cols := records.PartitionTasks(filtered)
		for _, s := range model.Statuses {
			col := columnVM{Status: string(s), Icon: columnIcons[s], Title: statusText[s]}
			for _, t := range cols.ByStatus(s) {
				col.Cards = append(col.Cards, newTaskVM(t, today))
			}
			vm.Columns = append(vm.Columns, col)
		}
	} else {
		for _, t := range filtered {
			vm.List = append(vm.List, newTaskVM(t, today))
		}
	}

	if f := st.Form; f != nil {
		fv := &taskFormVM{
			ID:          f.ID,
			Heading:     "New task",
			Title:       f.Input.Title,
			Description: f.Input.Description,
			DueDate:     f.Input.DueDate,
			Field:       f.Field,
			Message:     f.Message,
		}
		if f.ID != "" {
			fv.Heading = "Edit task"
		}
		prio := f.Input.Priority
		if prio == "" {
			prio = model.PriorityNormal
		}
		for _, p := range model.Priorities {
			fv.Priorities = append(fv.Priorities, option{Value: string(p), Label: priorityIcons[p] + " " + priorityText[p], Selected: p == prio})
		}
		status := f.Input.Status
		if status == "" {
			status = model.StatusTodo
		}
		for _, s := range model.Statuses {
			fv.Statuses = append(fv.Statuses, option{Value: string(s), Label: statusText[s], Selected: s == status})
		}
		vm.Form = fv
	}
	return r.execute("tasks", vm)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
