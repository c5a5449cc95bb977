package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/leonbytyqi1709-sketch/bycore/internal/model"
	"github.com/leonbytyqi1709-sketch/bycore/internal/mutate"
	"github.com/leonbytyqi1709-sketch/bycore/internal/records"
)

var taskFilters = []string{records.FilterAll, string(model.PriorityImportant), string(model.PriorityNormal), string(model.PriorityOptional)}

var statusLabels = map[model.Status]string{
	model.StatusTodo:     "To do",
	model.StatusProgress: "In progress",
	model.StatusDone:     "Done",
}

type tasksUI struct {
	filter   string
	listMode bool
	// col indexes model.Statuses in kanban mode; row indexes the column (or the whole
	// filtered list in list mode).
	col int
	row int
}

func newTasksUI() tasksUI {
	return tasksUI{filter: records.FilterAll}
}

func (m *appModel) filteredTasks() []model.Task {
	return records.FilterTasks(m.tasks, m.tasksUI.filter)
}

// cursorTasks is the slice the row cursor moves over.
func (m *appModel) cursorTasks() []model.Task {
	if m.tasksUI.listMode {
		return m.filteredTasks()
	}
	return records.PartitionTasks(m.filteredTasks()).ByStatus(model.Statuses[m.tasksUI.col])
}

func (m *appModel) selectedTask() (model.Task, bool) {
	ts := m.cursorTasks()
	if m.tasksUI.row < 0 || m.tasksUI.row >= len(ts) {
		return model.Task{}, false
	}
	return ts[m.tasksUI.row], true
}

func (m *appModel) clampTaskCursor() {
	n := len(m.cursorTasks())
	if m.tasksUI.row >= n {
		m.tasksUI.row = n - 1
	}
	if m.tasksUI.row < 0 {
		m.tasksUI.row = 0
	}
}

func (m *appModel) reloadTasks() error {
	tasks, err := m.tasksMgr.Load(m.ctx)
	if err != nil {
		return err
	}
	m.tasks = tasks
	m.clampTaskCursor()
	return nil
}

func (m *appModel) updateTasks(msg tea.KeyMsg) tea.Cmd {
	ui := &m.tasksUI
	switch {
	case key.Matches(msg, m.keys.Up):
		ui.row--
		m.clampTaskCursor()
	case key.Matches(msg, m.keys.Down):
		ui.row++
		m.clampTaskCursor()
	case key.Matches(msg, m.keys.Left) && !ui.listMode:
		ui.col = (ui.col + len(model.Statuses) - 1) % len(model.Statuses)
		m.clampTaskCursor()
	case key.Matches(msg, m.keys.Right) && !ui.listMode:
		ui.col = (ui.col + 1) % len(model.Statuses)
		m.clampTaskCursor()
	case key.Matches(msg, m.keys.Filter):
		for i, f := range taskFilters {
			if f == ui.filter {
				ui.filter = taskFilters[(i+1)%len(taskFilters)]
				break
			}
		}
		ui.row = 0
	case key.Matches(msg, m.keys.ViewMode):
		ui.listMode = !ui.listMode
		ui.row = 0
	case key.Matches(msg, m.keys.Toggle):
		if t, ok := m.selectedTask(); ok {
			m.taskMutation(m.tasksMgr.ToggleDone(m.ctx, t.ID))
		}
	case key.Matches(msg, m.keys.MoveBack):
		m.shiftTask(-1)
	case key.Matches(msg, m.keys.MoveForward):
		m.shiftTask(1)
	case key.Matches(msg, m.keys.New):
		return m.openTaskForm(model.Task{Priority: model.PriorityNormal, Status: model.StatusTodo})
	case key.Matches(msg, m.keys.Edit):
		if t, ok := m.selectedTask(); ok {
			return m.openTaskForm(t)
		}
	case key.Matches(msg, m.keys.Delete):
		t, ok := m.selectedTask()
		if !ok {
			return nil
		}
		m.askConfirm("Delete task", fmt.Sprintf("Delete %q?", t.Title), func() tea.Cmd {
			m.taskMutation(m.tasksMgr.Delete(m.ctx, t.ID))
			return nil
		})
	}
	return nil
}

// shiftTask moves the selected task one status column left or right.
func (m *appModel) shiftTask(delta int) {
	t, ok := m.selectedTask()
	if !ok {
		return
	}
	i := 0
	for j, s := range model.Statuses {
		if s == t.Status {
			i = j
		}
	}
	i += delta
	if i < 0 || i >= len(model.Statuses) {
		return
	}
	m.taskMutation(m.tasksMgr.Move(m.ctx, t.ID, model.Statuses[i]))
	if !m.tasksUI.listMode {
		m.tasksUI.col = i
		for r, ct := range m.cursorTasks() {
			if ct.ID == t.ID {
				m.tasksUI.row = r
			}
		}
	}
}

func (m *appModel) taskMutation(_ bool, err error) {
	if err != nil {
		m.fail(err)
		return
	}
	if err := m.reloadTasks(); err != nil {
		m.fail(err)
	}
}

func (m *appModel) openTaskForm(t model.Task) tea.Cmd {
	title := "New task"
	if t.ID != "" {
		title = "Edit task"
	}
	id := t.ID
	submit := func(v map[string]string) error {
		in := mutate.TaskInput{
			Title:       v["title"],
			Description: v["description"],
			Priority:    model.Priority(strings.TrimSpace(v["priority"])),
			Status:      model.Status(strings.TrimSpace(v["status"])),
			DueDate:     v["dueDate"],
		}
		var err error
		if id == "" {
			_, err = m.tasksMgr.Create(m.ctx, in)
		} else {
			_, err = m.tasksMgr.Update(m.ctx, id, in)
		}
		if err != nil {
			return err
		}
		return m.reloadTasks()
	}
	return m.openForm(title, submit,
		newField("title", "Title", t.Title, "What needs doing?"),
		newField("description", "Description", t.Description, ""),
		newField("priority", "Priority", string(t.Priority), "important | normal | optional"),
		newField("status", "Status", string(t.Status), "todo | progress | done"),
		newField("dueDate", "Due", t.DueDate, "YYYY-MM-DD"),
	)
}

func (m *appModel) viewTasks() string {
	ui := &m.tasksUI
	tabs := make([]string, 0, len(taskFilters))
	for _, f := range taskFilters {
		tabs = append(tabs, styleTab(f == ui.filter).Render(titleCase(f)))
	}
	mode := "kanban"
	if ui.listMode {
		mode = "list"
	}
	toolbar := lipgloss.JoinHorizontal(lipgloss.Top, tabs...) + "  " + styleMuted().Render("view: "+mode)

	filtered := m.filteredTasks()
	if len(filtered) == 0 {
		return toolbar + "\n\n" + styleMuted().Render("No tasks here. Press n to add one.")
	}

	if ui.listMode {
		rows := make([]string, 0, len(filtered))
		for i, t := range filtered {
			rows = append(rows, m.taskLine(t, i == ui.row, m.width-4))
		}
		return toolbar + "\n\n" + strings.Join(rows, "\n")
	}

	cols := records.PartitionTasks(filtered)
	colW := max(20, (m.width-6)/len(model.Statuses))
	panels := make([]string, 0, len(model.Statuses))
	for ci, s := range model.Statuses {
		ts := cols.ByStatus(s)
		lines := []string{styleHeading().Render(fmt.Sprintf("%s (%d)", statusLabels[s], len(ts))), ""}
		for ri, t := range ts {
			lines = append(lines, m.taskLine(t, ci == ui.col && ri == ui.row, colW-4))
		}
		panels = append(panels, stylePanel(ci == ui.col).Width(colW-2).Render(strings.Join(lines, "\n")))
	}
	return toolbar + "\n" + lipgloss.JoinHorizontal(lipgloss.Top, panels...)
}

func (m *appModel) taskLine(t model.Task, selected bool, width int) string {
	check := "[ ]"
	if t.Done {
		check = "[x]"
	}
	dot := lipgloss.NewStyle().Foreground(priorityColors[t.Priority]).Render("●")
	title := t.Title
	if selected {
		title = styleSelected().Render(title)
	} else if t.Done {
		title = styleMuted().Strikethrough(true).Render(title)
	}
	line := check + " " + dot + " " + title
	if t.DueDate != "" {
		due := styleMuted().Render(t.DueDate)
		if !t.Done && records.IsOverdue(t.DueDate, m.now()) {
			due = styleError().Render(t.DueDate + " overdue")
		}
		line += "  " + due
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(line)
}
