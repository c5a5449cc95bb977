package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/leonbytyqi1709-sketch/bycore/internal/format"
	"github.com/leonbytyqi1709-sketch/bycore/internal/model"
	"github.com/leonbytyqi1709-sketch/bycore/internal/mutate"
	"github.com/leonbytyqi1709-sketch/bycore/internal/records"
)

func newTasksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Kanban tasks",
	}
	cmd.AddCommand(newTasksListCmd(app))
	cmd.AddCommand(newTasksSummaryCmd(app))
	cmd.AddCommand(newTasksCreateCmd(app))
	cmd.AddCommand(newTasksUpdateCmd(app))
	cmd.AddCommand(newTasksToggleCmd(app))
	cmd.AddCommand(newTasksMoveCmd(app))
	cmd.AddCommand(newTasksDeleteCmd(app))
	return cmd
}

func tasksManager(app *App) (*records.Tasks, error) {
	st, err := openStore(app)
	if err != nil {
		return nil, err
	}
	return records.NewTasks(st, nil), nil
}

// taskTable lists tasks; overdue open tasks are flagged in the DUE column.
type taskTable struct {
	tasks []model.Task
	today time.Time
}

func (t taskTable) Text(r *lipgloss.Renderer) string {
	tbl := format.Table{Headers: []string{"ID", "STATUS", "PRIORITY", "TITLE", "DUE"}, Empty: "No tasks."}
	overdue := r.NewStyle().Bold(true)
	for _, task := range t.tasks {
		due := task.DueDate
		if !task.Done && records.IsOverdue(task.DueDate, t.today) {
			due = overdue.Render(due + " (overdue)")
		}
		tbl.Rows = append(tbl.Rows, []string{task.ID, string(task.Status), string(task.Priority), task.Title, due})
	}
	return tbl.Text(r)
}

func newTasksListCmd(app *App) *cobra.Command {
	var filter string
	var status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter = strings.TrimSpace(filter)
			if !records.ValidFilter(filter) {
				return writeErr(cmd, mutate.ValidationError{Field: "filter", Reason: filter})
			}
			if status != "" && !model.Status(status).Valid() {
				return writeErr(cmd, mutate.ValidationError{Field: "status", Reason: status})
			}
			m, err := tasksManager(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			tasks, err := m.Load(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			tasks = records.FilterTasks(tasks, filter)
			if status != "" {
				tasks = records.PartitionTasks(tasks).ByStatus(model.Status(status))
			}
			if tasks == nil {
				tasks = []model.Task{}
			}
			return writeOut(cmd, app, format.Envelope{
				Data:  tasks,
				Hints: []string{"bycore tasks toggle <task-id>", "bycore tasks move <task-id> <todo|progress|done>"},
				Text:  taskTable{tasks: tasks, today: time.Now()},
			})
		},
	}
	cmd.Flags().StringVar(&filter, "filter", records.FilterAll, "Priority filter (all|important|normal|optional)")
	cmd.Flags().StringVar(&status, "status", "", "Only tasks in this column (todo|progress|done)")
	return cmd
}

type summaryText records.TaskSummary

func (s summaryText) Text(r *lipgloss.Renderer) string {
	return format.Fields{
		Title: fmt.Sprintf("%d%% done", s.Percent),
		Pairs: [][2]string{
			{"total", fmt.Sprint(s.Total)},
			{"open", fmt.Sprint(s.Open)},
			{"done", fmt.Sprint(s.Done)},
			{"important", fmt.Sprint(s.Important)},
			{"normal", fmt.Sprint(s.Normal)},
			{"optional", fmt.Sprint(s.Optional)},
		},
	}.Text(r)
}

func newTasksSummaryCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Completion percentage and open tasks per priority",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := tasksManager(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			tasks, err := m.Load(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			sum := records.Summarize(tasks)
			return writeOut(cmd, app, format.Envelope{Data: sum, Text: summaryText(sum)})
		},
	}
}

// taskFlags binds the editable task fields; apply copies only the flags that were set.
type taskFlags struct {
	title, description, priority, status, due string
}

func (f *taskFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "Title")
	cmd.Flags().StringVar(&f.description, "description", "", "Description")
	cmd.Flags().StringVar(&f.priority, "priority", "", "Priority (important|normal|optional; default normal)")
	cmd.Flags().StringVar(&f.status, "status", "", "Status (todo|progress|done)")
	cmd.Flags().StringVar(&f.due, "due", "", "Due date (YYYY-MM-DD; empty clears)")
}

func (f *taskFlags) apply(cmd *cobra.Command, in *mutate.TaskInput) {
	if cmd.Flags().Changed("title") {
		in.Title = f.title
	}
	if cmd.Flags().Changed("description") {
		in.Description = f.description
	}
	if cmd.Flags().Changed("priority") {
		in.Priority = model.Priority(strings.TrimSpace(f.priority))
	}
	if cmd.Flags().Changed("status") {
		in.Status = model.Status(strings.TrimSpace(f.status))
	}
	if cmd.Flags().Changed("due") {
		in.DueDate = f.due
	}
}

func newTasksCreateCmd(app *App) *cobra.Command {
	var f taskFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task (always starts in todo)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var in mutate.TaskInput
			f.apply(cmd, &in)
			m, err := tasksManager(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			t, err := m.Create(cmd.Context(), in)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, format.Envelope{
				Data:  t,
				Hints: []string{"bycore tasks move " + t.ID + " progress"},
				Text:  format.Line("Created task " + t.ID),
			})
		},
	}
	f.bind(cmd)
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newTasksUpdateCmd(app *App) *cobra.Command {
	var f taskFlags
	cmd := &cobra.Command{
		Use:   "update <task-id>",
		Short: "Edit a task's fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := tasksManager(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			ctx := cmd.Context()
			t, err := m.Get(ctx, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			in := mutate.TaskInput{
				Title:       t.Title,
				Description: t.Description,
				Priority:    t.Priority,
				Status:      t.Status,
				DueDate:     t.DueDate,
			}
			f.apply(cmd, &in)
			if _, err := m.Update(ctx, t.ID, in); err != nil {
				return writeErr(cmd, err)
			}
			return writeTask(cmd, app, m, t.ID, "Updated task ")
		},
	}
	f.bind(cmd)
	return cmd
}

func writeTask(cmd *cobra.Command, app *App, m *records.Tasks, id, verb string) error {
	t, err := m.Get(cmd.Context(), id)
	if err != nil {
		return writeErr(cmd, err)
	}
	return writeOut(cmd, app, format.Envelope{Data: t, Text: format.Line(verb + t.ID + " (" + string(t.Status) + ")")})
}

func newTasksToggleCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <task-id>",
		Short: "Flip a task between done and todo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := tasksManager(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if _, err := m.Get(cmd.Context(), args[0]); err != nil {
				return writeErr(cmd, err)
			}
			if _, err := m.ToggleDone(cmd.Context(), args[0]); err != nil {
				return writeErr(cmd, err)
			}
			return writeTask(cmd, app, m, args[0], "Toggled task ")
		},
	}
}

func newTasksMoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "move <task-id> <todo|progress|done>",
		Short: "Move a task to another column",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := tasksManager(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if _, err := m.Get(cmd.Context(), args[0]); err != nil {
				return writeErr(cmd, err)
			}
			if _, err := m.Move(cmd.Context(), args[0], model.Status(strings.TrimSpace(args[1]))); err != nil {
				return writeErr(cmd, err)
			}
			return writeTask(cmd, app, m, args[0], "Moved task ")
		},
	}
}

func newTasksDeleteCmd(app *App) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <task-id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := tasksManager(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			t, err := m.Get(cmd.Context(), args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if !yes {
				if err := newPrompter(cmd).confirm(fmt.Sprintf("Delete task %q?", t.Title)); err != nil {
					return writeErr(cmd, err)
				}
			}
			if _, err := m.Delete(cmd.Context(), t.ID); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, format.Envelope{
				Data: map[string]any{"deleted": t.ID},
				Text: format.Line("Deleted task " + t.ID),
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}
