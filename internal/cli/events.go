package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/leonbytyqi1709-sketch/bycore/internal/format"
	"github.com/leonbytyqi1709-sketch/bycore/internal/model"
	"github.com/leonbytyqi1709-sketch/bycore/internal/mutate"
	"github.com/leonbytyqi1709-sketch/bycore/internal/records"
)

func newEventsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Calendar events",
	}
	cmd.AddCommand(newEventsListCmd(app))
	cmd.AddCommand(newEventsUpcomingCmd(app))
	cmd.AddCommand(newEventsCreateCmd(app))
	cmd.AddCommand(newEventsUpdateCmd(app))
	cmd.AddCommand(newEventsDeleteCmd(app))
	return cmd
}

func eventsManager(app *App) (*records.Events, error) {
	st, err := openStore(app)
	if err != nil {
		return nil, err
	}
	return records.NewEvents(st, nil), nil
}

func eventTable(events []model.CalendarEvent) format.Table {
	t := format.Table{Headers: []string{"ID", "DATE", "TIME", "COLOR", "TITLE"}, Empty: "No events."}
	for _, e := range events {
		when := e.StartTime
		if e.EndTime != "" {
			when += "-" + e.EndTime
		}
		t.Rows = append(t.Rows, []string{e.ID, e.Date, when, string(e.Color), e.Title})
	}
	return t
}

func newEventsListCmd(app *App) *cobra.Command {
	var date, month string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List events by date and start time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			date, month = strings.TrimSpace(date), strings.TrimSpace(month)
			if date != "" {
				if _, err := time.Parse(records.DateLayout, date); err != nil {
					return writeErr(cmd, mutate.ValidationError{Field: "date", Reason: "expected YYYY-MM-DD"})
				}
			}
			if month != "" {
				if _, err := time.Parse("2006-01", month); err != nil {
					return writeErr(cmd, mutate.ValidationError{Field: "month", Reason: "expected YYYY-MM"})
				}
			}
			m, err := eventsManager(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			events, err := m.Load(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			var out []model.CalendarEvent
			switch {
			case date != "":
				out = records.EventsOn(events, date)
			default:
				// Upcoming with no lower bound and no cap is the full collection, sorted.
				for _, e := range records.Upcoming(events, "", 0) {
					if month == "" || strings.HasPrefix(e.Date, month+"-") {
						out = append(out, e)
					}
				}
			}
			if out == nil {
				out = []model.CalendarEvent{}
			}
			return writeOut(cmd, app, format.Envelope{Data: out, Text: eventTable(out)})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Only events on this day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&month, "month", "", "Only events in this month (YYYY-MM)")
	return cmd
}

func newEventsUpcomingCmd(app *App) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "upcoming",
		Short: "Events from today on",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := eventsManager(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			events, err := m.Load(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			out := records.Upcoming(events, records.DateString(time.Now()), limit)
			return writeOut(cmd, app, format.Envelope{Data: out, Text: eventTable(out)})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 5, "Maximum number of events (0 = all)")
	return cmd
}

type eventFlags struct {
	title, description, date, start, end, color string
}

func (f *eventFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "Title")
	cmd.Flags().StringVar(&f.description, "description", "", "Description")
	cmd.Flags().StringVar(&f.date, "date", "", "Day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.start, "start", "", "Start time (HH:MM)")
	cmd.Flags().StringVar(&f.end, "end", "", "End time (HH:MM)")
	cmd.Flags().StringVar(&f.color, "color", "", "Color (blue|green|red|orange|purple; default blue)")
}

func (f *eventFlags) apply(cmd *cobra.Command, in *mutate.EventInput) {
	if cmd.Flags().Changed("title") {
		in.Title = f.title
	}
	if cmd.Flags().Changed("description") {
		in.Description = f.description
	}
	if cmd.Flags().Changed("date") {
		in.Date = f.date
	}
	if cmd.Flags().Changed("start") {
		in.StartTime = f.start
	}
	if cmd.Flags().Changed("end") {
		in.EndTime = f.end
	}
	if cmd.Flags().Changed("color") {
		in.Color = model.Color(strings.TrimSpace(f.color))
	}
}

func newEventsCreateCmd(app *App) *cobra.Command {
	var f eventFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an event",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var in mutate.EventInput
			f.apply(cmd, &in)
			m, err := eventsManager(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			e, err := m.Create(cmd.Context(), in)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, format.Envelope{
				Data:  e,
				Hints: []string{"bycore events list --date " + e.Date},
				Text:  format.Line("Created event " + e.ID + " on " + e.Date),
			})
		},
	}
	f.bind(cmd)
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}

func newEventsUpdateCmd(app *App) *cobra.Command {
	var f eventFlags
	cmd := &cobra.Command{
		Use:   "update <event-id>",
		Short: "Edit an event's fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := eventsManager(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			ctx := cmd.Context()
			e, err := m.Get(ctx, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			in := mutate.EventInput{
				Title:       e.Title,
				Description: e.Description,
				Date:        e.Date,
				StartTime:   e.StartTime,
				EndTime:     e.EndTime,
				Color:       e.Color,
			}
			f.apply(cmd, &in)
			if _, err := m.Update(ctx, e.ID, in); err != nil {
				return writeErr(cmd, err)
			}
			e, err = m.Get(ctx, e.ID)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, format.Envelope{Data: e, Text: format.Line("Updated event " + e.ID)})
		},
	}
	f.bind(cmd)
	return cmd
}

func newEventsDeleteCmd(app *App) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <event-id>",
		Short: "Delete an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := eventsManager(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			e, err := m.Get(cmd.Context(), args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if !yes {
				if err := newPrompter(cmd).confirm(fmt.Sprintf("Delete event %q on %s?", e.Title, e.Date)); err != nil {
					return writeErr(cmd, err)
				}
			}
			if _, err := m.Delete(cmd.Context(), e.ID); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, format.Envelope{
				Data: map[string]any{"deleted": e.ID},
				Text: format.Line("Deleted event " + e.ID),
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}
