package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/leonbytyqi1709-sketch/bycore/internal/model"
	"github.com/leonbytyqi1709-sketch/bycore/internal/records"
	"github.com/leonbytyqi1709-sketch/bycore/internal/view"
)

func (m *appModel) viewDashboard() string {
	now := m.now()
	today := records.DateString(now)

	hello := styleHeading().Render(fmt.Sprintf("%s, %s", view.Greeting(now.Hour()), m.username)) + "\n" +
		styleMuted().Render(now.Format("Monday, 2 January 2006 · 15:04:05"))

	sum := records.Summarize(m.tasks)
	progress := section(
		"Tasks",
		fmt.Sprintf("%s %d%% done", gauge(float64(sum.Percent)), sum.Percent),
		fmt.Sprintf("%d open · %d done", sum.Open, sum.Done),
		lipgloss.NewStyle().Foreground(priorityColors[model.PriorityImportant]).Render(fmt.Sprintf("● %d important", sum.Important))+"  "+
			lipgloss.NewStyle().Foreground(priorityColors[model.PriorityNormal]).Render(fmt.Sprintf("● %d normal", sum.Normal))+"  "+
			lipgloss.NewStyle().Foreground(priorityColors[model.PriorityOptional]).Render(fmt.Sprintf("● %d optional", sum.Optional)),
	)

	up := []string{styleHeading().Render("Upcoming")}
	events := records.Upcoming(m.events, today, dashboardUpcoming)
	if len(events) == 0 {
		up = append(up, styleMuted().Render("Nothing scheduled."))
	}
	for _, e := range events {
		up = append(up, m.eventLine(e, false, e.Date != today))
	}

	st := records.ComputeStats(m.notes, m.tasks, m.events, today)
	counts := styleMuted().Render(fmt.Sprintf("%d notes · %d tasks · %d events today", st.TotalNotes, st.TotalTasks, st.TodayEvents))

	q := view.QuoteFor(now)
	quote := lipgloss.NewStyle().Italic(true).Render("“"+q.Text+"”") + "\n" + styleMuted().Render("- "+q.Author)

	w := max(40, m.width-4)
	half := max(30, (w-2)/2)
	return strings.Join([]string{
		stylePanel(true).Width(w).Render(hello + "\n" + counts),
		lipgloss.JoinHorizontal(lipgloss.Top,
			stylePanel(false).Width(half).Render(progress),
			stylePanel(false).Width(half).Render(strings.Join(up, "\n")),
		),
		stylePanel(false).Width(w).Render(quote),
	}, "\n")
}

// section stacks a heading over lines.
func section(title string, lines ...string) string {
	return styleHeading().Render(title) + "\n" + strings.Join(lines, "\n")
}
