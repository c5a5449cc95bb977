package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/leonbytyqi1709-sketch/bycore/internal/model"
	"github.com/leonbytyqi1709-sketch/bycore/internal/mutate"
	"github.com/leonbytyqi1709-sketch/bycore/internal/records"
)

type calendarUI struct {
	year     int
	month    time.Month
	selected string
	// event indexes the selected day's events.
	event int
}

func newCalendarUI(now time.Time) calendarUI {
	return calendarUI{year: now.Year(), month: now.Month(), selected: records.DateString(now)}
}

func (m *appModel) dayEvents() []model.CalendarEvent {
	return records.EventsOn(m.events, m.calUI.selected)
}

func (m *appModel) reloadEvents() error {
	events, err := m.eventsMgr.Load(m.ctx)
	if err != nil {
		return err
	}
	m.events = events
	if m.calUI.event >= len(m.dayEvents()) {
		m.calUI.event = 0
	}
	return nil
}

// moveSelection shifts the selected day; the visible month follows it.
func (m *appModel) moveSelection(days int) {
	d, err := time.Parse(records.DateLayout, m.calUI.selected)
	if err != nil {
		d = m.now()
	}
	d = d.AddDate(0, 0, days)
	m.calUI.selected = records.DateString(d)
	m.calUI.year, m.calUI.month = d.Year(), d.Month()
	m.calUI.event = 0
}

func (m *appModel) updateCalendar(msg tea.KeyMsg) tea.Cmd {
	ui := &m.calUI
	switch {
	case key.Matches(msg, m.keys.Left):
		m.moveSelection(-1)
	case key.Matches(msg, m.keys.Right):
		m.moveSelection(1)
	case key.Matches(msg, m.keys.Up):
		m.moveSelection(-7)
	case key.Matches(msg, m.keys.Down):
		m.moveSelection(7)
	case key.Matches(msg, m.keys.PrevMonth):
		ui.year, ui.month = records.ShiftMonth(ui.year, ui.month, -1)
	case key.Matches(msg, m.keys.NextMonth):
		ui.year, ui.month = records.ShiftMonth(ui.year, ui.month, 1)
	case key.Matches(msg, m.keys.Today):
		*ui = newCalendarUI(m.now())
	case key.Matches(msg, m.keys.NextEvent):
		if n := len(m.dayEvents()); n > 0 {
			ui.event = (ui.event + 1) % n
		}
	case key.Matches(msg, m.keys.New):
		return m.openEventForm(model.CalendarEvent{Date: ui.selected, Color: model.ColorBlue})
	case key.Matches(msg, m.keys.Edit):
		if evs := m.dayEvents(); ui.event < len(evs) {
			return m.openEventForm(evs[ui.event])
		}
	case key.Matches(msg, m.keys.Delete):
		evs := m.dayEvents()
		if ui.event >= len(evs) {
			return nil
		}
		e := evs[ui.event]
		m.askConfirm("Delete event", fmt.Sprintf("Delete %q on %s?", e.Title, e.Date), func() tea.Cmd {
			if _, err := m.eventsMgr.Delete(m.ctx, e.ID); err != nil {
				m.fail(err)
				return nil
			}
			if err := m.reloadEvents(); err != nil {
				m.fail(err)
			}
			return nil
		})
	}
	return nil
}

func (m *appModel) openEventForm(e model.CalendarEvent) tea.Cmd {
	title := "New event"
	if e.ID != "" {
		title = "Edit event"
	}
	id := e.ID
	submit := func(v map[string]string) error {
		in := mutate.EventInput{
			Title:       v["title"],
			Description: v["description"],
			Date:        v["date"],
			StartTime:   v["startTime"],
			EndTime:     v["endTime"],
			Color:       model.Color(strings.TrimSpace(v["color"])),
		}
		var err error
		if id == "" {
			_, err = m.eventsMgr.Create(m.ctx, in)
		} else {
			_, err = m.eventsMgr.Update(m.ctx, id, in)
		}
		if err != nil {
			return err
		}
		m.calUI.selected = strings.TrimSpace(in.Date)
		if d, err := time.Parse(records.DateLayout, m.calUI.selected); err == nil {
			m.calUI.year, m.calUI.month = d.Year(), d.Month()
		}
		return m.reloadEvents()
	}
	return m.openForm(title, submit,
		newField("title", "Title", e.Title, "Event title"),
		newField("description", "Description", e.Description, ""),
		newField("date", "Date", e.Date, "YYYY-MM-DD"),
		newField("startTime", "Start", e.StartTime, "HH:MM"),
		newField("endTime", "End", e.EndTime, "HH:MM"),
		newField("color", "Color", string(e.Color), "blue | green | red | orange | purple"),
	)
}

func (m *appModel) viewCalendar() string {
	ui := &m.calUI
	today := records.DateString(m.now())
	cells := records.FillGrid(records.MonthGrid(ui.year, ui.month), m.events)

	var grid strings.Builder
	grid.WriteString(styleHeading().Render(fmt.Sprintf("%s %d", ui.month, ui.year)))
	grid.WriteString("\n")
	grid.WriteString(styleMuted().Render(" Mo   Tu   We   Th   Fr   Sa   Su"))
	grid.WriteString("\n")
	for i, c := range cells {
		marker := " "
		if len(c.Dots) > 0 {
			marker = lipgloss.NewStyle().Foreground(eventColors[c.Dots[0].Color]).Render("•")
		}
		day := fmt.Sprintf("%3d", c.Day)
		switch {
		case c.Date == ui.selected:
			day = styleSelected().Render(day)
		case c.Date == today:
			day = lipgloss.NewStyle().Underline(true).Bold(true).Render(day)
		case !c.CurrentMonth:
			day = styleMuted().Render(day)
		}
		grid.WriteString(day + marker + " ")
		if i%7 == 6 {
			grid.WriteString("\n")
		}
	}
	left := stylePanel(true).Render(strings.TrimRight(grid.String(), "\n"))

	lines := []string{styleHeading().Render(ui.selected)}
	evs := m.dayEvents()
	if len(evs) == 0 {
		lines = append(lines, styleMuted().Render("No events. Press n to add one."))
	}
	for i, e := range evs {
		lines = append(lines, m.eventLine(e, i == ui.event, false))
	}
	lines = append(lines, "", styleHeading().Render("Upcoming"))
	up := records.Upcoming(m.events, today, calendarUpcoming)
	if len(up) == 0 {
		lines = append(lines, styleMuted().Render("Nothing scheduled."))
	}
	for _, e := range up {
		lines = append(lines, m.eventLine(e, false, true))
	}
	right := stylePanel(false).Width(max(24, m.width-lipgloss.Width(left)-4)).Render(strings.Join(lines, "\n"))
	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

func (m *appModel) eventLine(e model.CalendarEvent, selected, withDate bool) string {
	dot := lipgloss.NewStyle().Foreground(eventColors[e.Color]).Render("●")
	when := e.StartTime
	if e.EndTime != "" {
		when += "–" + e.EndTime
	}
	if withDate {
		when = strings.TrimSpace(e.Date + " " + when)
	}
	title := e.Title
	if selected {
		title = styleSelected().Render(title)
	}
	if when == "" {
		return dot + " " + title
	}
	return dot + " " + styleMuted().Render(when) + " " + title
}
