package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/leonbytyqi1709-sketch/bycore/internal/model"
	"github.com/leonbytyqi1709-sketch/bycore/internal/records"
)

var weekdays = []string{"Mo", "Tu", "We", "Th", "Fr", "Sa", "Su"}

var colorText = map[model.Color]string{
	model.ColorBlue:   "Blue",
	model.ColorGreen:  "Green",
	model.ColorRed:    "Red",
	model.ColorOrange: "Orange",
	model.ColorPurple: "Purple",
}

type dotVM struct {
	Color model.Color
	Label string
}

type cellVM struct {
	Date    string
	Day     int
	Classes string
	Dots    []dotVM
	More    int
}

type eventVM struct {
	ID          string
	Title       string
	Description string
	Date        string
	Time        string
	Color       model.Color
}

type eventFormVM struct {
	ID          string
	Heading     string
	Title       string
	Description string
	Date        string
	StartTime   string
	EndTime     string
	Colors      []option
	Field       string
	Message     string
}

type calendarVM struct {
	MonthLabel string
	Weekdays   []string
	Cells      []cellVM
	Selected   string
	Weekday    string
	LongDate   string
	DayEvents  []eventVM
	Upcoming   []eventVM
	Form       *eventFormVM
}

func newEventVM(e model.CalendarEvent) eventVM {
	vm := eventVM{ID: e.ID, Title: e.Title, Description: e.Description, Date: e.Date, Time: e.StartTime, Color: e.Color}
	if e.EndTime != "" {
		vm.Time += " – " + e.EndTime
	}
	return vm
}

// Calendar renders the month grid for st.Year/st.Month, the selected day's events and the
// upcoming list. today is YYYY-MM-DD.
func (r *Renderer) Calendar(events []model.CalendarEvent, st CalendarState, today string) (string, error) {
	if st.Year == 0 {
		t, _ := time.Parse(records.DateLayout, today)
		st.Year, st.Month = t.Year(), t.Month()
	}
	if st.Selected == "" {
		st.Selected = today
	}
	vm := calendarVM{
		MonthLabel: fmt.Sprintf("%s %d", st.Month, st.Year),
		Weekdays:   weekdays,
		Selected:   st.Selected,
		LongDate:   longDate(st.Selected),
	}
	if t, err := time.Parse(records.DateLayout, st.Selected); err == nil {
		vm.Weekday = t.Weekday().String()
	}

	for _, c := range records.FillGrid(records.MonthGrid(st.Year, st.Month), events) {
		cls := []string{"calendar-day"}
		if !c.CurrentMonth {
			cls = append(cls, "other-month")
		}
		if c.Date == today {
			cls = append(cls, "today")
		}
		if c.Date == st.Selected {
			cls = append(cls, "selected")
		}
		cell := cellVM{Date: c.Date, Day: c.Day, Classes: strings.Join(cls, " "), More: c.More}
		for _, e := range c.Dots {
			label := e.Title
			if e.StartTime != "" {
				label = e.StartTime + " " + label
			}
			cell.Dots = append(cell.Dots, dotVM{Color: e.Color, Label: label})
		}
		vm.Cells = append(vm.Cells, cell)
	}

	for _, e := range records.EventsOn(events, st.Selected) {
		vm.DayEvents = append(vm.DayEvents, newEventVM(e))
	}
	for _, e := range records.Upcoming(events, today, records.CalendarUpcoming) {
		vm.Upcoming = append(vm.Upcoming, newEventVM(e))
	}

	if f := st.Form; f != nil {
		fv := &eventFormVM{
			ID:          f.ID,
			Heading:     "New event",
			Title:       f.Input.Title,
			Description: f.Input.Description,
			Date:        f.Input.Date,
			StartTime:   f.Input.StartTime,
			EndTime:     f.Input.EndTime,
			Field:       f.Field,
			Message:     f.Message,
		}
		if f.ID != "" {
			fv.Heading = "Edit event"
		}
		color := f.Input.Color
		if color == "" {
			color = model.ColorBlue
		}
		for _, c := range model.Colors {
			fv.Colors = append(fv.Colors, option{Value: string(c), Label: colorText[c], Selected: c == color})
		}
		vm.Form = fv
	}
	return r.execute("calendar", vm)
}
