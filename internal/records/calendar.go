package records

import (
	"time"

	"github.com/leonbytyqi1709-sketch/bycore/internal/model"
)

const (
	GridCells   = 42
	MaxDayDots  = 3
	weekdayBase = time.Monday
)

type DayCell struct {
	Date         string
	Day          int
	CurrentMonth bool
	// Dots holds at most MaxDayDots events (by start time); More counts the rest.
	Dots []model.CalendarEvent
	More int
}

// MonthGrid lays out a month as 6 Monday-first weeks, padded with the trailing days of the
// previous month and the leading days of the next.
func MonthGrid(year int, month time.Month) []DayCell {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := (int(first.Weekday()) - int(weekdayBase) + 7) % 7
	start := first.AddDate(0, 0, -offset)

	cells := make([]DayCell, GridCells)
	for i := range cells {
		d := start.AddDate(0, 0, i)
		cells[i] = DayCell{
			Date:         DateString(d),
			Day:          d.Day(),
			CurrentMonth: d.Month() == month && d.Year() == year,
		}
	}
	return cells
}

// FillGrid attaches each cell's events.
func FillGrid(cells []DayCell, events []model.CalendarEvent) []DayCell {
	for i := range cells {
		day := EventsOn(events, cells[i].Date)
		if len(day) > MaxDayDots {
			cells[i].More = len(day) - MaxDayDots
			day = day[:MaxDayDots]
		}
		cells[i].Dots = day
	}
	return cells
}

// ShiftMonth moves (year, month) by delta months, wrapping the year.
func ShiftMonth(year int, month time.Month, delta int) (int, time.Month) {
	t := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, delta, 0)
	return t.Year(), t.Month()
}
