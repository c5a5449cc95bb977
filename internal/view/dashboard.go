package view

import (
	"fmt"
	"time"

	"github.com/leonbytyqi1709-sketch/bycore/internal/model"
	"github.com/leonbytyqi1709-sketch/bycore/internal/records"
)

// ringCircumference is 2πr for the r=40 progress ring.
const ringCircumference = 251.2

type Quote struct {
	Text   string
	Author string
}

var quotes = []Quote{
	{"Code is like humor. When you have to explain it, it's bad.", "Cory House"},
	{"First, solve the problem. Then, write the code.", "John Johnson"},
	{"Simplicity is the soul of efficiency.", "Austin Freeman"},
	{"Make it work, make it right, make it fast.", "Kent Beck"},
	{"The best error message is the one that never shows up.", "Thomas Fuchs"},
	{"Talk is cheap. Show me the code.", "Linus Torvalds"},
	{"Any fool can write code that a computer can understand. Good programmers write code that humans can understand.", "Martin Fowler"},
}

// QuoteFor picks the quote of the day. The same calendar date always yields the same quote.
func QuoteFor(now time.Time) Quote {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).Unix() / 86400
	return quotes[int(day%int64(len(quotes)))]
}

func Greeting(hour int) string {
	switch {
	case hour < 12:
		return "Good morning"
	case hour < 18:
		return "Good afternoon"
	default:
		return "Good evening"
	}
}

type DashboardData struct {
	Now      time.Time
	Username string
	Notes    []model.Note
	Tasks    []model.Task
	Events   []model.CalendarEvent
}

type upcomingRow struct {
	Time      string
	Title     string
	DateLabel string
	Color     model.Color
}

type dashboardVM struct {
	Greeting string
	Username string
	Date     string
	Clock    string
	Summary  records.TaskSummary
	RingDash string
	Stats    records.AppStats
	Upcoming []upcomingRow
	Quote    Quote
}

func (r *Renderer) Dashboard(d DashboardData) (string, error) {
	today := records.DateString(d.Now)
	sum := records.Summarize(d.Tasks)
	vm := dashboardVM{
		Greeting: Greeting(d.Now.Hour()),
		Username: d.Username,
		Date:     d.Now.Format("Monday, January 2, 2006"),
		Clock:    d.Now.Format("15:04:05"),
		Summary:  sum,
		RingDash: fmt.Sprintf("%.1f %.1f", float64(sum.Percent)/100*ringCircumference, ringCircumference),
		Stats:    records.ComputeStats(d.Notes, d.Tasks, d.Events, today),
		Quote:    QuoteFor(d.Now),
	}
	for _, e := range records.Upcoming(d.Events, today, records.DashboardUpcoming) {
		row := upcomingRow{Time: e.StartTime, Title: e.Title, DateLabel: shortDate(e.Date), Color: e.Color}
		if row.Time == "" {
			row.Time = "—"
		}
		if e.Date == today {
			row.DateLabel = "Today"
		}
		vm.Upcoming = append(vm.Upcoming, row)
	}
	return r.execute("dashboard", vm)
}
