package records

import "github.com/leonbytyqi1709-sketch/bycore/internal/model"

// AppStats are the record counts shown on the system and dashboard screens.
type AppStats struct {
	TotalNotes     int `json:"totalNotes"`
	PinnedNotes    int `json:"pinnedNotes"`
	TotalTasks     int `json:"totalTasks"`
	OpenTasks      int `json:"openTasks"`
	DoneTasks      int `json:"doneTasks"`
	TotalEvents    int `json:"totalEvents"`
	TodayEvents    int `json:"todayEvents"`
	UpcomingEvents int `json:"upcomingEvents"`
}

func ComputeStats(notes []model.Note, tasks []model.Task, events []model.CalendarEvent, today string) AppStats {
	s := AppStats{TotalNotes: len(notes), TotalTasks: len(tasks), TotalEvents: len(events)}
	for _, n := range notes {
		if n.Pinned {
			s.PinnedNotes++
		}
	}
	for _, t := range tasks {
		if t.Done {
			s.DoneTasks++
		} else {
			s.OpenTasks++
		}
	}
	for _, e := range events {
		if e.Date == today {
			s.TodayEvents++
		}
		if e.Date >= today {
			s.UpcomingEvents++
		}
	}
	return s
}
