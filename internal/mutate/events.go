package mutate

import (
	"strings"
	"time"

	"github.com/leonbytyqi1709-sketch/bycore/internal/model"
)

type EventInput struct {
	Title       string
	Description string
	Date        string
	StartTime   string
	EndTime     string
	Color       model.Color
}

type EventResult struct {
	Events  []model.CalendarEvent
	Event   *model.CalendarEvent
	Changed bool
}

func (in *EventInput) normalize() error {
	in.Title = strings.TrimSpace(in.Title)
	in.Date = strings.TrimSpace(in.Date)
	in.StartTime = strings.TrimSpace(in.StartTime)
	in.EndTime = strings.TrimSpace(in.EndTime)
	if in.Title == "" {
		return ValidationError{Field: "title", Reason: "required"}
	}
	if _, err := time.Parse(dateLayout, in.Date); err != nil {
		return ValidationError{Field: "date", Reason: "expected YYYY-MM-DD"}
	}
	if !validClock(in.StartTime) {
		return ValidationError{Field: "startTime", Reason: "expected HH:MM"}
	}
	if !validClock(in.EndTime) {
		return ValidationError{Field: "endTime", Reason: "expected HH:MM"}
	}
	if in.Color == "" {
		in.Color = model.ColorBlue
	}
	if !in.Color.Valid() {
		return ValidationError{Field: "color", Reason: string(in.Color)}
	}
	return nil
}

// validClock accepts "" or a zero-padded 24h HH:MM, which keeps string order chronological.
func validClock(s string) bool {
	if s == "" {
		return true
	}
	if len(s) != 5 {
		return false
	}
	_, err := time.Parse("15:04", s)
	return err == nil
}

// CreateEvent appends an event (events are not prepended like notes and tasks).
func CreateEvent(events []model.CalendarEvent, in EventInput, now time.Time) (EventResult, error) {
	if err := in.normalize(); err != nil {
		return EventResult{Events: events}, err
	}
	now = now.UTC()
	ev := model.CalendarEvent{
		ID:          NewID(now, idSet(events, func(e model.CalendarEvent) string { return e.ID })),
		Title:       in.Title,
		Description: in.Description,
		Date:        in.Date,
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
		Color:       in.Color,
		Created:     now,
	}
	out := make([]model.CalendarEvent, 0, len(events)+1)
	out = append(out, events...)
	out = append(out, ev)
	return EventResult{Events: out, Event: &out[len(out)-1], Changed: true}, nil
}

// UpdateEvent overwrites the event in place; events carry no updated timestamp.
func UpdateEvent(events []model.CalendarEvent, id string, in EventInput) (EventResult, error) {
	if err := in.normalize(); err != nil {
		return EventResult{Events: events}, err
	}
	i := findEvent(events, id)
	if i < 0 {
		return EventResult{Events: events}, nil
	}
	ev := &events[i]
	ev.Title = in.Title
	ev.Description = in.Description
	ev.Date = in.Date
	ev.StartTime = in.StartTime
	ev.EndTime = in.EndTime
	ev.Color = in.Color
	return EventResult{Events: events, Event: ev, Changed: true}, nil
}

func DeleteEvent(events []model.CalendarEvent, id string) EventResult {
	i := findEvent(events, id)
	if i < 0 {
		return EventResult{Events: events}
	}
	out := make([]model.CalendarEvent, 0, len(events)-1)
	out = append(out, events[:i]...)
	out = append(out, events[i+1:]...)
	return EventResult{Events: out, Changed: true}
}

func findEvent(events []model.CalendarEvent, id string) int {
	for i := range events {
		if events[i].ID == id {
			return i
		}
	}
	return -1
}
