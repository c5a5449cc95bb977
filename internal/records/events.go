package records

import (
	"context"
	"sort"
	"time"

	"github.com/leonbytyqi1709-sketch/bycore/internal/model"
	"github.com/leonbytyqi1709-sketch/bycore/internal/mutate"
	"github.com/leonbytyqi1709-sketch/bycore/internal/store"
)

const DateLayout = "2006-01-02"

// Upcoming list lengths.
const (
	DashboardUpcoming = 4
	CalendarUpcoming  = 5
)

// DateString formats t as YYYY-MM-DD in t's own location.
func DateString(t time.Time) string {
	return t.Format(DateLayout)
}

type Events struct {
	kv  store.KV
	now Clock
}

func NewEvents(kv store.KV, now Clock) *Events {
	return &Events{kv: kv, now: orNow(now)}
}

func (m *Events) Load(ctx context.Context) ([]model.CalendarEvent, error) {
	return store.LoadCollection[model.CalendarEvent](ctx, m.kv, store.KeyEvents)
}

func (m *Events) Save(ctx context.Context, events []model.CalendarEvent) error {
	return store.SaveCollection(ctx, m.kv, store.KeyEvents, events)
}

func (m *Events) Get(ctx context.Context, id string) (model.CalendarEvent, error) {
	events, err := m.Load(ctx)
	if err != nil {
		return model.CalendarEvent{}, err
	}
	for _, e := range events {
		if e.ID == id {
			return e, nil
		}
	}
	return model.CalendarEvent{}, mutate.NotFoundError{Kind: "event", ID: id}
}

func (m *Events) Create(ctx context.Context, in mutate.EventInput) (model.CalendarEvent, error) {
	events, err := m.Load(ctx)
	if err != nil {
		return model.CalendarEvent{}, err
	}
	res, err := mutate.CreateEvent(events, in, m.now())
	if err != nil {
		return model.CalendarEvent{}, err
	}
	if err := m.Save(ctx, res.Events); err != nil {
		return model.CalendarEvent{}, err
	}
	return *res.Event, nil
}

func (m *Events) Update(ctx context.Context, id string, in mutate.EventInput) (bool, error) {
	events, err := m.Load(ctx)
	if err != nil {
		return false, err
	}
	res, err := mutate.UpdateEvent(events, id, in)
	if err != nil || !res.Changed {
		return false, err
	}
	return true, m.Save(ctx, res.Events)
}

func (m *Events) Delete(ctx context.Context, id string) (bool, error) {
	events, err := m.Load(ctx)
	if err != nil {
		return false, err
	}
	res := mutate.DeleteEvent(events, id)
	if !res.Changed {
		return false, nil
	}
	return true, m.Save(ctx, res.Events)
}

// EventsOn returns the events on date ordered by start time.
func EventsOn(events []model.CalendarEvent, date string) []model.CalendarEvent {
	out := []model.CalendarEvent{}
	for _, e := range events {
		if e.Date == date {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out
}

// Upcoming returns events on or after today, by date then start time, at most limit of them
// (limit <= 0 means no cap).
func Upcoming(events []model.CalendarEvent, today string, limit int) []model.CalendarEvent {
	out := []model.CalendarEvent{}
	for _, e := range events {
		if e.Date >= today {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].StartTime < out[j].StartTime
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
