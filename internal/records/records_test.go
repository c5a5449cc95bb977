package records

import (
	"context"
	"testing"
	"time"

	"github.com/leonbytyqi1709-sketch/bycore/internal/model"
	"github.com/leonbytyqi1709-sketch/bycore/internal/mutate"
	"github.com/leonbytyqi1709-sketch/bycore/internal/store"

	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

// stepClock advances by step on every call.
func stepClock(start time.Time, step time.Duration) Clock {
	cur := start.Add(-step)
	return func() time.Time {
		cur = cur.Add(step)
		return cur
	}
}

var day = time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC)

func TestSortNotes_PinnedFirstThenUpdatedDesc(t *testing.T) {
	notes := []model.Note{
		{ID: "a", Updated: day},
		{ID: "b", Updated: day.Add(2 * time.Hour)},
		{ID: "c", Updated: day.Add(time.Hour), Pinned: true},
		{ID: "d", Updated: day, Pinned: true},
		{ID: "e", Updated: day},
	}
	got := SortNotes(notes)

	var ids []string
	for _, n := range got {
		ids = append(ids, n.ID)
	}
	require.Equal(t, []string{"c", "d", "b", "a", "e"}, ids)

	for i := 1; i < len(got); i++ {
		prev, cur := got[i-1], got[i]
		if !prev.Pinned && cur.Pinned {
			t.Fatalf("unpinned %s precedes pinned %s", prev.ID, cur.ID)
		}
		if prev.Pinned == cur.Pinned && cur.Updated.After(prev.Updated) {
			t.Fatalf("updated increases within group at %s", cur.ID)
		}
	}
	require.Equal(t, "a", notes[0].ID, "input must not be reordered")
}

func TestNotes_DeleteSelectsFirstSortedRemaining(t *testing.T) {
	ctx := context.Background()
	m := NewNotes(store.NewMemory(), stepClock(day, time.Minute))

	a, err := m.Create(ctx, "a", "")
	require.NoError(t, err)
	b, err := m.Create(ctx, "b", "")
	require.NoError(t, err)
	c, err := m.Create(ctx, "c", "")
	require.NoError(t, err)
	_, err = m.TogglePin(ctx, a.ID)
	require.NoError(t, err)

	next, changed, err := m.Delete(ctx, c.ID)
	require.NoError(t, err)
	require.True(t, changed)
	require.Equal(t, a.ID, next, "pinned note sorts first")

	next, _, err = m.Delete(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, b.ID, next)

	next, _, err = m.Delete(ctx, b.ID)
	require.NoError(t, err)
	require.Equal(t, "", next)
}

func TestNotes_UpdateMissingIsSilent(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	m := NewNotes(kv, fixedClock(day))
	changed, err := m.Update(ctx, "missing", "t", "c")
	require.NoError(t, err)
	require.False(t, changed)
	require.Zero(t, kv.Writes())
}

func TestNotes_CorruptCollectionSurfaces(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	require.NoError(t, kv.Set(ctx, store.KeyNotes, "{oops"))

	_, err := NewNotes(kv, nil).Create(ctx, "x", "")
	var cce *store.CorruptCollectionError
	require.ErrorAs(t, err, &cce)
	v, _, _ := kv.Get(ctx, store.KeyNotes)
	require.Equal(t, "{oops", v)
}

func TestSearchNotes_TitleAndPreview(t *testing.T) {
	long := "0123456789012345678901234567890123456789012345678901234567890123456789 needle"
	notes := []model.Note{
		{ID: "1", Title: "Shopping List"},
		{ID: "2", Content: "buy milk"},
		{ID: "3", Content: long},
	}
	require.Len(t, SearchNotes(notes, "shop"), 1)
	require.Len(t, SearchNotes(notes, "MILK"), 1)
	require.Empty(t, SearchNotes(notes, "needle"), "matches beyond the preview are not searched")
	require.Len(t, SearchNotes(notes, "  "), 3)
}

func TestPreviewAndDisplayTitle(t *testing.T) {
	require.Equal(t, 60, len([]rune(Preview(string(make([]rune, 100))))))
	require.Equal(t, "äöü", Preview("äöü"))
	require.Equal(t, "Untitled", DisplayTitle(model.Note{Title: "  "}))
}

func TestTasks_DoneMatchesStatusThroughManager(t *testing.T) {
	ctx := context.Background()
	m := NewTasks(store.NewMemory(), stepClock(day, time.Millisecond))

	tk, err := m.Create(ctx, mutate.TaskInput{Title: "x"})
	require.NoError(t, err)
	_, err = m.Move(ctx, tk.ID, model.StatusDone)
	require.NoError(t, err)
	_, err = m.ToggleDone(ctx, tk.ID)
	require.NoError(t, err)
	_, err = m.Update(ctx, tk.ID, mutate.TaskInput{Title: "y", Status: model.StatusProgress})
	require.NoError(t, err)

	got, err := m.Get(ctx, tk.ID)
	require.NoError(t, err)
	require.Equal(t, model.StatusProgress, got.Status)
	require.False(t, got.Done)
}

func TestTasks_RapidCreatesGetDistinctIDs(t *testing.T) {
	ctx := context.Background()
	m := NewTasks(store.NewMemory(), fixedClock(day))
	a, err := m.Create(ctx, mutate.TaskInput{Title: "a"})
	require.NoError(t, err)
	b, err := m.Create(ctx, mutate.TaskInput{Title: "b"})
	require.NoError(t, err)
	require.NotEqual(t, a.ID, b.ID)
}

func TestTasks_ValidationPersistsNothing(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	_, err := NewTasks(kv, nil).Create(ctx, mutate.TaskInput{Title: ""})
	var ve mutate.ValidationError
	require.ErrorAs(t, err, &ve)
	require.Equal(t, "title", ve.Field)
	require.Zero(t, kv.Writes())
}

func TestFilterAndPartition(t *testing.T) {
	tasks := []model.Task{
		{ID: "1", Priority: model.PriorityImportant, Status: model.StatusTodo},
		{ID: "2", Priority: model.PriorityNormal, Status: model.StatusProgress},
		{ID: "3", Priority: model.PriorityImportant, Status: model.StatusDone, Done: true},
		{ID: "4", Priority: model.PriorityOptional, Status: model.StatusTodo},
	}
	require.Len(t, FilterTasks(tasks, FilterAll), 4)
	imp := FilterTasks(tasks, string(model.PriorityImportant))
	require.Len(t, imp, 2)

	cols := PartitionTasks(imp)
	require.Len(t, cols.Todo, 1)
	require.Empty(t, cols.Progress)
	require.Len(t, cols.Done, 1)
	require.Equal(t, "3", cols.ByStatus(model.StatusDone)[0].ID)

	require.True(t, ValidFilter("all"))
	require.True(t, ValidFilter("optional"))
	require.False(t, ValidFilter("urgent"))
}

func TestIsOverdue(t *testing.T) {
	require.True(t, IsOverdue("2025-06-09", day))
	require.False(t, IsOverdue("2025-06-10", day))
	require.False(t, IsOverdue("2025-06-11", day))
	require.False(t, IsOverdue("", day))
	require.False(t, IsOverdue("garbage", day))
}

func TestSummarize(t *testing.T) {
	tasks := []model.Task{
		{Priority: model.PriorityImportant},
		{Priority: model.PriorityImportant, Done: true, Status: model.StatusDone},
		{Priority: model.PriorityNormal},
		{Priority: model.PriorityOptional, Done: true, Status: model.StatusDone},
	}
	s := Summarize(tasks)
	require.Equal(t, TaskSummary{Total: 4, Open: 2, Done: 2, Important: 1, Normal: 1, Optional: 0, Percent: 50}, s)
	require.Equal(t, 0, Summarize(nil).Percent)
	require.Equal(t, 33, Summarize([]model.Task{{Done: true}, {}, {}}).Percent)
}

func TestUpcoming_ExcludesPastAndSorts(t *testing.T) {
	events := []model.CalendarEvent{
		{ID: "d+2", Date: "2025-06-12", StartTime: "08:00"},
		{ID: "d-1", Date: "2025-06-09", StartTime: "08:00"},
		{ID: "d-late", Date: "2025-06-10", StartTime: "18:00"},
		{ID: "d+1", Date: "2025-06-11"},
		{ID: "d-early", Date: "2025-06-10", StartTime: "07:30"},
	}
	got := Upcoming(events, "2025-06-10", 0)
	var ids []string
	for _, e := range got {
		ids = append(ids, e.ID)
	}
	require.Equal(t, []string{"d-early", "d-late", "d+1", "d+2"}, ids)

	require.Len(t, Upcoming(events, "2025-06-10", DashboardUpcoming), 4)
	require.Len(t, Upcoming(events, "2025-06-10", 2), 2)
}

func TestEventsOn_OrdersByStartTime(t *testing.T) {
	events := []model.CalendarEvent{
		{ID: "b", Date: "2025-06-10", StartTime: "10:00"},
		{ID: "x", Date: "2025-06-11", StartTime: "01:00"},
		{ID: "a", Date: "2025-06-10", StartTime: "09:05"},
	}
	got := EventsOn(events, "2025-06-10")
	require.Len(t, got, 2)
	require.Equal(t, "a", got[0].ID)
	require.Equal(t, "b", got[1].ID)
}

func TestEvents_CreateAppends(t *testing.T) {
	ctx := context.Background()
	m := NewEvents(store.NewMemory(), fixedClock(day))
	a, err := m.Create(ctx, mutate.EventInput{Title: "a", Date: "2025-06-10"})
	require.NoError(t, err)
	_, err = m.Create(ctx, mutate.EventInput{Title: "b", Date: "2025-06-01"})
	require.NoError(t, err)

	all, err := m.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, a.ID, all[0].ID)

	changed, err := m.Delete(ctx, a.ID)
	require.NoError(t, err)
	require.True(t, changed)
	_, err = m.Get(ctx, a.ID)
	require.ErrorAs(t, err, new(mutate.NotFoundError))
}

func TestMonthGrid(t *testing.T) {
	// June 2025 starts on a Sunday, so the grid opens with six May days.
	cells := MonthGrid(2025, time.June)
	require.Len(t, cells, GridCells)
	require.Equal(t, "2025-05-26", cells[0].Date)
	require.False(t, cells[0].CurrentMonth)
	require.Equal(t, "2025-06-01", cells[6].Date)
	require.True(t, cells[6].CurrentMonth)
	require.Equal(t, 1, cells[6].Day)
	require.Equal(t, "2025-07-06", cells[41].Date)

	// September 2025 starts on a Monday: no leading padding.
	sep := MonthGrid(2025, time.September)
	require.Equal(t, "2025-09-01", sep[0].Date)

	// January wraps back into the previous year.
	jan := MonthGrid(2025, time.January)
	require.Equal(t, "2024-12-30", jan[0].Date)
}

func TestFillGrid_CapsDots(t *testing.T) {
	var events []model.CalendarEvent
	for _, st := range []string{"12:00", "09:00", "10:00", "11:00", "08:00"} {
		events = append(events, model.CalendarEvent{Date: "2025-06-10", StartTime: st})
	}
	cells := FillGrid(MonthGrid(2025, time.June), events)
	var cell DayCell
	for _, c := range cells {
		if c.Date == "2025-06-10" {
			cell = c
		}
	}
	require.Len(t, cell.Dots, MaxDayDots)
	require.Equal(t, "08:00", cell.Dots[0].StartTime)
	require.Equal(t, 2, cell.More)
}

func TestShiftMonth(t *testing.T) {
	y, m := ShiftMonth(2025, time.January, -1)
	require.Equal(t, 2024, y)
	require.Equal(t, time.December, m)
	y, m = ShiftMonth(2025, time.December, 1)
	require.Equal(t, 2026, y)
	require.Equal(t, time.January, m)
}

func TestComputeStats(t *testing.T) {
	s := ComputeStats(
		[]model.Note{{Pinned: true}, {}},
		[]model.Task{{Done: true}, {}, {}},
		[]model.CalendarEvent{{Date: "2025-06-09"}, {Date: "2025-06-10"}, {Date: "2025-06-11"}},
		"2025-06-10",
	)
	require.Equal(t, AppStats{TotalNotes: 2, PinnedNotes: 1, TotalTasks: 3, OpenTasks: 2, DoneTasks: 1, TotalEvents: 3, TodayEvents: 1, UpcomingEvents: 2}, s)
}
