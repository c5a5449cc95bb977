package mutate

import (
	"testing"
	"time"

	"github.com/leonbytyqi1709-sketch/bycore/internal/model"
)

func TestCreateNote_PrependsWithTimestampID(t *testing.T) {
	res := CreateNote(nil, "", "", t0)
	if res.Note == nil || res.Note.ID != "1748779200000" {
		t.Fatalf("unexpected note: %+v", res.Note)
	}
	res = CreateNote(res.Notes, "second", "", t0.Add(time.Minute))
	if res.Notes[0].Title != "second" {
		t.Fatalf("expected new note at head, got %+v", res.Notes)
	}
	if !res.Notes[0].Created.Equal(res.Notes[0].Updated) {
		t.Fatalf("expected created == updated on a fresh note")
	}
}

func TestNewID_SkipsTakenIDs(t *testing.T) {
	taken := map[string]bool{"1000": true, "1001": true}
	got := NewID(time.UnixMilli(1000), func(id string) bool { return taken[id] })
	if got != "1002" {
		t.Fatalf("expected 1002, got %s", got)
	}
}

func TestUpdateNote_BumpsUpdatedMonotonically(t *testing.T) {
	res := CreateNote(nil, "t", "c", t0)
	id := res.Note.ID

	res = UpdateNote(res.Notes, id, "t2", "c2", t0.Add(time.Hour))
	if !res.Changed || !res.Note.Updated.Equal(t0.Add(time.Hour)) {
		t.Fatalf("expected updated bumped, got %+v", res.Note)
	}

	// A clock that runs backwards never moves updated back.
	res = UpdateNote(res.Notes, id, "t3", "c3", t0)
	if !res.Note.Updated.Equal(t0.Add(time.Hour)) {
		t.Fatalf("updated went backwards: %v", res.Note.Updated)
	}
	if res.Note.Title != "t3" || res.Note.Content != "c3" {
		t.Fatalf("expected fields replaced, got %+v", res.Note)
	}
}

func TestUpdateNote_MissingIsNoop(t *testing.T) {
	notes := []model.Note{{ID: "1", Title: "a"}}
	res := UpdateNote(notes, "2", "x", "y", t0)
	if res.Changed || res.Notes[0].Title != "a" {
		t.Fatalf("expected no-op, got %+v", res)
	}
}

func TestToggleNotePin_DoesNotTouchUpdated(t *testing.T) {
	notes := []model.Note{{ID: "1", Updated: t0}}
	res := ToggleNotePin(notes, "1")
	if !res.Changed || !res.Notes[0].Pinned {
		t.Fatalf("expected pinned, got %+v", res.Notes[0])
	}
	if !res.Notes[0].Updated.Equal(t0) {
		t.Fatalf("pin toggle changed updated")
	}
	res = ToggleNotePin(res.Notes, "1")
	if res.Notes[0].Pinned {
		t.Fatalf("expected unpinned")
	}
}

func TestDeleteNote(t *testing.T) {
	notes := []model.Note{{ID: "1"}, {ID: "2"}, {ID: "3"}}
	res := DeleteNote(notes, "2")
	if !res.Changed || len(res.Notes) != 2 || res.Notes[0].ID != "1" || res.Notes[1].ID != "3" {
		t.Fatalf("unexpected result: %+v", res.Notes)
	}
	if len(notes) != 3 || notes[1].ID != "2" {
		t.Fatalf("input slice was modified")
	}
}
