package mutate

import (
	"time"

	"github.com/leonbytyqi1709-sketch/bycore/internal/model"
)

type NoteResult struct {
	Notes   []model.Note
	Note    *model.Note
	Changed bool
}

// CreateNote prepends a note. Notes may start with an empty title and content.
func CreateNote(notes []model.Note, title, content string, now time.Time) NoteResult {
	now = now.UTC()
	n := model.Note{
		ID:      NewID(now, idSet(notes, func(n model.Note) string { return n.ID })),
		Title:   title,
		Content: content,
		Created: now,
		Updated: now,
	}
	out := make([]model.Note, 0, len(notes)+1)
	out = append(out, n)
	out = append(out, notes...)
	return NoteResult{Notes: out, Note: &out[0], Changed: true}
}

// UpdateNote replaces title and content and bumps Updated. Updated never moves backwards, even
// if the clock does.
func UpdateNote(notes []model.Note, id, title, content string, now time.Time) NoteResult {
	i := findNote(notes, id)
	if i < 0 {
		return NoteResult{Notes: notes}
	}
	n := &notes[i]
	n.Title = title
	n.Content = content
	now = now.UTC()
	if now.After(n.Updated) {
		n.Updated = now
	}
	return NoteResult{Notes: notes, Note: n, Changed: true}
}

// ToggleNotePin flips Pinned. Updated is not touched.
func ToggleNotePin(notes []model.Note, id string) NoteResult {
	i := findNote(notes, id)
	if i < 0 {
		return NoteResult{Notes: notes}
	}
	notes[i].Pinned = !notes[i].Pinned
	return NoteResult{Notes: notes, Note: &notes[i], Changed: true}
}

func DeleteNote(notes []model.Note, id string) NoteResult {
	i := findNote(notes, id)
	if i < 0 {
		return NoteResult{Notes: notes}
	}
	out := make([]model.Note, 0, len(notes)-1)
	out = append(out, notes[:i]...)
	out = append(out, notes[i+1:]...)
	return NoteResult{Notes: out, Changed: true}
}

func findNote(notes []model.Note, id string) int {
	for i := range notes {
		if notes[i].ID == id {
			return i
		}
	}
	return -1
}
