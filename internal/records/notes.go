// Package records owns the three record collections. Each manager loads the whole collection,
// applies one mutation and writes the whole collection back.
package records

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/leonbytyqi1709-sketch/bycore/internal/model"
	"github.com/leonbytyqi1709-sketch/bycore/internal/mutate"
	"github.com/leonbytyqi1709-sketch/bycore/internal/store"
)

// Clock returns the current time. Managers take one so tests can pin "now".
type Clock func() time.Time

func orNow(c Clock) Clock {
	if c == nil {
		return time.Now
	}
	return c
}

const previewLen = 60

type Notes struct {
	kv  store.KV
	now Clock
}

func NewNotes(kv store.KV, now Clock) *Notes {
	return &Notes{kv: kv, now: orNow(now)}
}

func (m *Notes) Load(ctx context.Context) ([]model.Note, error) {
	return store.LoadCollection[model.Note](ctx, m.kv, store.KeyNotes)
}

func (m *Notes) Save(ctx context.Context, notes []model.Note) error {
	return store.SaveCollection(ctx, m.kv, store.KeyNotes, notes)
}

func (m *Notes) Get(ctx context.Context, id string) (model.Note, error) {
	notes, err := m.Load(ctx)
	if err != nil {
		return model.Note{}, err
	}
	for _, n := range notes {
		if n.ID == id {
			return n, nil
		}
	}
	return model.Note{}, mutate.NotFoundError{Kind: "note", ID: id}
}

// Create prepends a note; the caller is expected to select it.
func (m *Notes) Create(ctx context.Context, title, content string) (model.Note, error) {
	notes, err := m.Load(ctx)
	if err != nil {
		return model.Note{}, err
	}
	res := mutate.CreateNote(notes, title, content, m.now())
	if err := m.Save(ctx, res.Notes); err != nil {
		return model.Note{}, err
	}
	return *res.Note, nil
}

func (m *Notes) Update(ctx context.Context, id, title, content string) (bool, error) {
	notes, err := m.Load(ctx)
	if err != nil {
		return false, err
	}
	res := mutate.UpdateNote(notes, id, title, content, m.now())
	if !res.Changed {
		return false, nil
	}
	return true, m.Save(ctx, res.Notes)
}

func (m *Notes) TogglePin(ctx context.Context, id string) (bool, error) {
	notes, err := m.Load(ctx)
	if err != nil {
		return false, err
	}
	res := mutate.ToggleNotePin(notes, id)
	if !res.Changed {
		return false, nil
	}
	return true, m.Save(ctx, res.Notes)
}

// Delete removes the note and returns the id that should be selected next: the first note of
// the remaining sorted collection, or "" when none remain.
func (m *Notes) Delete(ctx context.Context, id string) (next string, changed bool, err error) {
	notes, err := m.Load(ctx)
	if err != nil {
		return "", false, err
	}
	res := mutate.DeleteNote(notes, id)
	if res.Changed {
		if err := m.Save(ctx, res.Notes); err != nil {
			return "", false, err
		}
	}
	sorted := SortNotes(res.Notes)
	if len(sorted) > 0 {
		next = sorted[0].ID
	}
	return next, res.Changed, nil
}

// SortNotes returns a sorted copy: pinned first, then most recently updated. Ties keep their
// collection order.
func SortNotes(notes []model.Note) []model.Note {
	out := append([]model.Note(nil), notes...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Pinned != b.Pinned {
			return a.Pinned
		}
		return a.Updated.After(b.Updated)
	})
	return out
}

// Preview is the sidebar excerpt: the first 60 characters of content.
func Preview(content string) string {
	r := []rune(content)
	if len(r) > previewLen {
		r = r[:previewLen]
	}
	return string(r)
}

// DisplayTitle falls back to "Untitled" for notes without a title.
func DisplayTitle(n model.Note) string {
	if strings.TrimSpace(n.Title) == "" {
		return "Untitled"
	}
	return n.Title
}

// SearchNotes keeps notes whose title or preview contains query, case-insensitively. A blank
// query matches everything.
func SearchNotes(notes []model.Note, query string) []model.Note {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return notes
	}
	out := make([]model.Note, 0, len(notes))
	for _, n := range notes {
		if strings.Contains(strings.ToLower(n.Title), q) || strings.Contains(strings.ToLower(Preview(n.Content)), q) {
			out = append(out, n)
		}
	}
	return out
}
