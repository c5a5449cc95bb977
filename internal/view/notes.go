package view

import (
	"github.com/leonbytyqi1709-sketch/bycore/internal/autosave"
	"github.com/leonbytyqi1709-sketch/bycore/internal/markdown"
	"github.com/leonbytyqi1709-sketch/bycore/internal/model"
	"github.com/leonbytyqi1709-sketch/bycore/internal/records"
)

type noteItemVM struct {
	ID      string
	Title   string
	Preview string
	Date    string
	Pinned  bool
	Active  bool
}

type noteEditorVM struct {
	ID      string
	Title   string
	Content string
	Pinned  bool
	Preview bool
	Chars   int
	Words   int
	Status  string
}

type notesVM struct {
	Query  string
	Items  []noteItemVM
	Empty  bool
	Editor *noteEditorVM
}

func saveStatusLabel(s autosave.Status) string {
	switch s {
	case autosave.StatusEditing:
		return "Saving…"
	case autosave.StatusFailed:
		return "⚠ Save failed"
	default:
		return "✓ Saved"
	}
}

// Notes renders the sidebar (sorted, filtered by the search query) and the editor for the
// selected note. A pending draft wins over the stored title and content.
func (r *Renderer) Notes(notes []model.Note, st NotesState) (string, error) {
	vm := notesVM{Query: st.Query, Empty: len(notes) == 0}

	var selected *model.Note
	for i := range notes {
		if notes[i].ID == st.SelectedID {
			n := notes[i]
			if st.Draft != nil && st.Draft.ID == n.ID {
				n.Title, n.Content = st.Draft.Title, st.Draft.Content
			}
			selected = &n
			break
		}
	}

	for _, n := range records.SearchNotes(records.SortNotes(notes), st.Query) {
		if selected != nil && n.ID == selected.ID {
			n = *selected
		}
		item := noteItemVM{
			ID:      n.ID,
			Title:   records.DisplayTitle(n),
			Preview: records.Preview(n.Content),
			Date:    n.Updated.Format("Jan 02, 15:04"),
			Pinned:  n.Pinned,
			Active:  n.ID == st.SelectedID,
		}
		if item.Preview == "" {
			item.Preview = "Empty…"
		}
		vm.Items = append(vm.Items, item)
	}

	if selected != nil {
		chars, words := markdown.Stats(selected.Content)
		vm.Editor = &noteEditorVM{
			ID:      selected.ID,
			Title:   selected.Title,
			Content: selected.Content,
			Pinned:  selected.Pinned,
			Preview: st.Preview,
			Chars:   chars,
			Words:   words,
			Status:  saveStatusLabel(st.SaveStatus),
		}
	}
	return r.execute("notes", vm)
}
