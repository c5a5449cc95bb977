package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/leonbytyqi1709-sketch/bycore/internal/autosave"
	"github.com/leonbytyqi1709-sketch/bycore/internal/format"
	"github.com/leonbytyqi1709-sketch/bycore/internal/markdown"
	"github.com/leonbytyqi1709-sketch/bycore/internal/model"
	"github.com/leonbytyqi1709-sketch/bycore/internal/records"
)

type noteItem struct{ note model.Note }

func (i noteItem) Title() string {
	if i.note.Pinned {
		return "★ " + records.DisplayTitle(i.note)
	}
	return records.DisplayTitle(i.note)
}

func (i noteItem) Description() string { return records.Preview(i.note.Content) }
func (i noteItem) FilterValue() string { return i.note.Title }

type notesUI struct {
	list      list.Model
	selected  string
	query     textinput.Model
	searching bool
	preview   bool

	editing   bool
	focusBody bool
	title     textinput.Model
	body      textarea.Model
	dirty     bool
	// editSeq identifies the latest keystroke; only its autosave tick writes.
	editSeq int
	status  autosave.Status
}

func newNotesUI() notesUI {
	l := list.New(nil, list.NewDefaultDelegate(), sidebarWidth, 20)
	l.Title = "Notes"
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	q := textinput.New()
	q.Prompt = "/ "
	q.Placeholder = "Search notes"

	title := textinput.New()
	title.Prompt = ""
	title.Placeholder = "Untitled"

	body := textarea.New()
	body.ShowLineNumbers = false
	body.CharLimit = 0
	body.Placeholder = "Start writing… Markdown is supported."

	return notesUI{list: l, query: q, title: title, body: body}
}

func (m *appModel) visibleNotes() []model.Note {
	return records.SearchNotes(records.SortNotes(m.notes), m.notesUI.query.Value())
}

// syncNotesList rebuilds the sidebar and keeps the selection on the same note. A selection
// that is no longer visible falls back to the first visible note.
func (m *appModel) syncNotesList() {
	visible := m.visibleNotes()
	items := make([]list.Item, len(visible))
	idx := -1
	for i, n := range visible {
		items[i] = noteItem{note: n}
		if n.ID == m.notesUI.selected {
			idx = i
		}
	}
	m.notesUI.list.SetItems(items)
	if idx < 0 && !m.notesUI.editing {
		m.notesUI.selected = ""
		if len(visible) > 0 {
			m.notesUI.selected = visible[0].ID
			idx = 0
		}
	}
	if idx >= 0 {
		m.notesUI.list.Select(idx)
	}
}

func (m *appModel) selectedNote() (model.Note, bool) {
	for _, n := range m.notes {
		if n.ID == m.notesUI.selected {
			return n, true
		}
	}
	return model.Note{}, false
}

func (m *appModel) updateNotes(msg tea.KeyMsg) tea.Cmd {
	ui := &m.notesUI
	switch {
	case key.Matches(msg, m.keys.Up):
		ui.list.CursorUp()
		m.selectListedNote()
	case key.Matches(msg, m.keys.Down):
		ui.list.CursorDown()
		m.selectListedNote()
	case key.Matches(msg, m.keys.New):
		n, err := m.notesMgr.Create(m.ctx, "", "")
		if err != nil {
			m.fail(err)
			return nil
		}
		ui.selected = n.ID
		ui.query.SetValue("")
		if err := m.reloadNotes(); err != nil {
			m.fail(err)
			return nil
		}
		return m.startEditing(false)
	case key.Matches(msg, m.keys.Edit):
		if _, ok := m.selectedNote(); ok {
			return m.startEditing(true)
		}
	case key.Matches(msg, m.keys.Search):
		ui.searching = true
		return ui.query.Focus()
	case key.Matches(msg, m.keys.Preview):
		ui.preview = !ui.preview
	case key.Matches(msg, m.keys.Pin):
		if _, err := m.notesMgr.TogglePin(m.ctx, ui.selected); err != nil {
			m.fail(err)
			return nil
		}
		if err := m.reloadNotes(); err != nil {
			m.fail(err)
		}
	case key.Matches(msg, m.keys.Delete):
		n, ok := m.selectedNote()
		if !ok {
			return nil
		}
		m.askConfirm("Delete note", fmt.Sprintf("Delete %q? This cannot be undone.", records.DisplayTitle(n)), func() tea.Cmd {
			next, _, err := m.notesMgr.Delete(m.ctx, n.ID)
			if err != nil {
				m.fail(err)
				return nil
			}
			m.notesUI.selected = next
			if err := m.reloadNotes(); err != nil {
				m.fail(err)
			}
			return nil
		})
	}
	return nil
}

func (m *appModel) selectListedNote() {
	if it, ok := m.notesUI.list.SelectedItem().(noteItem); ok {
		m.notesUI.selected = it.note.ID
	}
}

func (m *appModel) reloadNotes() error {
	notes, err := m.notesMgr.Load(m.ctx)
	if err != nil {
		return err
	}
	m.notes = notes
	m.syncNotesList()
	return nil
}

func (m *appModel) startEditing(focusBody bool) tea.Cmd {
	n, ok := m.selectedNote()
	if !ok {
		return nil
	}
	ui := &m.notesUI
	ui.editing = true
	ui.dirty = false
	ui.status = autosave.StatusIdle
	ui.title.SetValue(n.Title)
	ui.body.SetValue(n.Content)
	return m.focusEditor(focusBody)
}

func (m *appModel) focusEditor(body bool) tea.Cmd {
	ui := &m.notesUI
	ui.focusBody = body
	if body {
		ui.title.Blur()
		return ui.body.Focus()
	}
	ui.body.Blur()
	return ui.title.Focus()
}

// updateNotesInput handles keys while the search box or the editor has focus.
func (m *appModel) updateNotesInput(msg tea.KeyMsg) tea.Cmd {
	ui := &m.notesUI
	if ui.searching {
		switch msg.Type {
		case tea.KeyEsc, tea.KeyEnter:
			ui.searching = false
			ui.query.Blur()
			return nil
		}
		var cmd tea.Cmd
		ui.query, cmd = ui.query.Update(msg)
		m.syncNotesList()
		return cmd
	}

	switch {
	case key.Matches(msg, m.keys.Done):
		err := m.flushDraft()
		ui.editing = false
		ui.title.Blur()
		ui.body.Blur()
		if err != nil {
			m.fail(err)
		}
		return nil
	case key.Matches(msg, m.keys.Save):
		if err := m.flushDraft(); err != nil {
			m.fail(err)
		}
		return nil
	case msg.Type == tea.KeyTab:
		return m.focusEditor(!ui.focusBody)
	}

	beforeTitle, beforeBody := ui.title.Value(), ui.body.Value()
	var cmd tea.Cmd
	if ui.focusBody {
		ui.body, cmd = ui.body.Update(msg)
	} else {
		ui.title, cmd = ui.title.Update(msg)
	}
	if ui.title.Value() == beforeTitle && ui.body.Value() == beforeBody {
		return cmd
	}
	ui.dirty = true
	ui.editSeq++
	ui.status = autosave.StatusEditing
	seq := ui.editSeq
	return tea.Batch(cmd, tea.Tick(m.delay, func(_ time.Time) tea.Msg { return autosaveMsg{seq: seq} }))
}

// flushDraft writes the editor contents if they changed since the last save.
func (m *appModel) flushDraft() error {
	ui := &m.notesUI
	if !ui.editing || !ui.dirty {
		return nil
	}
	if _, err := m.notesMgr.Update(m.ctx, ui.selected, ui.title.Value(), ui.body.Value()); err != nil {
		ui.status = autosave.StatusFailed
		return err
	}
	ui.dirty = false
	ui.status = autosave.StatusSaved
	return m.reloadNotes()
}

func (m *appModel) viewNotes() string {
	ui := &m.notesUI
	h := m.bodyHeight() - 2

	sidebar := ui.list.View()
	if ui.searching || ui.query.Value() != "" {
		sidebar = ui.query.View() + "\n" + sidebar
	}
	if len(ui.list.Items()) == 0 {
		empty := "No notes yet. Press n to create one."
		if ui.query.Value() != "" {
			empty = "No notes match."
		}
		sidebar += "\n" + styleMuted().Render(empty)
	}
	left := stylePanel(!ui.editing).Width(sidebarWidth).Height(h).Render(sidebar)

	rightW := max(20, m.width-sidebarWidth-6)
	var right string
	n, ok := m.selectedNote()
	switch {
	case !ok:
		right = styleMuted().Render("Select a note or press n to create one.")
	case ui.editing:
		right = ui.title.View() + "\n" + strings.Repeat("─", rightW-4) + "\n" + ui.body.View()
		right += "\n" + m.noteFooter(ui.body.Value())
	default:
		content := n.Content
		if ui.preview {
			content = RenderMarkdown(n.Content, rightW-4)
		}
		right = styleHeading().Render(records.DisplayTitle(n)) + "\n" +
			styleMuted().Render("Updated "+format.Ago(n.Updated, m.now())) + "\n\n" + content
		right += "\n\n" + m.noteFooter(n.Content)
	}
	rightPanel := stylePanel(ui.editing).Width(rightW).Height(h).Render(right)
	return lipgloss.JoinHorizontal(lipgloss.Top, left, rightPanel)
}

func (m *appModel) noteFooter(content string) string {
	chars, words := markdown.Stats(content)
	footer := fmt.Sprintf("%d characters · %d words", chars, words)
	switch m.notesUI.status {
	case autosave.StatusEditing:
		footer += " · Editing…"
	case autosave.StatusSaved:
		footer += " · Saved"
	case autosave.StatusFailed:
		footer += " · Save failed"
	}
	return styleMuted().Render(footer)
}
