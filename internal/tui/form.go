package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/leonbytyqi1709-sketch/bycore/internal/mutate"
)

type formField struct {
	key   string
	label string
	input textinput.Model
}

// form is a modal of single-line inputs. submit receives the values by field key; a
// mutate.ValidationError keeps the form open with the failing field marked.
type form struct {
	title    string
	fields   []formField
	focus    int
	errField string
	err      string
	submit   func(values map[string]string) error
}

func newField(key, label, value, placeholder string) formField {
	in := textinput.New()
	in.Prompt = ""
	in.Placeholder = placeholder
	in.SetValue(value)
	return formField{key: key, label: label, input: in}
}

func (m *appModel) openForm(title string, submit func(map[string]string) error, fields ...formField) tea.Cmd {
	m.form = &form{title: title, fields: fields, submit: submit}
	return m.form.focusField(0)
}

func (f *form) focusField(i int) tea.Cmd {
	n := len(f.fields)
	f.focus = ((i % n) + n) % n
	for j := range f.fields {
		f.fields[j].input.Blur()
	}
	return f.fields[f.focus].input.Focus()
}

func (f *form) values() map[string]string {
	out := make(map[string]string, len(f.fields))
	for _, fld := range f.fields {
		out[fld.key] = fld.input.Value()
	}
	return out
}

func (m *appModel) updateForm(msg tea.KeyMsg) tea.Cmd {
	f := m.form
	switch msg.Type {
	case tea.KeyEsc:
		m.form = nil
		return nil
	case tea.KeyTab, tea.KeyDown:
		return f.focusField(f.focus + 1)
	case tea.KeyShiftTab, tea.KeyUp:
		return f.focusField(f.focus - 1)
	case tea.KeyEnter, tea.KeyCtrlS:
		if msg.Type == tea.KeyEnter && f.focus < len(f.fields)-1 {
			return f.focusField(f.focus + 1)
		}
		err := f.submit(f.values())
		var verr mutate.ValidationError
		if errors.As(err, &verr) {
			f.errField, f.err = verr.Field, verr.Error()
			for i, fld := range f.fields {
				if fld.key == verr.Field {
					return f.focusField(i)
				}
			}
			return nil
		}
		m.form = nil
		if err != nil {
			m.fail(err)
		}
		return nil
	}
	var cmd tea.Cmd
	fld := &f.fields[f.focus]
	fld.input, cmd = fld.input.Update(msg)
	return cmd
}

func (m *appModel) viewForm() string {
	f := m.form
	labelW := 0
	for _, fld := range f.fields {
		labelW = max(labelW, lipgloss.Width(fld.label))
	}
	lines := []string{styleHeading().Render(f.title), ""}
	for i, fld := range f.fields {
		label := lipgloss.NewStyle().Width(labelW + 2).Render(fld.label)
		switch {
		case fld.key == f.errField:
			label = styleError().Width(labelW + 2).Render(fld.label)
		case i == f.focus:
			label = lipgloss.NewStyle().Bold(true).Width(labelW + 2).Render(fld.label)
		}
		lines = append(lines, label+fld.input.View())
	}
	if f.err != "" {
		lines = append(lines, "", styleError().Render(f.err))
	}
	box := stylePanel(true).Width(min(72, max(40, m.width-4))).Render(strings.Join(lines, "\n"))
	return lipgloss.Place(m.width, m.bodyHeight(), lipgloss.Center, lipgloss.Center, box)
}

// confirmPrompt guards destructive actions.
type confirmPrompt struct {
	title string
	body  string
	yes   func() tea.Cmd
}

func (m *appModel) askConfirm(title, body string, yes func() tea.Cmd) {
	m.confirm = &confirmPrompt{title: title, body: body, yes: yes}
}

func (m *appModel) updateConfirm(msg tea.KeyMsg) tea.Cmd {
	c := m.confirm
	switch msg.String() {
	case "y", "Y", "enter":
		m.confirm = nil
		return c.yes()
	case "n", "N", "esc", "ctrl+g":
		m.confirm = nil
	}
	return nil
}

func (m *appModel) viewConfirm() string {
	c := m.confirm
	content := styleError().Bold(true).Render(c.title) + "\n\n" + c.body + "\n\n" +
		styleMuted().Render("y: confirm   n/esc: cancel")
	box := stylePanel(true).BorderForeground(colorDanger).Width(min(64, max(36, m.width-4))).Render(content)
	return lipgloss.Place(m.width, m.bodyHeight(), lipgloss.Center, lipgloss.Center, box)
}
