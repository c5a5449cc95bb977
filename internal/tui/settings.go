package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/leonbytyqi1709-sketch/bycore/internal/format"
	"github.com/leonbytyqi1709-sketch/bycore/internal/model"
	"github.com/leonbytyqi1709-sketch/bycore/internal/mutate"
	"github.com/leonbytyqi1709-sketch/bycore/internal/store"
)

func (m *appModel) updateSettings(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Name):
		return m.openForm("Your name", func(v map[string]string) error {
			name := strings.TrimSpace(v["name"])
			if name == "" {
				return mutate.ValidationError{Field: "name", Reason: "must not be empty"}
			}
			if err := store.SetUsername(m.ctx, m.kv, name); err != nil {
				return err
			}
			m.username = name
			m.notice("Name saved.")
			return nil
		}, newField("name", "Name", m.username, store.DefaultUsername))

	case key.Matches(msg, m.keys.Theme):
		next := model.ThemeLight
		if m.theme == model.ThemeLight {
			next = model.ThemeDark
		}
		if err := store.SetTheme(m.ctx, m.kv, next); err != nil {
			m.fail(err)
			return nil
		}
		m.theme = next
		applyThemePreference(next)
		m.notice("Theme: " + string(next) + ".")

	case key.Matches(msg, m.keys.Export):
		path, err := m.exportBackup()
		if err != nil {
			m.fail(err)
			return nil
		}
		m.notice("Backup written to " + path)

	case key.Matches(msg, m.keys.Import):
		return m.openForm("Import backup", func(v map[string]string) error {
			path := strings.TrimSpace(v["path"])
			if path == "" {
				return mutate.ValidationError{Field: "path", Reason: "must not be empty"}
			}
			b, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			keys, err := store.Import(m.ctx, m.kv, b)
			if err != nil {
				return err
			}
			if err := m.reloadAll(); err != nil {
				return err
			}
			m.notice(fmt.Sprintf("Imported %d keys.", len(keys)))
			return nil
		}, newField("path", "File", "", "bycore-backup-YYYY-MM-DD.json"))

	case key.Matches(msg, m.keys.Reset):
		m.askConfirm("Reset everything", "Delete all notes, tasks, events and settings?", func() tea.Cmd {
			m.askConfirm("Really reset?", "This cannot be undone. Export a backup first if unsure.", func() tea.Cmd {
				n, err := store.Reset(m.ctx, m.kv)
				if err != nil {
					m.fail(err)
					return nil
				}
				if err := m.reloadAll(); err != nil {
					m.fail(err)
					return nil
				}
				cmd := m.switchModule(model.ModuleDashboard)
				m.notice(fmt.Sprintf("Removed %d keys.", n))
				return cmd
			})
			return nil
		})
	}
	return nil
}

// reloadAll re-reads the store after a bulk change and resets every module's transient state.
func (m *appModel) reloadAll() error {
	for _, name := range []string{model.ModuleNotes, model.ModuleTasks, model.ModuleCalendar} {
		m.resetModuleState(name)
	}
	if err := m.reload(); err != nil {
		return err
	}
	applyThemePreference(m.theme)
	return nil
}

func (m *appModel) exportBackup() (string, error) {
	b, err := store.Export(m.ctx, m.kv, true)
	if err != nil {
		return "", err
	}
	path := filepath.Join(m.outDir, store.BackupFileName(m.now()))
	if err := store.WriteBackupFile(path, b); err != nil {
		return "", err
	}
	return path, nil
}

func (m *appModel) viewSettings() string {
	rows := format.Table{
		Headers: []string{"Setting", "Value", "Key"},
		Rows: [][]string{
			{"Name", m.username, "n"},
			{"Theme", string(m.theme), "t"},
			{"Stored keys", fmt.Sprint(m.usage.Keys), ""},
			{"Storage used", format.Bytes(uint64(m.usage.Bytes)), ""},
		},
	}
	var b strings.Builder
	b.WriteString(styleHeading().Render("Profile & appearance"))
	b.WriteString("\n\n")
	b.WriteString(rows.Text(lipgloss.DefaultRenderer()))
	b.WriteString("\n")
	b.WriteString(styleHeading().Render("Data"))
	b.WriteString("\n\n")
	b.WriteString("x  export a JSON backup to " + displayDir(m.outDir) + "\n")
	b.WriteString("i  import a backup file (overwrites matching keys)\n")
	b.WriteString(styleError().Render("R  reset all BYCORE data"))
	return stylePanel(true).Width(max(40, m.width-4)).Render(b.String())
}

func displayDir(dir string) string {
	if dir == "" {
		return "the working directory"
	}
	return dir
}
