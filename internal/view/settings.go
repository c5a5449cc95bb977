package view

import (
	"github.com/dustin/go-humanize"

	"github.com/leonbytyqi1709-sketch/bycore/internal/model"
	"github.com/leonbytyqi1709-sketch/bycore/internal/store"
)

type SettingsData struct {
	Username string
	Theme    model.Theme
	Usage    store.Usage
	State    SettingsState
}

type settingsVM struct {
	Username string
	Dark     bool
	Storage  string
	Keys     int
	Notice   string
	Error    string
}

func (r *Renderer) Settings(d SettingsData) (string, error) {
	return r.execute("settings", settingsVM{
		Username: d.Username,
		Dark:     d.Theme != model.ThemeLight,
		Storage:  humanize.IBytes(uint64(d.Usage.Bytes)),
		Keys:     d.Usage.Keys,
		Notice:   d.State.Notice,
		Error:    d.State.Error,
	})
}
