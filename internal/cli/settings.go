package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/leonbytyqi1709-sketch/bycore/internal/format"
	"github.com/leonbytyqi1709-sketch/bycore/internal/model"
	"github.com/leonbytyqi1709-sketch/bycore/internal/mutate"
	"github.com/leonbytyqi1709-sketch/bycore/internal/store"
)

type settingsView struct {
	Username     string      `json:"username"`
	Theme        model.Theme `json:"theme"`
	ActiveModule string      `json:"activeModule"`
	Storage      store.Usage `json:"storage"`
	Path         string      `json:"path"`
}

func (s settingsView) Text(r *lipgloss.Renderer) string {
	return format.Fields{
		Title: "Settings",
		Pairs: [][2]string{
			{"name", s.Username},
			{"theme", string(s.Theme)},
			{"active module", s.ActiveModule},
			{"storage", fmt.Sprintf("%s in %d keys", format.Bytes(uint64(s.Storage.Bytes)), s.Storage.Keys)},
			{"database", s.Path},
		},
	}.Text(r)
}

func loadSettings(cmd *cobra.Command, st store.Store) (settingsView, error) {
	ctx := cmd.Context()
	var v settingsView
	var err error
	if v.Username, err = store.Username(ctx, st); err != nil {
		return v, err
	}
	if v.Theme, err = store.Theme(ctx, st); err != nil {
		return v, err
	}
	if v.ActiveModule, err = store.ActiveModule(ctx, st); err != nil {
		return v, err
	}
	if v.Storage, err = store.StorageUsage(ctx, st); err != nil {
		return v, err
	}
	v.Path = st.Path()
	return v, nil
}

func newSettingsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Display name, theme and storage usage",
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeSettings(cmd, app)
		},
	}

	nameCmd := &cobra.Command{
		Use:   "set-name <name>",
		Short: "Set the name used in the dashboard greeting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])
			if name == "" {
				return writeErr(cmd, mutate.ValidationError{Field: "name", Reason: "must not be empty"})
			}
			st, err := openStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := store.SetUsername(cmd.Context(), st, name); err != nil {
				return writeErr(cmd, err)
			}
			return writeSettings(cmd, app)
		},
	}

	themeCmd := &cobra.Command{
		Use:   "set-theme <dark|light>",
		Short: "Set the color theme",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			theme := model.Theme(strings.ToLower(strings.TrimSpace(args[0])))
			if !theme.Valid() {
				return writeErr(cmd, mutate.ValidationError{Field: "theme", Reason: args[0]})
			}
			st, err := openStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := store.SetTheme(cmd.Context(), st, theme); err != nil {
				return writeErr(cmd, err)
			}
			return writeSettings(cmd, app)
		},
	}

	cmd.AddCommand(showCmd)
	cmd.AddCommand(nameCmd)
	cmd.AddCommand(themeCmd)
	return cmd
}

func writeSettings(cmd *cobra.Command, app *App) error {
	st, err := openStore(app)
	if err != nil {
		return writeErr(cmd, err)
	}
	v, err := loadSettings(cmd, st)
	if err != nil {
		return writeErr(cmd, err)
	}
	return writeOut(cmd, app, format.Envelope{Data: v, Text: v})
}
