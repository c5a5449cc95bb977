package tui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/leonbytyqi1709-sketch/bycore/internal/model"
)

// Theme/palette helpers.
//
// The TUI must remain readable on both light and dark terminal backgrounds.
// We use lipgloss.AdaptiveColor everywhere and only apply "faint" styling
// on dark backgrounds (faint text on light terminals often becomes illegible).

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

func faintIfDark(st lipgloss.Style) lipgloss.Style {
	if lipgloss.HasDarkBackground() {
		return st.Faint(true)
	}
	return st
}

var (
	colorMuted       lipgloss.TerminalColor = ac("240", "243")
	colorSelectedBg  lipgloss.TerminalColor = ac("#e9e9e9", "#262626")
	colorSelectedFg  lipgloss.TerminalColor = ac("235", "255")
	colorCardBorder  lipgloss.TerminalColor = ac("250", "243")
	colorBorderFocus lipgloss.TerminalColor = ac("232", "255")
	colorAccent      lipgloss.TerminalColor = ac("27", "62")
	colorAccentFg    lipgloss.TerminalColor = ac("255", "235")
	colorDanger      lipgloss.TerminalColor = ac("160", "203")
	colorSuccess     lipgloss.TerminalColor = ac("28", "78")
	colorWarning     lipgloss.TerminalColor = ac("130", "214")
)

// eventColors maps stored event colors to terminal colors.
var eventColors = map[model.Color]lipgloss.TerminalColor{
	model.ColorBlue:   ac("27", "69"),
	model.ColorGreen:  ac("28", "78"),
	model.ColorRed:    ac("160", "203"),
	model.ColorOrange: ac("130", "214"),
	model.ColorPurple: ac("91", "141"),
}

var priorityColors = map[model.Priority]lipgloss.TerminalColor{
	model.PriorityImportant: colorDanger,
	model.PriorityNormal:    colorWarning,
	model.PriorityOptional:  colorSuccess,
}

func styleMuted() lipgloss.Style {
	return faintIfDark(lipgloss.NewStyle().Foreground(colorMuted))
}

func styleHeading() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
}

func styleSelected() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorSelectedFg).Background(colorSelectedBg).Bold(true)
}

func styleTab(active bool) lipgloss.Style {
	st := lipgloss.NewStyle().Padding(0, 1)
	if active {
		return st.Foreground(colorAccentFg).Background(colorAccent).Bold(true)
	}
	return st.Foreground(colorMuted)
}

func styleError() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorDanger)
}

func styleNotice() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorSuccess)
}

func stylePanel(focused bool) lipgloss.Style {
	border := colorCardBorder
	if focused {
		border = colorBorderFocus
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1)
}

// applyColorProfilePreference sets Lip Gloss's color profile for the interactive TUI.
//
// termenv.EnvColorProfile respects CLICOLOR/CLICOLOR_FORCE, which can disable colors in a TUI.
// Here we only honor NO_COLOR and otherwise follow the terminal's capabilities.
func applyColorProfilePreference() {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}

	profile := termenv.ColorProfile()
	term := strings.ToLower(strings.TrimSpace(os.Getenv("TERM")))
	colorterm := strings.ToLower(strings.TrimSpace(os.Getenv("COLORTERM")))
	if strings.Contains(colorterm, "truecolor") || strings.Contains(colorterm, "24bit") {
		if profile != termenv.Ascii {
			profile = termenv.TrueColor
		}
	} else if strings.Contains(term, "256color") && (profile == termenv.Ascii || profile == termenv.ANSI) {
		profile = termenv.ANSI256
	}
	lipgloss.SetColorProfile(profile)
}

// applyThemePreference picks the palette. BYCORE_TUI_THEME (light|dark) wins, then
// BYCORE_TUI_DARKBG, then the theme stored in settings.
func applyThemePreference(stored model.Theme) {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("BYCORE_TUI_THEME"))) {
	case "light":
		lipgloss.SetHasDarkBackground(false)
		return
	case "dark":
		lipgloss.SetHasDarkBackground(true)
		return
	}

	if v := strings.TrimSpace(os.Getenv("BYCORE_TUI_DARKBG")); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			lipgloss.SetHasDarkBackground(b)
			return
		}
	}

	if stored.Valid() {
		lipgloss.SetHasDarkBackground(stored == model.ThemeDark)
	}
}
