package format

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// Table is a column-aligned listing with a bold header row.
type Table struct {
	Headers []string
	Rows    [][]string
	// Empty is printed instead of the table when there are no rows.
	Empty string
}

func (t Table) Text(r *lipgloss.Renderer) string {
	if len(t.Rows) == 0 {
		if t.Empty != "" {
			return r.NewStyle().Faint(true).Render(t.Empty)
		}
		return ""
	}

	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.Rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			if w := lipgloss.Width(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}

	head := r.NewStyle().Bold(true)
	var b strings.Builder
	writeRow := func(cells []string, style *lipgloss.Style) {
		for i := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			if style != nil {
				cell = style.Render(cell)
			}
			b.WriteString(cell)
			if i < len(widths)-1 {
				pad := widths[i] - lipgloss.Width(cell) + 2
				b.WriteString(strings.Repeat(" ", pad))
			}
		}
		b.WriteString("\n")
	}
	writeRow(t.Headers, &head)
	for _, row := range t.Rows {
		writeRow(row, nil)
	}
	return strings.TrimRight(b.String(), "\n")
}

// Fields is an ordered key/value block, optionally followed by a free-text body.
type Fields struct {
	Title string
	Pairs [][2]string
	Body  string
}

func (f Fields) Text(r *lipgloss.Renderer) string {
	var b strings.Builder
	if f.Title != "" {
		b.WriteString(r.NewStyle().Bold(true).Render(f.Title))
		b.WriteString("\n")
	}
	width := 0
	for _, p := range f.Pairs {
		if w := lipgloss.Width(p[0]); w > width {
			width = w
		}
	}
	key := r.NewStyle().Faint(true)
	for _, p := range f.Pairs {
		b.WriteString(key.Render(p[0] + ":"))
		b.WriteString(strings.Repeat(" ", width-lipgloss.Width(p[0])+1))
		b.WriteString(p[1])
		b.WriteString("\n")
	}
	if f.Body != "" {
		b.WriteString("\n")
		b.WriteString(f.Body)
	}
	return strings.TrimRight(b.String(), "\n")
}

// Line is a single preformatted message.
type Line string

func (l Line) Text(*lipgloss.Renderer) string { return string(l) }

// Bytes formats a size in IEC units ("1.5 GiB").
func Bytes(n uint64) string { return humanize.IBytes(n) }

// Ago formats t relative to now ("3 minutes ago").
func Ago(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	return humanize.RelTime(t, now, "ago", "from now")
}
