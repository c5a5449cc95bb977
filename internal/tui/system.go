package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/leonbytyqi1709-sketch/bycore/internal/format"
	"github.com/leonbytyqi1709-sketch/bycore/internal/model"
	"github.com/leonbytyqi1709-sketch/bycore/internal/records"
)

const gaugeWidth = 24

// gauge draws a horizontal bar for pct in [0,100].
func gauge(pct float64) string {
	pct = min(100, max(0, pct))
	filled := int(pct/100*gaugeWidth + 0.5)
	c := colorSuccess
	switch {
	case pct >= 90:
		c = colorDanger
	case pct >= 70:
		c = colorWarning
	}
	return lipgloss.NewStyle().Foreground(c).Render(strings.Repeat("█", filled)) +
		styleMuted().Render(strings.Repeat("░", gaugeWidth-filled))
}

func usagePercent(u model.Usage) float64 {
	if u.Total == 0 {
		return 0
	}
	return float64(u.Used) / float64(u.Total) * 100
}

func (m *appModel) viewSystem() string {
	var host strings.Builder
	host.WriteString(styleHeading().Render("Host"))
	host.WriteString("\n\n")
	snap, ok := model.SystemSnapshot{}, false
	if m.sampler != nil {
		snap, ok = m.sampler.Latest()
	}
	if !ok {
		host.WriteString(styleMuted().Render("Waiting for the first sample…"))
	} else {
		fmt.Fprintf(&host, "CPU   %s %5.1f%%\n", gauge(snap.CPU), snap.CPU)
		fmt.Fprintf(&host, "RAM   %s %s / %s\n", gauge(usagePercent(snap.RAM)), format.Bytes(snap.RAM.Used), format.Bytes(snap.RAM.Total))
		fmt.Fprintf(&host, "Disk  %s %s / %s\n", gauge(usagePercent(snap.Disk)), format.Bytes(snap.Disk.Used), format.Bytes(snap.Disk.Total))
		net := styleError().Render("offline")
		if snap.Network.Online {
			net = lipgloss.NewStyle().Foreground(colorSuccess).Render("online")
			if snap.Network.Speed != "" {
				net += " " + styleMuted().Render(snap.Network.Speed)
			}
		}
		host.WriteString("Net   " + net + "\n")
		host.WriteString(styleMuted().Render("sampled " + format.Ago(snap.TakenAt, m.now())))
	}

	st := records.ComputeStats(m.notes, m.tasks, m.events, records.DateString(m.now()))
	app := format.Fields{
		Title: "BYCORE data",
		Pairs: [][2]string{
			{"Notes", fmt.Sprintf("%d (%d pinned)", st.TotalNotes, st.PinnedNotes)},
			{"Tasks", fmt.Sprintf("%d open, %d done", st.OpenTasks, st.DoneTasks)},
			{"Events", fmt.Sprintf("%d total, %d today, %d upcoming", st.TotalEvents, st.TodayEvents, st.UpcomingEvents)},
			{"Storage", fmt.Sprintf("%s in %d keys", format.Bytes(uint64(m.usage.Bytes)), m.usage.Keys)},
		},
	}
	half := max(36, (m.width-6)/2)
	return lipgloss.JoinHorizontal(lipgloss.Top,
		stylePanel(true).Width(half).Render(host.String()),
		stylePanel(false).Width(half).Render(app.Text(lipgloss.DefaultRenderer())),
	)
}
