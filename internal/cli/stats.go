package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/leonbytyqi1709-sketch/bycore/internal/format"
	"github.com/leonbytyqi1709-sketch/bycore/internal/model"
	"github.com/leonbytyqi1709-sketch/bycore/internal/records"
	"github.com/leonbytyqi1709-sketch/bycore/internal/store"
	"github.com/leonbytyqi1709-sketch/bycore/internal/sysstats"
)

type statsView struct {
	System  *model.SystemSnapshot `json:"system"`
	App     records.AppStats      `json:"app"`
	Storage store.Usage           `json:"storage"`
}

func (s statsView) Text(r *lipgloss.Renderer) string {
	pairs := [][2]string{}
	if s.System != nil {
		net := "offline"
		if s.System.Network.Online {
			net = "online " + s.System.Network.Speed
		}
		pairs = append(pairs,
			[2]string{"cpu", fmt.Sprintf("%.1f%%", s.System.CPU)},
			[2]string{"ram", format.Bytes(s.System.RAM.Used) + " / " + format.Bytes(s.System.RAM.Total)},
			[2]string{"disk", format.Bytes(s.System.Disk.Used) + " / " + format.Bytes(s.System.Disk.Total)},
			[2]string{"network", net},
		)
	}
	pairs = append(pairs,
		[2]string{"notes", fmt.Sprintf("%d (%d pinned)", s.App.TotalNotes, s.App.PinnedNotes)},
		[2]string{"tasks", fmt.Sprintf("%d open, %d done", s.App.OpenTasks, s.App.DoneTasks)},
		[2]string{"events", fmt.Sprintf("%d total, %d today, %d upcoming", s.App.TotalEvents, s.App.TodayEvents, s.App.UpcomingEvents)},
		[2]string{"storage", fmt.Sprintf("%s in %d keys", format.Bytes(uint64(s.Storage.Bytes)), s.Storage.Keys)},
	)
	return format.Fields{Title: "BYCORE stats", Pairs: pairs}.Text(r)
}

func newStatsCmd(app *App) *cobra.Command {
	var noSystem bool
	var window time.Duration
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Host snapshot (CPU, RAM, disk, network) and record counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			ctx := cmd.Context()
			notes, err := records.NewNotes(st, nil).Load(ctx)
			if err != nil {
				return writeErr(cmd, err)
			}
			tasks, err := records.NewTasks(st, nil).Load(ctx)
			if err != nil {
				return writeErr(cmd, err)
			}
			events, err := records.NewEvents(st, nil).Load(ctx)
			if err != nil {
				return writeErr(cmd, err)
			}
			usage, err := store.StorageUsage(ctx, st)
			if err != nil {
				return writeErr(cmd, err)
			}
			v := statsView{
				App:     records.ComputeStats(notes, tasks, events, records.DateString(time.Now())),
				Storage: usage,
			}

			var hints []string
			if !noSystem {
				s := sysstats.New(app.Dir, app.log)
				// CPU usage is a delta between two samples; the first one covers the time since boot.
				if err := sampleTwice(ctx, s, window); err != nil {
					hints = append(hints, "system snapshot unavailable: "+err.Error())
				} else if snap, ok := s.Latest(); ok {
					v.System = &snap
				}
			}
			return writeOut(cmd, app, format.Envelope{Data: v, Hints: hints, Text: v})
		},
	}
	cmd.Flags().BoolVar(&noSystem, "no-system", false, "Skip the host snapshot")
	cmd.Flags().DurationVar(&window, "cpu-window", 250*time.Millisecond, "Interval over which CPU usage is measured (0 = since boot)")
	return cmd
}

func sampleTwice(ctx context.Context, s *sysstats.Sampler, window time.Duration) error {
	if err := s.Sample(ctx); err != nil {
		return err
	}
	if window <= 0 {
		return nil
	}
	t := time.NewTimer(window)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
	}
	return s.Sample(ctx)
}
