package view

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/leonbytyqi1709-sketch/bycore/internal/model"
	"github.com/leonbytyqi1709-sketch/bycore/internal/records"
	"github.com/leonbytyqi1709-sketch/bycore/internal/store"
)

// systemRing is the circumference of the r=42 disk ring.
const systemRing = 264.0

type RuntimeInfo struct {
	GoVersion string
	OS        string
	Arch      string
	CPUs      int
	DataPath  string
}

type SystemData struct {
	// Snapshot is nil until the stats provider has produced its first sample.
	Snapshot *model.SystemSnapshot
	Usage    store.Usage
	Stats    records.AppStats
	Theme    model.Theme
	Username string
	Runtime  RuntimeInfo
}

type snapshotVM struct {
	Online      bool
	CPU         string
	RAM         string
	DiskUsed    string
	DiskTotal   string
	DiskPercent string
	RingDash    string
	NetSpeed    string
	TakenAt     string
}

type systemVM struct {
	Snapshot *snapshotVM
	Storage  string
	Keys     int
	Stats    records.AppStats
	Theme    model.Theme
	Username string
	Runtime  RuntimeInfo
}

func (r *Renderer) System(d SystemData) (string, error) {
	vm := systemVM{
		Storage:  humanize.IBytes(uint64(d.Usage.Bytes)),
		Keys:     d.Usage.Keys,
		Stats:    d.Stats,
		Theme:    d.Theme,
		Username: d.Username,
		Runtime:  d.Runtime,
	}
	if s := d.Snapshot; s != nil {
		sv := &snapshotVM{
			Online:    s.Network.Online,
			CPU:       fmt.Sprintf("%.0f%%", s.CPU),
			RAM:       humanize.IBytes(s.RAM.Used) + " / " + humanize.IBytes(s.RAM.Total),
			DiskUsed:  humanize.IBytes(s.Disk.Used),
			DiskTotal: humanize.IBytes(s.Disk.Total),
			NetSpeed:  s.Network.Speed,
			TakenAt:   s.TakenAt.Format("15:04:05"),
		}
		if sv.NetSpeed == "" {
			sv.NetSpeed = "—"
		}
		var pct float64
		if s.Disk.Total > 0 {
			pct = float64(s.Disk.Used) / float64(s.Disk.Total) * 100
		}
		sv.DiskPercent = fmt.Sprintf("%.1f%%", pct)
		sv.RingDash = fmt.Sprintf("%.1f %.0f", pct*systemRing/100, systemRing)
		vm.Snapshot = sv
	}
	return r.execute("system", vm)
}
