//go:build linux

package sysstats

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"

	"github.com/leonbytyqi1709-sketch/bycore/internal/model"
)

type hostProbe struct {
	path    string
	procDir string
	sysDir  string

	mu       sync.Mutex
	lastIdle uint64
	lastAll  uint64
}

func newHostProbe(path string) Probe {
	if path == "" {
		path = "/"
	}
	return &hostProbe{path: path, procDir: "/proc", sysDir: "/sys/class/net"}
}

func (p *hostProbe) Sample(ctx context.Context) (model.SystemSnapshot, error) {
	snap := model.SystemSnapshot{TakenAt: time.Now().UTC()}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cpu, err := p.cpu()
		snap.CPU = cpu
		return err
	})
	g.Go(func() error {
		var info unix.Sysinfo_t
		if err := unix.Sysinfo(&info); err != nil {
			return fmt.Errorf("sysinfo: %w", err)
		}
		unit := uint64(info.Unit)
		snap.RAM = model.Usage{
			Total: uint64(info.Totalram) * unit,
			Used:  (uint64(info.Totalram) - uint64(info.Freeram) - uint64(info.Bufferram)) * unit,
		}
		return nil
	})
	g.Go(func() error {
		var fs unix.Statfs_t
		if err := unix.Statfs(p.path, &fs); err != nil {
			return fmt.Errorf("statfs %s: %w", p.path, err)
		}
		bs := uint64(fs.Bsize)
		snap.Disk = model.Usage{Total: fs.Blocks * bs, Used: (fs.Blocks - fs.Bfree) * bs}
		return nil
	})
	g.Go(func() error {
		snap.Network = p.network()
		return ctx.Err()
	})
	if err := g.Wait(); err != nil {
		return model.SystemSnapshot{}, err
	}
	return snap, nil
}

// cpu reports busy time since the previous call as a percentage; the first call reports usage
// since boot.
func (p *hostProbe) cpu() (float64, error) {
	b, err := os.ReadFile(filepath.Join(p.procDir, "stat"))
	if err != nil {
		return 0, fmt.Errorf("read cpu stat: %w", err)
	}
	idle, all, err := parseCPULine(b)
	if err != nil {
		return 0, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	dIdle, dAll := idle-p.lastIdle, all-p.lastAll
	p.lastIdle, p.lastAll = idle, all
	if dAll == 0 {
		return 0, nil
	}
	return 100 * float64(dAll-dIdle) / float64(dAll), nil
}

// parseCPULine reads the aggregate "cpu" line of /proc/stat. Idle includes iowait.
func parseCPULine(b []byte) (idle, all uint64, err error) {
	sc := bufio.NewScanner(bytes.NewReader(b))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 5 || fields[0] != "cpu" {
			continue
		}
		for i, f := range fields[1:] {
			v, err := strconv.ParseUint(f, 10, 64)
			if err != nil {
				return 0, 0, fmt.Errorf("parse cpu stat: %w", err)
			}
			all += v
			if i == 3 || i == 4 {
				idle += v
			}
		}
		return idle, all, nil
	}
	return 0, 0, fmt.Errorf("parse cpu stat: no aggregate cpu line")
}

// network reports online when any non-loopback interface is up with an address, and the link
// speed of the first such interface that exposes one.
func (p *hostProbe) network() model.Network {
	ifaces, err := net.Interfaces()
	if err != nil {
		return model.Network{}
	}
	var out model.Network
	for _, ifc := range ifaces {
		if ifc.Flags&net.FlagUp == 0 || ifc.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := ifc.Addrs()
		if err != nil || len(addrs) == 0 {
			continue
		}
		out.Online = true
		if out.Speed == "" {
			out.Speed = p.linkSpeed(ifc.Name)
		}
	}
	return out
}

func (p *hostProbe) linkSpeed(name string) string {
	b, err := os.ReadFile(filepath.Join(p.sysDir, name, "speed"))
	if err != nil {
		return ""
	}
	mbps, err := strconv.Atoi(strings.TrimSpace(string(b)))
	if err != nil || mbps <= 0 {
		return ""
	}
	if mbps >= 1000 && mbps%1000 == 0 {
		return fmt.Sprintf("%d Gbit/s", mbps/1000)
	}
	return fmt.Sprintf("%d Mbit/s", mbps)
}
