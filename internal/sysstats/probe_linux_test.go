//go:build linux

package sysstats

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseCPULine(t *testing.T) {
	stat := []byte("cpu  100 0 50 800 50 0 0 0 0 0\ncpu0 50 0 25 400 25 0 0 0 0 0\n")
	idle, all, err := parseCPULine(stat)
	require.NoError(t, err)
	require.Equal(t, uint64(850), idle)
	require.Equal(t, uint64(1000), all)

	_, _, err = parseCPULine([]byte("intr 1 2 3\n"))
	require.Error(t, err)
}

func TestHostProbe_CPUIsDeltaBetweenSamples(t *testing.T) {
	dir := t.TempDir()
	p := &hostProbe{procDir: dir}
	write := func(s string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "stat"), []byte(s), 0o644))
	}

	write("cpu 100 0 0 900 0 0 0\n")
	_, err := p.cpu()
	require.NoError(t, err)

	write("cpu 175 0 0 925 0 0 0\n")
	got, err := p.cpu()
	require.NoError(t, err)
	require.InDelta(t, 75.0, got, 0.001)

	got, err = p.cpu()
	require.NoError(t, err)
	require.Zero(t, got, "no ticks elapsed")
}

func TestHostProbe_LinkSpeed(t *testing.T) {
	dir := t.TempDir()
	for name, speed := range map[string]string{"eth0": "1000\n", "eth1": "100\n", "wlan0": "-1\n"} {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, name), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, name, "speed"), []byte(speed), 0o644))
	}
	p := &hostProbe{sysDir: dir}
	require.Equal(t, "1 Gbit/s", p.linkSpeed("eth0"))
	require.Equal(t, "100 Mbit/s", p.linkSpeed("eth1"))
	require.Empty(t, p.linkSpeed("wlan0"))
	require.Empty(t, p.linkSpeed("missing"))
}

func TestHostProbe_SampleRoot(t *testing.T) {
	snap, err := newHostProbe("/").Sample(context.Background())
	require.NoError(t, err)
	require.NotZero(t, snap.RAM.Total)
	require.NotZero(t, snap.Disk.Total)
	require.LessOrEqual(t, snap.Disk.Used, snap.Disk.Total)
}
