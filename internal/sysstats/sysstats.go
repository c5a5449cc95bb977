// Package sysstats samples host CPU, memory, disk and network state for the system module.
package sysstats

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/leonbytyqi1709-sketch/bycore/internal/model"
)

const DefaultInterval = 2 * time.Second

// Probe takes one snapshot. Implementations may keep state between calls (CPU usage is a
// delta between two samples).
type Probe interface {
	Sample(ctx context.Context) (model.SystemSnapshot, error)
}

// Sampler keeps the most recent snapshot of a Probe.
type Sampler struct {
	probe Probe
	log   *zap.Logger

	mu       sync.Mutex
	latest   model.SystemSnapshot
	ok       bool
	onSample func(model.SystemSnapshot)
}

// New samples the host with the platform probe. path selects the filesystem reported as disk.
func New(path string, log *zap.Logger) *Sampler {
	return NewWithProbe(newHostProbe(path), log)
}

func NewWithProbe(p Probe, log *zap.Logger) *Sampler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Sampler{probe: p, log: log}
}

// OnSample registers a callback run after every successful sample, without locks held.
func (s *Sampler) OnSample(fn func(model.SystemSnapshot)) {
	s.mu.Lock()
	s.onSample = fn
	s.mu.Unlock()
}

// Latest returns the last snapshot; ok is false until the first sample succeeds.
func (s *Sampler) Latest() (model.SystemSnapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest, s.ok
}

// Sample takes one snapshot now. A failed sample keeps the previous snapshot.
func (s *Sampler) Sample(ctx context.Context) error {
	snap, err := s.probe.Sample(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.latest, s.ok = snap, true
	fn := s.onSample
	s.mu.Unlock()
	if fn != nil {
		fn(snap)
	}
	return nil
}

// Run samples every interval until ctx is done. Probe failures are logged, not fatal.
func (s *Sampler) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultInterval
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		if err := s.Sample(ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.log.Warn("system sample failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
		}
	}
}
