// Package autosave batches rapid edits into one deferred write.
package autosave

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const DefaultDelay = 500 * time.Millisecond

type Status string

const (
	StatusIdle    Status = ""
	StatusEditing Status = "editing"
	StatusSaved   Status = "saved"
	StatusFailed  Status = "failed"
)

// SaveFunc persists the latest edit.
type SaveFunc func(ctx context.Context) error

// Debouncer runs the most recent SaveFunc once the editor has been quiet for the delay. Every
// Touch restarts the countdown; Flush runs the pending save immediately. A pending save runs at
// most once, whichever of the timer or Flush gets to it first.
type Debouncer struct {
	delay time.Duration
	log   *zap.Logger

	// saveMu serialises saves and is held from taking the pending func until it returns, so
	// Flush never returns while a timer-driven save is still writing.
	saveMu sync.Mutex

	mu       sync.Mutex
	timer    *time.Timer
	pending  SaveFunc
	status   Status
	onStatus func(Status)

	// gen identifies the armed timer. Touch, Flush and Cancel move it, and a fire from an older
	// timer is dropped.
	gen uint64
}

func New(delay time.Duration, log *zap.Logger) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Debouncer{delay: delay, log: log}
}

// OnStatus registers a callback for status changes. It runs without locks held.
func (d *Debouncer) OnStatus(fn func(Status)) {
	d.mu.Lock()
	d.onStatus = fn
	d.mu.Unlock()
}

func (d *Debouncer) Status() Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.status
}

func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

// Touch records an edit. save replaces any earlier pending save.
func (d *Debouncer) Touch(save SaveFunc) {
	if d == nil || save == nil {
		return
	}
	d.mu.Lock()
	d.pending = save
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(d.delay, func() { d.onTimer(gen) })
	cb := d.setStatusLocked(StatusEditing)
	d.mu.Unlock()
	cb()
}

// Flush cancels the countdown and runs the pending save now, if there is one.
func (d *Debouncer) Flush(ctx context.Context) error {
	if d == nil {
		return nil
	}
	d.saveMu.Lock()
	defer d.saveMu.Unlock()

	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	save := d.pending
	d.pending = nil
	d.mu.Unlock()

	if save == nil {
		return nil
	}
	return d.run(ctx, save)
}

// Cancel drops the pending save without running it.
func (d *Debouncer) Cancel() {
	if d == nil {
		return
	}
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	d.pending = nil
	cb := d.setStatusLocked(StatusIdle)
	d.mu.Unlock()
	cb()
}

func (d *Debouncer) onTimer(gen uint64) {
	d.saveMu.Lock()
	defer d.saveMu.Unlock()

	d.mu.Lock()
	if gen != d.gen {
		// Flushed, cancelled or touched again while this fire waited for saveMu.
		d.mu.Unlock()
		return
	}
	save := d.pending
	d.pending = nil
	d.mu.Unlock()
	if save == nil {
		return
	}
	if err := d.run(context.Background(), save); err != nil {
		d.log.Warn("autosave failed", zap.Error(err))
	}
}

func (d *Debouncer) run(ctx context.Context, save SaveFunc) error {
	err := save(ctx)
	d.mu.Lock()
	var cb func()
	switch {
	case err != nil:
		cb = d.setStatusLocked(StatusFailed)
	case d.pending == nil:
		cb = d.setStatusLocked(StatusSaved)
	default:
		// Another edit arrived while saving; stay in editing.
		cb = func() {}
	}
	d.mu.Unlock()
	cb()
	return err
}

func (d *Debouncer) setStatusLocked(s Status) func() {
	if d.status == s {
		return func() {}
	}
	d.status = s
	fn := d.onStatus
	if fn == nil {
		return func() {}
	}
	return func() { fn(s) }
}
