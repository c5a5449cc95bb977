package web

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// resourceHub fans a "something changed" signal out to every open event stream of a session.
type resourceHub struct {
	mu   sync.Mutex
	subs map[chan struct{}]struct{}
}

func newResourceHub() *resourceHub {
	return &resourceHub{subs: map[chan struct{}]struct{}{}}
}

func (h *resourceHub) subscribe() (ch chan struct{}, cancel func()) {
	ch = make(chan struct{}, 8)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch, func() {
		h.mu.Lock()
		delete(h.subs, ch)
		h.mu.Unlock()
		close(ch)
	}
}

func (h *resourceHub) broadcast() {
	h.mu.Lock()
	for ch := range h.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	h.mu.Unlock()
}

func (h *resourceHub) subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// storeWatcher signals when the database at db is written by anyone, including other
// processes such as the CLI. Bursts of events are coalesced into one check, and a check only
// signals when the store version moved, so the WAL/SHM churn of every read stays silent.
type storeWatcher struct {
	db       string
	coalesce time.Duration
	log      *zap.Logger
	version  func(ctx context.Context) (int64, error)
	onChange func()

	seen atomic.Int64
}

const watchCoalesce = 150 * time.Millisecond

// markSeen records the current version, so a write the server already broadcast is not
// signalled a second time.
func (w *storeWatcher) markSeen(ctx context.Context) {
	if v, err := w.version(ctx); err == nil {
		w.seen.Store(v)
	}
}

func (w *storeWatcher) run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()
	dir := filepath.Dir(w.db)
	if err := fw.Add(dir); err != nil {
		return err
	}
	w.log.Debug("watching data dir", zap.String("dir", dir))
	w.markSeen(ctx)

	coalesce := w.coalesce
	if coalesce <= 0 {
		coalesce = watchCoalesce
	}
	timer := time.NewTimer(coalesce)
	if !timer.Stop() {
		<-timer.C
	}
	pending := false

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !isDataWrite(ev, w.db) {
				continue
			}
			if !pending {
				pending = true
				timer.Reset(coalesce)
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("data dir watch error", zap.Error(err))
		case <-timer.C:
			pending = false
			v, err := w.version(ctx)
			if err != nil {
				w.log.Warn("read store version", zap.Error(err))
				continue
			}
			if v == w.seen.Swap(v) {
				continue
			}
			w.onChange()
		}
	}
}

// isDataWrite matches writes to the database file or its WAL. The SHM index and the
// create/remove of companions happen on every connection open and close.
func isDataWrite(ev fsnotify.Event, db string) bool {
	name := filepath.Base(ev.Name)
	base := filepath.Base(db)
	if name != base && name != base+"-wal" {
		return false
	}
	return ev.Has(fsnotify.Write)
}
