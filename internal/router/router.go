// Package router owns one interactive session: which module is active, that module's transient
// UI state, the note autosave and the module's periodic tick. All operations are serialised by
// the router's mutex, which makes it the single mutator for the session.
package router

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/leonbytyqi1709-sketch/bycore/internal/autosave"
	"github.com/leonbytyqi1709-sketch/bycore/internal/model"
	"github.com/leonbytyqi1709-sketch/bycore/internal/records"
	"github.com/leonbytyqi1709-sketch/bycore/internal/store"
	"github.com/leonbytyqi1709-sketch/bycore/internal/view"
)

var ErrUnknownModule = errors.New("unknown module")

// Snapshotter supplies the latest system snapshot, if one has been taken yet.
type Snapshotter interface {
	Latest() (model.SystemSnapshot, bool)
}

// DefaultTicks are the refresh periods of modules that show live data.
var DefaultTicks = map[string]time.Duration{
	model.ModuleDashboard: time.Second,
	model.ModuleSystem:    2 * time.Second,
}

type Options struct {
	KV       store.KV
	Renderer *view.Renderer
	Clock    records.Clock
	Logger   *zap.Logger

	AutosaveDelay time.Duration
	Snapshots     Snapshotter
	Runtime       view.RuntimeInfo

	// Ticks overrides DefaultTicks.
	Ticks map[string]time.Duration
	// OnTick runs on the ticker goroutine for every tick of the active module. It must not call
	// back into the Router.
	OnTick func(module string)
	// OnSaveStatus runs when the autosave status changes. Same restriction as OnTick.
	OnSaveStatus func(autosave.Status)
}

type Router struct {
	mu   sync.Mutex
	kvMu sync.Mutex

	kv       store.KV
	renderer *view.Renderer
	now      records.Clock
	log      *zap.Logger

	notes  *records.Notes
	tasks  *records.Tasks
	events *records.Events

	autosave  *autosave.Debouncer
	snapshots Snapshotter
	runtime   view.RuntimeInfo

	ticks  map[string]time.Duration
	onTick func(string)
	ticker *ticker

	active       string
	notesState   view.NotesState
	tasksState   view.TasksState
	calState     view.CalendarState
	settingState view.SettingsState
}

func New(opts Options) (*Router, error) {
	if opts.KV == nil {
		return nil, errors.New("router: kv is nil")
	}
	if opts.Renderer == nil {
		return nil, errors.New("router: renderer is nil")
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	now := opts.Clock
	if now == nil {
		now = time.Now
	}
	ticks := opts.Ticks
	if ticks == nil {
		ticks = DefaultTicks
	}
	r := &Router{
		kv:        opts.KV,
		renderer:  opts.Renderer,
		now:       now,
		log:       log,
		notes:     records.NewNotes(opts.KV, now),
		tasks:     records.NewTasks(opts.KV, now),
		events:    records.NewEvents(opts.KV, now),
		autosave:  autosave.New(opts.AutosaveDelay, log),
		snapshots: opts.Snapshots,
		runtime:   opts.Runtime,
		ticks:     ticks,
		onTick:    opts.OnTick,
	}
	r.autosave.OnStatus(func(s autosave.Status) {
		// Status is read back under mu at render time; the callback only forwards.
		if opts.OnSaveStatus != nil {
			opts.OnSaveStatus(s)
		}
	})
	r.resetState()
	return r, nil
}

// Start activates the module persisted from the previous session, or the dashboard.
func (r *Router) Start(ctx context.Context) error {
	name, err := store.ActiveModule(ctx, r.kv)
	if err != nil {
		return err
	}
	return r.Load(ctx, name)
}

// Active returns the active module name ("" before the first Load).
func (r *Router) Active() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// Load makes name the active module. It flushes any pending note edit, cancels the previous
// module's ticker before installing the next one's, resets the previous module's transient
// state and persists the choice.
func (r *Router) Load(ctx context.Context, name string) error {
	if !model.ValidModule(name) {
		return fmt.Errorf("%w: %q", ErrUnknownModule, name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loadLocked(ctx, name)
}

func (r *Router) loadLocked(ctx context.Context, name string) error {
	if err := r.flushLocked(ctx); err != nil {
		return err
	}
	r.ticker.stop()
	r.ticker = nil

	if r.active != name {
		r.resetModuleLocked(r.active)
		r.resetModuleLocked(name)
	}
	r.active = name
	if d := r.ticks[name]; d > 0 && r.onTick != nil {
		r.ticker = startTicker(d, func() { r.onTick(name) })
	}
	r.log.Debug("module loaded", zap.String("module", name))
	return store.SetActiveModule(ctx, r.kv, name)
}

// Close flushes the autosave and stops the ticker. The router is unusable afterwards.
func (r *Router) Close(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ticker.stop()
	r.ticker = nil
	return r.flushLocked(ctx)
}

// Flush writes any pending note edit now.
func (r *Router) Flush(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.flushLocked(ctx)
}

func (r *Router) flushLocked(ctx context.Context) error {
	if err := r.autosave.Flush(ctx); err != nil {
		return fmt.Errorf("save note: %w", err)
	}
	r.notesState.Draft = nil
	return nil
}

func (r *Router) resetState() {
	for _, m := range model.Modules {
		r.resetModuleLocked(m)
	}
}

func (r *Router) resetModuleLocked(name string) {
	switch name {
	case model.ModuleNotes:
		r.autosave.Cancel()
		r.notesState = view.NotesState{}
	case model.ModuleTasks:
		r.tasksState = view.DefaultTasksState()
	case model.ModuleCalendar:
		r.calState = view.NewCalendarState(r.now())
	case model.ModuleSettings:
		r.settingState = view.SettingsState{}
	}
}

// Render renders #bycore-main for the active module. A module whose data cannot be loaded
// renders an error panel instead of failing the whole page.
func (r *Router) Render(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	active := r.active
	if active == "" {
		active = model.ModuleDashboard
	}
	theme, err := store.Theme(ctx, r.kv)
	if err != nil {
		return "", err
	}
	module, err := r.renderModuleLocked(ctx, active)
	if err != nil {
		var corrupt *store.CorruptCollectionError
		if !errors.As(err, &corrupt) {
			return "", err
		}
		r.log.Warn("module load failed", zap.String("module", active), zap.Error(err))
		if module, err = r.renderer.ErrorPanel(active, err); err != nil {
			return "", err
		}
	}
	return r.renderer.App(view.AppData{Theme: theme, Active: active, Module: template.HTML(module)})
}

func (r *Router) renderModuleLocked(ctx context.Context, name string) (string, error) {
	now := r.now()
	switch name {
	case model.ModuleNotes:
		notes, err := r.notes.Load(ctx)
		if err != nil {
			return "", err
		}
		r.selectDefaultNoteLocked(notes)
		st := r.notesState
		st.SaveStatus = r.autosave.Status()
		return r.renderer.Notes(notes, st)
	case model.ModuleTasks:
		tasks, err := r.tasks.Load(ctx)
		if err != nil {
			return "", err
		}
		return r.renderer.Tasks(tasks, r.tasksState, now)
	case model.ModuleCalendar:
		events, err := r.events.Load(ctx)
		if err != nil {
			return "", err
		}
		return r.renderer.Calendar(events, r.calState, records.DateString(now))
	case model.ModuleSystem:
		d, err := r.systemDataLocked(ctx, now)
		if err != nil {
			return "", err
		}
		return r.renderer.System(d)
	case model.ModuleSettings:
		name, err := store.Username(ctx, r.kv)
		if err != nil {
			return "", err
		}
		theme, err := store.Theme(ctx, r.kv)
		if err != nil {
			return "", err
		}
		usage, err := store.StorageUsage(ctx, r.kv)
		if err != nil {
			return "", err
		}
		return r.renderer.Settings(view.SettingsData{Username: name, Theme: theme, Usage: usage, State: r.settingState})
	default:
		d := view.DashboardData{Now: now}
		var err error
		if d.Username, err = store.Username(ctx, r.kv); err != nil {
			return "", err
		}
		if d.Notes, err = r.notes.Load(ctx); err != nil {
			return "", err
		}
		if d.Tasks, err = r.tasks.Load(ctx); err != nil {
			return "", err
		}
		if d.Events, err = r.events.Load(ctx); err != nil {
			return "", err
		}
		return r.renderer.Dashboard(d)
	}
}

func (r *Router) systemDataLocked(ctx context.Context, now time.Time) (view.SystemData, error) {
	d := view.SystemData{Runtime: r.runtime}
	var err error
	if d.Usage, err = store.StorageUsage(ctx, r.kv); err != nil {
		return d, err
	}
	if d.Theme, err = store.Theme(ctx, r.kv); err != nil {
		return d, err
	}
	if d.Username, err = store.Username(ctx, r.kv); err != nil {
		return d, err
	}
	notes, err := r.notes.Load(ctx)
	if err != nil {
		return d, err
	}
	tasks, err := r.tasks.Load(ctx)
	if err != nil {
		return d, err
	}
	events, err := r.events.Load(ctx)
	if err != nil {
		return d, err
	}
	d.Stats = records.ComputeStats(notes, tasks, events, records.DateString(now))
	if r.snapshots != nil {
		if s, ok := r.snapshots.Latest(); ok {
			d.Snapshot = &s
		}
	}
	return d, nil
}

// ticker drives one module's periodic refresh.
type ticker struct {
	done chan struct{}
	wg   sync.WaitGroup
}

func startTicker(d time.Duration, fn func()) *ticker {
	t := &ticker{done: make(chan struct{})}
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		tk := time.NewTicker(d)
		defer tk.Stop()
		for {
			select {
			case <-t.done:
				return
			case <-tk.C:
				fn()
			}
		}
	}()
	return t
}

// stop cancels the ticker and waits for its goroutine, so no tick fires after it returns.
func (t *ticker) stop() {
	if t == nil {
		return
	}
	close(t.done)
	t.wg.Wait()
}
