// Package tui is the keyboard-driven terminal rendition of the BYCORE modules.
package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"go.uber.org/zap"

	"github.com/leonbytyqi1709-sketch/bycore/internal/model"
	"github.com/leonbytyqi1709-sketch/bycore/internal/records"
	"github.com/leonbytyqi1709-sketch/bycore/internal/store"
	"github.com/leonbytyqi1709-sketch/bycore/internal/sysstats"
)

type Options struct {
	KV            store.KV
	Now           records.Clock
	Logger        *zap.Logger
	Sampler       *sysstats.Sampler
	AutosaveDelay time.Duration
	// ExportDir receives backup files written from the settings screen; empty means the
	// working directory.
	ExportDir     string
}

// Run blocks until the user quits or ctx is cancelled. A pending note edit is written before
// Run returns.
func Run(ctx context.Context, opts Options) error {
	applyColorProfilePreference()
	m, err := newAppModel(ctx, opts)
	if err != nil {
		return err
	}
	applyThemePreference(m.theme)

	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	flushErr := m.flushDraft()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return flushErr
}

type tickMsg time.Time

type sampledMsg struct{ err error }

type autosaveMsg struct{ seq int }

const (
	sidebarWidth      = 34
	dashboardUpcoming = 4
	calendarUpcoming  = 5
	statsEveryTicks   = 2
)

type appModel struct {
	ctx     context.Context
	kv      store.KV
	now     records.Clock
	log     *zap.Logger
	sampler *sysstats.Sampler
	delay   time.Duration
	outDir  string

	notesMgr  *records.Notes
	tasksMgr  *records.Tasks
	eventsMgr *records.Events

	width  int
	height int
	module string
	ticks  int

	username string
	theme    model.Theme
	notes    []model.Note
	tasks    []model.Task
	events   []model.CalendarEvent
	usage    store.Usage
	// loadErrs holds per-collection load failures keyed by store key.
	loadErrs map[string]error

	notesUI notesUI
	tasksUI tasksUI
	calUI   calendarUI

	form    *form
	confirm *confirmPrompt

	keys keyMap
	help help.Model

	flash    string
	flashErr bool
}

func newAppModel(ctx context.Context, opts Options) (*appModel, error) {
	if opts.KV == nil {
		return nil, errors.New("tui: missing store")
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	m := &appModel{
		ctx:       ctx,
		kv:        opts.KV,
		now:       now,
		log:       log,
		sampler:   opts.Sampler,
		delay:     opts.AutosaveDelay,
		outDir:    opts.ExportDir,
		notesMgr:  records.NewNotes(opts.KV, now),
		tasksMgr:  records.NewTasks(opts.KV, now),
		eventsMgr: records.NewEvents(opts.KV, now),
		keys:      defaultKeyMap(),
		help:      help.New(),
		width:     100,
		height:    30,
	}
	if m.delay <= 0 {
		m.delay = 500 * time.Millisecond
	}

	m.resetModuleState(model.ModuleNotes)
	m.resetModuleState(model.ModuleTasks)
	m.resetModuleState(model.ModuleCalendar)

	active, err := store.ActiveModule(ctx, m.kv)
	if err != nil {
		return nil, err
	}
	m.module = active
	if err := m.reload(); err != nil {
		return nil, err
	}
	return m, nil
}

// reload re-reads settings and every collection. Corrupt collections are remembered per key
// and rendered as an error panel by the modules that need them.
func (m *appModel) reload() error {
	var err error
	if m.theme, err = store.Theme(m.ctx, m.kv); err != nil {
		return err
	}
	if m.username, err = store.Username(m.ctx, m.kv); err != nil {
		return err
	}
	m.loadErrs = map[string]error{}

	notes, err := m.notesMgr.Load(m.ctx)
	if err = m.keepLoadErr(store.KeyNotes, err); err != nil {
		return err
	}
	tasks, err := m.tasksMgr.Load(m.ctx)
	if err = m.keepLoadErr(store.KeyTasks, err); err != nil {
		return err
	}
	events, err := m.eventsMgr.Load(m.ctx)
	if err = m.keepLoadErr(store.KeyEvents, err); err != nil {
		return err
	}
	m.notes, m.tasks, m.events = notes, tasks, events
	if m.usage, err = store.StorageUsage(m.ctx, m.kv); err != nil {
		return err
	}
	m.syncNotesList()
	m.clampTaskCursor()
	return nil
}

func (m *appModel) keepLoadErr(key string, err error) error {
	var corrupt *store.CorruptCollectionError
	if errors.As(err, &corrupt) {
		m.loadErrs[key] = err
		return nil
	}
	return err
}

// moduleErr returns the load failure that prevents the module from rendering.
func (m *appModel) moduleErr(name string) error {
	var keys []string
	switch name {
	case model.ModuleNotes:
		keys = []string{store.KeyNotes}
	case model.ModuleTasks:
		keys = []string{store.KeyTasks}
	case model.ModuleCalendar:
		keys = []string{store.KeyEvents}
	case model.ModuleDashboard, model.ModuleSystem:
		keys = []string{store.KeyNotes, store.KeyTasks, store.KeyEvents}
	}
	for _, k := range keys {
		if err := m.loadErrs[k]; err != nil {
			return err
		}
	}
	return nil
}

func (m *appModel) Init() tea.Cmd {
	return tea.Batch(tickCmd(), m.sampleCmd())
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *appModel) sampleCmd() tea.Cmd {
	if m.sampler == nil {
		return nil
	}
	s, ctx := m.sampler, m.ctx
	return func() tea.Msg { return sampledMsg{err: s.Sample(ctx)} }
}

func (m *appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case tickMsg:
		m.ticks++
		cmds := []tea.Cmd{tickCmd()}
		if m.module == model.ModuleSystem && m.ticks%statsEveryTicks == 0 {
			cmds = append(cmds, m.sampleCmd())
		}
		return m, tea.Batch(cmds...)

	case sampledMsg:
		if msg.err != nil {
			m.log.Debug("system sample failed", zap.Error(msg.err))
		}
		return m, nil

	case autosaveMsg:
		if msg.seq == m.notesUI.editSeq {
			if err := m.flushDraft(); err != nil {
				m.fail(err)
			}
		}
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}
	return m, m.updateFocusedInput(msg)
}

func (m *appModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.Type == tea.KeyCtrlC {
		return m.quit()
	}
	if m.confirm != nil {
		return m.updateConfirm(msg)
	}
	if m.form != nil {
		return m.updateForm(msg)
	}
	if m.module == model.ModuleNotes && (m.notesUI.editing || m.notesUI.searching) {
		return m.updateNotesInput(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.NextModule):
		return m.switchModule(m.moduleAt(1))
	case key.Matches(msg, m.keys.PrevModule):
		return m.switchModule(m.moduleAt(-1))
	case key.Matches(msg, m.keys.Reload):
		if err := m.flushDraft(); err != nil {
			m.fail(err)
			return nil
		}
		if err := m.reload(); err != nil {
			m.fail(err)
			return nil
		}
		m.notice("Reloaded.")
		return nil
	}
	if s := msg.String(); len(s) == 1 && s[0] >= '1' && s[0] <= '0'+byte(len(model.Modules)) {
		return m.switchModule(model.Modules[s[0]-'1'])
	}
	if m.moduleErr(m.module) != nil {
		return nil
	}

	switch m.module {
	case model.ModuleNotes:
		return m.updateNotes(msg)
	case model.ModuleTasks:
		return m.updateTasks(msg)
	case model.ModuleCalendar:
		return m.updateCalendar(msg)
	case model.ModuleSettings:
		return m.updateSettings(msg)
	}
	return nil
}

func (m *appModel) quit() tea.Cmd {
	if err := m.flushDraft(); err != nil {
		m.log.Warn("saving note on quit", zap.Error(err))
	}
	return tea.Quit
}

func (m *appModel) moduleAt(delta int) string {
	n := len(model.Modules)
	for i, name := range model.Modules {
		if name == m.module {
			return model.Modules[((i+delta)%n+n)%n]
		}
	}
	return model.ModuleDashboard
}

// switchModule flushes the pending note edit, drops the outgoing module's transient state and
// persists the new active module.
func (m *appModel) switchModule(name string) tea.Cmd {
	if name == m.module {
		return nil
	}
	if err := m.flushDraft(); err != nil {
		m.fail(err)
		return nil
	}
	m.resetModuleState(m.module)
	m.module = name
	m.flash = ""
	if err := store.SetActiveModule(m.ctx, m.kv, name); err != nil {
		m.fail(err)
	}
	if name == model.ModuleSystem {
		if u, err := store.StorageUsage(m.ctx, m.kv); err == nil {
			m.usage = u
		}
		return m.sampleCmd()
	}
	return nil
}

func (m *appModel) resetModuleState(name string) {
	switch name {
	case model.ModuleNotes:
		m.notesUI = newNotesUI()
		m.resize()
		m.syncNotesList()
	case model.ModuleTasks:
		m.tasksUI = newTasksUI()
	case model.ModuleCalendar:
		m.calUI = newCalendarUI(m.now())
	}
}

func (m *appModel) resize() {
	bodyH := m.bodyHeight()
	m.notesUI.list.SetSize(sidebarWidth, bodyH-2)
	m.notesUI.body.SetWidth(max(20, m.width-sidebarWidth-8))
	m.notesUI.body.SetHeight(max(3, bodyH-6))
	m.help.Width = m.width
}

func (m *appModel) bodyHeight() int {
	// tabs + flash + help
	return max(8, m.height-4)
}

func (m *appModel) updateFocusedInput(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch {
	case m.form != nil:
		f := &m.form.fields[m.form.focus]
		f.input, cmd = f.input.Update(msg)
	case m.notesUI.editing && m.notesUI.focusBody:
		m.notesUI.body, cmd = m.notesUI.body.Update(msg)
	case m.notesUI.editing:
		m.notesUI.title, cmd = m.notesUI.title.Update(msg)
	case m.notesUI.searching:
		m.notesUI.query, cmd = m.notesUI.query.Update(msg)
	}
	return cmd
}

func (m *appModel) notice(s string) {
	m.flash, m.flashErr = s, false
}

func (m *appModel) fail(err error) {
	m.flash, m.flashErr = err.Error(), true
	m.log.Debug("tui action failed", zap.Error(err))
}

func (m *appModel) View() string {
	tabs := make([]string, 0, len(model.Modules))
	for i, name := range model.Modules {
		label := string(rune('1'+i)) + " " + titleCase(name)
		tabs = append(tabs, styleTab(name == m.module).Render(label))
	}
	header := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)

	var body string
	switch {
	case m.confirm != nil:
		body = m.viewConfirm()
	case m.form != nil:
		body = m.viewForm()
	case m.moduleErr(m.module) != nil:
		body = stylePanel(true).BorderForeground(colorDanger).Render(
			styleError().Bold(true).Render("The "+m.module+" module could not be loaded") + "\n\n" +
				m.moduleErr(m.module).Error() + "\n\n" +
				styleMuted().Render("Export a backup from settings to inspect or repair the stored data."))
	default:
		body = m.viewModule()
	}

	flash := ""
	if m.flash != "" {
		if m.flashErr {
			flash = styleError().Render(m.flash)
		} else {
			flash = styleNotice().Render(m.flash)
		}
	}

	lines := strings.Split(body, "\n")
	if h := m.bodyHeight(); len(lines) > h {
		lines = lines[:h]
	}
	for i, l := range lines {
		lines[i] = ansi.Truncate(l, m.width, "…")
	}
	return strings.Join([]string{header, strings.Join(lines, "\n"), flash, m.help.ShortHelpView(m.helpKeys())}, "\n")
}

func (m *appModel) viewModule() string {
	switch m.module {
	case model.ModuleNotes:
		return m.viewNotes()
	case model.ModuleTasks:
		return m.viewTasks()
	case model.ModuleCalendar:
		return m.viewCalendar()
	case model.ModuleSystem:
		return m.viewSystem()
	case model.ModuleSettings:
		return m.viewSettings()
	}
	return m.viewDashboard()
}

func (m *appModel) helpKeys() []key.Binding {
	k := m.keys
	switch {
	case m.confirm != nil:
		return []key.Binding{key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "confirm")), key.NewBinding(key.WithKeys("n"), key.WithHelp("n/esc", "cancel"))}
	case m.form != nil:
		return []key.Binding{
			key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
			key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
			key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		}
	case m.module == model.ModuleNotes && m.notesUI.editing:
		return []key.Binding{key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "title/body")), k.Save, k.Done}
	}
	switch m.module {
	case model.ModuleNotes:
		return []key.Binding{k.Up, k.Down, k.New, k.Edit, k.Search, k.Preview, k.Pin, k.Delete, k.NextModule, k.Quit}
	case model.ModuleTasks:
		return []key.Binding{k.Left, k.Right, k.Toggle, k.MoveBack, k.MoveForward, k.Filter, k.ViewMode, k.New, k.Edit, k.Delete, k.Quit}
	case model.ModuleCalendar:
		return []key.Binding{k.Left, k.Right, k.PrevMonth, k.NextMonth, k.Today, k.NextEvent, k.New, k.Edit, k.Delete, k.Quit}
	case model.ModuleSettings:
		return []key.Binding{k.Name, k.Theme, k.Export, k.Import, k.Reset, k.Quit}
	}
	return []key.Binding{k.NextModule, k.Reload, k.Quit}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
