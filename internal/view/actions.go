package view

import (
	"html"
	"html/template"
	"net/url"
	"sort"
	"strings"
)

// Action names a user interaction. Templates attach one to an element with
// {{bind "task.toggle" .ID}}; the web server dispatches POST /action/{name} back to the router.
type Action string

const (
	ModuleLoad Action = "module.load"

	NoteNew     Action = "note.new"
	NoteSelect  Action = "note.select"
	NoteEdit    Action = "note.edit"
	NotePin     Action = "note.pin"
	NoteDelete  Action = "note.delete"
	NotePreview Action = "note.preview"
	NoteWrite   Action = "note.write"
	NoteSearch  Action = "note.search"

	TaskNew    Action = "task.new"
	TaskEdit   Action = "task.edit"
	TaskSave   Action = "task.save"
	TaskCancel Action = "task.cancel"
	TaskToggle Action = "task.toggle"
	TaskMove   Action = "task.move"
	TaskDrop   Action = "task.drop"
	TaskStatus Action = "task.status"
	TaskDelete Action = "task.delete"
	TaskFilter Action = "task.filter"
	TaskMode   Action = "task.mode"

	CalendarPrev   Action = "calendar.prev"
	CalendarNext   Action = "calendar.next"
	CalendarToday  Action = "calendar.today"
	CalendarSelect Action = "calendar.select"
	EventNew       Action = "event.new"
	EventEdit      Action = "event.edit"
	EventSave      Action = "event.save"
	EventCancel    Action = "event.cancel"
	EventDelete    Action = "event.delete"

	SettingsName  Action = "settings.name"
	SettingsTheme Action = "settings.theme"
	BackupImport  Action = "backup.import"
	ResetAll      Action = "reset.all"
)

// binding is how one action is triggered from the page.
type binding struct {
	event string
	// params are query parameter names, filled from Attr's args in order.
	params []string
	// form submits the enclosing form's fields.
	form bool
	// dragID appends the dragged task id from the drop event.
	dragID  bool
	confirm []string
}

var bindings = map[Action]binding{
	ModuleLoad: {event: "click", params: []string{"module"}},

	NoteNew:     {event: "click"},
	NoteSelect:  {event: "click", params: []string{"id"}},
	NoteEdit:    {event: "input", form: true},
	NotePin:     {event: "click", params: []string{"id"}},
	NoteDelete:  {event: "click", params: []string{"id"}, confirm: []string{"Delete this note?"}},
	NotePreview: {event: "click"},
	NoteWrite:   {event: "click"},
	NoteSearch:  {event: "input", form: true},

	TaskNew:    {event: "click"},
	TaskEdit:   {event: "click", params: []string{"id"}},
	TaskSave:   {event: "submit", form: true},
	TaskCancel: {event: "click"},
	TaskToggle: {event: "click", params: []string{"id"}},
	TaskMove:   {event: "click", params: []string{"id", "status"}},
	TaskDrop:   {event: "drop", params: []string{"status"}, dragID: true},
	TaskStatus: {event: "change", params: []string{"id"}, form: true},
	TaskDelete: {event: "click", params: []string{"id"}, confirm: []string{"Delete this task?"}},
	TaskFilter: {event: "click", params: []string{"filter"}},
	TaskMode:   {event: "click", params: []string{"mode"}},

	CalendarPrev:   {event: "click"},
	CalendarNext:   {event: "click"},
	CalendarToday:  {event: "click"},
	CalendarSelect: {event: "click", params: []string{"date"}},
	EventNew:       {event: "click", params: []string{"date"}},
	EventEdit:      {event: "click", params: []string{"id"}},
	EventSave:      {event: "submit", form: true},
	EventCancel:    {event: "click"},
	EventDelete:    {event: "click", params: []string{"id"}, confirm: []string{"Delete this event?"}},

	SettingsName:  {event: "submit", form: true},
	SettingsTheme: {event: "click", params: []string{"theme"}},
	BackupImport:  {event: "change", form: true},
	ResetAll: {event: "click", confirm: []string{
		"Delete ALL BYCORE data? This cannot be undone.",
		"Really? Notes, tasks and events will be lost.",
	}},
}

// Actions lists every bindable action, sorted.
func Actions() []Action {
	out := make([]Action, 0, len(bindings))
	for a := range bindings {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Known reports whether a is a bindable action.
func Known(a Action) bool {
	_, ok := bindings[a]
	return ok
}

// ActionPath is the endpoint an action posts to.
func ActionPath(a Action) string {
	return "/action/" + string(a)
}

// Attr renders the datastar event attribute that triggers the action. Unknown actions render
// nothing. Destructive actions are guarded by confirm() prompts that must all be accepted.
func Attr(name string, args ...string) template.HTMLAttr {
	a := Action(name)
	b, ok := bindings[a]
	if !ok {
		return ""
	}

	q := url.Values{}
	for i, p := range b.params {
		if i < len(args) {
			q.Set(p, args[i])
		}
	}
	target := ActionPath(a)
	if enc := q.Encode(); enc != "" {
		target += "?" + enc
	}

	var expr strings.Builder
	if b.event == "drop" || b.event == "submit" {
		expr.WriteString("evt.preventDefault(); ")
	}
	for _, msg := range b.confirm {
		expr.WriteString("confirm(" + jsString(msg) + ") && ")
	}
	expr.WriteString("@post(")
	if b.dragID {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		expr.WriteString(jsString(target+sep+"id=") + " + encodeURIComponent(evt.dataTransfer.getData('text/plain'))")
	} else {
		expr.WriteString(jsString(target))
	}
	if b.form {
		expr.WriteString(", {contentType: 'form'}")
	}
	expr.WriteString(")")

	return template.HTMLAttr(`data-on:` + b.event + `="` + html.EscapeString(expr.String()) + `"`)
}

func jsString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`)
	return "'" + r.Replace(s) + "'"
}
