// Package view projects record collections and per-module UI state into HTML. Rendering is
// pure: the same inputs always produce the same markup, and "now" is always passed in.
// Interaction wiring lives in actions.go and is attached through the bind template func.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/leonbytyqi1709-sketch/bycore/internal/markdown"
	"github.com/leonbytyqi1709-sketch/bycore/internal/model"
	"github.com/leonbytyqi1709-sketch/bycore/internal/records"
)

//go:embed templates/*.html
var templatesFS embed.FS

// MainID is the element id of the region replaced on every re-render.
const MainID = "bycore-main"

type Options struct {
	// Sanitize filters rendered note previews before they are embedded as trusted HTML.
	Sanitize func(string) string
}

type Renderer struct {
	tmpl     *template.Template
	sanitize func(string) string
}

func New(opts Options) (*Renderer, error) {
	r := &Renderer{sanitize: opts.Sanitize}
	if r.sanitize == nil {
		r.sanitize = func(s string) string { return s }
	}
	tmpl, err := template.New("base").Funcs(template.FuncMap{
		"bind":     Attr,
		"markdown": r.previewHTML,
		"bytes":    humanize.IBytes,
		"short":    shortDate,
		"long":     longDate,
		"trim":     strings.TrimSpace,
	}).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	r.tmpl = tmpl
	return r, nil
}

func (r *Renderer) execute(name string, data any) (string, error) {
	var b strings.Builder
	if err := r.tmpl.ExecuteTemplate(&b, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return b.String(), nil
}

// markdown.Render escapes its input; the sanitizer is a second line behind it.
func (r *Renderer) previewHTML(src string) template.HTML {
	return template.HTML(r.sanitize(markdown.Render(src)))
}

type navItem struct {
	Module string
	Icon   string
	Label  string
	Active bool
}

var navLabels = map[string][2]string{
	model.ModuleDashboard: {"🏠", "Dashboard"},
	model.ModuleNotes:     {"📝", "Notes"},
	model.ModuleTasks:     {"✅", "Tasks"},
	model.ModuleCalendar:  {"📅", "Calendar"},
	model.ModuleSystem:    {"💻", "System"},
	model.ModuleSettings:  {"⚙️", "Settings"},
}

// AppData is the shell around one module: navigation plus the module markup.
type AppData struct {
	Theme  model.Theme
	Active string
	Module template.HTML
	Error  string
}

type appVM struct {
	ID        string
	Theme     model.Theme
	NextTheme model.Theme
	Nav       []navItem
	Module    template.HTML
	Error     string
}

// App renders the #bycore-main region.
func (r *Renderer) App(d AppData) (string, error) {
	vm := appVM{ID: MainID, Theme: d.Theme, NextTheme: model.ThemeLight, Module: d.Module, Error: d.Error}
	if vm.Theme != model.ThemeLight {
		vm.Theme = model.ThemeDark
	} else {
		vm.NextTheme = model.ThemeDark
	}
	for _, m := range model.Modules {
		l := navLabels[m]
		vm.Nav = append(vm.Nav, navItem{Module: m, Icon: l[0], Label: l[1], Active: m == d.Active})
	}
	return r.execute("app", vm)
}

// PageData is the full HTML document served on first load.
type PageData struct {
	Main        template.HTML
	DatastarURL string
	StreamURL   string
}

func (r *Renderer) Page(d PageData) (string, error) {
	return r.execute("page", d)
}

// ErrorPanel renders a module that failed to load, e.g. because its collection is corrupt.
func (r *Renderer) ErrorPanel(module string, err error) (string, error) {
	return r.execute("error_panel", struct {
		Module  string
		Message string
	}{module, err.Error()})
}

func shortDate(date string) string {
	t, err := time.Parse(records.DateLayout, date)
	if err != nil {
		return date
	}
	return t.Format("Jan 2")
}

func longDate(date string) string {
	t, err := time.Parse(records.DateLayout, date)
	if err != nil {
		return date
	}
	return t.Format("January 2, 2006")
}
