package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit       key.Binding
	NextModule key.Binding
	PrevModule key.Binding
	Reload     key.Binding

	Up    key.Binding
	Down  key.Binding
	Left  key.Binding
	Right key.Binding

	New    key.Binding
	Edit   key.Binding
	Delete key.Binding

	// notes
	Search  key.Binding
	Preview key.Binding
	Pin     key.Binding
	Save    key.Binding
	Done    key.Binding

	// tasks
	Toggle      key.Binding
	MoveBack    key.Binding
	MoveForward key.Binding
	Filter      key.Binding
	ViewMode    key.Binding

	// calendar
	PrevMonth key.Binding
	NextMonth key.Binding
	Today     key.Binding
	NextEvent key.Binding

	// settings
	Name   key.Binding
	Theme  key.Binding
	Export key.Binding
	Import key.Binding
	Reset  key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		NextModule: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab/1-6", "module")),
		PrevModule: key.NewBinding(key.WithKeys("shift+tab")),
		Reload:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),

		Up:    key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:  key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:  key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
		Right: key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),

		New:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new")),
		Edit:   key.NewBinding(key.WithKeys("e", "enter"), key.WithHelp("e", "edit")),
		Delete: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),

		Search:  key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Preview: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "preview")),
		Pin:     key.NewBinding(key.WithKeys("*"), key.WithHelp("*", "pin")),
		Save:    key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		Done:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "done")),

		Toggle:      key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("x", "toggle done")),
		MoveBack:    key.NewBinding(key.WithKeys("<", ","), key.WithHelp("<", "move back")),
		MoveForward: key.NewBinding(key.WithKeys(">", "."), key.WithHelp(">", "move on")),
		Filter:      key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filter")),
		ViewMode:    key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "kanban/list")),

		PrevMonth: key.NewBinding(key.WithKeys("["), key.WithHelp("[", "prev month")),
		NextMonth: key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next month")),
		Today:     key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "today")),
		NextEvent: key.NewBinding(key.WithKeys("J"), key.WithHelp("J", "next event")),

		Name:   key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "name")),
		Theme:  key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "theme")),
		Export: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "export")),
		Import: key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "import")),
		Reset:  key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "reset all")),
	}
}
