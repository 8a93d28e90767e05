package ui

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines the keybindings shown in the footer and help overlay.
// The task manager matches the same keys itself.
type KeyMap struct {
	// Navigation
	Up       key.Binding
	Down     key.Binding
	Top      key.Binding
	Bottom   key.Binding
	PageUp   key.Binding
	PageDown key.Binding

	// Selection
	Select      key.Binding
	SelectAll   key.Binding
	ClearSelect key.Binding

	// Task Actions
	Add      key.Binding
	Edit     key.Binding
	Delete   key.Binding
	Toggle   key.Binding
	Priority key.Binding
	Refresh  key.Binding

	// Filters
	NextFilter   key.Binding
	PrevFilter   key.Binding
	JumpFilter   key.Binding
	NextCategory key.Binding
	PrevCategory key.Binding
	ResetFilters key.Binding

	Search     key.Binding
	Help       key.Binding
	ThemeCycle key.Binding

	// General
	Quit key.Binding
	Back key.Binding
}

// DefaultKeyMap returns the default keybindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		// Navigation
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G"),
			key.WithHelp("G", "bottom"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("PgUp", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("PgDn", "page down"),
		),

		// Selection
		Select: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "select"),
		),
		SelectAll: key.NewBinding(
			key.WithKeys("V"),
			key.WithHelp("V", "select all"),
		),
		ClearSelect: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "clear"),
		),

		// Task Actions
		Add: key.NewBinding(
			key.WithKeys("a", "n"),
			key.WithHelp("a", "add"),
		),
		Edit: key.NewBinding(
			key.WithKeys("enter", "e"),
			key.WithHelp("enter", "edit"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "delete"),
		),
		Toggle: key.NewBinding(
			key.WithKeys("tab", "x"),
			key.WithHelp("tab", "done"),
		),
		Priority: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "priority"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),

		// Filters
		NextFilter: key.NewBinding(
			key.WithKeys("f", "]"),
			key.WithHelp("f", "next filter"),
		),
		PrevFilter: key.NewBinding(
			key.WithKeys("F", "["),
			key.WithHelp("F", "prev filter"),
		),
		JumpFilter: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6"),
			key.WithHelp("1-6", "filter"),
		),
		NextCategory: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "next category"),
		),
		PrevCategory: key.NewBinding(
			key.WithKeys("C"),
			key.WithHelp("C", "prev category"),
		),
		ResetFilters: key.NewBinding(
			key.WithKeys("0"),
			key.WithHelp("0", "reset filters"),
		),

		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		ThemeCycle: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("C-t", "theme"),
		),

		// General
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
	}
}

// ShortHelp returns short help bindings (for status bar)
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Add, k.Edit, k.Toggle, k.Delete, k.Select, k.NextFilter, k.Search, k.Help, k.Quit}
}

// FullHelp returns full help bindings (for help view)
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Top, k.Bottom, k.PageUp, k.PageDown},
		{k.Select, k.SelectAll, k.ClearSelect},
		{k.Add, k.Edit, k.Toggle, k.Delete, k.Priority, k.Refresh},
		{k.NextFilter, k.PrevFilter, k.JumpFilter, k.NextCategory, k.PrevCategory, k.ResetFilters},
		{k.Search, k.ThemeCycle, k.Help, k.Quit},
	}
}
