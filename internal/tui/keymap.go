package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the board view.
type KeyMap struct {
	// Navigation
	Up   key.Binding
	Down key.Binding

	// Counting
	Increment key.Binding
	Decrement key.Binding

	// Actions
	Search    key.Binding
	Edit      key.Binding
	Select    key.Binding
	SelectAll key.Binding
	Delete    key.Binding
	Share     key.Binding
	Add       key.Binding
	Refresh   key.Binding
	Action    key.Binding
	Help      key.Binding
	Quit      key.Binding

	// Prompts
	Confirm key.Binding
	Cancel  key.Binding
	Retry   key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "previous counter"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "next counter"),
		),
		Increment: key.NewBinding(
			key.WithKeys("+", "=", "right", "l"),
			key.WithHelp("+/l", "increase"),
		),
		Decrement: key.NewBinding(
			key.WithKeys("-", "_", "left", "h"),
			key.WithHelp("-/h", "decrease"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		Select: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "select (edit)"),
		),
		SelectAll: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "select all (edit)"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete selected (edit)"),
		),
		Share: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "copy selected (edit)"),
		),
		Add: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new counter"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Action: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "placeholder action"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("y", "enter"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("n", "esc"),
		),
		Retry: key.NewBinding(
			key.WithKeys("r"),
		),
	}
}

// ShortHelp returns key bindings to be shown in the mini help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Increment, k.Decrement, k.Add, k.Help, k.Quit}
}

// FullHelp returns key bindings for the expanded help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Increment, k.Decrement},
		{k.Search, k.Add, k.Refresh, k.Action},
		{k.Edit, k.Select, k.SelectAll, k.Delete, k.Share},
		{k.Help, k.Quit},
	}
}
