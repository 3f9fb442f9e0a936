package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the global keybindings for the console.
type KeyMap struct {
	// Navigation
	Up    key.Binding
	Down  key.Binding
	Left  key.Binding
	Right key.Binding

	// Selection
	Select key.Binding

	// Back / Quit
	Back key.Binding
	Quit key.Binding

	// Search
	Search key.Binding

	// Views
	ToggleView key.Binding
	Boards     key.Binding
	Help       key.Binding

	// Ticket actions
	NewTicket    key.Binding
	EditTicket   key.Binding
	DeleteTicket key.Binding

	// Keyboard drag: pick a ticket up, move it, drop or cancel.
	Grab   key.Binding
	Drop   key.Binding
	Cancel key.Binding

	// Board actions
	NewBoard    key.Binding
	DeleteBoard key.Binding

	// Filters and sorting
	CyclePriority key.Binding
	CycleSort     key.Binding
	ReverseSort   key.Binding

	// Timeline
	CycleMode  key.Binding
	PrevWindow key.Binding
	NextWindow key.Binding

	// Manual refresh
	Refresh key.Binding
}

// ShortHelp returns the bindings shown in the mini help line.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.ToggleView, k.Boards, k.NewTicket, k.Search, k.Quit}
}

// FullHelp returns the binding groups shown in the expanded help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right, k.Select, k.Back},
		{k.Grab, k.Drop, k.Cancel, k.NewTicket, k.EditTicket, k.DeleteTicket},
		{k.Search, k.CyclePriority, k.CycleSort, k.ReverseSort},
		{k.CycleMode, k.PrevWindow, k.NextWindow},
		{k.ToggleView, k.Boards, k.NewBoard, k.DeleteBoard, k.Refresh, k.Help, k.Quit},
	}
}

// DefaultKeyMap returns the default set of keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Left: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("h/←", "left"),
		),
		Right: key.NewBinding(
			key.WithKeys("l", "right"),
			key.WithHelp("l/→", "right"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		ToggleView: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "board/timeline"),
		),
		Boards: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "boards"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		NewTicket: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new ticket"),
		),
		EditTicket: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit ticket"),
		),
		DeleteTicket: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "delete ticket"),
		),
		Grab: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "grab/move"),
		),
		Drop: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "drop"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel drag"),
		),
		NewBoard: key.NewBinding(
			key.WithKeys("N"),
			key.WithHelp("N", "new board"),
		),
		DeleteBoard: key.NewBinding(
			key.WithKeys("X"),
			key.WithHelp("X", "delete board"),
		),
		CyclePriority: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "priority filter"),
		),
		CycleSort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "sort field"),
		),
		ReverseSort: key.NewBinding(
			key.WithKeys("S"),
			key.WithHelp("S", "reverse sort"),
		),
		CycleMode: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "month/week/day"),
		),
		PrevWindow: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "previous window"),
		),
		NextWindow: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "next window"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
	}
}
