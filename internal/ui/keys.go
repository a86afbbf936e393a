package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Tab        key.Binding
	Escape     key.Binding

	// View switching
	ViewList      key.Binding
	ViewFavorites key.Binding
	ViewLogs      key.Binding

	// Query
	Search       key.Binding
	CycleSort    key.Binding
	CycleType    key.Binding
	ClearFilters key.Binding
	NextPage     key.Binding
	PrevPage     key.Binding
	Retry        key.Binding

	// Entries
	OpenDetail     key.Binding
	ToggleFavorite key.Binding
	ClearFavorites key.Binding

	// Navigation
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding

	// Logs
	ToggleFollow key.Binding
	CycleLevel   key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "e"),
			key.WithHelp("e", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("h", "?"),
			key.WithHelp("h/?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "Focus list/detail"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Close detail / back to list"),
		),

		ViewList: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "List view"),
		),
		ViewFavorites: key.NewBinding(
			key.WithKeys("F"),
			key.WithHelp("F", "Favorites view"),
		),
		ViewLogs: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "Application log"),
		),

		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "Search by name or #"),
		),
		CycleSort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "Cycle sort"),
		),
		CycleType: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "Cycle type filter"),
		),
		ClearFilters: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "Clear filters"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("]", "right"),
			key.WithHelp("]", "Next page"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("[", "left"),
			key.WithHelp("[", "Previous page"),
		),
		Retry: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Retry"),
		),

		OpenDetail: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Open detail"),
		),
		ToggleFavorite: key.NewBinding(
			key.WithKeys("f", " "),
			key.WithHelp("f", "Toggle favorite"),
		),
		ClearFavorites: key.NewBinding(
			key.WithKeys("X"),
			key.WithHelp("X", "Clear favorites (press twice)"),
		),

		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Move down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "Go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Go to bottom"),
		),

		ToggleFollow: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("Space", "Toggle follow mode"),
		),
		CycleLevel: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "Cycle minimum level"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Search, k.CycleSort, k.CycleType, k.ToggleFavorite, k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		// Views
		{k.ViewList, k.ViewFavorites, k.ViewLogs, k.Tab, k.Escape},
		// Navigation
		{k.Up, k.Down, k.Top, k.Bottom, k.NextPage, k.PrevPage},
		// Query
		{k.Search, k.CycleSort, k.CycleType, k.ClearFilters, k.Retry},
		// Entries
		{k.OpenDetail, k.ToggleFavorite, k.ClearFavorites},
		// Logs
		{k.ToggleFollow, k.CycleLevel},
		// General
		{k.CycleTheme, k.Help, k.Quit},
	}
}
