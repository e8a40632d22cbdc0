// Package keys provides centralized keybinding definitions for the TUI.
package keys

import (
	"github.com/charmbracelet/bubbles/key"
)

// BrowseKeyMap contains all keybindings for the product browser.
type BrowseKeyMap struct {
	// Global bindings
	Quit key.Binding
	Help key.Binding

	// Navigation
	Up   key.Binding
	Down key.Binding

	// Paging
	NextPage  key.Binding
	PrevPage  key.Binding
	FirstPage key.Binding
	LastPage  key.Binding

	// Actions
	Filter      key.Binding
	ClearFilter key.Binding
	Refresh     key.Binding
}

// DefaultBrowseKeyMap returns the default browser keybindings.
func DefaultBrowseKeyMap() BrowseKeyMap {
	return BrowseKeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q/Esc", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "down"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("n", "right", "pgdown"),
			key.WithHelp("n/→", "next page"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("p", "left", "pgup"),
			key.WithHelp("p/←", "prev page"),
		),
		FirstPage: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "first page"),
		),
		LastPage: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "last page"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter"),
		),
		ClearFilter: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "clear filter"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
	}
}

// SetContext enables/disables paging bindings for the current page.
func (k *BrowseKeyMap) SetContext(hasPrevious, hasNext, filtered bool) {
	k.PrevPage.SetEnabled(hasPrevious)
	k.FirstPage.SetEnabled(hasPrevious)
	k.NextPage.SetEnabled(hasNext)
	k.LastPage.SetEnabled(hasNext)
	k.ClearFilter.SetEnabled(filtered)
}

// ShortHelp implements help.KeyMap for status bar display.
func (k BrowseKeyMap) ShortHelp() []key.Binding {
	bindings := []key.Binding{k.Down, k.Up}
	for _, b := range []key.Binding{k.PrevPage, k.NextPage} {
		if b.Enabled() {
			bindings = append(bindings, b)
		}
	}
	bindings = append(bindings, k.Filter)
	if k.ClearFilter.Enabled() {
		bindings = append(bindings, k.ClearFilter)
	}
	return append(bindings, k.Quit)
}

// FullHelp implements help.KeyMap.
func (k BrowseKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.PrevPage, k.NextPage, k.FirstPage, k.LastPage},
		{k.Filter, k.ClearFilter, k.Refresh},
		{k.Help, k.Quit},
	}
}
