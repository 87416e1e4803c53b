// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"github.com/charmbracelet/bubbles/key"
)

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines the viewer's key bindings.
type KeyMap struct {
	// Navigation
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Home     key.Binding
	End      key.Binding
	Next     key.Binding
	Prev     key.Binding

	// Inputs
	EditPattern key.Binding
	OpenLeft    key.Binding
	OpenRight   key.Binding
	Submit      key.Binding
	Cancel      key.Binding
	HistoryPrev key.Binding
	HistoryNext key.Binding

	// View
	ToggleNumbers   key.Binding
	ToggleIntraline key.Binding
	Reload          key.Binding
	ReloadConfig    key.Binding
	Help            key.Binding
	Quit            key.Binding
}

// DefaultKeyMap returns the default bindings. Navigation accepts both arrow
// keys and vim keys.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "previous row"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "next row"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("PgUp/C-u", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d", " "),
			key.WithHelp("PgDn/C-d", "page down"),
		),
		Home: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("Home/g", "first row"),
		),
		End: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("End/G", "last row"),
		),
		Next: key.NewBinding(
			key.WithKeys("n", "]"),
			key.WithHelp("n/]", "next change"),
		),
		Prev: key.NewBinding(
			key.WithKeys("N", "["),
			key.WithHelp("N/[", "previous change"),
		),
		EditPattern: key.NewBinding(
			key.WithKeys("/", "p"),
			key.WithHelp("/ or p", "edit timestamp pattern"),
		),
		OpenLeft: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "open left file"),
		),
		OpenRight: key.NewBinding(
			key.WithKeys("O"),
			key.WithHelp("O", "open right file"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "apply input"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "leave input / close help"),
		),
		HistoryPrev: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("up", "older pattern (in pattern input)"),
		),
		HistoryNext: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("down", "newer pattern (in pattern input)"),
		),
		ToggleNumbers: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "toggle line numbers"),
		),
		ToggleIntraline: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "toggle intra-line highlight"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r", "ctrl+r"),
			key.WithHelp("r", "reload files"),
		),
		ReloadConfig: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "reload configuration"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q/C-c", "quit"),
		),
	}
}

// =============================================================================
// KEY BINDING HELPERS
// =============================================================================

// Bindings returns every binding in the order the help lists them.
func (k KeyMap) Bindings() []key.Binding {
	return []key.Binding{
		k.Next, k.Prev,
		k.Up, k.Down, k.PageUp, k.PageDown, k.Home, k.End,
		k.EditPattern, k.OpenLeft, k.OpenRight, k.Submit, k.Cancel,
		k.HistoryPrev, k.HistoryNext,
		k.ToggleNumbers, k.ToggleIntraline, k.Reload, k.ReloadConfig,
		k.Help, k.Quit,
	}
}
