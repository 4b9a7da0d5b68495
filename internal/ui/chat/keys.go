// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file defines keyboard bindings for the chat interface.
package chat

import (
	"github.com/charmbracelet/bubbles/key"
)

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines all keyboard bindings for the chat interface.
type KeyMap struct {
	Up        key.Binding
	Down      key.Binding
	PageUp    key.Binding
	PageDown  key.Binding
	Submit    key.Binding
	Interrupt key.Binding
	Quit      key.Binding

	ToggleSidebar key.Binding
	NewChat       key.Binding
	RenameChat    key.Binding
	DeleteChat    key.Binding
	SaveReport    key.Binding
	Help          key.Binding
}

// DefaultKeyMap returns the default key bindings for the chat interface.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("up", "scroll up / previous chat"),
		),
		Down: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("down", "scroll down / next chat"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("PgUp", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("PgDn", "page down"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "send query / open chat"),
		),
		Interrupt: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "interrupt response"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+q"),
			key.WithHelp("C-c", "quit"),
		),
		ToggleSidebar: key.NewBinding(
			key.WithKeys("ctrl+b"),
			key.WithHelp("C-b", "toggle chat list"),
		),
		NewChat: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("C-n", "new chat"),
		),
		RenameChat: key.NewBinding(
			key.WithKeys("f2"),
			key.WithHelp("F2", "rename chat"),
		),
		DeleteChat: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("C-d", "delete chat"),
		),
		SaveReport: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("C-s", "save report"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
	}
}

// ShortHelp returns the bindings shown in the status bar.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Interrupt, k.ToggleSidebar, k.NewChat, k.Quit}
}

// FullHelp returns the bindings shown in the help overlay.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown},
		{k.Submit, k.Interrupt, k.Quit},
		{k.ToggleSidebar, k.NewChat, k.RenameChat, k.DeleteChat, k.SaveReport},
	}
}
