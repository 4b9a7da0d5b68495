// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds the styled components for the application. It detects the
// terminal's color capability and adjusts accordingly.
type Theme struct {
	IsDark       bool
	ColorProfile termenv.Profile

	// Layout
	Width  int
	Height int

	// Chrome
	Header    lipgloss.Style
	StatusBar lipgloss.Style
	Divider   lipgloss.Style

	// Transcript
	PromptUser  lipgloss.Style
	PromptAgent lipgloss.Style
	EntryText   lipgloss.Style
	ErrorText   lipgloss.Style
	Muted       lipgloss.Style

	// Status indicator
	StatusIdle      lipgloss.Style
	StatusAwaiting  lipgloss.Style
	StatusRevealing lipgloss.Style

	// Sidebar
	Sidebar         lipgloss.Style
	SidebarTitle    lipgloss.Style
	SidebarItem     lipgloss.Style
	SidebarSelected lipgloss.Style

	// Input
	InputContainer lipgloss.Style
	InputPrompt    lipgloss.Style
}

// NewTheme creates a theme sized to the current terminal.
func NewTheme(width, height int) *Theme {
	t := &Theme{
		IsDark:       termenv.HasDarkBackground(),
		ColorProfile: termenv.ColorProfile(),
		Width:        width,
		Height:       height,
	}

	t.Header = lipgloss.NewStyle().
		Foreground(Green).
		Bold(true).
		Padding(0, 1)

	t.StatusBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextMuted).
		Padding(0, 1)

	t.Divider = lipgloss.NewStyle().Foreground(GreenDeep)

	t.PromptUser = lipgloss.NewStyle().Foreground(Cyan).Bold(true)
	t.PromptAgent = lipgloss.NewStyle().Foreground(Green).Bold(true)
	t.EntryText = lipgloss.NewStyle().Foreground(TextPrimary)
	t.ErrorText = lipgloss.NewStyle().Foreground(Rose)
	t.Muted = lipgloss.NewStyle().Foreground(TextMuted)

	t.StatusIdle = lipgloss.NewStyle().Foreground(TextMuted)
	t.StatusAwaiting = lipgloss.NewStyle().Foreground(Amber)
	t.StatusRevealing = lipgloss.NewStyle().Foreground(Green)

	t.Sidebar = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, true, false, false).
		BorderForeground(GreenDeep).
		Padding(0, 1)
	t.SidebarTitle = lipgloss.NewStyle().Foreground(Green).Bold(true)
	t.SidebarItem = lipgloss.NewStyle().Foreground(TextPrimary)
	t.SidebarSelected = lipgloss.NewStyle().
		Foreground(Surface).
		Background(Green).
		Bold(true)

	t.InputContainer = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), true, false, false, false).
		BorderForeground(GreenDeep)
	t.InputPrompt = lipgloss.NewStyle().Foreground(Cyan).Bold(true)

	return t
}

// Resize updates the stored dimensions.
func (t *Theme) Resize(width, height int) {
	t.Width = width
	t.Height = height
}
