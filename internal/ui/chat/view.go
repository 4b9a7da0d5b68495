// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file renders the view: header, transcript viewport, chat list
// sidebar, input row, and status bar.
package chat

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/araneasec/aranea-tui/internal/model"
	"github.com/araneasec/aranea-tui/internal/util"
)

// sidebarWidth is the fixed width of the chat list pane.
const sidebarWidth = 28

// View renders the complete chat interface.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 {
		return "loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}

	content := m.viewport.View()
	if m.sidebarVisible {
		content = lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(), content)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		content,
		m.renderInput(),
		m.renderStatusBar(),
	)
}

// =============================================================================
// PANES
// =============================================================================

func (m Model) renderHeader() string {
	title := "ARANEA / " + m.username
	if m.activeChatID != "" {
		for _, c := range m.chats {
			if c.ChatID == m.activeChatID && c.Title != "" {
				title += " / " + c.Title
			}
		}
	}
	return m.theme.Header.Width(m.width).Render(util.TruncateRunes(title, m.width-2))
}

func (m Model) renderSidebar() string {
	var b strings.Builder
	b.WriteString(m.theme.SidebarTitle.Render("CHATS"))
	b.WriteString("\n\n")

	for i, c := range m.chats {
		title := c.Title
		if title == "" {
			title = c.ChatID
		}
		if m.renaming && i == m.chatCursor {
			b.WriteString(m.renameInput.View())
			b.WriteString("\n")
			continue
		}

		line := util.TruncateRunes(title, sidebarWidth-4)
		line = line + strings.Repeat(" ", max(0, sidebarWidth-4-runewidth.StringWidth(line)))

		marker := "  "
		if c.ChatID == m.activeChatID {
			marker = "* "
		}
		switch {
		case i == m.chatCursor && m.focus == FocusSidebar:
			b.WriteString(m.theme.SidebarSelected.Render(marker + line))
		default:
			b.WriteString(m.theme.SidebarItem.Render(marker + line))
		}
		b.WriteString("\n")
	}

	if m.focus == FocusSidebar {
		b.WriteString("\n")
		b.WriteString(m.theme.Muted.Render("Enter open  F2 rename\nC-d delete"))
	}

	return m.theme.Sidebar.
		Width(sidebarWidth).
		Height(m.viewport.Height).
		Render(b.String())
}

func (m Model) renderInput() string {
	prompt := m.theme.InputPrompt.Render(m.inputPrompt())
	return m.theme.InputContainer.Width(m.width).Render(prompt + " " + m.input.View())
}

func (m Model) renderStatusBar() string {
	status := m.reducer.Status()

	var left string
	switch status {
	case model.StatusAwaiting:
		left = m.theme.StatusAwaiting.Render(m.spinner.View() + "aranea is working...")
	case model.StatusRevealing:
		left = m.theme.StatusRevealing.Render("revealing")
	default:
		left = m.theme.StatusIdle.Render("idle")
	}

	if m.notice != "" {
		style := m.theme.Muted
		if m.noticeErr {
			style = m.theme.ErrorText
		}
		left += "  " + style.Render(util.TruncateRunes(m.notice, m.width/2))
	}

	right := m.theme.Muted.Render("Tab panes  C-b chats  ? help")
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return m.theme.StatusBar.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// refreshViewport rebuilds the transcript text and keeps the view
// pinned to the newest line.
func (m *Model) refreshViewport() {
	atBottom := m.viewport.AtBottom()
	m.viewport.SetContent(m.renderTranscript())
	if atBottom {
		m.viewport.GotoBottom()
	}
}

func (m Model) renderTranscript() string {
	var b strings.Builder

	for _, e := range m.reducer.Transcript() {
		b.WriteString(m.renderEntry(e))
		b.WriteString("\n")
	}

	// The in-flight reveal renders as a live agent line; it becomes a
	// real entry when the scheduler commits.
	if buf := m.reducer.RevealBuffer(); buf != "" {
		b.WriteString(m.theme.PromptAgent.Render(model.SenderAranea.PromptLabel()))
		b.WriteString(" ")
		b.WriteString(m.theme.EntryText.Render(buf))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) renderEntry(e model.Entry) string {
	var prompt string
	if e.Sender == model.SenderUser {
		prompt = m.theme.PromptUser.Render(e.Sender.PromptLabel())
	} else {
		prompt = m.theme.PromptAgent.Render(e.Sender.PromptLabel())
	}

	text := e.Text
	style := m.theme.EntryText
	if strings.HasPrefix(text, "[error]") {
		style = m.theme.ErrorText
	} else if e.Sender == model.SenderAranea && m.mdRenderer != nil && looksLikeMarkdown(text) {
		if rendered, err := m.mdRenderer.Render(text); err == nil {
			return prompt + "\n" + strings.TrimRight(rendered, "\n") + "\n"
		}
	}

	wrapped := style.Width(m.viewport.Width - 1).Render(text)
	return prompt + " " + strings.TrimPrefix(wrapped, " ")
}

// looksLikeMarkdown gates glamour so plain one-liners and preformatted
// server reports keep their exact layout.
func looksLikeMarkdown(s string) bool {
	if strings.Contains(s, "Total servers found:") {
		return false
	}
	return strings.Contains(s, "```") ||
		strings.Contains(s, "\n# ") || strings.HasPrefix(s, "# ") ||
		strings.Contains(s, "\n- ") || strings.Contains(s, "**")
}

// =============================================================================
// HELP
// =============================================================================

func (m Model) renderHelp() string {
	var b strings.Builder
	b.WriteString(m.theme.Header.Render("KEYBOARD REFERENCE"))
	b.WriteString("\n\n")
	for _, group := range m.keyMap.FullHelp() {
		for _, binding := range group {
			b.WriteString("  ")
			b.WriteString(m.theme.PromptUser.Render(runewidth.FillRight(binding.Help().Key, 12)))
			b.WriteString(m.theme.EntryText.Render(binding.Help().Desc))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	b.WriteString(m.theme.Muted.Render("press ? to close"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, b.String())
}

// Interface guard.
var _ tea.Model = Model{}
