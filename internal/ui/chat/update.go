// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file implements the Bubble Tea update loop.
package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/araneasec/aranea-tui/internal/history"
	"github.com/araneasec/aranea-tui/internal/model"
	"github.com/araneasec/aranea-tui/internal/session"
)

// defaultChatTitle names threads created from the TUI before the user
// renames them.
const defaultChatTitle = "New Engagement"

// Update handles all Bubble Tea messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.refreshViewport()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case StateChangedMsg:
		m.cacheNewEntries()
		m.refreshViewport()
		return m, nil

	case ChatsLoadedMsg:
		m.chats = msg.Chats
		if len(m.chats) == 0 {
			return m, createChatCmd(m.client, m.username, defaultChatTitle)
		}
		if m.activeChatID == "" {
			return m, m.activateChat(m.chats[0].ChatID)
		}
		return m, nil

	case ChatCreatedMsg:
		m.chats = append(m.chats, msg.Chat)
		return m, m.activateChat(msg.Chat.ChatID)

	case ChatRenamedMsg:
		for i := range m.chats {
			if m.chats[i].ChatID == msg.ChatID {
				m.chats[i].Title = msg.Title
			}
		}
		m.setNotice("chat renamed", false)
		return m, nil

	case ChatDeletedMsg:
		kept := m.chats[:0]
		for _, c := range m.chats {
			if c.ChatID != msg.ChatID {
				kept = append(kept, c)
			}
		}
		m.chats = kept
		if m.chatCursor >= len(m.chats) {
			m.chatCursor = len(m.chats) - 1
		}
		if m.chatCursor < 0 {
			m.chatCursor = 0
		}
		if m.activeChatID == msg.ChatID {
			m.activeChatID = ""
			if len(m.chats) > 0 {
				return m, m.activateChat(m.chats[0].ChatID)
			}
			return m, createChatCmd(m.client, m.username, defaultChatTitle)
		}
		return m, nil

	case HistoryLoadedMsg:
		if msg.ChatID != m.activeChatID {
			return m, nil
		}
		m.loadTranscript(msg)
		if msg.FromCache {
			m.setNotice("backend unreachable; showing cached history", true)
		}
		return m, nil

	case StreamOpenedMsg:
		if msg.ChatID == m.activeChatID {
			m.setNotice("", false)
		}
		return m, nil

	case StreamFailedMsg:
		if msg.ChatID == m.activeChatID {
			m.setNotice("connection failed: "+msg.Err.Error(), true)
		}
		return m, nil

	case ReportSavedMsg:
		m.setNotice("report saved to "+msg.Path, false)
		return m, nil

	case ErrMsg:
		m.setNotice(msg.Err.Error(), true)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.renaming {
		return m.handleRenameKey(msg)
	}

	switch {
	case key.Matches(msg, m.keyMap.Quit):
		m.quitting = true
		m.stream.Close()
		return m, tea.Quit

	case key.Matches(msg, m.keyMap.Help):
		// "?" goes into the input while typing; only toggle help when the
		// input is empty or the sidebar has focus.
		if m.focus == FocusSidebar || m.input.Value() == "" {
			m.showHelp = !m.showHelp
			return m, nil
		}

	case key.Matches(msg, m.keyMap.Interrupt):
		m.reducer.Interrupt()
		return m, nil

	case key.Matches(msg, m.keyMap.ToggleSidebar):
		m.sidebarVisible = !m.sidebarVisible
		if !m.sidebarVisible {
			m.focus = FocusInput
			m.input.Focus()
		}
		m.layout()
		m.refreshViewport()
		return m, nil

	case key.Matches(msg, m.keyMap.NewChat):
		return m, createChatCmd(m.client, m.username, defaultChatTitle)

	case key.Matches(msg, m.keyMap.SaveReport):
		if m.activeChatID == "" {
			return m, nil
		}
		return m, downloadReportCmd(m.client, m.activeChatID)
	}

	if msg.String() == "tab" && m.sidebarVisible {
		if m.focus == FocusInput {
			m.focus = FocusSidebar
			m.input.Blur()
		} else {
			m.focus = FocusInput
			m.input.Focus()
		}
		return m, nil
	}

	if m.focus == FocusSidebar {
		return m.handleSidebarKey(msg)
	}
	return m.handleInputKey(msg)
}

func (m Model) handleSidebarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Up):
		if m.chatCursor > 0 {
			m.chatCursor--
		}
	case key.Matches(msg, m.keyMap.Down):
		if m.chatCursor < len(m.chats)-1 {
			m.chatCursor++
		}
	case key.Matches(msg, m.keyMap.Submit):
		if m.chatCursor < len(m.chats) {
			return m, m.activateChat(m.chats[m.chatCursor].ChatID)
		}
	case key.Matches(msg, m.keyMap.RenameChat):
		if m.chatCursor < len(m.chats) {
			m.renaming = true
			m.renameInput.SetValue(m.chats[m.chatCursor].Title)
			m.renameInput.Focus()
		}
	case key.Matches(msg, m.keyMap.DeleteChat):
		if m.chatCursor < len(m.chats) {
			return m, deleteChatCmd(m.client, m.cache, m.chats[m.chatCursor].ChatID)
		}
	}
	return m, nil
}

func (m Model) handleRenameKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.renaming = false
		title := strings.TrimSpace(m.renameInput.Value())
		if title == "" || m.chatCursor >= len(m.chats) {
			return m, nil
		}
		return m, renameChatCmd(m.client, m.cache, m.chats[m.chatCursor].ChatID, title)
	case "esc":
		m.renaming = false
		return m, nil
	}
	var cmd tea.Cmd
	m.renameInput, cmd = m.renameInput.Update(msg)
	return m, cmd
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		text := m.input.Value()
		err := m.reducer.Submit(text)
		switch {
		case err == nil:
			m.input.SetValue("")
			m.setNotice("", false)
		case errors.Is(err, session.ErrBusy):
			m.setNotice("aranea is still responding; Esc to interrupt", true)
		case errors.Is(err, session.ErrEmptySubmission):
			// Ignore blank submits.
		default:
			m.setNotice(err.Error(), true)
		}
		return m, nil
	case "pgup":
		m.viewport.ViewUp()
		return m, nil
	case "pgdown":
		m.viewport.ViewDown()
		return m, nil
	case "up":
		m.viewport.LineUp(1)
		return m, nil
	case "down":
		m.viewport.LineDown(1)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// CHAT ACTIVATION
// =============================================================================

// activateChat scopes the view to a chat: reset cursor, load history,
// redial the stream.
func (m *Model) activateChat(chatID string) tea.Cmd {
	m.activeChatID = chatID
	for i, c := range m.chats {
		if c.ChatID == chatID {
			m.chatCursor = i
		}
	}
	m.cachedEntries = 0
	return tea.Batch(
		loadHistoryCmd(m.client, m.cache, chatID),
		openStreamCmd(m.stream, m.username, chatID),
	)
}

// loadTranscript replaces the reducer's transcript with persisted
// history, prefixing the greeting when the thread is empty.
func (m *Model) loadTranscript(msg HistoryLoadedMsg) {
	entries := make([]model.Entry, 0, len(msg.Messages)+1)
	if len(msg.Messages) == 0 {
		entries = append(entries, model.NewRevealedEntry(greeting(m.username)))
	}
	for _, hm := range msg.Messages {
		if hm.Sender == string(model.SenderUser) {
			entries = append(entries, model.NewUserEntry(hm.Text))
		} else {
			entries = append(entries, model.NewRevealedEntry(hm.Text))
		}
	}
	m.reducer.Reset(entries)
	m.cachedEntries = len(entries)
	m.refreshViewport()
}

// greeting is the first agent line of a fresh thread.
func greeting(username string) string {
	return "Hello " + username + "! I am Aranea, your penetration-testing assistant. Give me a target in scope and I will get to work."
}

// =============================================================================
// CACHE WRITE-THROUGH
// =============================================================================

// cacheNewEntries appends transcript entries committed since the last
// state change to the local history store.
func (m *Model) cacheNewEntries() {
	if m.cache == nil || m.activeChatID == "" {
		return
	}
	entries := m.reducer.Transcript()
	if len(entries) <= m.cachedEntries {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, e := range entries[m.cachedEntries:] {
		_ = m.cache.AppendMessage(ctx, history.Message{
			ChatID: m.activeChatID,
			Sender: e.Sender.String(),
			Body:   e.Text,
		})
	}
	m.cachedEntries = len(entries)
}
