// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file holds the asynchronous commands behind the view: chat list
// and history loads, thread CRUD, stream dialing, and report download.
// Every command degrades to the local history cache when the backend is
// unreachable and a cache is configured.
package chat

import (
	"context"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/araneasec/aranea-tui/internal/backend"
	"github.com/araneasec/aranea-tui/internal/gateway"
	"github.com/araneasec/aranea-tui/internal/history"
	"github.com/araneasec/aranea-tui/internal/util"
)

// requestTimeout bounds each REST call issued from the view.
const requestTimeout = 30 * time.Second

// =============================================================================
// CHAT LIST
// =============================================================================

// loadChatsCmd fetches the sidebar list, falling back to the cache.
func loadChatsCmd(client *backend.Client, cache *history.Store, username string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		chats, err := client.ListChats(ctx, username)
		if err == nil {
			if cache != nil {
				for _, c := range chats {
					_ = cache.UpsertChat(ctx, history.Chat{
						ChatID:   c.ChatID,
						Username: username,
						Title:    c.Title,
					})
				}
			}
			return ChatsLoadedMsg{Chats: chats}
		}

		if cache == nil {
			return ErrMsg{Err: err}
		}
		cached, cerr := cache.Chats(ctx, username)
		if cerr != nil || len(cached) == 0 {
			return ErrMsg{Err: err}
		}
		chats = make([]backend.Chat, 0, len(cached))
		for _, c := range cached {
			chats = append(chats, backend.Chat{ChatID: c.ChatID, Title: c.Title})
		}
		return ChatsLoadedMsg{Chats: chats}
	}
}

func createChatCmd(client *backend.Client, username, title string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		chat, err := client.CreateChat(ctx, username, title)
		if err != nil {
			return ErrMsg{Err: err}
		}
		return ChatCreatedMsg{Chat: chat}
	}
}

func renameChatCmd(client *backend.Client, cache *history.Store, chatID, title string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		if err := client.RenameChat(ctx, chatID, title); err != nil {
			return ErrMsg{Err: err}
		}
		if cache != nil {
			_ = cache.RenameChat(ctx, chatID, title)
		}
		return ChatRenamedMsg{ChatID: chatID, Title: title}
	}
}

func deleteChatCmd(client *backend.Client, cache *history.Store, chatID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		if err := client.DeleteChat(ctx, chatID); err != nil {
			return ErrMsg{Err: err}
		}
		if cache != nil {
			_ = cache.DeleteChat(ctx, chatID)
		}
		return ChatDeletedMsg{ChatID: chatID}
	}
}

// =============================================================================
// HISTORY
// =============================================================================

// loadHistoryCmd fetches a thread's transcript, falling back to the
// cache when the backend is down.
func loadHistoryCmd(client *backend.Client, cache *history.Store, chatID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		msgs, err := client.Messages(ctx, chatID)
		if err == nil {
			if cache != nil {
				cached := make([]history.Message, 0, len(msgs))
				for _, hm := range msgs {
					cached = append(cached, history.Message{Sender: hm.Sender, Body: hm.Text})
				}
				_ = cache.ReplaceMessages(ctx, chatID, cached)
			}
			return HistoryLoadedMsg{ChatID: chatID, Messages: msgs}
		}

		if cache == nil {
			return ErrMsg{Err: err}
		}
		cached, cerr := cache.Messages(ctx, chatID)
		if cerr != nil {
			return ErrMsg{Err: err}
		}
		msgs = make([]backend.HistoryMessage, 0, len(cached))
		for _, cm := range cached {
			msgs = append(msgs, backend.HistoryMessage{Sender: cm.Sender, Text: cm.Body})
		}
		return HistoryLoadedMsg{ChatID: chatID, Messages: msgs, FromCache: true}
	}
}

// =============================================================================
// STREAM
// =============================================================================

// openStreamCmd dials the WebSocket for the chat.
func openStreamCmd(stream *gateway.Session, username, chatID string) tea.Cmd {
	return func() tea.Msg {
		if err := stream.Open(username, chatID); err != nil {
			return StreamFailedMsg{ChatID: chatID, Err: err}
		}
		return StreamOpenedMsg{ChatID: chatID}
	}
}

// =============================================================================
// REPORT
// =============================================================================

// downloadReportCmd fetches the engagement report and writes it next to
// the working directory.
func downloadReportCmd(client *backend.Client, chatID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		name, data, err := client.DownloadReport(ctx, chatID)
		if err != nil {
			return ErrMsg{Err: err}
		}

		dir, err := os.Getwd()
		if err != nil {
			dir = "."
		}
		path := filepath.Join(dir, name)
		if err := util.AtomicWriteFile(path, data, 0644); err != nil {
			return ErrMsg{Err: err}
		}
		return ReportSavedMsg{Path: path}
	}
}
