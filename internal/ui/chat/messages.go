// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file defines the Bubble Tea message types used by the chat
// interface. All message types follow Bubble Tea conventions and are
// immutable.
package chat

import (
	"github.com/araneasec/aranea-tui/internal/backend"
)

// =============================================================================
// SESSION MESSAGES
// =============================================================================

// StateChangedMsg signals that the session reducer changed state
// (transcript, status, or reveal buffer) and the view must re-render.
type StateChangedMsg struct{}

// StreamOpenedMsg signals the WebSocket for the active chat is up.
type StreamOpenedMsg struct {
	ChatID string
}

// StreamFailedMsg signals the WebSocket dial failed.
type StreamFailedMsg struct {
	ChatID string
	Err    error
}

// =============================================================================
// CHAT LIST MESSAGES
// =============================================================================

// ChatsLoadedMsg delivers the sidebar chat list.
type ChatsLoadedMsg struct {
	Chats []backend.Chat
}

// ChatCreatedMsg signals a new chat thread exists and should activate.
type ChatCreatedMsg struct {
	Chat backend.Chat
}

// ChatRenamedMsg confirms a rename round-trip.
type ChatRenamedMsg struct {
	ChatID string
	Title  string
}

// ChatDeletedMsg confirms a delete round-trip.
type ChatDeletedMsg struct {
	ChatID string
}

// HistoryLoadedMsg delivers a thread's persisted transcript.
type HistoryLoadedMsg struct {
	ChatID   string
	Messages []backend.HistoryMessage
	// FromCache is true when the backend was unreachable and the local
	// history store served the read instead.
	FromCache bool
}

// =============================================================================
// REPORT MESSAGES
// =============================================================================

// ReportSavedMsg confirms the engagement report landed on disk.
type ReportSavedMsg struct {
	Path string
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrMsg carries any backend or local failure into the status line.
type ErrMsg struct {
	Err error
}
