// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the chat transcript.
package model

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/araneasec/aranea-tui/internal/util"
)

// =============================================================================
// SENDER TYPE
// =============================================================================

// Sender identifies who produced a transcript entry.
type Sender string

const (
	SenderUser   Sender = "user"
	SenderAranea Sender = "aranea"
)

// String returns the string representation of the sender.
func (s Sender) String() string {
	return string(s)
}

// PromptLabel returns the terminal-style prompt shown before an entry.
func (s Sender) PromptLabel() string {
	switch s {
	case SenderUser:
		return "user@web:~$"
	case SenderAranea:
		return "aranea@web:~$"
	default:
		return string(s) + ":~$"
	}
}

// =============================================================================
// STATUS TYPE
// =============================================================================

// Status is the live state of the current exchange.
// At most one of StatusAwaiting and StatusRevealing holds at a time.
type Status int

const (
	// StatusIdle means no exchange is in flight.
	StatusIdle Status = iota
	// StatusAwaiting means a query was sent and no text has arrived yet.
	StatusAwaiting
	// StatusRevealing means an agent entry is being typed out.
	StatusRevealing
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusAwaiting:
		return "awaiting-response"
	case StatusRevealing:
		return "revealing"
	default:
		return "unknown"
	}
}

// Busy reports whether a new submission would be rejected.
func (s Status) Busy() bool {
	return s != StatusIdle
}

// =============================================================================
// TRANSCRIPT ENTRY
// =============================================================================

// Entry is one finalized line of the conversation. Entries are immutable
// once appended; in-flight reveal text lives in the session, not here.
type Entry struct {
	// Identity
	ID        string    `json:"id"`
	Sender    Sender    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`

	// Content
	Text string `json:"text"`

	// Revealed marks text that was typed out incrementally. It affects
	// presentation only: already-shown text is never re-animated when a
	// transcript is re-rendered or reloaded.
	Revealed bool `json:"revealed,omitempty"`
}

// NewEntry creates an entry with a generated ID.
func NewEntry(sender Sender, text string) Entry {
	return Entry{
		ID:        generateEntryID(),
		Sender:    sender,
		Text:      text,
		Timestamp: time.Now(),
	}
}

// NewUserEntry creates a user entry.
func NewUserEntry(text string) Entry {
	return NewEntry(SenderUser, text)
}

// NewAgentEntry creates an agent entry.
func NewAgentEntry(text string) Entry {
	return NewEntry(SenderAranea, text)
}

// NewRevealedEntry creates an agent entry that has already been typed out.
func NewRevealedEntry(text string) Entry {
	e := NewEntry(SenderAranea, text)
	e.Revealed = true
	return e
}

// Preview returns a truncated single-line preview of the entry text.
// Uses rune-based truncation to handle Unicode correctly.
func (e Entry) Preview(maxLen int) string {
	text := strings.ReplaceAll(e.Text, "\n", " ")
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// IsEmpty returns true if the entry has no content after trimming.
func (e Entry) IsEmpty() bool {
	return strings.TrimSpace(e.Text) == ""
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// generateEntryID creates a unique entry ID. The millisecond prefix keeps
// IDs ordered; the random suffix keeps same-millisecond entries distinct.
func generateEntryID() string {
	return util.Int64ToString(time.Now().UnixMilli()) + "-" + uuid.NewString()[:8]
}
