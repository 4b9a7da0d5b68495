// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gateway

import "strings"

// =============================================================================
// OUTBOUND FRAMES
// =============================================================================

// QueryFrame is the only outbound frame shape: one user query.
type QueryFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// NewQueryFrame wraps user text in the wire envelope.
func NewQueryFrame(text string) QueryFrame {
	return QueryFrame{Type: "query", Message: text}
}

// =============================================================================
// URL DERIVATION
// =============================================================================

// StreamURL derives the WebSocket endpoint for a (user, chat) pair from
// the backend's HTTP base URL, mirroring the scheme.
func StreamURL(baseURL, username, chatID string) string {
	ws := baseURL
	switch {
	case strings.HasPrefix(ws, "https://"):
		ws = "wss://" + strings.TrimPrefix(ws, "https://")
	case strings.HasPrefix(ws, "http://"):
		ws = "ws://" + strings.TrimPrefix(ws, "http://")
	}
	return strings.TrimRight(ws, "/") + "/ws/" + username + "/" + chatID
}
