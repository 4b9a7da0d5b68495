// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gateway owns the duplex WebSocket connection to the backend.
//
// One Session holds at most one open connection, scoped to a
// (username, chatID) pair. Switching the active chat tears the old
// connection down (idempotently) and dials a new one. Inbound frames are
// handed raw to the frame handler; the session does no decoding itself.
package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ErrNotConnected is returned by SendQuery when no connection is open.
var ErrNotConnected = errors.New("transport not connected")

// handshakeTimeout bounds the WebSocket dial.
const handshakeTimeout = 10 * time.Second

// =============================================================================
// SESSION
// =============================================================================

// FrameHandler receives each raw inbound frame in transport order.
type FrameHandler func(frame []byte)

// Session manages the WebSocket connection for the active chat.
type Session struct {
	mu sync.Mutex

	baseURL  string
	username string
	chatID   string

	conn *websocket.Conn

	onFrame FrameHandler
	logger  *log.Logger
}

// NewSession creates a session for the given backend base URL.
// logger may be nil.
func NewSession(baseURL string, logger *log.Logger) *Session {
	return &Session{baseURL: baseURL, logger: logger}
}

// OnFrame sets the inbound frame handler.
func (s *Session) OnFrame(fn FrameHandler) {
	s.mu.Lock()
	s.onFrame = fn
	s.mu.Unlock()
}

// Connected reports whether a connection is currently open.
func (s *Session) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil
}

// ChatID returns the chat the session is currently scoped to.
func (s *Session) ChatID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chatID
}

// =============================================================================
// LIFECYCLE
// =============================================================================

// Open establishes the connection for (username, chatID). The prior
// connection, if any, is displaced and closed; when Opens race, exactly
// one connection survives and Close tears it down.
func (s *Session) Open(username, chatID string) error {
	url := StreamURL(s.baseURL, username, chatID)
	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, _, err := dialer.Dial(url, nil)
	if err != nil {
		return fmt.Errorf("gateway dial %s: %w", url, err)
	}

	// Swap under the lock so concurrent Opens cannot both win; the
	// displaced connection is closed, never orphaned.
	s.mu.Lock()
	prev := s.conn
	s.username = username
	s.chatID = chatID
	s.conn = conn
	s.mu.Unlock()

	closeConn(prev)
	go s.readLoop(conn)
	return nil
}

// Close tears down the connection. It is idempotent: closing a session
// that is already closed (or mid-close) is a no-op.
func (s *Session) Close() {
	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()

	closeConn(conn)
}

func closeConn(conn *websocket.Conn) {
	if conn == nil {
		return
	}
	// Best effort close handshake; the peer may already be gone.
	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	_ = conn.Close()
}

// =============================================================================
// OUTBOUND
// =============================================================================

// SendQuery transmits one query frame. Without an open connection it
// returns ErrNotConnected; the caller surfaces that in the transcript
// rather than failing the exchange.
func (s *Session) SendQuery(text string) error {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()

	if conn == nil {
		return ErrNotConnected
	}

	data, err := json.Marshal(NewQueryFrame(text))
	if err != nil {
		return fmt.Errorf("marshal query frame: %w", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("write query frame: %w", err)
	}
	return nil
}

// =============================================================================
// INBOUND
// =============================================================================

// readLoop forwards frames until the connection dies or is replaced.
// Frames arrive and are delivered in transport order.
func (s *Session) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logf("gateway: read error: %v", err)
			}
			// Drop the handle only if it is still ours; Open may have
			// already swapped in a new connection.
			s.mu.Lock()
			if s.conn == conn {
				s.conn = nil
			}
			s.mu.Unlock()
			return
		}

		s.mu.Lock()
		handler := s.onFrame
		stale := s.conn != conn
		s.mu.Unlock()
		if stale {
			// Displaced by a newer Open; stop delivering for the old chat.
			return
		}
		if handler != nil {
			handler(data)
		}
	}
}

func (s *Session) logf(format string, args ...any) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}
