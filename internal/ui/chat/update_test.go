// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/araneasec/aranea-tui/internal/backend"
	"github.com/araneasec/aranea-tui/internal/config"
	"github.com/araneasec/aranea-tui/internal/gateway"
	"github.com/araneasec/aranea-tui/internal/reveal"
	"github.com/araneasec/aranea-tui/internal/session"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	stream := gateway.NewSession("http://localhost:1", nil)
	reducer := session.NewReducer(reveal.NewScheduler(time.Millisecond), stream, nil)
	return New(Options{
		Username: "operator",
		Config:   config.Default(),
		Reducer:  reducer,
		Stream:   stream,
		Client:   backend.NewClient("http://localhost:1"),
	})
}

func TestUpdate_WindowSize(t *testing.T) {
	m := newTestModel(t)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = updated.(Model)

	if m.width != 120 || m.height != 40 {
		t.Errorf("dimensions = %dx%d", m.width, m.height)
	}
	if m.viewport.Width != 120-sidebarWidth {
		t.Errorf("viewport width = %d, want %d", m.viewport.Width, 120-sidebarWidth)
	}
}

func TestUpdate_ChatsLoaded(t *testing.T) {
	m := newTestModel(t)
	updated, cmd := m.Update(ChatsLoadedMsg{Chats: []backend.Chat{
		{ChatID: "c1", Title: "recon"},
		{ChatID: "c2", Title: "reporting"},
	}})
	m = updated.(Model)

	if len(m.chats) != 2 {
		t.Fatalf("chats = %d", len(m.chats))
	}
	if m.activeChatID != "c1" {
		t.Errorf("activeChatID = %q, want first chat selected", m.activeChatID)
	}
	if cmd == nil {
		t.Error("activation should produce a load command")
	}
}

func TestUpdate_ChatRenamed(t *testing.T) {
	m := newTestModel(t)
	m.chats = []backend.Chat{{ChatID: "c1", Title: "old"}}

	updated, _ := m.Update(ChatRenamedMsg{ChatID: "c1", Title: "new title"})
	m = updated.(Model)

	if m.chats[0].Title != "new title" {
		t.Errorf("title = %q", m.chats[0].Title)
	}
}

func TestUpdate_ChatDeletedKeepsCursorInRange(t *testing.T) {
	m := newTestModel(t)
	m.chats = []backend.Chat{{ChatID: "c1"}, {ChatID: "c2"}}
	m.chatCursor = 1
	m.activeChatID = "c1"

	updated, _ := m.Update(ChatDeletedMsg{ChatID: "c2"})
	m = updated.(Model)

	if len(m.chats) != 1 || m.chatCursor != 0 {
		t.Errorf("chats = %d cursor = %d", len(m.chats), m.chatCursor)
	}
	if m.activeChatID != "c1" {
		t.Errorf("active chat changed to %q", m.activeChatID)
	}
}

func TestUpdate_HistoryLoadedEmptyGetsGreeting(t *testing.T) {
	m := newTestModel(t)
	m.activeChatID = "c1"

	updated, _ := m.Update(HistoryLoadedMsg{ChatID: "c1"})
	m = updated.(Model)

	entries := m.reducer.Transcript()
	if len(entries) != 1 {
		t.Fatalf("transcript = %d entries, want greeting", len(entries))
	}
	if !strings.Contains(entries[0].Text, "operator") {
		t.Errorf("greeting = %q, want username mentioned", entries[0].Text)
	}
}

func TestUpdate_HistoryForStaleChatIgnored(t *testing.T) {
	m := newTestModel(t)
	m.activeChatID = "c2"

	updated, _ := m.Update(HistoryLoadedMsg{ChatID: "c1", Messages: []backend.HistoryMessage{{Sender: "user", Text: "old"}}})
	m = updated.(Model)

	if len(m.reducer.Transcript()) != 0 {
		t.Error("history for a stale chat replaced the transcript")
	}
}

func TestUpdate_ErrMsgSetsNotice(t *testing.T) {
	m := newTestModel(t)
	updated, _ := m.Update(ErrMsg{Err: backendErr("boom")})
	m = updated.(Model)

	if m.notice != "boom" || !m.noticeErr {
		t.Errorf("notice = %q err=%v", m.notice, m.noticeErr)
	}
}

type backendErr string

func (e backendErr) Error() string { return string(e) }

func TestLooksLikeMarkdown(t *testing.T) {
	if looksLikeMarkdown("plain sentence") {
		t.Error("plain text flagged as markdown")
	}
	if !looksLikeMarkdown("```go\ncode\n```") {
		t.Error("fenced code not flagged")
	}
	if !looksLikeMarkdown("# Heading\nbody") {
		t.Error("heading not flagged")
	}
	// Formatted server reports keep their exact layout.
	if looksLikeMarkdown("[1] 93.184.216.34\nTotal servers found: 1") {
		t.Error("server report flagged as markdown")
	}
}

func TestView_RendersTranscript(t *testing.T) {
	m := newTestModel(t)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m = updated.(Model)

	if err := m.reducer.Submit("scan example.com"); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	updatedState, _ := m.Update(StateChangedMsg{})
	m = updatedState.(Model)

	out := m.View()
	if !strings.Contains(out, "scan example.com") {
		t.Error("view missing submitted query")
	}
	if !strings.Contains(out, "ARANEA / operator") {
		t.Error("view missing header with user segment")
	}
}
