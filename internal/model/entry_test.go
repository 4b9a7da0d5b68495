// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"testing"
)

func TestSender_PromptLabel(t *testing.T) {
	if got := SenderUser.PromptLabel(); got != "user@web:~$" {
		t.Errorf("user label = %q", got)
	}
	if got := SenderAranea.PromptLabel(); got != "aranea@web:~$" {
		t.Errorf("aranea label = %q", got)
	}
}

func TestStatus_Busy(t *testing.T) {
	if StatusIdle.Busy() {
		t.Error("idle should not be busy")
	}
	if !StatusAwaiting.Busy() || !StatusRevealing.Busy() {
		t.Error("awaiting and revealing should be busy")
	}
}

func TestStatus_String(t *testing.T) {
	tests := []struct {
		s    Status
		want string
	}{
		{StatusIdle, "idle"},
		{StatusAwaiting, "awaiting-response"},
		{StatusRevealing, "revealing"},
		{Status(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("Status(%d).String() = %q, want %q", tt.s, got, tt.want)
		}
	}
}

func TestNewEntry_Identity(t *testing.T) {
	a := NewUserEntry("hello")
	b := NewUserEntry("hello")

	if a.ID == "" || b.ID == "" {
		t.Fatal("entries created without IDs")
	}
	if a.ID == b.ID {
		t.Error("two entries share an ID")
	}
	if a.Timestamp.IsZero() {
		t.Error("entry has zero timestamp")
	}
	if a.Sender != SenderUser {
		t.Errorf("Sender = %q", a.Sender)
	}
	if a.Revealed {
		t.Error("user entry marked revealed")
	}
}

func TestNewRevealedEntry(t *testing.T) {
	e := NewRevealedEntry("scan started")
	if e.Sender != SenderAranea {
		t.Errorf("Sender = %q, want aranea", e.Sender)
	}
	if !e.Revealed {
		t.Error("revealed entry not marked revealed")
	}
}

func TestEntry_Preview(t *testing.T) {
	tests := []struct {
		name string
		text string
		max  int
		want string
	}{
		{"short passes through", "hello", 20, "hello"},
		{"newlines collapse", "line one\nline two", 30, "line one line two"},
		{"long truncates with ellipsis", strings.Repeat("a", 30), 10, strings.Repeat("a", 7) + "..."},
		{"tiny max", "hello", 2, "he"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := Entry{Text: tt.text}
			if got := e.Preview(tt.max); got != tt.want {
				t.Errorf("Preview = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEntry_IsEmpty(t *testing.T) {
	if !(Entry{Text: "  \n "}).IsEmpty() {
		t.Error("whitespace entry should be empty")
	}
	if (Entry{Text: "x"}).IsEmpty() {
		t.Error("non-blank entry reported empty")
	}
}
