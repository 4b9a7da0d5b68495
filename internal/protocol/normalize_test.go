// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package protocol

import (
	"strings"
	"testing"
)

func TestDisplayText_PlainString(t *testing.T) {
	ev := Event{Kind: KindTextNoFunction, Data: "scan queued for example.com"}
	if got := DisplayText(ev); got != "scan queued for example.com" {
		t.Errorf("DisplayText = %q", got)
	}
}

func TestDisplayText_ResponsePrefixLine(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"single line with prefix",
			"response: scan started",
			"scan started",
		},
		{
			"prefix line buried in structured reply",
			"reasoning: target is in scope\nresponse: scan started\nconfidence: high",
			"scan started",
		},
		{
			"first matching line wins",
			"response: first answer\nresponse: second answer",
			"first answer",
		},
		{
			"indented prefix line",
			"   response:   padded   ",
			"padded",
		},
		{
			"prefix mid-line does not match any line",
			"the response: marker appears mid-sentence",
			"the response: marker appears mid-sentence",
		},
		{
			"no prefix passes through",
			"plain text with newlines\nand more",
			"plain text with newlines\nand more",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := Event{Kind: KindResponse, Data: tt.in}
			if got := DisplayText(ev); got != tt.want {
				t.Errorf("DisplayText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDisplayText_ObjectMessageField(t *testing.T) {
	ev := Event{Kind: KindError, Data: map[string]any{"message": "agent unavailable", "code": float64(503)}}
	if got := DisplayText(ev); got != "agent unavailable" {
		t.Errorf("DisplayText = %q, want message field", got)
	}

	ev = Event{Kind: KindResponse, Data: map[string]any{"text": "from text field"}}
	if got := DisplayText(ev); got != "from text field" {
		t.Errorf("DisplayText = %q, want text field", got)
	}
}

func TestDisplayText_ObjectFallbackDump(t *testing.T) {
	// Non-terminal kinds with structured payloads dump as indented JSON.
	ev := Event{Kind: KindFunctionResult, Data: map[string]any{"servers": float64(3)}}
	got := DisplayText(ev)
	if !strings.Contains(got, `"servers"`) {
		t.Errorf("DisplayText = %q, want JSON dump", got)
	}

	// Terminal kind without message/text fields also dumps.
	ev = Event{Kind: KindResponse, Data: map[string]any{"status": "done"}}
	got = DisplayText(ev)
	if !strings.Contains(got, `"status"`) {
		t.Errorf("DisplayText = %q, want JSON dump", got)
	}
}

func TestDisplayText_BracketedKinds(t *testing.T) {
	ev := Event{Kind: KindFunctionCall, Data: "find_website_servers(domain='example.com')"}
	got := DisplayText(ev)
	if !strings.HasPrefix(got, "[function_call] ") {
		t.Errorf("DisplayText = %q, want [function_call] prefix", got)
	}

	ev = Event{Kind: KindFunctionCallStr, Data: map[string]any{"name": "find_website_servers"}}
	got = DisplayText(ev)
	if !strings.HasPrefix(got, "[function_call_str] ") {
		t.Errorf("DisplayText = %q, want [function_call_str] prefix", got)
	}
}

// DisplayText must produce something printable for every payload shape.
func TestDisplayText_Total(t *testing.T) {
	payloads := []any{
		nil,
		"",
		"plain",
		float64(42),
		true,
		[]any{"a", "b"},
		map[string]any{"nested": map[string]any{"deep": []any{float64(1)}}},
		map[string]any{"message": ""}, // empty message falls through to dump
	}
	for _, p := range payloads {
		for _, k := range []Kind{KindThinking, KindTextNoFunction, KindResponse, KindError, KindFunctionResult, KindFunctionCall} {
			got := DisplayText(Event{Kind: k, Data: p})
			_ = got // any return is acceptable; the call must not panic
		}
	}
}
