// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package protocol

import (
	"errors"
	"testing"
)

func TestDecode_StringPayload(t *testing.T) {
	ev, err := Decode([]byte(`{"event":"thinking","data":"Aranea is thinking...","timestamp":"2025-01-15T10:00:00Z"}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if ev.Kind != KindThinking {
		t.Errorf("Kind = %q, want thinking", ev.Kind)
	}
	if s, ok := ev.Data.(string); !ok || s != "Aranea is thinking..." {
		t.Errorf("Data = %#v, want string payload", ev.Data)
	}
}

func TestDecode_ObjectPayload(t *testing.T) {
	ev, err := Decode([]byte(`{"event":"error","data":{"message":"agent unavailable"}}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if ev.Kind != KindError {
		t.Errorf("Kind = %q, want error", ev.Kind)
	}
	m, ok := ev.Data.(map[string]any)
	if !ok {
		t.Fatalf("Data = %#v, want map", ev.Data)
	}
	if m["message"] != "agent unavailable" {
		t.Errorf("message = %v", m["message"])
	}
}

func TestDecode_MissingPayload(t *testing.T) {
	ev, err := Decode([]byte(`{"event":"thinking"}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if ev.Data != nil {
		t.Errorf("Data = %#v, want nil", ev.Data)
	}
}

func TestDecode_Malformed(t *testing.T) {
	frames := []struct {
		name  string
		frame string
	}{
		{"not JSON", `{{{not json`},
		{"empty object", `{}`},
		{"blank event tag", `{"event":"  ","data":"x"}`},
		{"bad data JSON", `{"event":"response","data":{"unclosed":}`},
	}
	for _, tt := range frames {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.frame))
			if !errors.Is(err, ErrMalformedFrame) {
				t.Errorf("Decode(%q) err = %v, want ErrMalformedFrame", tt.frame, err)
			}
		})
	}
}

func TestDecode_UnknownTagStillDecodes(t *testing.T) {
	// Forward compatibility: unknown tags decode fine and simply are not
	// terminal or bracketed.
	ev, err := Decode([]byte(`{"event":"future_event","data":"payload"}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if ev.Kind.Terminal() || ev.Kind.Bracketed() {
		t.Error("unknown kind should be neither terminal nor bracketed")
	}
}

func TestKind_Terminal(t *testing.T) {
	if !KindResponse.Terminal() || !KindError.Terminal() {
		t.Error("response and error should be terminal")
	}
	for _, k := range []Kind{KindThinking, KindTextNoFunction, KindTextWithFunction, KindFunctionResult, KindFunctionCall, KindFunctionCallStr} {
		if k.Terminal() {
			t.Errorf("%q should not be terminal", k)
		}
	}
}

func TestKind_Bracketed(t *testing.T) {
	if !KindFunctionCall.Bracketed() || !KindFunctionCallStr.Bracketed() {
		t.Error("function_call kinds should be bracketed")
	}
	if KindResponse.Bracketed() || KindTextNoFunction.Bracketed() {
		t.Error("text kinds should not be bracketed")
	}
}
