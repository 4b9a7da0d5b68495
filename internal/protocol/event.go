// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package protocol decodes and normalizes the agent event stream.
//
// The backend emits one JSON envelope per WebSocket frame:
//
//	{"event": "<tag>", "data": <string or object>, "timestamp": "..."}
//
// Decode classifies the frame; DisplayText extracts something the
// transcript can show, whatever shape the payload takes.
package protocol

import (
	"encoding/json"
	"errors"
	"strings"
)

// =============================================================================
// EVENT KINDS
// =============================================================================

// Kind is the event tag carried in the envelope.
type Kind string

const (
	// KindThinking signals the agent is working; no text yet.
	KindThinking Kind = "thinking"
	// KindTextNoFunction is agent text with no tool call attached.
	KindTextNoFunction Kind = "text_response_no_function"
	// KindTextWithFunction is agent text accompanying a tool call;
	// more events follow for the same turn.
	KindTextWithFunction Kind = "text_response_with_function"
	// KindFunctionResult carries the output of an executed tool.
	KindFunctionResult Kind = "function_result"
	// KindResponse is a generic terminal response for the turn.
	KindResponse Kind = "response"
	// KindError is a backend-reported error, terminal for the turn.
	KindError Kind = "error"
	// KindFunctionCall announces a tool invocation.
	KindFunctionCall Kind = "function_call"
	// KindFunctionCallStr is the string-form echo of a tool invocation.
	KindFunctionCallStr Kind = "function_call_str"
)

// Terminal reports whether the kind ends the current turn by itself.
func (k Kind) Terminal() bool {
	return k == KindResponse || k == KindError
}

// Bracketed reports whether the normalized text gets a "[tag] " prefix.
func (k Kind) Bracketed() bool {
	return k == KindFunctionCall || k == KindFunctionCallStr
}

// =============================================================================
// EVENT TYPE
// =============================================================================

// Event is one decoded inbound frame. Data holds the payload as decoded
// JSON: a string, or any structured value. Events are transient; they are
// consumed by the session reducer and discarded.
type Event struct {
	Kind Kind
	Data any
}

// envelope is the wire shape of an inbound frame.
type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// ErrMalformedFrame indicates a frame that is not a valid event envelope.
// The caller logs and drops the frame; the connection stays open.
var ErrMalformedFrame = errors.New("malformed event frame")

// Decode parses one raw frame into an Event. It fails with
// ErrMalformedFrame when the frame is not valid JSON or the event tag is
// missing; a missing payload decodes as nil Data.
func Decode(frame []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return Event{}, errors.Join(ErrMalformedFrame, err)
	}
	if strings.TrimSpace(env.Event) == "" {
		return Event{}, ErrMalformedFrame
	}

	ev := Event{Kind: Kind(env.Event)}
	if len(env.Data) > 0 {
		var data any
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return Event{}, errors.Join(ErrMalformedFrame, err)
		}
		ev.Data = data
	}
	return ev, nil
}
