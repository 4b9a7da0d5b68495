// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package protocol

import (
	"encoding/json"
	"strings"
)

// =============================================================================
// PAYLOAD NORMALIZATION
// =============================================================================

// responsePrefix marks the line carrying the agent's conversational text
// inside a multi-line structured reply.
const responsePrefix = "response:"

// DisplayText extracts a display string from an event payload.
//
// String payloads pass through unchanged unless a line's trimmed content
// starts with "response:", in which case only the text after the prefix
// on the first such line is returned. Structured payloads render as
// indented JSON, except that response/error events prefer a "message"
// field, then a "text" field, before falling back to the full dump.
// function_call events get a bracketed tag prefix.
//
// The function is total: it never fails, worst case it returns a JSON
// dump of whatever the payload was.
func DisplayText(ev Event) string {
	text := payloadText(ev)
	if ev.Kind.Bracketed() {
		return "[" + string(ev.Kind) + "] " + text
	}
	return text
}

// payloadText renders the payload without the kind prefix.
func payloadText(ev Event) string {
	switch data := ev.Data.(type) {
	case nil:
		return ""
	case string:
		return extractResponseLine(data)
	case map[string]any:
		if ev.Kind == KindResponse || ev.Kind == KindError {
			if msg, ok := stringField(data, "message"); ok {
				return msg
			}
			if msg, ok := stringField(data, "text"); ok {
				return msg
			}
		}
		return dumpJSON(data)
	default:
		return dumpJSON(data)
	}
}

// extractResponseLine scans s line by line for a "response:" prefix and
// returns the remainder of the first matching line. First match wins;
// without a match s is returned unchanged.
func extractResponseLine(s string) string {
	if !strings.Contains(s, responsePrefix) {
		return s
	}
	for _, line := range strings.Split(s, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, responsePrefix) {
			return strings.TrimSpace(strings.TrimPrefix(trimmed, responsePrefix))
		}
	}
	return s
}

// stringField returns a non-empty string field from a decoded object.
func stringField(m map[string]any, key string) (string, bool) {
	v, ok := m[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// dumpJSON renders a decoded value as indented JSON. Values that came out
// of json.Unmarshal always re-marshal, but the fallback keeps the
// function total regardless.
func dumpJSON(v any) string {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "(unrenderable payload)"
	}
	return string(out)
}
