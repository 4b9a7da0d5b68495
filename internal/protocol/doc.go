// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package protocol decodes and classifies inbound stream frames.
//
// Every frame is a JSON envelope {event, data, timestamp} whose data
// field may itself be a string or an object. Decode never guesses: a
// frame that does not fit the envelope is ErrMalformedFrame and the
// caller drops it.
//
// # Key Types
//
//   - Event: a decoded frame with its Kind and raw payload
//   - Kind: the event tag (thinking, response, function_result, ...)
//
// DisplayText extracts the user-visible text for a kind, including the
// "response:"-prefix line convention and the bracketed tool-call
// prefixes. Unknown kinds decode fine; they are simply neither
// terminal nor bracketed, and the reducer ignores them.
package protocol
