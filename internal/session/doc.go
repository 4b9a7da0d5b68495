// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session reduces the inbound event stream into transcript and
// status state.
//
// The Reducer is the single owner of the conversation state: user
// submissions go out through a Transport, inbound frames mutate the
// transcript through typed events, and every change fires one
// callback so a UI can re-render. It is framework-independent; both
// the Bubble Tea view and the plain REPL drive the same reducer.
//
// # Key Types
//
//   - Reducer: the exchange state machine
//   - Transport: outbound query sink (the gateway stream in production)
//
// # Usage
//
// Wire a reducer to a stream and submit a query:
//
//	r := session.NewReducer(reveal.NewScheduler(5*time.Millisecond), stream, logger)
//	stream.OnFrame(r.HandleFrame)
//	r.SetChangeCallback(render)
//	err := r.Submit("scan example.com")
//
// Submissions while an exchange is in flight return ErrBusy; they are
// rejected, never queued. A turn ends when a terminal event commits or
// the user interrupts the reveal.
package session
