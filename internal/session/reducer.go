// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session owns the transcript state machine for one open chat.
//
// The Reducer consumes decoded agent events and user input, drives the
// reveal scheduler, and exposes the transcript, live status, and reveal
// buffer to whatever shell renders them. It is framework-independent and
// fully testable headlessly.
package session

import (
	"errors"
	"log"
	"strings"
	"sync"

	"github.com/araneasec/aranea-tui/internal/model"
	"github.com/araneasec/aranea-tui/internal/protocol"
	"github.com/araneasec/aranea-tui/internal/report"
	"github.com/araneasec/aranea-tui/internal/reveal"
)

// =============================================================================
// TRANSPORT INTERFACE
// =============================================================================

// Transport is the outbound half of the duplex connection. The gateway
// package provides the real implementation.
type Transport interface {
	// SendQuery transmits one user query frame. It returns
	// ErrNotConnected (or a wrapper of it) when no connection is open.
	SendQuery(text string) error
}

// ErrNotConnected is returned by a Transport with no open connection.
var ErrNotConnected = errors.New("transport not connected")

// ErrBusy rejects a submission while an exchange is in flight.
// Input is rejected, not queued: one in-flight exchange per chat.
var ErrBusy = errors.New("an exchange is already in progress")

// ErrEmptySubmission rejects a blank submission.
var ErrEmptySubmission = errors.New("empty submission")

// =============================================================================
// REDUCER
// =============================================================================

// Reducer is the core state machine: idle -> awaiting-response ->
// revealing -> idle, with interruption from any state.
type Reducer struct {
	mu sync.Mutex

	transcript []model.Entry
	status     model.Status

	// afterReveal is the status adopted once the active reveal commits.
	// Terminal events set idle; tool-call chatter sets awaiting because
	// more events follow in the same turn.
	afterReveal model.Status

	scheduler *reveal.Scheduler
	transport Transport
	logger    *log.Logger

	onChange func()
}

// NewReducer creates a reducer wired to the given scheduler and
// transport. logger may be nil; dropped frames then go unlogged.
func NewReducer(scheduler *reveal.Scheduler, transport Transport, logger *log.Logger) *Reducer {
	r := &Reducer{
		status:      model.StatusIdle,
		afterReveal: model.StatusIdle,
		scheduler:   scheduler,
		transport:   transport,
		logger:      logger,
	}
	scheduler.SetCommitCallback(r.commitReveal)
	scheduler.SetProgressCallback(func(string) { r.notify() })
	return r
}

// SetChangeCallback registers a function invoked after every state
// change, outside the reducer lock. The UI uses it to re-render.
func (r *Reducer) SetChangeCallback(fn func()) {
	r.mu.Lock()
	r.onChange = fn
	r.mu.Unlock()
}

// SetTransport swaps the outbound transport (used when the active chat
// changes and the gateway reconnects).
func (r *Reducer) SetTransport(t Transport) {
	r.mu.Lock()
	r.transport = t
	r.mu.Unlock()
}

// =============================================================================
// SNAPSHOT ACCESS
// =============================================================================

// Transcript returns a copy of the committed entries.
func (r *Reducer) Transcript() []model.Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Entry, len(r.transcript))
	copy(out, r.transcript)
	return out
}

// Status returns the live status.
func (r *Reducer) Status() model.Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// RevealBuffer returns the not-yet-committed text of the active reveal.
func (r *Reducer) RevealBuffer() string {
	return r.scheduler.Buffer()
}

// =============================================================================
// USER INPUT
// =============================================================================

// Submit sends a user query. Busy status rejects the submission without
// touching the transcript or the wire. A transport failure surfaces as a
// synthetic agent entry instead of an error to the caller.
func (r *Reducer) Submit(text string) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ErrEmptySubmission
	}

	r.mu.Lock()
	if r.status.Busy() {
		r.mu.Unlock()
		return ErrBusy
	}
	r.transcript = append(r.transcript, model.NewUserEntry(trimmed))
	r.status = model.StatusAwaiting
	transport := r.transport
	r.mu.Unlock()
	r.notify()

	var err error
	if transport == nil {
		err = ErrNotConnected
	} else {
		err = transport.SendQuery(trimmed)
	}
	if err != nil {
		r.logf("session: send failed: %v", err)
		r.mu.Lock()
		r.transcript = append(r.transcript, model.NewRevealedEntry("[error] "+err.Error()))
		r.status = model.StatusIdle
		r.mu.Unlock()
		r.notify()
	}
	return nil
}

// Interrupt cancels any active reveal, commits its partial text, and
// forces the status to idle regardless of the current state.
func (r *Reducer) Interrupt() {
	r.mu.Lock()
	r.afterReveal = model.StatusIdle
	r.mu.Unlock()

	r.scheduler.Cancel()

	r.mu.Lock()
	r.status = model.StatusIdle
	r.mu.Unlock()
	r.notify()
}

// =============================================================================
// INBOUND EVENTS
// =============================================================================

// HandleFrame decodes one raw transport frame and applies it. Malformed
// frames are logged and dropped; the transcript is untouched and the
// connection survives.
func (r *Reducer) HandleFrame(frame []byte) {
	ev, err := protocol.Decode(frame)
	if err != nil {
		r.logf("session: dropping frame: %v", err)
		return
	}
	r.HandleEvent(ev)
}

// HandleEvent dispatches one decoded event through the state machine.
func (r *Reducer) HandleEvent(ev protocol.Event) {
	switch ev.Kind {
	case protocol.KindThinking:
		// Status refresh only; a no-op while already busy.
		r.mu.Lock()
		if r.status == model.StatusIdle {
			r.status = model.StatusAwaiting
		}
		r.mu.Unlock()
		r.notify()

	case protocol.KindTextNoFunction, protocol.KindResponse, protocol.KindError,
		protocol.KindFunctionResult:
		r.startReveal(ev, model.StatusIdle)

	case protocol.KindTextWithFunction, protocol.KindFunctionCall,
		protocol.KindFunctionCallStr:
		// More events follow in this turn.
		r.startReveal(ev, model.StatusAwaiting)

	default:
		r.logf("session: ignoring event kind %q", string(ev.Kind))
	}
}

// startReveal normalizes and formats the event payload and begins typing
// it out. Empty text is a no-op except for terminal events, which still
// return the status to idle.
func (r *Reducer) startReveal(ev protocol.Event, after model.Status) {
	text := report.Format(protocol.DisplayText(ev))
	if strings.TrimSpace(text) == "" {
		r.mu.Lock()
		r.status = after
		r.mu.Unlock()
		r.notify()
		return
	}

	// Commit any active reveal before its successor takes the timer, so
	// the old run's commit cannot clobber the new run's status.
	r.scheduler.Cancel()

	r.mu.Lock()
	r.afterReveal = after
	r.status = model.StatusRevealing
	r.mu.Unlock()
	r.notify()

	r.scheduler.Start(text)
}

// commitReveal is the scheduler's commit callback: the revealed text
// (full or partial) becomes an immutable transcript entry.
func (r *Reducer) commitReveal(text string, completed bool) {
	r.mu.Lock()
	if text != "" {
		r.transcript = append(r.transcript, model.NewRevealedEntry(text))
	}
	if completed {
		r.status = r.afterReveal
	} else {
		r.status = model.StatusIdle
	}
	r.afterReveal = model.StatusIdle
	r.mu.Unlock()
	r.notify()
}

// =============================================================================
// TRANSCRIPT LIFECYCLE
// =============================================================================

// Reset replaces the transcript, cancelling any reveal first. Used when
// the active chat changes; entries loaded from history arrive already
// marked revealed so they do not re-animate.
func (r *Reducer) Reset(entries []model.Entry) {
	r.mu.Lock()
	r.afterReveal = model.StatusIdle
	r.mu.Unlock()
	r.scheduler.Cancel()

	r.mu.Lock()
	r.transcript = append([]model.Entry(nil), entries...)
	r.status = model.StatusIdle
	r.mu.Unlock()
	r.notify()
}

// Append adds an already-finalized entry (greetings, local notices).
func (r *Reducer) Append(e model.Entry) {
	r.mu.Lock()
	r.transcript = append(r.transcript, e)
	r.mu.Unlock()
	r.notify()
}

// =============================================================================
// HELPERS
// =============================================================================

func (r *Reducer) notify() {
	r.mu.Lock()
	fn := r.onChange
	r.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (r *Reducer) logf(format string, args ...any) {
	if r.logger != nil {
		r.logger.Printf(format, args...)
	}
}
