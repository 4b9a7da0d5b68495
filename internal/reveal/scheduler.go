// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package reveal types out finalized agent text one rune at a time.
//
// A Scheduler owns at most one recurring timer. Starting a reveal while
// one is active first commits the active reveal's partial text, so two
// reveals never interleave. Cancellation is cooperative and never
// discards partial output.
package reveal

import (
	"sync"
	"time"
)

// DefaultInterval is the cadence of one revealed rune.
const DefaultInterval = 5 * time.Millisecond

// =============================================================================
// SCHEDULER
// =============================================================================

// ProgressFunc receives the revealed prefix after each tick.
type ProgressFunc func(partial string)

// CommitFunc receives the final text exactly once per reveal. completed
// is false when the reveal was cancelled mid-flight; text then holds the
// prefix revealed so far.
type CommitFunc func(text string, completed bool)

// Scheduler reveals strings incrementally on a fixed interval.
type Scheduler struct {
	mu       sync.Mutex
	interval time.Duration

	onProgress ProgressFunc
	onCommit   CommitFunc

	current *run
}

// run is the state of one in-flight reveal. Its ticker and stop channel
// live and die with the run; finalize releases both exactly once.
type run struct {
	runes     []rune
	pos       int
	finalized bool
	ticker    *time.Ticker
	stopc     chan struct{}
}

// NewScheduler creates a scheduler with the given tick interval.
// A non-positive interval falls back to DefaultInterval.
func NewScheduler(interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{interval: interval}
}

// SetProgressCallback sets the per-tick progress function.
func (s *Scheduler) SetProgressCallback(fn ProgressFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onProgress = fn
}

// SetCommitCallback sets the commit function.
func (s *Scheduler) SetCommitCallback(fn CommitFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onCommit = fn
}

// =============================================================================
// REVEAL LIFECYCLE
// =============================================================================

// Start begins revealing text. An active reveal is cancelled first, so
// its partial output commits before the new reveal produces anything.
// Empty text commits immediately without starting a timer.
func (s *Scheduler) Start(text string) {
	s.Cancel()

	runes := []rune(text)
	if len(runes) == 0 {
		s.commit("", true)
		return
	}

	r := &run{
		runes:  runes,
		ticker: time.NewTicker(s.interval),
		stopc:  make(chan struct{}),
	}

	s.mu.Lock()
	s.current = r
	s.mu.Unlock()

	go s.loop(r)
}

// Cancel stops the active reveal, committing the prefix revealed so far.
// It is a no-op when nothing is revealing.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	r := s.current
	s.mu.Unlock()
	if r != nil {
		s.finalize(r, false)
	}
}

// Active reports whether a reveal is in progress.
func (s *Scheduler) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current != nil
}

// Buffer returns the in-progress revealed prefix, or "" when idle.
func (s *Scheduler) Buffer() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return ""
	}
	return string(s.current.runes[:s.current.pos])
}

// loop advances the reveal one rune per tick until done or stopped.
func (s *Scheduler) loop(r *run) {
	for {
		select {
		case <-r.stopc:
			return
		case <-r.ticker.C:
			s.mu.Lock()
			if r.finalized {
				s.mu.Unlock()
				return
			}
			r.pos++
			partial := string(r.runes[:r.pos])
			complete := r.pos == len(r.runes)
			progress := s.onProgress
			s.mu.Unlock()

			if progress != nil {
				progress(partial)
			}
			if complete {
				s.finalize(r, true)
				return
			}
		}
	}
}

// finalize releases the run's timer and commits its text exactly once.
func (s *Scheduler) finalize(r *run, completed bool) {
	s.mu.Lock()
	if r.finalized {
		s.mu.Unlock()
		return
	}
	r.finalized = true
	r.ticker.Stop()
	close(r.stopc)
	if s.current == r {
		s.current = nil
	}
	text := string(r.runes[:r.pos])
	s.mu.Unlock()

	s.commit(text, completed)
}

// commit invokes the commit callback outside the lock.
func (s *Scheduler) commit(text string, completed bool) {
	s.mu.Lock()
	fn := s.onCommit
	s.mu.Unlock()
	if fn != nil {
		fn(text, completed)
	}
}
