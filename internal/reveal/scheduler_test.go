// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package reveal

import (
	"strings"
	"sync"
	"testing"
	"time"
)

// recorder collects progress and commit callbacks for assertions.
type recorder struct {
	mu       sync.Mutex
	partials []string
	commits  []string
	statuses []bool
	done     chan struct{}
}

func newRecorder() *recorder {
	return &recorder{done: make(chan struct{}, 4)}
}

func (r *recorder) progress(partial string) {
	r.mu.Lock()
	r.partials = append(r.partials, partial)
	r.mu.Unlock()
}

func (r *recorder) commit(text string, completed bool) {
	r.mu.Lock()
	r.commits = append(r.commits, text)
	r.statuses = append(r.statuses, completed)
	r.mu.Unlock()
	r.done <- struct{}{}
}

func (r *recorder) waitCommit(t *testing.T) {
	t.Helper()
	select {
	case <-r.done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for commit")
	}
}

func newTestScheduler(rec *recorder) *Scheduler {
	s := NewScheduler(time.Millisecond)
	s.SetProgressCallback(rec.progress)
	s.SetCommitCallback(rec.commit)
	return s
}

func TestScheduler_RevealsEveryRuneExactlyOnce(t *testing.T) {
	rec := newRecorder()
	s := newTestScheduler(rec)

	const text = "scan started"
	s.Start(text)
	rec.waitCommit(t)

	rec.mu.Lock()
	defer rec.mu.Unlock()

	if len(rec.partials) != len([]rune(text)) {
		t.Errorf("progress called %d times, want %d", len(rec.partials), len([]rune(text)))
	}
	for i, p := range rec.partials {
		want := string([]rune(text)[:i+1])
		if p != want {
			t.Errorf("partial %d = %q, want %q", i, p, want)
		}
	}
	if len(rec.commits) != 1 || rec.commits[0] != text {
		t.Errorf("commits = %q, want exactly [%q]", rec.commits, text)
	}
	if !rec.statuses[0] {
		t.Error("completed = false, want true")
	}
}

func TestScheduler_MultibyteText(t *testing.T) {
	rec := newRecorder()
	s := newTestScheduler(rec)

	const text = "résumé ✓"
	s.Start(text)
	rec.waitCommit(t)

	rec.mu.Lock()
	defer rec.mu.Unlock()

	if len(rec.partials) != len([]rune(text)) {
		t.Errorf("progress called %d times, want rune count %d", len(rec.partials), len([]rune(text)))
	}
	for _, p := range rec.partials {
		if !strings.HasPrefix(text, p) {
			t.Errorf("partial %q is not a prefix of %q", p, text)
		}
	}
}

func TestScheduler_EmptyTextCommitsImmediately(t *testing.T) {
	rec := newRecorder()
	s := newTestScheduler(rec)

	s.Start("")
	rec.waitCommit(t)

	rec.mu.Lock()
	defer rec.mu.Unlock()

	if len(rec.partials) != 0 {
		t.Errorf("progress called %d times for empty text", len(rec.partials))
	}
	if len(rec.commits) != 1 || rec.commits[0] != "" || !rec.statuses[0] {
		t.Errorf("commits = %v statuses = %v, want single completed empty commit", rec.commits, rec.statuses)
	}
	if s.Active() {
		t.Error("scheduler active after empty reveal")
	}
}

func TestScheduler_CancelCommitsPrefix(t *testing.T) {
	rec := newRecorder()
	s := NewScheduler(10 * time.Millisecond)
	s.SetProgressCallback(rec.progress)
	s.SetCommitCallback(rec.commit)

	s.Start("a long answer that will be interrupted")
	time.Sleep(35 * time.Millisecond)
	s.Cancel()
	rec.waitCommit(t)

	rec.mu.Lock()
	defer rec.mu.Unlock()

	if len(rec.commits) != 1 {
		t.Fatalf("commits = %d, want 1", len(rec.commits))
	}
	if rec.statuses[0] {
		t.Error("completed = true on cancel, want false")
	}
	committed := rec.commits[0]
	if !strings.HasPrefix("a long answer that will be interrupted", committed) {
		t.Errorf("committed %q is not a prefix of the original", committed)
	}
	if len(committed) == len("a long answer that will be interrupted") {
		t.Error("cancel committed the full text; expected a partial prefix")
	}
	if s.Active() {
		t.Error("scheduler still active after cancel")
	}
}

func TestScheduler_CancelWhenIdleIsNoop(t *testing.T) {
	rec := newRecorder()
	s := newTestScheduler(rec)

	s.Cancel()

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.commits) != 0 {
		t.Errorf("Cancel with nothing active committed %q", rec.commits)
	}
}

func TestScheduler_StartSupersedesActiveReveal(t *testing.T) {
	rec := newRecorder()
	s := NewScheduler(10 * time.Millisecond)
	s.SetProgressCallback(rec.progress)
	s.SetCommitCallback(rec.commit)

	s.Start("first text being revealed")
	time.Sleep(25 * time.Millisecond)
	s.Start("second")

	// First commit is the cancelled prefix, second is the full new text.
	rec.waitCommit(t)
	rec.waitCommit(t)

	rec.mu.Lock()
	defer rec.mu.Unlock()

	if len(rec.commits) != 2 {
		t.Fatalf("commits = %d, want 2", len(rec.commits))
	}
	if rec.statuses[0] {
		t.Error("first commit should be a cancellation")
	}
	if !strings.HasPrefix("first text being revealed", rec.commits[0]) {
		t.Errorf("first commit %q not a prefix of the first text", rec.commits[0])
	}
	if rec.commits[1] != "second" || !rec.statuses[1] {
		t.Errorf("second commit = %q completed=%v, want full second text", rec.commits[1], rec.statuses[1])
	}
}

func TestScheduler_BufferTracksProgress(t *testing.T) {
	rec := newRecorder()
	s := NewScheduler(10 * time.Millisecond)
	s.SetProgressCallback(rec.progress)
	s.SetCommitCallback(rec.commit)

	if s.Buffer() != "" {
		t.Error("Buffer non-empty while idle")
	}

	s.Start("buffered text here")
	time.Sleep(35 * time.Millisecond)
	buf := s.Buffer()
	if buf == "" {
		t.Error("Buffer empty mid-reveal")
	}
	if !strings.HasPrefix("buffered text here", buf) {
		t.Errorf("Buffer %q not a prefix", buf)
	}

	s.Cancel()
	rec.waitCommit(t)
	if s.Buffer() != "" {
		t.Error("Buffer non-empty after cancel")
	}
}
