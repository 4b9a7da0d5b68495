// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenStore(filepath.Join(t.TempDir(), "users.json"))
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	return s
}

func TestStore_RegisterAndAuthenticate(t *testing.T) {
	s := newTestStore(t)

	if err := s.Register("operator", "op@example.com", "hunter2hunter2"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := s.Authenticate("operator", "hunter2hunter2"); err != nil {
		t.Errorf("Authenticate with correct password: %v", err)
	}
	if err := s.Authenticate("operator", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Authenticate with wrong password = %v, want ErrInvalidCredentials", err)
	}
}

func TestStore_UnknownUser(t *testing.T) {
	s := newTestStore(t)
	if err := s.Authenticate("ghost", "whatever-pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Authenticate unknown user = %v, want ErrInvalidCredentials", err)
	}
	if _, err := s.Lookup("ghost"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("Lookup unknown user = %v, want ErrUserNotFound", err)
	}
}

func TestStore_DuplicateRegister(t *testing.T) {
	s := newTestStore(t)
	if err := s.Register("operator", "", "hunter2hunter2"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := s.Register("operator", "", "another-password"); !errors.Is(err, ErrUserExists) {
		t.Errorf("second Register = %v, want ErrUserExists", err)
	}
}

func TestStore_ValidationRules(t *testing.T) {
	s := newTestStore(t)

	if err := s.Register("", "", "hunter2hunter2"); err == nil {
		t.Error("Register with empty username succeeded")
	}
	if err := s.Register("bad user", "", "hunter2hunter2"); err == nil {
		t.Error("Register with space in username succeeded")
	}
	if err := s.Register(strings.Repeat("x", MaxUsernameLength+1), "", "hunter2hunter2"); err == nil {
		t.Error("Register with overlong username succeeded")
	}
	if err := s.Register("operator", "", "short"); err == nil {
		t.Error("Register with short password succeeded")
	}
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")

	s1, err := OpenStore(path)
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	if err := s1.Register("operator", "op@example.com", "hunter2hunter2"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	s2, err := OpenStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if s2.Count() != 1 {
		t.Fatalf("Count after reopen = %d, want 1", s2.Count())
	}
	if err := s2.Authenticate("operator", "hunter2hunter2"); err != nil {
		t.Errorf("Authenticate after reopen: %v", err)
	}

	u, err := s2.Lookup("operator")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if u.Email != "op@example.com" {
		t.Errorf("Email = %q, want op@example.com", u.Email)
	}
	if strings.Contains(u.PasswordHash, "hunter2") {
		t.Error("password stored in cleartext")
	}
}
