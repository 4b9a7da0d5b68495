// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/araneasec/aranea-tui/internal/util"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// bcryptCost balances hash strength against interactive login latency.
	bcryptCost = 12

	// MinPasswordLength is the minimum accepted password length.
	MinPasswordLength = 8

	// MaxUsernameLength bounds usernames for both storage and display.
	MaxUsernameLength = 64
)

var (
	// ErrUserExists is returned when registering a username that is taken.
	ErrUserExists = errors.New("user already exists")

	// ErrUserNotFound is returned when the username has no local record.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidCredentials is returned on password mismatch. The error
	// deliberately does not distinguish which part failed.
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// =============================================================================
// USER STORE
// =============================================================================

// User is one local account record. Only the bcrypt hash is stored.
type User struct {
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// Store is a file-backed user store used when the backend is
// unreachable. The backend remains the source of truth; this store only
// lets previously registered users open their cached history offline.
type Store struct {
	mu    sync.Mutex
	path  string
	users map[string]User
}

// OpenStore loads the user file at path, creating an empty store when
// the file does not exist.
func OpenStore(path string) (*Store, error) {
	s := &Store{path: path, users: make(map[string]User)}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read user file: %w", err)
	}

	var users []User
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("parse user file: %w", err)
	}
	for _, u := range users {
		s.users[u.Username] = u
	}
	return s, nil
}

// Register creates a new local account. The password is hashed with
// bcrypt before it touches disk.
func (s *Store) Register(username, email, password string) error {
	username = strings.TrimSpace(username)
	if err := validateUsername(username); err != nil {
		return err
	}
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[username]; ok {
		return ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	s.users[username] = User{
		Username:     username,
		Email:        strings.TrimSpace(email),
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	return s.saveLocked()
}

// Authenticate verifies username/password against the local store.
func (s *Store) Authenticate(username, password string) error {
	username = strings.TrimSpace(username)

	s.mu.Lock()
	u, ok := s.users[username]
	s.mu.Unlock()

	if !ok {
		// Burn a hash comparison anyway so missing and present users
		// take the same time.
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// Lookup returns the stored record for username.
func (s *Store) Lookup(username string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[strings.TrimSpace(username)]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return u, nil
}

// Count returns the number of local accounts.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

func (s *Store) saveLocked() error {
	users := make([]User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	data, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return fmt.Errorf("encode user file: %w", err)
	}
	return util.AtomicWriteFile(s.path, data, 0600)
}

func validateUsername(username string) error {
	if username == "" {
		return errors.New("username is required")
	}
	if len(username) > MaxUsernameLength {
		return fmt.Errorf("username exceeds %d characters", MaxUsernameLength)
	}
	for _, r := range username {
		if r == '/' || r == '\\' || r == ' ' {
			return errors.New("username may not contain spaces or slashes")
		}
	}
	return nil
}

// dummyHash is compared against when a username is unknown. Generated
// once from a throwaway password at init.
var dummyHash = func() []byte {
	h, err := bcrypt.GenerateFromPassword([]byte("aranea-timing-pad"), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return h
}()
