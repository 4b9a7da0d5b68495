// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth provides the local account fallback and terminal
// credential prompts for the Aranea client.
//
// The backend's /auth endpoints are authoritative. This package keeps a
// bcrypt-hashed user file under ~/.aranea so a previously registered
// user can still open their cached history when the backend is down.
//
// # Key Types
//
//   - Store: File-backed user store with bcrypt password hashing
//   - User: One local account record
//
// # Usage
//
//	store, err := auth.OpenStore(cfg.Auth.UserFile)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := store.Authenticate(username, password); err != nil {
//	    // reject login
//	}
package auth
