// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"context"
	"net/http"
)

// =============================================================================
// AUTH PASSTHROUGH
// =============================================================================

// Credentials is the signup/login request body. Email is only used for
// signup and may be empty.
type Credentials struct {
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password"`
}

// Signup registers a new account. A non-2xx response surfaces the
// backend's detail message via *Error.
func (c *Client) Signup(ctx context.Context, creds Credentials) error {
	return c.doJSON(ctx, http.MethodPost, "/auth/signup", creds, nil)
}

// Login authenticates an existing account.
func (c *Client) Login(ctx context.Context, creds Credentials) error {
	creds.Email = ""
	return c.doJSON(ctx, http.MethodPost, "/auth/login", creds, nil)
}
