// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli parses command-line arguments for the aranea client and
// hosts the line-oriented REPL fallback.
//
// # Commands
//
//   - (none)  start the TUI
//   - plain   line-oriented REPL (also --plain or ARANEA_PLAIN)
//   - signup  create an account
//   - version / help
//
// # Key Types
//
//   - Args: parsed flags and positional arguments
//   - Repl: one plain-mode session over the exchange reducer
//
// The REPL reuses the exact pipeline the TUI runs on (gateway stream,
// reveal scheduler, exchange reducer); only presentation differs.
package cli
