// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package reveal animates agent text one rune per tick.
//
// A Scheduler owns at most one run at a time: Start supersedes any
// active run by committing its partial prefix first, and Cancel
// commits the partial with completed=false. Callbacks fire off the
// caller's goroutine; commit fires exactly once per run.
package reveal
