// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history caches chats and transcripts in a local SQLite
// database so the sidebar and past conversations stay readable when
// the backend is unreachable.
//
// Writes go through to the backend first; the cache is updated after
// each successful backend call and replaced wholesale when a fresh
// transcript is fetched.
package history
