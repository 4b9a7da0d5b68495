// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the conversation
// transcript.
//
// # Key Types
//
//   - Entry: one finalized transcript line (sender, text, timestamp)
//   - Sender: who authored an entry (user or aranea)
//   - Status: the live exchange state (idle, awaiting-response, revealing)
//
// # Usage
//
// Append a user line and inspect it:
//
//	e := model.NewUserEntry("scan example.com")
//	fmt.Printf("%s %s\n", e.Sender.PromptLabel(), e.Text)
//
// Entries are immutable once appended; in-flight typewriter text is
// session state, not an Entry. The Revealed flag only marks text that
// was animated once, so reloaded transcripts never re-animate.
package model
