// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across the Aranea client.
//
// # Key Functions
//
//   - TruncateRunes: UTF-8 safe string truncation with ellipsis
//   - RuneLen: Character count of a UTF-8 string
//   - IntToString, Int64ToString: Numeric to string conversion
//   - AtomicWriteFile: Crash-safe file writing with fsync
//
// # Usage
//
//	// Truncate long strings safely for display
//	preview := util.TruncateRunes(longText, 50)
//
//	// Write files atomically to prevent data loss
//	err := util.AtomicWriteFile(path, data, 0600)
package util
