// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

// TruncateRunes truncates s to at most maxRunes characters, appending
// "..." when anything was cut. Counting runes rather than bytes keeps
// multi-byte UTF-8 sequences intact.
func TruncateRunes(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	if maxRunes <= 3 {
		return string(runes[:maxRunes])
	}
	return string(runes[:maxRunes-3]) + "..."
}

// RuneLen returns the number of runes in s.
func RuneLen(s string) int {
	return len([]rune(s))
}
