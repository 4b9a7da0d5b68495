// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package report formats embedded tool-result records for the
// transcript.
//
// Scanner results arrive inside function_result payloads as a fenced
// Python dict literal after a "find_website_servers Results:" marker.
// Format rewrites the literal into JSON (None/True/False, quote style,
// trailing commas), decodes it, and renders a numbered server report
// ending with a total count. Text without the marker and fence passes
// through untouched, and a literal that still fails to parse is kept
// raw with a parse note appended. Format is idempotent.
package report
