// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package report

import "regexp"

// =============================================================================
// PYTHON LITERAL REWRITING
// =============================================================================

// The backend's tool output is a Python dict printed into a markdown
// fence, not JSON. The rewrite below is a staged regex adapter, not a
// parser: enough to turn well-behaved dict dumps into strict JSON.
//
// Known gap: a single quote inside a string value is indistinguishable
// from a delimiter quote, so such values break the subsequent parse and
// fall back to raw text.

var (
	pyNone  = regexp.MustCompile(`\bNone\b`)
	pyTrue  = regexp.MustCompile(`\bTrue\b`)
	pyFalse = regexp.MustCompile(`\bFalse\b`)

	// Trailing comma immediately before a closing brace or bracket.
	trailingComma = regexp.MustCompile(`,(\s*[}\]])`)

	singleQuote = regexp.MustCompile(`'`)
)

// RewritePythonLiteral converts a Python dict literal into JSON syntax:
// bare None/True/False become null/true/false (whole words only), single
// quotes become double quotes, and trailing commas before } or ] are
// dropped.
func RewritePythonLiteral(s string) string {
	s = pyNone.ReplaceAllString(s, "null")
	s = pyTrue.ReplaceAllString(s, "true")
	s = pyFalse.ReplaceAllString(s, "false")
	s = singleQuote.ReplaceAllString(s, `"`)
	s = trailingComma.ReplaceAllString(s, "$1")
	return s
}
