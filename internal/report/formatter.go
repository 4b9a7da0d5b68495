// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package report recovers structured Shodan server reports from agent
// tool output and renders them as a fixed human-readable layout.
//
// Detection keys on the marker phrase the find_website_servers tool
// prints before its fenced payload. Anything else passes through
// untouched, so the formatter is safe to run on every display string.
package report

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/araneasec/aranea-tui/internal/util"
)

// =============================================================================
// REPORT TYPES
// =============================================================================

// ServerRecord is one server recovered from the tool payload.
type ServerRecord struct {
	IPAddress      string       `json:"ip_address"`
	Hostnames      []string     `json:"hostnames"`
	Organization   string       `json:"organization"`
	Location       *Location    `json:"location"`
	Technologies   []string     `json:"technologies"`
	Tags           []string     `json:"tags"`
	SSLCertificate *Certificate `json:"ssl_certificate"`
	Banner         string       `json:"banner"`
	LastSeen       string       `json:"last_seen"`
}

// Location is the server's reported city and country.
type Location struct {
	City    string `json:"city"`
	Country string `json:"country"`
}

// Certificate holds TLS certificate details when Shodan reported any.
type Certificate struct {
	IssuedTo    CertName `json:"issued_to"`
	IssuedBy    CertName `json:"issued_by"`
	SSLVersions []string `json:"ssl_versions"`
}

// CertName is one side of a certificate subject/issuer pair.
type CertName struct {
	CommonName   string `json:"common_name"`
	Organization string `json:"organization"`
}

// empty reports whether no certificate field carries data.
func (c *Certificate) empty() bool {
	return c == nil ||
		(c.IssuedTo == CertName{} && c.IssuedBy == CertName{} && len(c.SSLVersions) == 0)
}

// =============================================================================
// FORMATTER
// =============================================================================

const (
	// markerPhrase precedes the fenced tool payload in agent text.
	markerPhrase = "find_website_servers Results:"

	fence = "```"

	// maxBannerLen caps the banner excerpt shown per server.
	maxBannerLen = 200

	failureNote = "(report formatting failed; showing raw tool output)"
)

// Format rewrites a display string containing a find_website_servers
// payload into a numbered server report. Strings without the marker
// phrase and a following fence are returned unchanged, which makes the
// function idempotent: formatted output contains no fence and passes
// straight through. On any parse failure the original string is returned
// with an appended note; Format never fails.
func Format(s string) string {
	markerIdx := strings.Index(s, markerPhrase)
	if markerIdx < 0 {
		return s
	}

	rest := s[markerIdx+len(markerPhrase):]
	openIdx := strings.Index(rest, fence)
	if openIdx < 0 {
		return s
	}
	inner := rest[openIdx+len(fence):]
	closeIdx := strings.Index(inner, fence)
	if closeIdx < 0 {
		return s
	}
	tail := inner[closeIdx+len(fence):]
	inner = stripFenceLanguage(inner[:closeIdx])

	servers, err := parseServers(inner)
	if err != nil || len(servers) == 0 {
		return s + "\n\n" + failureNote
	}

	var b strings.Builder
	b.WriteString(strings.TrimRight(s[:markerIdx+len(markerPhrase)], " \t"))
	b.WriteString("\n\n")
	renderReport(&b, servers)
	if trimmed := strings.TrimSpace(tail); trimmed != "" {
		b.WriteString("\n")
		b.WriteString(trimmed)
	}
	return b.String()
}

// stripFenceLanguage drops a language identifier on the opening fence
// line ("```python") so only the literal remains.
func stripFenceLanguage(inner string) string {
	nl := strings.Index(inner, "\n")
	if nl < 0 {
		return inner
	}
	first := strings.TrimSpace(inner[:nl])
	if first != "" && !strings.ContainsAny(first, "{}[]'\":") {
		return inner[nl+1:]
	}
	return inner
}

// parseServers rewrites the fenced literal to JSON and decodes it.
func parseServers(literal string) (map[string]ServerRecord, error) {
	rewritten := RewritePythonLiteral(strings.TrimSpace(literal))
	var servers map[string]ServerRecord
	if err := json.Unmarshal([]byte(rewritten), &servers); err != nil {
		return nil, err
	}
	return servers, nil
}

// =============================================================================
// RENDERING
// =============================================================================

const divider = "------------------------------------------------------------"

// renderReport writes the fixed report layout: one numbered,
// divider-delimited block per server, then a total count.
func renderReport(b *strings.Builder, servers map[string]ServerRecord) {
	keys := make([]string, 0, len(servers))
	for k := range servers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for i, key := range keys {
		if i > 0 {
			b.WriteString(divider + "\n")
		}
		renderServer(b, i+1, key, servers[key])
	}
	b.WriteString(divider + "\n")
	b.WriteString("Total servers found: " + util.IntToString(len(keys)) + "\n")
}

// renderServer writes one server block. Fields absent from the record
// are omitted rather than rendered empty.
func renderServer(b *strings.Builder, n int, key string, rec ServerRecord) {
	header := rec.IPAddress
	if header == "" {
		header = key
	}
	b.WriteString("[" + util.IntToString(n) + "] " + header + "\n")

	if len(rec.Hostnames) > 0 {
		b.WriteString("Hostnames:\n")
		for _, h := range rec.Hostnames {
			b.WriteString("  - " + h + "\n")
		}
	}
	if rec.Organization != "" {
		b.WriteString("Organization: " + rec.Organization + "\n")
	}
	if rec.Location != nil {
		b.WriteString("Location: " + orUnknown(rec.Location.City) + ", " + orUnknown(rec.Location.Country) + "\n")
	}
	if len(rec.Technologies) > 0 {
		b.WriteString("Technologies: " + strings.Join(rec.Technologies, ", ") + "\n")
	}
	if len(rec.Tags) > 0 {
		b.WriteString("Tags: " + strings.Join(rec.Tags, ", ") + "\n")
	}
	if !rec.SSLCertificate.empty() {
		cert := rec.SSLCertificate
		b.WriteString("SSL Certificate:\n")
		if cert.IssuedTo.CommonName != "" {
			b.WriteString("  Issued To: " + cert.IssuedTo.CommonName + "\n")
		}
		if cert.IssuedBy.CommonName != "" {
			b.WriteString("  Issued By: " + cert.IssuedBy.CommonName + "\n")
		}
		if len(cert.SSLVersions) > 0 {
			b.WriteString("  SSL Versions: " + strings.Join(cert.SSLVersions, ", ") + "\n")
		}
	}
	if rec.Banner != "" {
		b.WriteString("Banner: " + truncateBanner(rec.Banner) + "\n")
	}
	if rec.LastSeen != "" {
		b.WriteString("Last Seen: " + rec.LastSeen + "\n")
	}
}

// orUnknown substitutes "Unknown" for an absent location field.
func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Unknown"
	}
	return s
}

// truncateBanner caps the banner at maxBannerLen runes with an ellipsis.
func truncateBanner(s string) string {
	runes := []rune(s)
	if len(runes) <= maxBannerLen {
		return s
	}
	return string(runes[:maxBannerLen]) + "..."
}
