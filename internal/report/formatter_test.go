// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package report

import (
	"strings"
	"testing"
)

const sampleReport = "Here is what the scan found.\n\n" +
	"find_website_servers Results:\n" +
	"```python\n" +
	`{
  '93.184.216.34': {
    'ip_address': '93.184.216.34',
    'hostnames': ['example.com', 'www.example.com'],
    'organization': 'EdgeCast Networks',
    'location': {'city': 'Los Angeles', 'country': 'United States'},
    'technologies': ['nginx', 'HTTP/2'],
    'tags': ['cdn'],
    'ssl_certificate': {
      'issued_to': {'common_name': 'example.com', 'organization': 'Internet Corp'},
      'issued_by': {'common_name': 'DigiCert TLS RSA SHA256 2020 CA1', 'organization': 'DigiCert Inc'},
      'ssl_versions': ['TLSv1.2', 'TLSv1.3'],
    },
    'banner': 'HTTP/1.1 200 OK Server: ECS',
    'last_seen': '2025-01-14',
  },
}` + "\n```\n"

func TestFormat_PassThroughWithoutMarker(t *testing.T) {
	inputs := []string{
		"",
		"plain agent text",
		"a fence without the marker\n```python\n{'a': 1}\n```",
		"find_website_servers Results: but no fence follows",
	}
	for _, in := range inputs {
		if got := Format(in); got != in {
			t.Errorf("Format(%q) changed pass-through input to %q", in, got)
		}
	}
}

func TestFormat_FullReport(t *testing.T) {
	got := Format(sampleReport)

	wantLines := []string{
		"[1] 93.184.216.34",
		"Hostnames:",
		"  - example.com",
		"  - www.example.com",
		"Organization: EdgeCast Networks",
		"Location: Los Angeles, United States",
		"Technologies: nginx, HTTP/2",
		"Tags: cdn",
		"SSL Certificate:",
		"  Issued To: example.com",
		"  Issued By: DigiCert TLS RSA SHA256 2020 CA1",
		"  SSL Versions: TLSv1.2, TLSv1.3",
		"Banner: HTTP/1.1 200 OK Server: ECS",
		"Last Seen: 2025-01-14",
		"Total servers found: 1",
	}
	for _, line := range wantLines {
		if !strings.Contains(got, line) {
			t.Errorf("formatted report missing %q\n%s", line, got)
		}
	}
	if strings.Contains(got, "```") {
		t.Error("formatted report still contains a fence")
	}
	if !strings.Contains(got, "Here is what the scan found.") {
		t.Error("leading agent text lost")
	}
}

func TestFormat_NullAndMissingFields(t *testing.T) {
	in := "find_website_servers Results:\n```\n" +
		`{'10.0.0.5': {'ip_address': '10.0.0.5', 'hostnames': ['internal.lan'], 'organization': None, 'location': {'city': None, 'country': 'Germany'}, 'ssl_certificate': None}}` +
		"\n```"
	got := Format(in)

	if strings.Contains(got, "Organization:") {
		t.Error("null organization should omit the line")
	}
	if !strings.Contains(got, "Location: Unknown, Germany") {
		t.Errorf("null city should render Unknown:\n%s", got)
	}
	if strings.Contains(got, "SSL Certificate:") {
		t.Error("null certificate should omit the block")
	}
	if !strings.Contains(got, "Total servers found: 1") {
		t.Errorf("missing total:\n%s", got)
	}
}

func TestFormat_MultipleServersSortedAndNumbered(t *testing.T) {
	in := "find_website_servers Results:\n```\n" +
		`{'203.0.113.9': {'ip_address': '203.0.113.9'}, '198.51.100.2': {'ip_address': '198.51.100.2'}}` +
		"\n```"
	got := Format(in)

	i1 := strings.Index(got, "[1] 198.51.100.2")
	i2 := strings.Index(got, "[2] 203.0.113.9")
	if i1 < 0 || i2 < 0 || i2 < i1 {
		t.Errorf("servers not numbered in sorted key order:\n%s", got)
	}
	if !strings.Contains(got, "Total servers found: 2") {
		t.Errorf("missing total:\n%s", got)
	}
}

func TestFormat_BannerTruncated(t *testing.T) {
	longBanner := strings.Repeat("A", 300)
	in := "find_website_servers Results:\n```\n" +
		`{'x': {'ip_address': '1.2.3.4', 'banner': '` + longBanner + `'}}` +
		"\n```"
	got := Format(in)

	want := "Banner: " + strings.Repeat("A", 200) + "..."
	if !strings.Contains(got, want) {
		t.Errorf("banner not truncated to 200 runes:\n%s", got)
	}
	if strings.Contains(got, strings.Repeat("A", 201)) {
		t.Error("banner exceeds 200 runes")
	}
}

func TestFormat_ParseFailureAppendsNote(t *testing.T) {
	in := "find_website_servers Results:\n```\nthis is not a dict at all\n```"
	got := Format(in)

	if !strings.HasPrefix(got, in) {
		t.Error("original text not preserved on parse failure")
	}
	if !strings.Contains(got, failureNote) {
		t.Errorf("failure note missing:\n%s", got)
	}
}

func TestFormat_Idempotent(t *testing.T) {
	once := Format(sampleReport)
	twice := Format(once)
	if once != twice {
		t.Error("formatting a formatted report changed it")
	}
}

func TestFormat_KeyUsedWhenIPMissing(t *testing.T) {
	in := "find_website_servers Results:\n```\n" +
		`{'93.184.216.34': {'hostnames': ['example.com']}}` +
		"\n```"
	got := Format(in)
	if !strings.Contains(got, "[1] 93.184.216.34") {
		t.Errorf("map key not used as header fallback:\n%s", got)
	}
}

func TestFormat_TrailingTextPreserved(t *testing.T) {
	in := sampleReport + "\nLet me know if you want a deeper scan."
	got := Format(in)
	if !strings.Contains(got, "Let me know if you want a deeper scan.") {
		t.Errorf("text after the fence lost:\n%s", got)
	}
}
