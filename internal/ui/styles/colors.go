// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the Aranea TUI.
// All colors use Lip Gloss AdaptiveColor for automatic light/dark detection.
package styles

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// PRIMARY ACCENT COLORS
// =============================================================================

// Green - Primary accent, agent text, the terminal look of the client
var Green = lipgloss.AdaptiveColor{Light: "#15803D", Dark: "#4ADE80"}

// GreenDeep - Darker green for dividers and secondary chrome
var GreenDeep = lipgloss.AdaptiveColor{Light: "#166534", Dark: "#166534"}

// Cyan - User prompt labels and links
var Cyan = lipgloss.AdaptiveColor{Light: "#0891B2", Dark: "#22D3EE"}

// =============================================================================
// SEMANTIC COLORS
// =============================================================================

// Rose - Errors and dead-connection notices
var Rose = lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"}

// Amber - Warnings and the awaiting-response indicator
var Amber = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}

// =============================================================================
// SURFACE COLORS
// =============================================================================

// Surface - Main background
var Surface = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#0A0F0A"}

// SurfaceDim - Status bar and sidebar background
var SurfaceDim = lipgloss.AdaptiveColor{Light: "#F5F5F5", Dark: "#111711"}

// TextPrimary - Main body text
var TextPrimary = lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#D1FAE5"}

// TextMuted - Timestamps, previews, help hints
var TextMuted = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#6B7280"}
