// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the Aranea TUI.
//
// The palette is a terminal-green theme built from Lip Gloss adaptive
// colors, so it reads correctly on both light and dark backgrounds.
// Theme bundles the concrete lipgloss styles the chat view renders with.
package styles
