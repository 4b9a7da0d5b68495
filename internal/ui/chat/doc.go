// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// The view is a thin Bubble Tea shell over the session reducer: key
// input becomes reducer submissions, inbound stream frames arrive as
// StateChangedMsg re-renders, and the sidebar drives the backend's chat
// CRUD endpoints with a local SQLite fallback.
//
// # Layout
//
//	+------------------------------------------------------+
//	| header: ARANEA / user / active chat title            |
//	+----------+-------------------------------------------+
//	| chat     | transcript viewport                       |
//	| sidebar  |   user@web:~$ scan example.com            |
//	|          |   aranea@web:~$ scan started              |
//	+----------+-------------------------------------------+
//	| user@web:~$ <input>                                  |
//	+------------------------------------------------------+
//	| status: idle | notices          Tab panes  ? help    |
//	+------------------------------------------------------+
package chat
