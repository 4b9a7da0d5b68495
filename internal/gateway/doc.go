// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gateway maintains the WebSocket stream to the Aranea
// backend.
//
// One Session holds one connection at a time, keyed to a (username,
// chatID) pair at /ws/{username}/{chatId}; Open on a live session
// closes the previous connection first. Inbound frames are delivered
// raw to the registered FrameHandler in arrival order; decoding is the
// caller's concern. SendQuery is the only outbound path.
package gateway
