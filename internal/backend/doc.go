// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend is the REST client for the Aranea service.
//
// It covers signup/login, chat thread CRUD, history retrieval, and the
// engagement report download. Requests share one http.Client and pass
// through a rate limiter; non-2xx responses surface the server's
// {detail} message as *Error so callers can show it verbatim.
//
// # Endpoints
//
//	POST   /auth/signup
//	POST   /auth/login
//	GET    /chats/{username}
//	POST   /chats/create
//	PUT    /chats/title
//	DELETE /chats/{chatId}
//	GET    /chats/{chatId}/messages
//	GET    /chats/{chatId}/report
package backend
