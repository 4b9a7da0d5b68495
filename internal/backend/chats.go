// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"context"
	"net/http"
)

// =============================================================================
// CHAT THREAD TYPES
// =============================================================================

// Chat is one thread as the backend lists it for the sidebar.
type Chat struct {
	ChatID      string `json:"chat_id"`
	Title       string `json:"title"`
	CreatedAt   string `json:"created_at"`
	LastMessage string `json:"last_message"`
	UpdatedAt   string `json:"updated_at"`
}

// HistoryMessage is one persisted message from a thread's history.
type HistoryMessage struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

type chatsResponse struct {
	Success bool   `json:"success"`
	Chats   []Chat `json:"chats"`
}

type createChatResponse struct {
	Success bool `json:"success"`
	Chat    Chat `json:"chat"`
}

type successResponse struct {
	Success bool `json:"success"`
}

type messagesResponse struct {
	Success  bool             `json:"success"`
	Messages []HistoryMessage `json:"messages"`
}

// =============================================================================
// CHAT OPERATIONS
// =============================================================================

// ListChats returns the user's chat threads.
func (c *Client) ListChats(ctx context.Context, username string) ([]Chat, error) {
	var resp chatsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/chats/"+username, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Chats, nil
}

// CreateChat opens a new thread for the user.
func (c *Client) CreateChat(ctx context.Context, username, title string) (Chat, error) {
	body := map[string]string{"username": username, "title": title}
	var resp createChatResponse
	if err := c.doJSON(ctx, http.MethodPost, "/chats/create", body, &resp); err != nil {
		return Chat{}, err
	}
	return resp.Chat, nil
}

// RenameChat updates a thread title.
func (c *Client) RenameChat(ctx context.Context, chatID, title string) error {
	body := map[string]string{"chat_id": chatID, "title": title}
	return c.doJSON(ctx, http.MethodPut, "/chats/title", body, &successResponse{})
}

// DeleteChat removes a thread and its history.
func (c *Client) DeleteChat(ctx context.Context, chatID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/chats/"+chatID, nil, &successResponse{})
}

// Messages returns a thread's persisted history, oldest first.
func (c *Client) Messages(ctx context.Context, chatID string) ([]HistoryMessage, error) {
	var resp messagesResponse
	if err := c.doJSON(ctx, http.MethodGet, "/chats/"+chatID+"/messages", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Messages, nil
}
