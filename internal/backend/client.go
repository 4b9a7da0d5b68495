// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend is the REST client for the Aranea backend service.
//
// The backend owns all persistence: accounts, chat threads, message
// history, and the generated engagement report. This client is thin
// passthrough glue; failures surface as user-visible messages and the
// triggering operation is simply not applied locally.
package backend

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Configuration constants for the backend API.
const (
	// DefaultTimeout is the default timeout for API requests.
	DefaultTimeout = 30 * time.Second

	// MaxResponseSize caps response bodies read into memory.
	MaxResponseSize = 10 * 1024 * 1024

	// requestsPerSecond throttles outbound REST calls so sidebar
	// refreshes cannot hammer the backend.
	requestsPerSecond = 5
	requestBurst      = 10
)

// sharedHTTPClient pools connections for all backend requests.
var sharedHTTPClient = &http.Client{
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	},
	Timeout: DefaultTimeout,
}

// ErrNotConfigured indicates no backend URL is set.
var ErrNotConfigured = errors.New("backend URL not configured")

// Error represents a failed backend request. Detail carries the
// backend's {detail} message when one was returned.
type Error struct {
	Status int
	Detail string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("backend error (HTTP %d): %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("backend error (HTTP %d)", e.Status)
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the backend REST API.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    sharedHTTPClient,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), requestBurst),
	}
}

// WithHTTPClient overrides the HTTP client (used by tests).
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	c.http = h
	return c
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// =============================================================================
// REQUEST PLUMBING
// =============================================================================

// doJSON performs one rate-limited request and decodes the JSON response
// into out (when out is non-nil). Non-2xx responses become *Error with
// the backend's detail message when present.
func (c *Client) doJSON(ctx context.Context, method, path string, body any, out any) error {
	if c.baseURL == "" {
		return ErrNotConfigured
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp.StatusCode, data)
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// decodeError extracts the backend's {detail} message when present.
func decodeError(status int, body []byte) error {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Detail != "" {
		return &Error{Status: status, Detail: payload.Detail}
	}
	return &Error{Status: status, Detail: strings.TrimSpace(string(body))}
}

// =============================================================================
// REPORT DOWNLOAD
// =============================================================================

// DownloadReport fetches the generated engagement report for a chat and
// returns the suggested filename from Content-Disposition (or a default)
// with the raw document bytes.
func (c *Client) DownloadReport(ctx context.Context, chatID string) (string, []byte, error) {
	if c.baseURL == "" {
		return "", nil, ErrNotConfigured
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return "", nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/chats/"+chatID+"/report", nil)
	if err != nil {
		return "", nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return "", nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", nil, decodeError(resp.StatusCode, data)
	}

	return reportFilename(resp.Header.Get("Content-Disposition"), chatID), data, nil
}

// reportFilename parses the Content-Disposition filename hint.
func reportFilename(disposition, chatID string) string {
	if disposition != "" {
		if _, params, err := mime.ParseMediaType(disposition); err == nil {
			if name := params["filename"]; name != "" {
				return name
			}
		}
	}
	return "pentest_report_" + chatID + ".pdf"
}
