// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for the
// Aranea client.
//
// Supports both TOML and JSON configuration formats, with sensible
// defaults, environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.aranea/config.toml
//   - ~/.aranea/config.json
//   - Built-in defaults
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/araneasec/aranea-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config is the complete client configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	Backend BackendConfig `toml:"backend" json:"backend"`
	Auth    AuthConfig    `toml:"auth" json:"auth"`
	History HistoryConfig `toml:"history" json:"history"`
	UI      UIConfig      `toml:"ui" json:"ui"`
}

// BackendConfig locates the Aranea backend service.
type BackendConfig struct {
	// URL is the HTTP base URL; the WebSocket endpoint is derived from
	// it by scheme substitution.
	URL string `toml:"url" json:"url"`
	// RequestTimeoutSecs bounds individual REST requests.
	RequestTimeoutSecs int `toml:"request_timeout_secs" json:"request_timeout_secs"`
}

// AuthConfig controls the local account fallback.
type AuthConfig struct {
	// OfflineFallback enables the local bcrypt user file when the
	// backend is unreachable.
	OfflineFallback bool `toml:"offline_fallback" json:"offline_fallback"`
	// UserFile is the local user store path (empty = ~/.aranea/users.json).
	UserFile string `toml:"user_file" json:"user_file"`
}

// HistoryConfig controls the local chat history cache.
type HistoryConfig struct {
	// Enabled turns the SQLite read cache on. The backend remains
	// authoritative; the cache only serves offline reads.
	Enabled bool `toml:"enabled" json:"enabled"`
	// Path is the database path (empty = ~/.aranea/history.db).
	Path string `toml:"path" json:"path"`
}

// UIConfig contains presentation settings.
type UIConfig struct {
	// TypingIntervalMs is the reveal cadence in milliseconds per rune.
	TypingIntervalMs int `toml:"typing_interval_ms" json:"typing_interval_ms"`
	// PlainMode selects the line-oriented REPL instead of the TUI.
	PlainMode bool `toml:"plain_mode" json:"plain_mode"`
	// RenderMarkdown enables glamour rendering of agent text.
	RenderMarkdown bool `toml:"render_markdown" json:"render_markdown"`
}

// Default returns the built-in default configuration.
func Default() *Config {
	return &Config{
		Version: "1.0",
		Backend: BackendConfig{
			URL:                "http://localhost:8000",
			RequestTimeoutSecs: 30,
		},
		Auth: AuthConfig{
			OfflineFallback: true,
		},
		History: HistoryConfig{
			Enabled: true,
		},
		UI: UIConfig{
			TypingIntervalMs: 5,
			RenderMarkdown:   true,
		},
	}
}

// =============================================================================
// PATHS
// =============================================================================

// Dir returns the client's configuration directory (~/.aranea).
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".aranea"), nil
}

// PathTOML returns the TOML config path.
func PathTOML() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// PathJSON returns the JSON config path.
func PathJSON() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads configuration, trying TOML first, then JSON, then built-in
// defaults. Environment overrides are applied after the file, and the
// result is always validated.
func Load() (*Config, error) {
	cfg := Default()

	if path, err := PathTOML(); err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			if err := LoadTOML(cfg, path); err != nil {
				return nil, fmt.Errorf("load %s: %w", path, err)
			}
			return finishLoad(cfg)
		}
	}
	if path, err := PathJSON(); err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			if err := LoadJSON(cfg, path); err != nil {
				return nil, fmt.Errorf("load %s: %w", path, err)
			}
			return finishLoad(cfg)
		}
	}
	return finishLoad(cfg)
}

// LoadTOML decodes a TOML config file over cfg.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("decode TOML: %w", err)
	}
	return nil
}

// LoadJSON decodes a JSON config file over cfg.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read JSON config: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("decode JSON: %w", err)
	}
	return nil
}

func finishLoad(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ApplyEnvOverrides applies ARANEA_* environment variables over the
// loaded values. Environment always wins over the file.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("ARANEA_BACKEND_URL"); v != "" {
		c.Backend.URL = v
	}
	if v := os.Getenv("ARANEA_PLAIN"); v != "" {
		c.UI.PlainMode = v == "1" || v == "true"
	}
	if v := os.Getenv("ARANEA_TYPING_INTERVAL_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.UI.TypingIntervalMs = n
		}
	}
	if v := os.Getenv("ARANEA_HISTORY"); v != "" {
		c.History.Enabled = v == "1" || v == "true"
	}
	if v := os.Getenv("ARANEA_USER_FILE"); v != "" {
		c.Auth.UserFile = v
	}
}

// SetDefaults fills zero values left by a sparse config file.
func (c *Config) SetDefaults() {
	def := Default()
	if c.Backend.URL == "" {
		c.Backend.URL = def.Backend.URL
	}
	if c.Backend.RequestTimeoutSecs <= 0 {
		c.Backend.RequestTimeoutSecs = def.Backend.RequestTimeoutSecs
	}
	if c.UI.TypingIntervalMs <= 0 {
		c.UI.TypingIntervalMs = def.UI.TypingIntervalMs
	}
	if c.Auth.UserFile == "" {
		if dir, err := Dir(); err == nil {
			c.Auth.UserFile = filepath.Join(dir, "users.json")
		}
	}
	if c.History.Path == "" {
		if dir, err := Dir(); err == nil {
			c.History.Path = filepath.Join(dir, "history.db")
		}
	}
}

// Validate rejects configurations the client cannot run with.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Backend.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("backend.url %q is not a valid http(s) URL", c.Backend.URL)
	}
	if c.UI.TypingIntervalMs < 1 || c.UI.TypingIntervalMs > 1000 {
		return fmt.Errorf("ui.typing_interval_ms %d out of range [1,1000]", c.UI.TypingIntervalMs)
	}
	return nil
}

// =============================================================================
// SAVING
// =============================================================================

// Save writes cfg to the TOML path atomically.
func Save(cfg *Config) error {
	path, err := PathTOML()
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("encode TOML: %w", err)
	}
	return util.AtomicWriteFile(path, buf.Bytes(), 0600)
}

// =============================================================================
// GLOBAL ACCESS
// =============================================================================

var (
	globalMu  sync.RWMutex
	globalCfg *Config
)

// Global returns the process-wide configuration, loading it on first use.
func Global() *Config {
	globalMu.RLock()
	cfg := globalCfg
	globalMu.RUnlock()
	if cfg != nil {
		return cfg
	}

	loaded, err := Load()
	if err != nil {
		loaded = Default()
		loaded.SetDefaults()
	}
	globalMu.Lock()
	if globalCfg == nil {
		globalCfg = loaded
	}
	cfg = globalCfg
	globalMu.Unlock()
	return cfg
}

// SetGlobal replaces the process-wide configuration.
func SetGlobal(cfg *Config) {
	globalMu.Lock()
	globalCfg = cfg
	globalMu.Unlock()
}

// ResetGlobalForTesting clears the process-wide configuration so tests
// start from a known state.
func ResetGlobalForTesting() {
	globalMu.Lock()
	globalCfg = nil
	globalMu.Unlock()
}
