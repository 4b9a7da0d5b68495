// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management
// for the Aranea client.
//
// Supports both TOML and JSON configuration formats, with sensible
// defaults, environment variable overrides, validation, and hot reload.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - BackendConfig: Backend service location and timeouts
//   - UIConfig: Presentation settings (typing cadence, plain mode)
//   - Watcher: Reloads the global config when the file changes
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (ARANEA_*)
//   - ~/.aranea/config.toml
//   - ~/.aranea/config.json
//   - Built-in defaults
//
// # Usage
//
// Load configuration:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Access settings:
//
//	base := cfg.Backend.URL
//	interval := cfg.UI.TypingIntervalMs
package config
