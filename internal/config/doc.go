// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for
// chronoschism.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// # Key Types
//
//   - Config: main configuration structure
//   - PatternConfig: default timestamp pattern and regex syntax
//   - UIConfig, WatchConfig: viewer behaviour and live reload
//   - HistoryConfig, LogConfig: persistence and logging
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (CHRONOSCHISM_*, NO_COLOR)
//   - $CHRONOSCHISM_HOME/config.toml (default ~/.chronoschism)
//   - $CHRONOSCHISM_HOME/config.json
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Printf("config: %v (using defaults)", err)
//	}
//	compiler, err := normalize.CompilerFor(cfg.Pattern.Syntax, cfg.MatchTimeout())
package config
