// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management
// for treehole.
//
// Configuration is stored as TOML under ~/.treehole/config.toml with
// built-in defaults, TREEHOLE_* environment variable overrides, and
// validation. A file watcher supports live reload of the configuration
// while the application is running.
package config
