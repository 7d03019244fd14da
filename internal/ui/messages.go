// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui implements the root treehole TUI model.
package ui

import "github.com/jeranaias/treehole-tui/internal/config"

// =============================================================================
// SCREENS
// =============================================================================

// Screen identifies the active view.
type Screen int

const (
	ScreenHoles Screen = iota
	ScreenPin
	ScreenChat
	ScreenHistory
	ScreenStorage
	ScreenHelp
)

// =============================================================================
// MESSAGE TYPES
// =============================================================================

// runtimeCheckMsg reports whether the local model runtime answered.
type runtimeCheckMsg struct {
	running bool
}

// warmupTickMsg advances the loading indicator while the model warms up.
type warmupTickMsg struct{}

// warmupDoneMsg reports the warmup generation finished.
type warmupDoneMsg struct {
	err error
}

// backupDoneMsg reports the snapshot upload finished.
type backupDoneMsg struct {
	err error
}

// noticeClearMsg hides the transient notice line.
type noticeClearMsg struct{}

// ConfigReloadedMsg carries a freshly reloaded config into the UI.
// Sent by the config file watcher.
type ConfigReloadedMsg struct {
	Cfg *config.Config
}
