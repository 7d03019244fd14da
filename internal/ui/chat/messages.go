// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the conversation view for an unlocked hole.
package chat

// =============================================================================
// MESSAGE TYPES
// =============================================================================

// BackMsg asks the root model to return to the hole grid. Leaving a
// hole ends its session, so the root needs to know which one to lock
// back up.
type BackMsg struct {
	HoleID string
}

// errClearMsg hides a transient error line.
type errClearMsg struct{}
