// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package listener runs the send pipeline: persist the user's message,
// wait out the pacing delay, classify and compose a reply in parallel,
// then persist the tagged result. One send runs at a time; the UI
// blocks further input until the pipeline finishes.
package listener
