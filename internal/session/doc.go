// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session tracks the in-memory state of an unlocked run of the
// app: which hole passwords have been entered, how long the user has
// been idle, and when to lock everything again. Passwords never leave
// this package for persistence; everything here is gone when the
// process exits.
package session
