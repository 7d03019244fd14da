// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package index keeps a session-local search index over decrypted
// messages. The index lives in an in-memory SQLite database: it is
// rebuilt from plaintext after a hole unlocks, queried by the history
// view, and discarded when the hole locks or the program exits.
// Nothing decrypted ever reaches disk.
package index
