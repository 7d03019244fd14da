// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backup uploads and downloads the encrypted snapshot to a
// remote endpoint, keyed by a user id. The server never sees
// plaintext: the snapshot already holds only ciphertext and
// verifiers. Conflict policy is last-write-wins.
package backup
