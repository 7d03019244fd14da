// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store owns the twelve-hole collection and its on-disk JSON
// snapshot. All mutation goes through Store methods; Persist writes
// the whole collection atomically so the snapshot is never partially
// updated.
package store
