// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for holes and messages.
//
// This package defines the core domain types used throughout the application
// for representing tree holes, their messages, and message classifications.
//
// # Key Types
//
//   - Hole: One of the twelve private journaling spaces
//   - Message: Single message with sender, encrypted content, and timestamp
//   - Classification: Coarse {emotion, content type} tag on a user message
//   - Sender: Message sender enumeration (user, ai)
//
// # Usage
//
// Create a message and attach it to a hole:
//
//	msg := model.NewMessage(model.SenderUser)
//	msg.EncryptedText = ciphertext
//	hole.AddMessage(msg)
package model
