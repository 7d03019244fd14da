// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strconv"
	"time"
)

// =============================================================================
// SENDER TYPE
// =============================================================================

// Sender represents who wrote a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

// String returns the string representation of the sender.
func (s Sender) String() string {
	return string(s)
}

// DisplayName returns a human-readable name for the sender.
func (s Sender) DisplayName() string {
	switch s {
	case SenderUser:
		return "你"
	case SenderAI:
		return "树洞"
	default:
		return string(s)
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single message inside a hole.
//
// Text and image content is stored encrypted. The plaintext fields exist
// only so snapshots written before encryption was introduced still load;
// the store rewrites them to the encrypted form on first unlock.
type Message struct {
	// Identity
	ID        string `json:"id"`
	Sender    Sender `json:"sender"`
	Timestamp int64  `json:"timestamp"` // epoch milliseconds

	// Content at rest
	EncryptedText  string `json:"encryptedText,omitempty"`
	EncryptedImage string `json:"encryptedImage,omitempty"`

	// Legacy plaintext content, accepted on read only
	Text     string `json:"text,omitempty"`
	ImageURL string `json:"imageUrl,omitempty"`

	// Set once, asynchronously, on user messages only
	Classification *Classification `json:"classification,omitempty"`
}

// NewMessage creates a new message stamped with the current time.
// The ID is "<sender>-<epoch millis>", matching the stored format.
func NewMessage(sender Sender) *Message {
	now := time.Now().UnixMilli()
	return &Message{
		ID:        string(sender) + "-" + strconv.FormatInt(now, 10),
		Sender:    sender,
		Timestamp: now,
	}
}

// NewMessageAt creates a message with an explicit timestamp. Used by
// tests and by the snapshot migration path.
func NewMessageAt(sender Sender, millis int64) *Message {
	return &Message{
		ID:        string(sender) + "-" + strconv.FormatInt(millis, 10),
		Sender:    sender,
		Timestamp: millis,
	}
}

// HasLegacyContent reports whether the message still carries plaintext
// fields that predate encryption at rest.
func (m *Message) HasLegacyContent() bool {
	return m.Text != "" || m.ImageURL != ""
}

// HasImage reports whether the message carries image content in either
// representation.
func (m *Message) HasImage() bool {
	return m.EncryptedImage != "" || m.ImageURL != ""
}

// Time returns the message timestamp as a time.Time.
func (m *Message) Time() time.Time {
	return time.UnixMilli(m.Timestamp)
}

// SetClassification attaches a classification tag. Only the first call
// has any effect; a message is tagged exactly once.
func (m *Message) SetClassification(c Classification) bool {
	if m.Classification != nil {
		return false
	}
	cc := c
	m.Classification = &cc
	return true
}

