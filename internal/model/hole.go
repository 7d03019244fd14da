// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// CONSTANTS
// =============================================================================

// HoleCount is the fixed number of holes. The collection never grows
// or shrinks; unprovisioned holes are placeholders.
const HoleCount = 12

// MaxNameRunes caps the user-chosen hole name length.
const MaxNameRunes = 10

// =============================================================================
// POSITION TYPE
// =============================================================================

// Position is the fixed display location of a hole on the map view.
// It carries no domain meaning.
type Position struct {
	Top  string `json:"top"`
	Left string `json:"left"`
}

// defaultPositions lays the twelve holes out on the map. Index matches
// the hole number minus one.
var defaultPositions = [HoleCount]Position{
	{Top: "15%", Left: "12%"},
	{Top: "10%", Left: "38%"},
	{Top: "18%", Left: "65%"},
	{Top: "12%", Left: "85%"},
	{Top: "38%", Left: "8%"},
	{Top: "42%", Left: "30%"},
	{Top: "35%", Left: "55%"},
	{Top: "40%", Left: "80%"},
	{Top: "65%", Left: "15%"},
	{Top: "70%", Left: "40%"},
	{Top: "62%", Left: "68%"},
	{Top: "68%", Left: "88%"},
}

// =============================================================================
// HOLE TYPE
// =============================================================================

// Hole is one of the twelve private journaling spaces.
//
// A hole with an empty PasswordHash is unprovisioned: no name, no
// messages, CreatedAt zero. Provisioning sets the verifier and the
// creation time; an explicit reset wipes everything back.
type Hole struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Messages  []*Message `json:"messages"`
	Position  Position   `json:"position"`
	CreatedAt int64      `json:"createdAt"` // epoch milliseconds, 0 = unprovisioned

	// PasswordHash holds the password verifier, never the password.
	// Empty means the hole has not been provisioned. Snapshots written
	// before hashing was introduced may hold the raw password here;
	// the store rewrites those on first successful unlock.
	PasswordHash string `json:"passwordHash"`
}

// NewHole creates an unprovisioned hole for the given 1-based slot.
func NewHole(n int) *Hole {
	pos := Position{}
	if n >= 1 && n <= HoleCount {
		pos = defaultPositions[n-1]
	}
	return &Hole{
		ID:       "hole-" + strconv.Itoa(n),
		Messages: []*Message{},
		Position: pos,
	}
}

// DefaultHoles returns the full unprovisioned collection.
func DefaultHoles() []*Hole {
	holes := make([]*Hole, HoleCount)
	for i := range holes {
		holes[i] = NewHole(i + 1)
	}
	return holes
}

// IsProvisioned reports whether a password has been set on the hole.
func (h *Hole) IsProvisioned() bool {
	return h.PasswordHash != ""
}

// AddMessage appends a message. Messages stay in insertion order, which
// is also chronological order.
func (h *Hole) AddMessage(msg *Message) {
	h.Messages = append(h.Messages, msg)
}

// FindMessage returns the message with the given ID, or nil.
func (h *Hole) FindMessage(id string) *Message {
	for _, m := range h.Messages {
		if m.ID == id {
			return m
		}
	}
	return nil
}

// SetName trims and stores the display name, capped at MaxNameRunes.
func (h *Hole) SetName(name string) {
	name = strings.TrimSpace(name)
	runes := []rune(name)
	if len(runes) > MaxNameRunes {
		name = string(runes[:MaxNameRunes])
	}
	h.Name = name
}

// DisplayName returns the user-chosen name or a fallback.
func (h *Hole) DisplayName() string {
	if h.Name != "" {
		return h.Name
	}
	return "未命名树洞"
}

// CreatedTime returns the provisioning time, zero if unprovisioned.
func (h *Hole) CreatedTime() time.Time {
	if h.CreatedAt == 0 {
		return time.Time{}
	}
	return time.UnixMilli(h.CreatedAt)
}

// Clone returns a deep copy of the hole.
func (h *Hole) Clone() *Hole {
	clone := *h
	clone.Messages = make([]*Message, len(h.Messages))
	for i, m := range h.Messages {
		mc := *m
		if m.Classification != nil {
			cc := *m.Classification
			mc.Classification = &cc
		}
		clone.Messages[i] = &mc
	}
	return &clone
}

// UserMessageCount returns the number of user-sent messages.
func (h *Hole) UserMessageCount() int {
	count := 0
	for _, m := range h.Messages {
		if m.Sender == SenderUser {
			count++
		}
	}
	return count
}
