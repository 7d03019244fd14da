// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"testing"
)

func TestNewMessageID(t *testing.T) {
	msg := NewMessageAt(SenderUser, 1700000000123)
	if msg.ID != "user-1700000000123" {
		t.Errorf("ID = %q, want user-1700000000123", msg.ID)
	}
	if msg.Timestamp != 1700000000123 {
		t.Errorf("Timestamp = %d, want 1700000000123", msg.Timestamp)
	}

	ai := NewMessageAt(SenderAI, 42)
	if ai.ID != "ai-42" {
		t.Errorf("ID = %q, want ai-42", ai.ID)
	}
}

func TestSetClassificationOnce(t *testing.T) {
	msg := NewMessageAt(SenderUser, 1)

	first := Classification{Emotion: EmotionSad, ContentType: ContentWork}
	if !msg.SetClassification(first) {
		t.Fatal("first SetClassification returned false")
	}

	second := Classification{Emotion: EmotionHappy, ContentType: ContentLife}
	if msg.SetClassification(second) {
		t.Error("second SetClassification should be rejected")
	}

	if msg.Classification.Emotion != EmotionSad {
		t.Errorf("Emotion = %v, want sad", msg.Classification.Emotion)
	}
	if msg.Classification.ContentType != ContentWork {
		t.Errorf("ContentType = %v, want work", msg.Classification.ContentType)
	}
}

func TestHasLegacyContent(t *testing.T) {
	msg := NewMessageAt(SenderUser, 1)
	if msg.HasLegacyContent() {
		t.Error("empty message should not report legacy content")
	}

	msg.Text = "plaintext"
	if !msg.HasLegacyContent() {
		t.Error("message with Text should report legacy content")
	}

	msg2 := NewMessageAt(SenderUser, 2)
	msg2.ImageURL = "data:image/png;base64,xyz"
	if !msg2.HasLegacyContent() {
		t.Error("message with ImageURL should report legacy content")
	}
}

func TestDefaultHoles(t *testing.T) {
	holes := DefaultHoles()
	if len(holes) != HoleCount {
		t.Fatalf("len(holes) = %d, want %d", len(holes), HoleCount)
	}

	seen := make(map[string]bool)
	for _, h := range holes {
		if h.IsProvisioned() {
			t.Errorf("hole %s should start unprovisioned", h.ID)
		}
		if len(h.Messages) != 0 {
			t.Errorf("hole %s should start with no messages", h.ID)
		}
		if h.CreatedAt != 0 {
			t.Errorf("hole %s should start with CreatedAt 0", h.ID)
		}
		if seen[h.ID] {
			t.Errorf("duplicate hole ID %s", h.ID)
		}
		seen[h.ID] = true
		if h.Position.Top == "" || h.Position.Left == "" {
			t.Errorf("hole %s missing map position", h.ID)
		}
	}

	if holes[0].ID != "hole-1" || holes[11].ID != "hole-12" {
		t.Errorf("hole IDs = %s..%s, want hole-1..hole-12", holes[0].ID, holes[11].ID)
	}
}

func TestSetNameCap(t *testing.T) {
	h := NewHole(1)

	h.SetName("  小树洞  ")
	if h.Name != "小树洞" {
		t.Errorf("Name = %q, want trimmed 小树洞", h.Name)
	}

	h.SetName(strings.Repeat("洞", 15))
	if got := len([]rune(h.Name)); got != MaxNameRunes {
		t.Errorf("rune length = %d, want %d", got, MaxNameRunes)
	}
}

func TestHoleClone(t *testing.T) {
	h := NewHole(1)
	msg := NewMessageAt(SenderUser, 100)
	msg.SetClassification(Classification{Emotion: EmotionNeutral, ContentType: ContentOther})
	h.AddMessage(msg)

	clone := h.Clone()
	clone.Messages[0].EncryptedText = "changed"
	clone.Messages[0].Classification.Emotion = EmotionHappy

	if h.Messages[0].EncryptedText == "changed" {
		t.Error("clone shares message with original")
	}
	if h.Messages[0].Classification.Emotion != EmotionNeutral {
		t.Error("clone shares classification with original")
	}
}

func TestClassificationDisplay(t *testing.T) {
	tests := []struct {
		c    Classification
		want string
	}{
		{Classification{EmotionSad, ContentWork}, "悲伤 · 工作"},
		{Classification{EmotionNeutral, ContentImage}, "中性 · 图片"},
		{Classification{EmotionHappy, ContentLife}, "高兴 · 生活"},
	}
	for _, tt := range tests {
		if got := tt.c.DisplayName(); got != tt.want {
			t.Errorf("DisplayName() = %q, want %q", got, tt.want)
		}
	}
}

func TestEnumValidity(t *testing.T) {
	for _, e := range Emotions() {
		if !e.Valid() {
			t.Errorf("emotion %v should be valid", e)
		}
	}
	for _, c := range ContentTypes() {
		if !c.Valid() {
			t.Errorf("content type %v should be valid", c)
		}
	}
	if Emotion("angry").Valid() {
		t.Error("unknown emotion should be invalid")
	}
	if ContentType("sports").Valid() {
		t.Error("unknown content type should be invalid")
	}
}
