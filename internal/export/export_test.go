// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jeranaias/treehole-tui/internal/model"
	"github.com/jeranaias/treehole-tui/internal/store"
	"github.com/jeranaias/treehole-tui/internal/vaultcrypt"
)

func exportTestHole(t *testing.T) *model.Hole {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st, err := store.NewStoreWithPath(filepath.Join(t.TempDir(), store.SnapshotFileName), logger)
	if err != nil {
		t.Fatalf("NewStoreWithPath: %v", err)
	}
	if err := st.Provision("hole-2", "1234"); err != nil {
		t.Fatalf("Provision: %v", err)
	}
	msg := model.NewMessage(model.SenderUser)
	ct, err := vaultcrypt.EncryptText("今天很开心", "1234")
	if err != nil {
		t.Fatalf("EncryptText: %v", err)
	}
	msg.EncryptedText = ct
	msg.Classification = &model.Classification{
		Emotion:     model.EmotionHappy,
		ContentType: model.ContentLife,
	}
	if err := st.AppendMessage("hole-2", msg); err != nil {
		t.Fatalf("AppendMessage: %v", err)
	}
	if err := st.SetName("hole-2", "小树"); err != nil {
		t.Fatalf("SetName: %v", err)
	}
	hole, err := st.GetHole("hole-2")
	if err != nil {
		t.Fatalf("GetHole: %v", err)
	}
	return hole
}

func TestMarkdown(t *testing.T) {
	hole := exportTestHole(t)

	out := Markdown(hole, "1234")
	if !strings.HasPrefix(out, "# 小树\n") {
		t.Errorf("markdown should open with the hole name, got %q", out[:20])
	}
	if !strings.Contains(out, "**我**") {
		t.Error("markdown should label user messages")
	}
	if !strings.Contains(out, "今天很开心") {
		t.Error("markdown should contain the decrypted text")
	}
	if !strings.Contains(out, "高兴") {
		t.Error("markdown should carry the classification badge")
	}
	if strings.Contains(out, "ENC:") {
		t.Error("markdown must not leak ciphertext")
	}
}

func TestMarkdownWrongPassword(t *testing.T) {
	hole := exportTestHole(t)

	out := Markdown(hole, "0000")
	if strings.Contains(out, "今天很开心") {
		t.Error("wrong password must not decrypt anything")
	}
}

func TestJSON(t *testing.T) {
	hole := exportTestHole(t)

	out, err := JSON(hole, "1234")
	if err != nil {
		t.Fatalf("JSON: %v", err)
	}
	s := string(out)
	if !strings.Contains(s, `"id": "hole-2"`) {
		t.Error("JSON should carry the hole ID")
	}
	if !strings.Contains(s, "今天很开心") {
		t.Error("JSON should contain the decrypted text")
	}
	if !strings.Contains(s, `"emotion": "happy"`) {
		t.Error("JSON should carry the classification")
	}
}
