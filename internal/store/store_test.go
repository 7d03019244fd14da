// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/jeranaias/treehole-tui/internal/model"
	"github.com/jeranaias/treehole-tui/internal/vaultcrypt"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "holes.json")
	s, err := NewStoreWithPath(path, testLogger())
	if err != nil {
		t.Fatalf("NewStoreWithPath failed: %v", err)
	}
	return s
}

// =============================================================================
// LOAD TESTS
// =============================================================================

func TestFreshStoreHasTwelveEmptyHoles(t *testing.T) {
	s := newTestStore(t)

	holes := s.Holes()
	if len(holes) != model.HoleCount {
		t.Fatalf("Expected %d holes, got %d", model.HoleCount, len(holes))
	}
	for _, h := range holes {
		if h.IsProvisioned() {
			t.Errorf("Fresh hole %s should be unprovisioned", h.ID)
		}
		if len(h.Messages) != 0 {
			t.Errorf("Fresh hole %s should have no messages", h.ID)
		}
	}
}

func TestLoadToleratesCorruptSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "holes.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatalf("Setup write failed: %v", err)
	}

	s, err := NewStoreWithPath(path, testLogger())
	if err != nil {
		t.Fatalf("NewStoreWithPath failed: %v", err)
	}
	if len(s.Holes()) != model.HoleCount {
		t.Errorf("Corrupt snapshot should yield %d fresh holes", model.HoleCount)
	}
}

func TestPersistAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "holes.json")
	s, err := NewStoreWithPath(path, testLogger())
	if err != nil {
		t.Fatalf("NewStoreWithPath failed: %v", err)
	}

	if err := s.Provision("hole-3", "1234"); err != nil {
		t.Fatalf("Provision failed: %v", err)
	}
	if err := s.SetName("hole-3", "心事"); err != nil {
		t.Fatalf("SetName failed: %v", err)
	}
	msg := model.NewMessageAt(model.SenderUser, 1700000000000)
	msg.EncryptedText = "ENC:placeholder"
	if err := s.AppendMessage("hole-3", msg); err != nil {
		t.Fatalf("AppendMessage failed: %v", err)
	}
	if err := s.Persist(); err != nil {
		t.Fatalf("Persist failed: %v", err)
	}

	s2, err := NewStoreWithPath(path, testLogger())
	if err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	hole, err := s2.GetHole("hole-3")
	if err != nil {
		t.Fatalf("GetHole failed: %v", err)
	}
	if !hole.IsProvisioned() {
		t.Error("Provisioned state lost on reload")
	}
	if hole.Name != "心事" {
		t.Errorf("Name = %q after reload, want %q", hole.Name, "心事")
	}
	if len(hole.Messages) != 1 || hole.Messages[0].EncryptedText != "ENC:placeholder" {
		t.Error("Messages lost on reload")
	}
}

func TestSnapshotFilePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "private", "holes.json")
	s, err := NewStoreWithPath(path, testLogger())
	if err != nil {
		t.Fatalf("NewStoreWithPath failed: %v", err)
	}
	if err := s.Persist(); err != nil {
		t.Fatalf("Persist failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Snapshot missing: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("Snapshot perm = %o, want 0600", info.Mode().Perm())
	}
}

// =============================================================================
// PROVISION AND UNLOCK TESTS
// =============================================================================

func TestProvisionSetsVerifierNotRawPassword(t *testing.T) {
	s := newTestStore(t)

	if err := s.Provision("hole-1", "1234"); err != nil {
		t.Fatalf("Provision failed: %v", err)
	}

	hole, _ := s.GetHole("hole-1")
	if hole.PasswordHash == "1234" {
		t.Error("Raw password stored instead of verifier")
	}
	if hole.PasswordHash != vaultcrypt.DeriveVerifier("1234") {
		t.Error("Stored verifier does not match derivation")
	}
	if hole.CreatedAt == 0 {
		t.Error("CreatedAt not set on provision")
	}
}

func TestProvisionTwiceFails(t *testing.T) {
	s := newTestStore(t)
	if err := s.Provision("hole-1", "1234"); err != nil {
		t.Fatalf("Provision failed: %v", err)
	}
	if err := s.Provision("hole-1", "5678"); !errors.Is(err, ErrAlreadyProvisioned) {
		t.Errorf("Second Provision = %v, want ErrAlreadyProvisioned", err)
	}
}

func TestUnlock(t *testing.T) {
	s := newTestStore(t)
	if err := s.Provision("hole-2", "1234"); err != nil {
		t.Fatalf("Provision failed: %v", err)
	}

	ok, err := s.Unlock("hole-2", "1234")
	if err != nil || !ok {
		t.Errorf("Unlock with correct password = %v, %v", ok, err)
	}

	ok, err = s.Unlock("hole-2", "wrong")
	if err != nil {
		t.Fatalf("Unlock errored: %v", err)
	}
	if ok {
		t.Error("Unlock accepted wrong password")
	}
}

func TestUnlockUnprovisionedHole(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Unlock("hole-5", "1234"); !errors.Is(err, ErrNotProvisioned) {
		t.Errorf("Unlock unprovisioned = %v, want ErrNotProvisioned", err)
	}
}

func TestUnlockMissingHole(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Unlock("hole-99", "1234"); !errors.Is(err, ErrHoleNotFound) {
		t.Errorf("Unlock missing hole = %v, want ErrHoleNotFound", err)
	}
}

// =============================================================================
// LEGACY MIGRATION TESTS
// =============================================================================

func TestUnlockUpgradesLegacyHole(t *testing.T) {
	s := newTestStore(t)

	// Simulate a snapshot written before verifiers and encryption
	// existed: raw password in the hash slot, plaintext message
	// fields.
	hole, _ := s.GetHole("hole-4")
	hole.PasswordHash = "1234"
	hole.CreatedAt = 1700000000000
	legacy := model.NewMessageAt(model.SenderUser, 1700000000001)
	legacy.Text = "今天好累"
	hole.AddMessage(legacy)

	ok, err := s.Unlock("hole-4", "1234")
	if err != nil {
		t.Fatalf("Unlock failed: %v", err)
	}
	if !ok {
		t.Fatal("Legacy password rejected")
	}

	if hole.PasswordHash != vaultcrypt.DeriveVerifier("1234") {
		t.Error("Verifier not upgraded on legacy unlock")
	}
	if legacy.Text != "" {
		t.Error("Plaintext not cleared after migration")
	}
	if !vaultcrypt.IsEncrypted(legacy.EncryptedText) {
		t.Error("Migrated text not encrypted")
	}
	if got := vaultcrypt.DecryptText(legacy.EncryptedText, "1234"); got != "今天好累" {
		t.Errorf("Migrated text decrypts to %q", got)
	}
}

func TestUnlockMigratesPlaintextUnderHashedVerifier(t *testing.T) {
	s := newTestStore(t)

	// The two legacy schemes aged independently: this snapshot already
	// has a hashed verifier but still carries plaintext message fields.
	hole, _ := s.GetHole("hole-5")
	hole.PasswordHash = vaultcrypt.DeriveVerifier("1234")
	hole.CreatedAt = 1700000000000
	legacy := model.NewMessageAt(model.SenderUser, 1700000000001)
	legacy.Text = "今天好累"
	hole.AddMessage(legacy)

	ok, err := s.Unlock("hole-5", "1234")
	if err != nil {
		t.Fatalf("Unlock failed: %v", err)
	}
	if !ok {
		t.Fatal("Password rejected")
	}

	if legacy.Text != "" {
		t.Error("Plaintext not cleared after migration")
	}
	if !vaultcrypt.IsEncrypted(legacy.EncryptedText) {
		t.Error("Migrated text not encrypted")
	}
	if got := vaultcrypt.DecryptText(legacy.EncryptedText, "1234"); got != "今天好累" {
		t.Errorf("Migrated text decrypts to %q", got)
	}

	// The migration persisted: a reload sees the encrypted form only.
	s2, err := NewStoreWithPath(s.Path(), testLogger())
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	reloaded, _ := s2.GetHole("hole-5")
	if len(reloaded.Messages) != 1 || reloaded.Messages[0].Text != "" {
		t.Error("Migration not persisted to the snapshot")
	}
	if !vaultcrypt.IsEncrypted(reloaded.Messages[0].EncryptedText) {
		t.Error("Persisted message not encrypted")
	}
}

func TestUnlockMigratesLegacyDataURLImage(t *testing.T) {
	s := newTestStore(t)

	hole, _ := s.GetHole("hole-6")
	hole.PasswordHash = "abcd"
	hole.CreatedAt = 1700000000000
	legacy := model.NewMessageAt(model.SenderUser, 1700000000002)
	legacy.ImageURL = "data:image/png;base64,aGVsbG8=" // "hello"
	hole.AddMessage(legacy)

	if ok, err := s.Unlock("hole-6", "abcd"); err != nil || !ok {
		t.Fatalf("Unlock = %v, %v", ok, err)
	}

	if legacy.ImageURL != "" {
		t.Error("Legacy image URL not cleared")
	}
	payload, ok := vaultcrypt.DecryptImage(legacy.EncryptedImage, "abcd")
	if !ok {
		t.Fatal("Migrated image does not decrypt")
	}
	if string(payload.Data) != "hello" || payload.MimeType != "image/png" {
		t.Errorf("Migrated payload = %q/%q", payload.Data, payload.MimeType)
	}
}

func TestMigrationIsIdempotent(t *testing.T) {
	s := newTestStore(t)

	hole, _ := s.GetHole("hole-7")
	hole.PasswordHash = "pw"
	hole.CreatedAt = 1700000000000
	msg := model.NewMessageAt(model.SenderUser, 1700000000003)
	ct, err := vaultcrypt.EncryptText("已经加密", "pw")
	if err != nil {
		t.Fatalf("EncryptText failed: %v", err)
	}
	msg.EncryptedText = ct
	hole.AddMessage(msg)

	if ok, _ := s.Unlock("hole-7", "pw"); !ok {
		t.Fatal("Unlock failed")
	}
	if msg.EncryptedText != ct {
		t.Error("Already-encrypted message rewritten during migration")
	}
}

// =============================================================================
// MUTATION TESTS
// =============================================================================

func TestUpdateMessageClassification(t *testing.T) {
	s := newTestStore(t)
	msg := model.NewMessageAt(model.SenderUser, 1700000000000)
	if err := s.AppendMessage("hole-1", msg); err != nil {
		t.Fatalf("AppendMessage failed: %v", err)
	}

	c := model.Classification{Emotion: model.EmotionSad, ContentType: model.ContentWork}
	if err := s.UpdateMessageClassification("hole-1", msg.ID, c); err != nil {
		t.Fatalf("UpdateMessageClassification failed: %v", err)
	}
	if msg.Classification == nil || msg.Classification.Emotion != model.EmotionSad {
		t.Error("Classification not attached")
	}

	// Second attach is rejected
	c2 := model.Classification{Emotion: model.EmotionHappy, ContentType: model.ContentLife}
	if err := s.UpdateMessageClassification("hole-1", msg.ID, c2); !errors.Is(err, ErrAlreadyClassified) {
		t.Errorf("Second classification = %v, want ErrAlreadyClassified", err)
	}

	if err := s.UpdateMessageClassification("hole-1", "nope", c); !errors.Is(err, ErrMessageNotFound) {
		t.Errorf("Missing message = %v, want ErrMessageNotFound", err)
	}
}

func TestDeleteMessages(t *testing.T) {
	s := newTestStore(t)
	m1 := model.NewMessageAt(model.SenderUser, 1)
	m2 := model.NewMessageAt(model.SenderAI, 2)
	m3 := model.NewMessageAt(model.SenderUser, 3)
	for _, m := range []*model.Message{m1, m2, m3} {
		if err := s.AppendMessage("hole-2", m); err != nil {
			t.Fatalf("AppendMessage failed: %v", err)
		}
	}

	removed, err := s.DeleteMessages("hole-2", []string{m1.ID, m3.ID, "missing"})
	if err != nil {
		t.Fatalf("DeleteMessages failed: %v", err)
	}
	if removed != 2 {
		t.Errorf("Removed = %d, want 2", removed)
	}

	hole, _ := s.GetHole("hole-2")
	if len(hole.Messages) != 1 || hole.Messages[0].ID != m2.ID {
		t.Error("Wrong messages remain after bulk delete")
	}
}

func TestReset(t *testing.T) {
	s := newTestStore(t)
	if err := s.Provision("hole-8", "1234"); err != nil {
		t.Fatalf("Provision failed: %v", err)
	}
	s.SetName("hole-8", "秘密")
	s.AppendMessage("hole-8", model.NewMessageAt(model.SenderUser, 1))

	if err := s.Reset("hole-8"); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}

	hole, _ := s.GetHole("hole-8")
	if hole.IsProvisioned() || hole.Name != "" || len(hole.Messages) != 0 || hole.CreatedAt != 0 {
		t.Error("Reset left state behind")
	}
}

// =============================================================================
// USAGE TESTS
// =============================================================================

func TestUsage(t *testing.T) {
	s := newTestStore(t)

	u, err := s.Usage()
	if err != nil {
		t.Fatalf("Usage failed: %v", err)
	}
	if u.Bytes <= 0 {
		t.Error("Expected non-zero snapshot size")
	}
	if u.Budget != StorageBudgetBytes {
		t.Errorf("Budget = %d, want %d", u.Budget, StorageBudgetBytes)
	}
	if u.NearLimit() {
		t.Error("Empty store should not be near the limit")
	}
}

func TestUsageNearLimit(t *testing.T) {
	u := Usage{Bytes: 4825600, Budget: StorageBudgetBytes, Fraction: 0.92}
	if !u.NearLimit() {
		t.Error("0.92 of budget should trigger the notice")
	}
	u.Fraction = 0.89
	if u.NearLimit() {
		t.Error("0.89 of budget should not trigger the notice")
	}
}

// =============================================================================
// DATA URL TESTS
// =============================================================================

func TestParseDataURL(t *testing.T) {
	payload, ok := parseDataURL("data:image/jpeg;base64,aGk=")
	if !ok {
		t.Fatal("Valid data URL rejected")
	}
	if payload.MimeType != "image/jpeg" || string(payload.Data) != "hi" {
		t.Errorf("Parsed payload = %q/%q", payload.MimeType, payload.Data)
	}

	bad := []string{
		"",
		"http://example.com/x.png",
		"data:image/png,plain",
		"data:image/png;base64,%%%",
	}
	for _, in := range bad {
		if _, ok := parseDataURL(in); ok {
			t.Errorf("parseDataURL(%q) accepted invalid input", in)
		}
	}
}
