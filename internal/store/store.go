// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/jeranaias/treehole-tui/internal/model"
	"github.com/jeranaias/treehole-tui/internal/util"
	"github.com/jeranaias/treehole-tui/internal/vaultcrypt"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// SnapshotFileName is the snapshot file under the data directory.
	SnapshotFileName = "holes.json"

	// StorageBudgetBytes is the soft budget for the serialized
	// snapshot, matching the localStorage quota the data model was
	// sized for.
	StorageBudgetBytes = 5 * 1024 * 1024

	// UsageWarnThreshold is the fraction of the budget at which the
	// UI shows the storage notice.
	UsageWarnThreshold = 0.9
)

// =============================================================================
// HOLE STORE
// =============================================================================

// Store handles the hole collection and its persistence.
type Store struct {
	mu     sync.Mutex
	path   string
	holes  []*model.Hole
	logger *slog.Logger
}

// snapshot is the on-disk shape.
type snapshot struct {
	Version int           `json:"version"`
	Holes   []*model.Hole `json:"holes"`
}

// NewStore creates a store rooted at ~/.treehole/.
func NewStore(logger *slog.Logger) (*Store, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return NewStoreWithPath(filepath.Join(homeDir, ".treehole", SnapshotFileName), logger)
}

// NewStoreWithPath creates a store with a custom snapshot path.
func NewStoreWithPath(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		path:   path,
		logger: logger,
	}
	s.load()
	return s, nil
}

// Path returns the snapshot location on disk.
func (s *Store) Path() string {
	return s.path
}

// load reads the snapshot from disk. A missing or corrupt snapshot is
// not an error: the user starts over with twelve empty holes rather
// than being locked out of the app.
func (s *Store) load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("snapshot unreadable, starting fresh", "path", s.path, "error", err)
		}
		s.holes = model.DefaultHoles()
		return
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil || len(snap.Holes) == 0 {
		s.logger.Warn("snapshot corrupt, starting fresh", "path", s.path, "error", err)
		s.holes = model.DefaultHoles()
		return
	}

	s.holes = normalize(snap.Holes)
}

// normalize reconciles a loaded hole list against the fixed twelve
// positioned slots: holes keep their stored state by ID, missing slots
// are created empty, extras are dropped.
func normalize(loaded []*model.Hole) []*model.Hole {
	byID := make(map[string]*model.Hole, len(loaded))
	for _, h := range loaded {
		if h != nil && h.ID != "" {
			byID[h.ID] = h
		}
	}

	defaults := model.DefaultHoles()
	for i, d := range defaults {
		if h, ok := byID[d.ID]; ok {
			h.Position = d.Position
			defaults[i] = h
		}
	}
	return defaults
}

// Persist writes the whole collection to disk in one atomic
// all-or-nothing overwrite.
func (s *Store) Persist() error {
	s.mu.Lock()
	data, err := s.marshal()
	s.mu.Unlock()
	if err != nil {
		return err
	}

	// Snapshot holds ciphertext plus verifiers; keep it private to
	// the owning user.
	if err := util.AtomicWriteFileWithDir(s.path, data, 0600, 0700); err != nil {
		s.logger.Error("persist failed", "path", s.path, "error", err)
		return err
	}
	return nil
}

// marshal serializes the collection. Caller holds the lock.
func (s *Store) marshal() ([]byte, error) {
	return json.MarshalIndent(snapshot{Version: 1, Holes: s.holes}, "", "  ")
}

// Snapshot returns the serialized collection, as written to disk.
// Everything sensitive in it is already encrypted or hashed.
func (s *Store) Snapshot() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.marshal()
}

// =============================================================================
// READ OPERATIONS
// =============================================================================

// Holes returns the hole list in display order. Callers treat the
// result as read-only; mutation goes through Store methods.
func (s *Store) Holes() []*model.Hole {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.Hole, len(s.holes))
	copy(out, s.holes)
	return out
}

// GetHole returns the hole with the given ID.
func (s *Store) GetHole(id string) (*model.Hole, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findHole(id)
}

// findHole looks up a hole by ID. Caller holds the lock.
func (s *Store) findHole(id string) (*model.Hole, error) {
	for _, h := range s.holes {
		if h.ID == id {
			return h, nil
		}
	}
	return nil, ErrHoleNotFound
}

// =============================================================================
// UNLOCK AND MIGRATION
// =============================================================================

// Unlock verifies a password against a hole. On success it upgrades
// whatever legacy state the hole carries: a raw stored password becomes
// a hashed verifier, and plaintext message fields are rewritten to the
// encrypted representation, then persisted.
func (s *Store) Unlock(holeID, password string) (bool, error) {
	s.mu.Lock()
	hole, err := s.findHole(holeID)
	if err != nil {
		s.mu.Unlock()
		return false, err
	}
	if !hole.IsProvisioned() {
		s.mu.Unlock()
		return false, ErrNotProvisioned
	}

	ok, legacy := vaultcrypt.VerifyPassword(password, hole.PasswordHash)
	if !ok {
		s.mu.Unlock()
		return false, nil
	}

	// The verifier scheme and the message scheme aged independently, so
	// each upgrades on its own evidence: a raw stored password rehashes,
	// and any plaintext message rewrites, whatever the verifier looked
	// like.
	if legacy {
		hole.PasswordHash = vaultcrypt.DeriveVerifier(password)
	}
	migrated := migrateLegacy(hole, password, s.logger)
	s.mu.Unlock()

	if legacy || migrated > 0 {
		s.logger.Info("upgraded legacy hole on unlock", "hole", holeID, "messages", migrated)
		if err := s.Persist(); err != nil {
			return true, err
		}
	}
	return true, nil
}

// migrateLegacy rewrites plaintext message fields to the encrypted
// representation. Idempotent: already-encrypted messages are left
// alone. Caller holds the lock.
func migrateLegacy(hole *model.Hole, password string, logger *slog.Logger) int {
	count := 0
	for _, msg := range hole.Messages {
		if !msg.HasLegacyContent() {
			continue
		}
		if msg.Text != "" && msg.EncryptedText == "" {
			ct, err := vaultcrypt.EncryptText(msg.Text, password)
			if err != nil {
				logger.Warn("legacy text migration failed", "message", msg.ID, "error", err)
				continue
			}
			msg.EncryptedText = ct
			msg.Text = ""
		}
		if msg.ImageURL != "" && msg.EncryptedImage == "" {
			payload, ok := parseDataURL(msg.ImageURL)
			if !ok {
				logger.Warn("legacy image unparseable, dropping", "message", msg.ID)
				msg.ImageURL = ""
				continue
			}
			ct, err := vaultcrypt.EncryptImage(payload, password)
			if err != nil {
				logger.Warn("legacy image migration failed", "message", msg.ID, "error", err)
				continue
			}
			msg.EncryptedImage = ct
			msg.ImageURL = ""
		}
		count++
	}
	return count
}

// =============================================================================
// WRITE OPERATIONS
// =============================================================================

// AppendMessage appends a message to a hole. The caller persists when
// the batch of mutations is complete.
func (s *Store) AppendMessage(holeID string, msg *model.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	hole, err := s.findHole(holeID)
	if err != nil {
		return err
	}
	hole.AddMessage(msg)
	return nil
}

// UpdateMessageClassification attaches a classification to a message.
// A message carries at most one classification for its lifetime.
func (s *Store) UpdateMessageClassification(holeID, msgID string, c model.Classification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	hole, err := s.findHole(holeID)
	if err != nil {
		return err
	}
	msg := hole.FindMessage(msgID)
	if msg == nil {
		return ErrMessageNotFound
	}
	if !msg.SetClassification(c) {
		return ErrAlreadyClassified
	}
	return nil
}

// SetName renames a hole. The name is trimmed and capped at ten runes.
func (s *Store) SetName(holeID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	hole, err := s.findHole(holeID)
	if err != nil {
		return err
	}
	hole.SetName(name)
	return nil
}

// DeleteMessages removes the messages with the given IDs from a hole
// and returns how many were removed.
func (s *Store) DeleteMessages(holeID string, ids []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	hole, err := s.findHole(holeID)
	if err != nil {
		return 0, err
	}

	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}

	kept := hole.Messages[:0]
	removed := 0
	for _, msg := range hole.Messages {
		if drop[msg.ID] {
			removed++
			continue
		}
		kept = append(kept, msg)
	}
	hole.Messages = kept
	return removed, nil
}

// Provision sets up a hole with a fresh password. The stored value is
// always the derived verifier, never the raw password.
func (s *Store) Provision(holeID, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	hole, err := s.findHole(holeID)
	if err != nil {
		return err
	}
	if hole.IsProvisioned() {
		return ErrAlreadyProvisioned
	}
	hole.PasswordHash = vaultcrypt.DeriveVerifier(password)
	hole.CreatedAt = time.Now().UnixMilli()
	return nil
}

// Reset wipes a hole back to its unprovisioned state: verifier, name,
// messages and creation time all cleared. Destructive; the UI confirms
// before calling.
func (s *Store) Reset(holeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	hole, err := s.findHole(holeID)
	if err != nil {
		return err
	}
	hole.PasswordHash = ""
	hole.Name = ""
	hole.Messages = nil
	hole.CreatedAt = 0
	s.logger.Info("hole reset", "hole", holeID)
	return nil
}

// =============================================================================
// STORAGE USAGE
// =============================================================================

// Usage describes how much of the snapshot budget is in use.
type Usage struct {
	Bytes    int64
	Budget   int64
	Fraction float64
}

// NearLimit reports whether usage has crossed the warning threshold.
func (u Usage) NearLimit() bool {
	return u.Fraction >= UsageWarnThreshold
}

// Usage returns the size of the serialized snapshot against the
// budget.
func (s *Store) Usage() (Usage, error) {
	s.mu.Lock()
	data, err := s.marshal()
	s.mu.Unlock()
	if err != nil {
		return Usage{}, err
	}

	size := int64(len(data))
	return Usage{
		Bytes:    size,
		Budget:   StorageBudgetBytes,
		Fraction: float64(size) / float64(StorageBudgetBytes),
	}, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// parseDataURL decodes a `data:<mime>;base64,<payload>` URL, the shape
// legacy snapshots stored images in.
func parseDataURL(s string) (vaultcrypt.ImagePayload, bool) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return vaultcrypt.ImagePayload{}, false
	}

	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return vaultcrypt.ImagePayload{}, false
	}
	mime, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return vaultcrypt.ImagePayload{}, false
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return vaultcrypt.ImagePayload{}, false
	}
	return vaultcrypt.ImagePayload{Data: data, MimeType: mime}, true
}
