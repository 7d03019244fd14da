// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package vaultcrypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// =============================================================================
// CONSTANTS
// =============================================================================

// EncryptedPrefix marks a stored value as ciphertext
// (format: ENC:base64(salt|nonce|ciphertext|tag)).
const EncryptedPrefix = "ENC:"

// NonceSize is the AES-GCM nonce size (12 bytes / 96 bits).
const NonceSize = 12

// KeySize is the AES-256 key size (32 bytes).
const KeySize = 32

// SaltSize is the per-ciphertext key-derivation salt size (32 bytes).
const SaltSize = 32

// KeyIterations is the PBKDF2-SHA-256 iteration count. A key is derived
// per message on the interactive send path, so this sits well below the
// OWASP guidance for login hashing; the threat model here is casual
// snooping of a local file, not offline cracking.
const KeyIterations = 10000

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrInvalidCiphertext indicates the ciphertext format is invalid.
	ErrInvalidCiphertext = errors.New("invalid ciphertext format")
	// ErrDecryptionFailed indicates a wrong password or tampered data.
	ErrDecryptionFailed = errors.New("decryption failed: authentication tag mismatch")
)

// =============================================================================
// KEY DERIVATION
// =============================================================================

// deriveKey derives an AES-256 key from the hole password and a
// per-ciphertext salt using PBKDF2-SHA-256.
func deriveKey(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, KeyIterations, KeySize, sha256.New)
}

// =============================================================================
// TEXT ENCRYPTION
// =============================================================================

// EncryptText encrypts message text with a key derived from the hole
// password, producing "ENC:" + base64(salt|nonce|ciphertext). The
// output is printable and storage safe. Empty plaintext returns the
// empty string without touching the cipher.
func EncryptText(plaintext, password string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	salt := make([]byte, SaltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	key := deriveKey(password, salt)
	defer ZeroBytes(key)

	gcm, err := newGCM(key)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := gcm.Seal(nil, nonce, []byte(plaintext), nil)

	blob := make([]byte, 0, SaltSize+NonceSize+len(sealed))
	blob = append(blob, salt...)
	blob = append(blob, nonce...)
	blob = append(blob, sealed...)

	return EncryptedPrefix + base64.StdEncoding.EncodeToString(blob), nil
}

// DecryptText reverses EncryptText. Any failure (wrong password,
// tampering, malformed input) degrades to the empty string; callers
// render a placeholder instead of propagating an error into the view.
// An empty stored value decrypts to empty text.
func DecryptText(ciphertext, password string) string {
	if ciphertext == "" {
		return ""
	}
	plaintext, err := decrypt(ciphertext, password)
	if err != nil {
		return ""
	}
	return string(plaintext)
}

// DecryptTextStrict is DecryptText with the failure surfaced. The store
// uses it to log decryption failures without changing the degrade-to-
// empty contract.
func DecryptTextStrict(ciphertext, password string) (string, error) {
	if ciphertext == "" {
		return "", nil
	}
	plaintext, err := decrypt(ciphertext, password)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

// decrypt unpacks the ENC: envelope and opens the AES-GCM box.
func decrypt(ciphertext, password string) ([]byte, error) {
	if !strings.HasPrefix(ciphertext, EncryptedPrefix) {
		return nil, ErrInvalidCiphertext
	}

	blob, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(ciphertext, EncryptedPrefix))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCiphertext, err)
	}
	if len(blob) < SaltSize+NonceSize {
		return nil, ErrInvalidCiphertext
	}

	salt := blob[:SaltSize]
	nonce := blob[SaltSize : SaltSize+NonceSize]
	sealed := blob[SaltSize+NonceSize:]

	key := deriveKey(password, salt)
	defer ZeroBytes(key)

	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}

// newGCM builds the AES-GCM AEAD for a derived key.
func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM cipher: %w", err)
	}
	return gcm, nil
}

// IsEncrypted reports whether a stored value carries the ENC: prefix.
func IsEncrypted(value string) bool {
	return strings.HasPrefix(value, EncryptedPrefix)
}

// =============================================================================
// IMAGE ENCRYPTION
// =============================================================================

// ImagePayload is the structured record serialized before image
// encryption and parsed after decryption.
type ImagePayload struct {
	Data     []byte `json:"data"`
	MimeType string `json:"mimeType"`
}

// IsZero reports whether the payload carries no image.
func (p ImagePayload) IsZero() bool {
	return len(p.Data) == 0
}

// EncryptImage serializes the payload to JSON and runs it through the
// text encryption path. An empty payload returns the empty string.
func EncryptImage(payload ImagePayload, password string) (string, error) {
	if payload.IsZero() {
		return "", nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to serialize image payload: %w", err)
	}
	return EncryptText(string(raw), password)
}

// DecryptImage reverses EncryptImage. Any failure, including a payload
// that decrypts but does not parse, degrades to "no image".
func DecryptImage(ciphertext, password string) (ImagePayload, bool) {
	if ciphertext == "" {
		return ImagePayload{}, false
	}
	raw, err := decrypt(ciphertext, password)
	if err != nil {
		return ImagePayload{}, false
	}
	var payload ImagePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ImagePayload{}, false
	}
	if payload.IsZero() {
		return ImagePayload{}, false
	}
	return payload, true
}
