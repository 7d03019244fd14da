// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package vaultcrypt is the crypto gate for hole content: password
// verification and per-hole encryption of message text and images.
//
// The verifier is a fast triple digest, not a slow password hash. The
// access PIN guards a local journal against casual snooping; the scheme
// is a behavioral contract carried over from earlier snapshots, not a
// security guarantee.
package vaultcrypt

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// =============================================================================
// PASSWORD VERIFIER
// =============================================================================

// verifierRounds is the number of digest applications in DeriveVerifier.
const verifierRounds = 3

// DeriveVerifier produces the stored one-way verifier for a password:
// SHA-256 applied three times, hex-encoding between rounds.
// Deterministic, irreversible, and independent of the encryption key.
func DeriveVerifier(password string) string {
	v := password
	for i := 0; i < verifierRounds; i++ {
		sum := sha256.Sum256([]byte(v))
		v = hex.EncodeToString(sum[:])
	}
	return v
}

// VerifyPassword checks a password attempt against the stored verifier.
//
// legacy is true when the match succeeded only because the stored value
// is the raw password itself, written by snapshots that predate
// verifier hashing. On a legacy match the caller must immediately
// re-store DeriveVerifier(password) in its place. Newly provisioned
// holes can never produce a legacy match.
func VerifyPassword(password, storedVerifier string) (ok, legacy bool) {
	if storedVerifier == "" {
		return false, false
	}
	derived := DeriveVerifier(password)
	if subtle.ConstantTimeCompare([]byte(derived), []byte(storedVerifier)) == 1 {
		return true, false
	}
	if subtle.ConstantTimeCompare([]byte(password), []byte(storedVerifier)) == 1 {
		return true, true
	}
	return false, false
}

// ZeroBytes zeros sensitive byte slices after use.
func ZeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
