package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"

	"github.com/google/uuid"
)

// GenID returns an opaque unique identifier for messages and reactions.
func GenID() string {
	return uuid.NewString()
}

// GenSlug returns a short opaque share-link token: 6 random bytes in
// unpadded URL-safe base64 (8 characters). Collisions are vanishingly rare
// but the store still rechecks uniqueness on every creation.
func GenSlug() string {
	var b [6]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand never fails on supported platforms; fall back to a UUID
		// fragment rather than panic inside a request.
		return uuid.NewString()[:8]
	}
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// Fingerprint derives a stable recipient fingerprint from a per-recipient
// seed. Same seed, same fingerprint; the seed itself is never stored.
func Fingerprint(seed string) string {
	sum := sha256.Sum256([]byte(seed))
	return hex.EncodeToString(sum[:])[:20]
}
