// Package opaque generates unguessable tokens and the hashes stored in their place.
package opaque

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
)

const tokenBytes = 32

// New returns 32 random bytes, hex encoded.
func New() (string, error) {
	raw := make([]byte, tokenBytes)
	if _, err := io.ReadFull(rand.Reader, raw); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(raw), nil
}

// Hash is the value persisted for a raw token. Stores never see the raw token.
func Hash(raw string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(raw)))
}
