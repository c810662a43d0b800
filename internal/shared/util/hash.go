package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// ContentHash returns the hex SHA-256 digest of data.
func ContentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashKey returns a filesystem-safe identifier for an arbitrary string.
func HashKey(s string) string {
	return ContentHash([]byte(s))
}
