package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Key generates a cache key by hashing the parts.
// The key format is: namespace:hash(parts...). Parts are joined with a
// NUL separator so distinct part lists never collide.
func Key(namespace string, parts ...string) string {
	return namespace + ":" + Hash([]byte(strings.Join(parts, "\x00")))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
