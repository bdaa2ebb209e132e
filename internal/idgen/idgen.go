// Package idgen provides creationId generation for stored entities.
package idgen

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

// New returns a random creationId (UUIDv4). Collisions within a partition are
// practically impossible.
func New() string {
	return uuid.NewString()
}

// Derive computes a deterministic creationId from its parts.
// The same parts always yield the same id, so a put with a derived id
// overwrites the previous record instead of creating a duplicate.
func Derive(parts ...string) string {
	h := sha256.Sum256([]byte(strings.Join(parts, "#")))
	return hex.EncodeToString(h[:16]) // 128-bit hash as hex
}
