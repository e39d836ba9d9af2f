package auth

import (
	"encoding/hex"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
)

// NewSessionID returns a random opaque session id for the browser cookie.
func NewSessionID() string {
	return uuid.NewString()
}

// HashSessionID derives the storage key of a session id. Only the hash is
// persisted.
func HashSessionID(id string) string {
	sum := blake2b.Sum256([]byte(id))
	return hex.EncodeToString(sum[:])
}
