package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// ConvertKey builds the cache key for a conversion result: the payload hash
// combined with every option that changes the output bytes. Full SHA-256
// (64 hex chars) to prevent collisions.
func ConvertKey(payload []byte, engine string, pretty bool) string {
	return fmt.Sprintf("convert:%s:%t:%s", engine, pretty, Hash(payload))
}

// FigureKey builds the cache key for a stored figure document.
func FigureKey(id string) string {
	return "figure:" + id
}
