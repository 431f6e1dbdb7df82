package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashContent creates a SHA256 hash of a content string.
// The remote side uses it to dedupe unchanged pages.
func HashContent(content string) string {
	h := sha256.New()
	h.Write([]byte(content))
	return hex.EncodeToString(h.Sum(nil))
}
