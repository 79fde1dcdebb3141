package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateOpaqueToken returns n random bytes hex-encoded, used for
// admin-invite tokens.
func GenerateOpaqueToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
