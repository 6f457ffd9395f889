package util

import (
	"crypto/rand"
	"encoding/hex"
)

// NewSessionToken mints an opaque 64-hex-char session token from the
// system CSPRNG.
func NewSessionToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
