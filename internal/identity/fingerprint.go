package identity

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint is a short, stable label for a bearer token that is safe to log.
func Fingerprint(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:6])
}
