package protocol

import (
	"github.com/vstakhov/go-base32"
	"golang.org/x/crypto/blake2b"
)

// fingerprintSize is the number of hash bytes kept in a key fingerprint
const fingerprintSize = 10

// KeyFingerprint returns a short, non-reversible identifier of apiKey (zbase32 of a
// truncated BLAKE2b-256 digest), suitable for logs and metrics labels.
func KeyFingerprint(apiKey string) string {
	if apiKey == "" {
		return ""
	}
	sum := blake2b.Sum256([]byte(apiKey))
	return base32.Encode(sum[:fingerprintSize])
}
