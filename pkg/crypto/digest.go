package crypto

import (
	"crypto/sha256"
	"encoding/hex"
)

// DigestToken returns the lowercase hex SHA-256 digest of a bearer token.
// Shared cache backends use the digest as key material so raw credentials
// never appear in their keyspace. Distinct tokens map to distinct keys.
func DigestToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
