// Package digest provides the fixed-width SHA-256 hash facade used for
// session-key derivation and the client/server message echo.
package digest

import (
	"crypto/sha256"
	"encoding/hex"
)

// Size is the digest width in bytes.
const Size = sha256.Size

// Sum256 hashes data and returns the 32-byte digest.
func Sum256(data []byte) [Size]byte {
	return sha256.Sum256(data)
}

// ToHex renders a digest as lowercase, zero-padded hex, always 2*Size
// characters regardless of leading zero bytes.
func ToHex(d [Size]byte) string {
	return hex.EncodeToString(d[:])
}
