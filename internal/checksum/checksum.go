// Package checksum provides content digests for notes.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// ETag wraps a hex digest in strong-ETag form, ready for an HTTP ETag
// header.
func ETag(sum string) string {
	return `"` + sum + `"`
}
