// Package checksum computes content digests used for optimistic concurrency
// on draft saves.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// ETag wraps a digest in the quoted form used by the If-Match header.
func ETag(sum string) string {
	return `"` + sum + `"`
}

// Trim strips optional surrounding quotes from an If-Match header value.
func Trim(ifMatch string) string {
	return strings.Trim(ifMatch, `"`)
}
