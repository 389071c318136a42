// Package fingerprint computes content-identity digests for ingested files.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
)

// Compute returns the lowercase hex SHA-256 digest of data. The digest
// depends only on byte content, never on filename or metadata, so renamed
// copies of the same file produce the same fingerprint. Empty input yields
// the digest of the empty string.
func Compute(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
