package ingest

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint derives the deduplication digest for a message from its sender
// address, subject, and RFC 3339 timestamp text. The digest is deterministic:
// the same triple always yields the same 64-character hex string. Empty
// inputs are hashed as empty strings. The fingerprint is stored for later
// dedup queries; it is not enforced as a uniqueness constraint.
func Fingerprint(from, subject, timestamp string) string {
	h := sha256.New()
	h.Write([]byte(from))
	h.Write([]byte{0})
	h.Write([]byte(subject))
	h.Write([]byte{0})
	h.Write([]byte(timestamp))
	return hex.EncodeToString(h.Sum(nil))
}
