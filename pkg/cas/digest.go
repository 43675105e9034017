package cas

import (
	"github.com/opencontainers/go-digest"
)

// Algorithm is the digest algorithm used for content addressing. All
// addressing in the store derives from this single algorithm; Put and
// Digest must never diverge.
const Algorithm = digest.SHA256

// Digest computes the content digest of payload. It is pure and
// side-effect-free so callers can compute a content identity, or compare
// two in-memory payloads, without performing a write. The digest depends
// only on the payload bytes, never on names, buckets, or timestamps.
func Digest(payload []byte) digest.Digest {
	return Algorithm.FromBytes(payload)
}
