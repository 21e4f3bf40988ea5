package checkpoint

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashPath derives the ProjectHash for a canonical path: SHA-256 over the
// path's bytes, hex-encoded. Deterministic and platform-independent; the same
// canonical path always yields the same hash on every machine.
//
// The input must already be canonical (see CanonicalizePath). There is no
// fallback for unresolvable paths here: registration handles resolution
// failures before hashing, and lookups never hash at all.
func HashPath(canonicalPath string) ProjectHash {
	sum := sha256.Sum256([]byte(canonicalPath))
	return ProjectHash(hex.EncodeToString(sum[:]))
}
