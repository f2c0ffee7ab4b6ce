package pathhierarchy

import (
	"crypto/sha256"
	"encoding/hex"

	"fortio.org/safecast"
)

// Filesystem-safe length limits: a path component longer than
// maxComponentBytes is truncated with a hashed suffix; a full canonical
// path longer than maxPathBytes likewise.
const (
	maxComponentBytes = 240
	maxPathBytes      = 880
	truncationSuffixHexLen = 8
)

// TruncateComponent shortens a single path component to a filesystem-safe
// byte length, appending a hash of the original text so distinct
// over-length components that share a 240-byte prefix stay distinguishable
// on disk.
func TruncateComponent(component string) string {
	return truncateWithHash(component, maxComponentBytes)
}

// TruncatePath shortens a full canonical path string to a filesystem-safe
// byte length, using the same hashed-suffix strategy as TruncateComponent.
func TruncatePath(path string) string {
	return truncateWithHash(path, maxPathBytes)
}

func truncateWithHash(s string, limit int) string {
	limitU, err := safecast.Conv[uint32](limit)
	if err != nil {
		panic(err)
	}
	if lenU, err := safecast.Conv[uint32](len(s)); err == nil && lenU <= limitU {
		return s
	}

	sum := sha256.Sum256([]byte(s))
	suffix := hex.EncodeToString(sum[:])[:truncationSuffixHexLen]

	keep := limit - truncationSuffixHexLen - 1 // reserve room for "-" + suffix
	if keep < 0 {
		keep = 0
	}
	if keep > len(s) {
		keep = len(s)
	}
	return s[:keep] + "-" + suffix
}
