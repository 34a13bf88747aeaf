// Package checksum fingerprints content files so unchanged documents can be skipped.
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

// Set remembers the last seen digest per path. Not safe for concurrent use.
type Set map[string]string

// Update records sum for path and reports whether it differs from the
// previously recorded value.
func (s Set) Update(path, sum string) bool {
	if prev, ok := s[path]; ok && prev == sum {
		return false
	}
	s[path] = sum
	return true
}

// Forget drops path and reports whether it was known.
func (s Set) Forget(path string) bool {
	if _, ok := s[path]; !ok {
		return false
	}
	delete(s, path)
	return true
}
