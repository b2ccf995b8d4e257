package project

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

// Digest is a SHA-256 value (same layout as source.File.Hash).
type Digest [32]byte

func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// IsZero reports whether d was never computed.
func (d Digest) IsZero() bool { return d == Digest{} }

// Combine hashes content followed by parts in the given order.
func Combine(content Digest, parts ...Digest) Digest {
	h := sha256.New()
	_, _ = h.Write(content[:])
	for _, p := range parts {
		_, _ = h.Write(p[:])
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// Fingerprint hashes the settings that change a document's output. Two
// configs with equal fingerprints produce identical results for the same
// input.
func (c Config) Fingerprint() Digest {
	s := strconv.Itoa(c.AreaBase) + "\x00" + c.HoistPrefix + "\x00" +
		strconv.Itoa(c.MaxTokens) + "\x00" + strconv.Itoa(c.MaxDiagnostics)
	return sha256.Sum256([]byte(s))
}
