// Package digest wraps the SHA-256 primitive used by the search: a fixed
// 32-byte Digest type, hex parsing for target digests, and a per-worker
// Matcher that hashes candidates into a reusable scratch buffer.
package digest

import (
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"strings"

	sha256 "github.com/minio/sha256-simd"
)

// Size is the length of a digest in bytes.
const Size = sha256.Size

// ErrInvalidDigest is returned when a target digest cannot be decoded to
// exactly Size bytes.
var ErrInvalidDigest = errors.New("invalid target digest")

// Digest is a SHA-256 output.
type Digest [Size]byte

// Of returns the SHA-256 digest of b.
func Of(b []byte) Digest {
	return sha256.Sum256(b)
}

// String returns the lowercase hex form of d.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// IsZero reports whether every byte of d is zero.
func (d Digest) IsZero() bool {
	return d == Digest{}
}

// ParseHex decodes a hex string into a Digest. Surrounding whitespace is
// ignored and both letter cases are accepted.
func ParseHex(s string) (Digest, error) {
	var d Digest

	s = strings.TrimSpace(s)
	if len(s)%2 != 0 {
		return d, fmt.Errorf("%w: odd length %d", ErrInvalidDigest, len(s))
	}
	if len(s) != 2*Size {
		return d, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidDigest, len(s)/2, Size)
	}
	if _, err := hex.Decode(d[:], []byte(s)); err != nil {
		return Digest{}, fmt.Errorf("%w: %w", ErrInvalidDigest, err)
	}
	return d, nil
}

// FromBytes copies b into a Digest. It fails unless len(b) == Size.
func FromBytes(b []byte) (Digest, error) {
	var d Digest
	if len(b) != Size {
		return d, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidDigest, len(b), Size)
	}
	copy(d[:], b)
	return d, nil
}

// Matcher hashes candidates and compares them with a target digest.
// It owns a hash context and a scratch buffer, so it must not be shared
// between goroutines; create one per worker.
type Matcher struct {
	h      hash.Hash
	target Digest
	sum    [Size]byte
}

// NewMatcher returns a Matcher for target.
func NewMatcher(target Digest) *Matcher {
	return &Matcher{
		h:      sha256.New(),
		target: target,
	}
}

// Target returns the digest the matcher compares against.
func (m *Matcher) Target() Digest {
	return m.target
}

// Sum hashes candidate with the matcher's context. The returned slice
// aliases the matcher's scratch buffer and is overwritten by the next call.
func (m *Matcher) Sum(candidate []byte) []byte {
	m.h.Reset()
	m.h.Write(candidate)
	return m.h.Sum(m.sum[:0])
}

// Match reports whether candidate hashes to the target digest.
func (m *Matcher) Match(candidate []byte) bool {
	m.Sum(candidate)
	return m.sum == m.target
}
