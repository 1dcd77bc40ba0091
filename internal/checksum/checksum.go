// Package checksum computes and verifies the SHA-256 digests used for
// platform-wide photo deduplication. Digests are lowercase hex, 64
// characters.
package checksum

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"strings"

	"galeria/internal/domain"
)

// HexLength is the length of an encoded digest.
const HexLength = sha256.Size * 2

// Sum returns the SHA-256 digest of data as lowercase hex.
// Zero-length input is rejected: an empty upload is always a bug
// upstream, and hashing it would silently deduplicate unrelated
// failures onto one digest.
func Sum(data []byte) (string, error) {
	if len(data) == 0 {
		return "", domain.ErrEmptyContent
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// SumReader streams r through SHA-256 without buffering it, returning
// the digest and the number of bytes consumed.
func SumReader(r io.Reader) (string, int64, error) {
	h := sha256.New()
	n, err := io.Copy(h, r)
	if err != nil {
		return "", n, fmt.Errorf("%w: %v", domain.ErrChecksumFailed, err)
	}
	if n == 0 {
		return "", 0, domain.ErrEmptyContent
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}

// Digest accumulates content incrementally. It implements io.Writer so
// upload pipelines can hash while saving, and produces the same digest
// as Sum over the identical bytes.
type Digest struct {
	h     hash.Hash
	bytes int64
}

// NewDigest returns an empty streaming digest.
func NewDigest() *Digest {
	return &Digest{h: sha256.New()}
}

func (d *Digest) Write(p []byte) (int, error) {
	n, err := d.h.Write(p)
	d.bytes += int64(n)
	return n, err
}

// Bytes returns how many bytes have been written so far.
func (d *Digest) Bytes() int64 {
	return d.bytes
}

// Sum finalizes the digest. It fails if nothing was written.
func (d *Digest) Sum() (string, error) {
	if d.bytes == 0 {
		return "", domain.ErrEmptyContent
	}
	return hex.EncodeToString(d.h.Sum(nil)), nil
}

// Tee wraps r so that everything read through the returned reader is
// also hashed. Callers stream the upload to storage and take the
// digest afterwards with Sum.
func Tee(r io.Reader) (*Digest, io.Reader) {
	d := NewDigest()
	return d, io.TeeReader(r, d)
}

// Verify recomputes the digest of data and compares it to expected in
// constant time. A malformed expected digest is an error, not a
// mismatch, so corrupted metadata cannot masquerade as corrupted
// content.
func Verify(data []byte, expected string) (bool, error) {
	want, err := hex.DecodeString(strings.ToLower(expected))
	if err != nil || len(want) != sha256.Size {
		return false, fmt.Errorf("%w: expected checksum must be %d hex characters", domain.ErrValidation, HexLength)
	}
	if len(data) == 0 {
		return false, domain.ErrEmptyContent
	}
	got := sha256.Sum256(data)
	return subtle.ConstantTimeCompare(got[:], want) == 1, nil
}

// Normalize lowercases a digest and checks that it is well-formed.
func Normalize(digest string) (string, error) {
	d := strings.ToLower(strings.TrimSpace(digest))
	if len(d) != HexLength {
		return "", fmt.Errorf("%w: checksum must be %d hex characters", domain.ErrValidation, HexLength)
	}
	if _, err := hex.DecodeString(d); err != nil {
		return "", fmt.Errorf("%w: checksum must be hex encoded", domain.ErrValidation)
	}
	return d, nil
}
