package dkim

import (
	"bytes"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
)

var (
	// ErrMalformedEncoding is returned when bh= does not decode to exactly
	// 32 bytes of standard base64.
	ErrMalformedEncoding = errors.New("malformed body hash encoding")
	// ErrDigestInconsistency is returned when bh= does not match the
	// reconstructed body.
	ErrDigestInconsistency = errors.New("body hash does not match reconstructed body")
)

// Digests holds the two SHA-256 values derived from a Message.
type Digests struct {
	BodyHash [sha256.Size]byte
	DataHash [sha256.Size]byte
}

// BodyHash returns SHA-256 of the canonical body.
func BodyHash(body []byte) [sha256.Size]byte {
	return sha256.Sum256(body)
}

// DataHash returns SHA-256(header || prefix).
func DataHash(header, prefix []byte) [sha256.Size]byte {
	h := sha256.New()
	h.Write(header)
	h.Write(prefix)
	var out [sha256.Size]byte
	h.Sum(out[:0])
	return out
}

// ComputeDigests hashes a reconstructed message.
func ComputeDigests(msg *Message) Digests {
	return Digests{
		BodyHash: BodyHash(msg.Body),
		DataHash: DataHash(msg.Header, msg.SignedHeaderPrefix),
	}
}

// DecodeBodyHash decodes the bh= tag value as canonical padded base64.
func DecodeBodyHash(bh []byte) ([sha256.Size]byte, error) {
	var out [sha256.Size]byte
	// The decoder skips line breaks; the tag value must not contain any.
	if i := bytes.IndexAny(bh, "\r\n"); i >= 0 {
		return out, fmt.Errorf("%w: line break at offset %d", ErrMalformedEncoding, i)
	}
	raw := make([]byte, base64.StdEncoding.DecodedLen(len(bh)))
	n, err := base64.StdEncoding.Strict().Decode(raw, bh)
	if err != nil {
		return out, fmt.Errorf("%w: %v", ErrMalformedEncoding, err)
	}
	if n != sha256.Size {
		return out, fmt.Errorf("%w: decoded %d bytes, want %d", ErrMalformedEncoding, n, sha256.Size)
	}
	copy(out[:], raw[:n])
	return out, nil
}

// CheckBodyHash verifies that bh decodes to bodyHash.
func CheckBodyHash(bh []byte, bodyHash [sha256.Size]byte) error {
	claimed, err := DecodeBodyHash(bh)
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare(claimed[:], bodyHash[:]) != 1 {
		return ErrDigestInconsistency
	}
	return nil
}
