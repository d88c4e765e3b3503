// Package verify checks that an SC Pay receipt witness carries a valid
// sc.com DKIM signature and publishes its amount and e-mail address.
//
// The verification process:
//   - commits the amount and e-mail to the journal
//   - validates the witness field character rules
//   - rebuilds the canonical body, header and DKIM-Signature prefix
//   - compares SHA-256 of the body with the bh= tag
//   - builds the EMSA-PKCS1-v1_5 block over SHA-256(header || prefix)
//   - raises the signature to 65537 modulo N in the Montgomery domain and
//     compares the result with that block
//
// # Verification Flow
//
// Create a Service with a Committer and call Verify:
//
//	var j journal.Journal
//	svc, err := verify.NewService(&j, verify.Config{Strategy: bigint.BlockAccelerated})
//	if err != nil {
//		log.Fatal(err)
//	}
//	result, err := svc.Verify(w)
//	if err != nil {
//		log.Printf("rejected: %v", err)
//	}
//
// # Rejections
//
// Every failed check returns a *Rejection wrapping one of the layer errors.
// ReasonOf recovers the category:
//   - ReasonFormatViolation: a witness field holds a forbidden character
//   - ReasonMalformedEncoding: bh= is not 32 bytes of base64 or the
//     signature is out of range
//   - ReasonDigestInconsistency: bh= does not match the rebuilt body
//   - ReasonPaddingMismatch: the signature does not open to the padded digest
//
// The amount and e-mail are committed before any check runs, so a rejected
// witness still leaves them in the journal. Callers must treat the journal
// as meaningful only together with a successful result.
package verify

import (
	"fmt"
	"strings"

	"github.com/weikengchen/fps-r0/bigint"
	"github.com/weikengchen/fps-r0/dkim"
)

// SignatureEncoding selects how Witness.Signature is interpreted.
type SignatureEncoding string

const (
	// EncodingBigEndian is the plain signature integer, big-endian.
	EncodingBigEndian SignatureEncoding = "be"
	// EncodingMontgomery is sig*R mod N as little-endian limb bytes.
	EncodingMontgomery SignatureEncoding = "mont"
)

// ParseSignatureEncoding maps a configuration string to a SignatureEncoding.
func ParseSignatureEncoding(s string) (SignatureEncoding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "be", "big-endian", "plain":
		return EncodingBigEndian, nil
	case "mont", "montgomery":
		return EncodingMontgomery, nil
	default:
		return "", fmt.Errorf("unknown signature encoding %q (expected %q or %q)", s, EncodingBigEndian, EncodingMontgomery)
	}
}

// Config selects the arithmetic backend and the signature encoding.
type Config struct {
	Strategy bigint.Strategy
	Encoding SignatureEncoding
	// Context defaults to bigint.DefaultContext().
	Context *bigint.Context
}

// VerifyResult represents the result of a successful verification
type VerifyResult struct {
	Valid        bool              `json:"valid"`
	Amount       string            `json:"amount"`
	Email        string            `json:"email"`
	Strategy     bigint.Strategy   `json:"strategy"`
	Encoding     SignatureEncoding `json:"signatureEncoding"`
	BodyLength   int               `json:"bodyLength"`
	HeaderLength int               `json:"headerLength"`
	BodyHash     [32]byte          `json:"-"`
	DataHash     [32]byte          `json:"-"`
	Expected     dkim.PaddedBlock  `json:"-"`
	Message      *dkim.Message     `json:"-"`
}
