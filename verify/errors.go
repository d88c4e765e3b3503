package verify

import (
	"errors"
	"fmt"
)

// Reason is the category of a rejected witness.
type Reason string

const (
	ReasonFormatViolation     Reason = "format_violation"
	ReasonMalformedEncoding   Reason = "malformed_encoding"
	ReasonDigestInconsistency Reason = "digest_inconsistency"
	ReasonPaddingMismatch     Reason = "padding_mismatch"
)

var (
	// ErrRejected is matched by every *Rejection.
	ErrRejected = errors.New("verification rejected")
	// ErrPaddingMismatch is returned when sig^65537 mod N differs from the
	// padded digest.
	ErrPaddingMismatch = errors.New("recovered block does not match padded digest")
	// ErrSignatureRange is returned for a signature that is not below N.
	ErrSignatureRange = errors.New("signature is not reduced modulo N")
)

// Rejection is a failed check.
type Rejection struct {
	Reason Reason
	Err    error
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("%s (%s): %v", ErrRejected, r.Reason, r.Err)
}

func (r *Rejection) Unwrap() error {
	return r.Err
}

func (r *Rejection) Is(target error) bool {
	return target == ErrRejected
}

// ReasonOf returns the rejection category of err.
func ReasonOf(err error) (Reason, bool) {
	var rej *Rejection
	if errors.As(err, &rej) {
		return rej.Reason, true
	}
	return "", false
}
