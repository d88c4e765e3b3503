package verify

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"

	"github.com/rs/zerolog"

	"github.com/weikengchen/fps-r0/bigint"
	"github.com/weikengchen/fps-r0/dkim"
	"github.com/weikengchen/fps-r0/journal"
	"github.com/weikengchen/fps-r0/modexp"
	"github.com/weikengchen/fps-r0/witness"
)

var publicExponent = big.NewInt(modexp.PublicExponent)

// Service handles verification logic
type Service struct {
	committer journal.Committer
	ctx       *bigint.Context
	mul       bigint.Multiplier
	exp       modexp.Exponentiator
	encoding  SignatureEncoding
	meter     bigint.Meter
	log       zerolog.Logger
}

// Option customizes a Service.
type Option func(*Service)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithMeter reports every Montgomery product to m.
func WithMeter(m bigint.Meter) Option {
	return func(s *Service) { s.meter = m }
}

// NewService creates a new verification service
func NewService(committer journal.Committer, cfg Config, opts ...Option) (*Service, error) {
	if committer == nil {
		return nil, errors.New("committer is required")
	}

	s := &Service{
		committer: committer,
		ctx:       cfg.Context,
		encoding:  cfg.Encoding,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.ctx == nil {
		s.ctx = bigint.DefaultContext()
	}
	if s.encoding == "" {
		s.encoding = EncodingBigEndian
	}
	if s.encoding != EncodingBigEndian && s.encoding != EncodingMontgomery {
		return nil, fmt.Errorf("unknown signature encoding %q", s.encoding)
	}

	strategy := cfg.Strategy
	if strategy == "" {
		strategy = bigint.LimbSerial
	}
	mul, err := bigint.NewMultiplier(s.ctx, strategy)
	if err != nil {
		return nil, fmt.Errorf("failed to create multiplier: %w", err)
	}
	s.mul = bigint.Metered(mul, s.meter)
	s.exp = modexp.New(s.mul)

	return s, nil
}

// Strategy returns the multiplication strategy in use.
func (s *Service) Strategy() bigint.Strategy {
	return s.mul.Strategy()
}

// Verify checks w and commits its public outputs. A failed check returns a
// *Rejection.
func (s *Service) Verify(w *witness.Witness) (*VerifyResult, error) {
	log := s.log.With().Str("strategy", string(s.mul.Strategy())).Logger()

	// Step 0: Commit public outputs
	s.committer.Commit(w.Amount)
	s.committer.Commit(w.Email)
	log.Debug().Int("entries", 2).Msg("committed public outputs")

	// Step 1: Validate witness fields
	if err := witness.Validate(w); err != nil {
		return nil, s.reject(ReasonFormatViolation, err)
	}

	// Step 2: Reconstruct the signed message
	msg := dkim.Reconstruct(w)
	digests := dkim.ComputeDigests(msg)
	log.Debug().
		Int("body_len", len(msg.Body)).
		Int("header_len", len(msg.Header)).
		Hex("body_hash", digests.BodyHash[:]).
		Hex("data_hash", digests.DataHash[:]).
		Msg("reconstructed message")

	// Step 3: Compare body hash against bh=
	if err := dkim.CheckBodyHash(w.BHBase64, digests.BodyHash); err != nil {
		reason := ReasonDigestInconsistency
		if errors.Is(err, dkim.ErrMalformedEncoding) {
			reason = ReasonMalformedEncoding
		}
		return nil, s.reject(reason, err)
	}

	// Step 4: Build the expected padded digest
	expected := dkim.BuildPaddedDigest(digests.DataHash)

	// Step 5: sig^65537 mod N
	sigMont, err := s.signatureToMontgomery(w.Signature)
	if err != nil {
		return nil, s.reject(ReasonMalformedEncoding, err)
	}
	resMont, err := s.exp.Exp(&sigMont, publicExponent)
	if err != nil {
		return nil, fmt.Errorf("failed to exponentiate signature: %w", err)
	}
	res := bigint.FromMontgomery(s.mul, &resMont)
	recovered := res.BytesBE()

	// Step 6: Compare with the padded digest
	match := subtle.ConstantTimeByteEq(recovered[0], 0) &
		subtle.ConstantTimeCompare(recovered[1:], expected[:])
	if match != 1 {
		return nil, s.reject(ReasonPaddingMismatch, ErrPaddingMismatch)
	}
	log.Debug().Msg("signature verified")

	return &VerifyResult{
		Valid:        true,
		Amount:       string(w.Amount),
		Email:        string(w.Email),
		Strategy:     s.mul.Strategy(),
		Encoding:     s.encoding,
		BodyLength:   len(msg.Body),
		HeaderLength: len(msg.Header),
		BodyHash:     digests.BodyHash,
		DataHash:     digests.DataHash,
		Expected:     expected,
		Message:      msg,
	}, nil
}

// signatureToMontgomery decodes the signature and returns sig*R mod N.
func (s *Service) signatureToMontgomery(sig []byte) (bigint.Nat, error) {
	switch s.encoding {
	case EncodingMontgomery:
		m, err := bigint.NatFromLimbBytesLE(sig)
		if err != nil {
			return bigint.Nat{}, fmt.Errorf("failed to decode montgomery signature: %w", err)
		}
		if !s.ctx.Reduced(&m) {
			return bigint.Nat{}, ErrSignatureRange
		}
		return m, nil
	default:
		v, err := bigint.NatFromBytesBE(sig)
		if err != nil {
			return bigint.Nat{}, fmt.Errorf("failed to decode signature: %w", err)
		}
		if !s.ctx.Reduced(&v) {
			return bigint.Nat{}, ErrSignatureRange
		}
		return bigint.ToMontgomery(s.mul, &v), nil
	}
}

func (s *Service) reject(reason Reason, err error) error {
	s.log.Warn().Str("reason", string(reason)).Err(err).Msg("verification rejected")
	return &Rejection{Reason: reason, Err: err}
}

// EncodeMontgomerySignature converts a big-endian signature into the
// Montgomery little-endian form accepted with EncodingMontgomery.
func EncodeMontgomerySignature(mul bigint.Multiplier, sig []byte) ([]byte, error) {
	v, err := bigint.NatFromBytesBE(sig)
	if err != nil {
		return nil, fmt.Errorf("failed to decode signature: %w", err)
	}
	if !mul.Context().Reduced(&v) {
		return nil, ErrSignatureRange
	}
	m := bigint.ToMontgomery(mul, &v)
	return m.LimbBytesLE(), nil
}
