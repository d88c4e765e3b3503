// Package modexp raises Montgomery-form values to a public exponent.
//
// The general entry point is the Exponentiator interface. Binary implements
// left-to-right square-and-multiply for any non-negative exponent;
// Specialized short-circuits the RSA public exponent 65537 into a fixed chain
// of sixteen squarings and one multiplication and defers everything else to
// a fallback.
//
//	exp := modexp.New(mul)
//	sigMont := bigint.ToMontgomery(mul, &sig)
//	resMont, err := exp.Exp(&sigMont, big.NewInt(modexp.PublicExponent))
//	res := bigint.FromMontgomery(mul, &resMont)
package modexp

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/weikengchen/fps-r0/bigint"
)

// PublicExponent is F4 = 2^16 + 1.
const PublicExponent = 65537

// ErrNegativeExponent is returned for exponents below zero.
var ErrNegativeExponent = errors.New("exponent must be non-negative")

// Exponentiator computes base^e in the Montgomery domain. base must be in
// Montgomery form and reduced; so is the result.
type Exponentiator interface {
	Exp(base *bigint.Nat, exponent *big.Int) (bigint.Nat, error)
}

// Binary is general square-and-multiply over a Multiplier.
type Binary struct {
	Mul bigint.Multiplier
}

// Exp scans the exponent from the most significant bit and multiplies by base
// on every set bit.
func (b *Binary) Exp(base *bigint.Nat, exponent *big.Int) (bigint.Nat, error) {
	if exponent.Sign() < 0 {
		return bigint.Nat{}, fmt.Errorf("%w: %s", ErrNegativeExponent, exponent)
	}

	// 1 in Montgomery form is R mod N.
	one := bigint.One()
	acc := bigint.ToMontgomery(b.Mul, &one)
	for i := exponent.BitLen() - 1; i >= 0; i-- {
		acc = b.Mul.Mul(&acc, &acc)
		if exponent.Bit(i) == 1 {
			acc = b.Mul.Mul(&acc, base)
		}
	}
	return acc, nil
}

// Specialized uses Pow65537 for the public exponent and Fallback otherwise.
type Specialized struct {
	Mul      bigint.Multiplier
	Fallback Exponentiator
}

var f4 = big.NewInt(PublicExponent)

func (s *Specialized) Exp(base *bigint.Nat, exponent *big.Int) (bigint.Nat, error) {
	if exponent.Cmp(f4) == 0 {
		return Pow65537(s.Mul, base), nil
	}
	if s.Fallback == nil {
		return bigint.Nat{}, fmt.Errorf("no fallback for exponent %s", exponent)
	}
	return s.Fallback.Exp(base, exponent)
}

// New returns a Specialized exponentiator backed by Binary.
func New(mul bigint.Multiplier) *Specialized {
	return &Specialized{Mul: mul, Fallback: &Binary{Mul: mul}}
}

// Pow65537 returns base^65537 with exactly seventeen Montgomery products.
func Pow65537(mul bigint.Multiplier, base *bigint.Nat) bigint.Nat {
	acc := mul.Mul(base, base)
	for i := 1; i < 16; i++ {
		acc = mul.Mul(&acc, &acc)
	}
	return mul.Mul(&acc, base)
}
