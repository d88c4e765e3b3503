// Package bigint implements fixed-width 2048-bit modular arithmetic for RSA
// signature verification.
//
// Values are held as 64 little-endian 32-bit limbs (Nat). All products are
// computed in the Montgomery domain with R = 2^2048 against a fixed odd
// modulus N described by a Context.
//
// # Multiplication Strategies
//
// Two interchangeable Montgomery multipliers are provided:
//
//	mul, err := bigint.NewMultiplier(bigint.DefaultContext(), bigint.LimbSerial)
//	if err != nil {
//		log.Fatal(err)
//	}
//	am := bigint.ToMontgomery(mul, &a)
//	bm := bigint.ToMontgomery(mul, &b)
//	prod := mul.Mul(&am, &bm)
//	plain := bigint.FromMontgomery(mul, &prod)
//
// LimbSerial is the textbook word-by-word REDC. BlockAccelerated processes
// eight limbs at a time on top of a 256-bit multiply-with-modulus primitive.
// Both strategies return bit-identical results for every input.
//
// # Cost Accounting
//
// Wrap a multiplier with Metered to report every Montgomery product to a
// Meter:
//
//	mul = bigint.Metered(mul, ledger)
package bigint

import (
	"errors"
	"fmt"
	"math/big"
	"math/bits"
)

const (
	// Limbs is the number of 32-bit limbs in a Nat.
	Limbs = 64
	// Bytes is the byte width of a Nat.
	Bytes = Limbs * 4
)

// ErrOutOfRange is returned when an input does not fit in a Nat.
var ErrOutOfRange = errors.New("value does not fit in 2048 bits")

// Nat is an unsigned 2048-bit integer, least significant limb first.
type Nat [Limbs]uint32

// One returns the integer 1.
func One() Nat {
	var z Nat
	z[0] = 1
	return z
}

// Add returns x + y mod 2^2048 and the outgoing carry.
func Add(x, y *Nat) (Nat, uint32) {
	var z Nat
	var c uint32
	for i := range z {
		z[i], c = bits.Add32(x[i], y[i], c)
	}
	return z, c
}

// Sub returns x - y mod 2^2048 and the outgoing borrow.
func Sub(x, y *Nat) (Nat, uint32) {
	var z Nat
	var b uint32
	for i := range z {
		z[i], b = bits.Sub32(x[i], y[i], b)
	}
	return z, b
}

// Select returns x if on == 1 and y if on == 0 without branching on on.
func Select(on uint32, x, y *Nat) Nat {
	mask := -on
	var z Nat
	for i := range z {
		z[i] = y[i] ^ (mask & (y[i] ^ x[i]))
	}
	return z
}

// Cmp compares x and y and returns -1, 0 or +1.
func (x *Nat) Cmp(y *Nat) int {
	for i := Limbs - 1; i >= 0; i-- {
		switch {
		case x[i] < y[i]:
			return -1
		case x[i] > y[i]:
			return 1
		}
	}
	return 0
}

// IsZero reports whether x == 0.
func (x *Nat) IsZero() bool {
	var acc uint32
	for _, l := range x {
		acc |= l
	}
	return acc == 0
}

// NatFromBytesBE decodes a big-endian byte string of at most 256 bytes.
func NatFromBytesBE(b []byte) (Nat, error) {
	var z Nat
	if len(b) > Bytes {
		return z, fmt.Errorf("%w: %d bytes", ErrOutOfRange, len(b))
	}
	for i, v := range b {
		pos := len(b) - 1 - i
		z[pos/4] |= uint32(v) << (8 * (pos % 4))
	}
	return z, nil
}

// NatFromLimbBytesLE decodes a little-endian byte string of at most 256
// bytes. This is the layout of a signature pre-encoded in Montgomery form.
func NatFromLimbBytesLE(b []byte) (Nat, error) {
	var z Nat
	if len(b) > Bytes {
		return z, fmt.Errorf("%w: %d bytes", ErrOutOfRange, len(b))
	}
	for pos, v := range b {
		z[pos/4] |= uint32(v) << (8 * (pos % 4))
	}
	return z, nil
}

// NatFromBig converts a non-negative big.Int.
func NatFromBig(v *big.Int) (Nat, error) {
	if v.Sign() < 0 {
		return Nat{}, fmt.Errorf("%w: negative value", ErrOutOfRange)
	}
	return NatFromBytesBE(v.Bytes())
}

// BytesBE returns the 256-byte big-endian encoding of x.
func (x *Nat) BytesBE() []byte {
	out := make([]byte, Bytes)
	for pos := 0; pos < Bytes; pos++ {
		out[Bytes-1-pos] = byte(x[pos/4] >> (8 * (pos % 4)))
	}
	return out
}

// LimbBytesLE returns the 256-byte little-endian encoding of x.
func (x *Nat) LimbBytesLE() []byte {
	out := make([]byte, Bytes)
	for pos := 0; pos < Bytes; pos++ {
		out[pos] = byte(x[pos/4] >> (8 * (pos % 4)))
	}
	return out
}

// Big converts x to a big.Int.
func (x *Nat) Big() *big.Int {
	return new(big.Int).SetBytes(x.BytesBE())
}

func (x *Nat) String() string {
	return x.Big().String()
}
