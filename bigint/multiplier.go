package bigint

import (
	"fmt"
	"math/bits"
	"strings"
)

// Multiplier computes Montgomery products a*b*R^-1 mod N.
//
// Inputs must be reduced (< N); the result is always reduced.
type Multiplier interface {
	Mul(a, b *Nat) Nat
	Context() *Context
	Strategy() Strategy
}

// Strategy names a Multiplier implementation.
type Strategy string

const (
	LimbSerial       Strategy = "limb-serial"
	BlockAccelerated Strategy = "block"
)

var strategies = [...]Strategy{LimbSerial, BlockAccelerated}

// Strategies returns every available strategy.
func Strategies() []Strategy {
	return append([]Strategy(nil), strategies[:]...)
}

// ParseStrategy maps a configuration string to a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(LimbSerial), "serial", "":
		return LimbSerial, nil
	case string(BlockAccelerated), "block-accelerated", "accelerated":
		return BlockAccelerated, nil
	default:
		return "", fmt.Errorf("unknown multiplication strategy %q (expected %q or %q)", s, LimbSerial, BlockAccelerated)
	}
}

// NewMultiplier returns the multiplier for strategy bound to ctx.
func NewMultiplier(ctx *Context, strategy Strategy) (Multiplier, error) {
	if ctx == nil {
		return nil, fmt.Errorf("montgomery context is required")
	}
	switch strategy {
	case LimbSerial:
		return &limbSerial{ctx: ctx}, nil
	case BlockAccelerated:
		return &blockAccelerated{ctx: ctx}, nil
	default:
		return nil, fmt.Errorf("unknown multiplication strategy %q", strategy)
	}
}

// ToMontgomery returns x*R mod N.
func ToMontgomery(m Multiplier, x *Nat) Nat {
	return m.Mul(x, &m.Context().R2)
}

// FromMontgomery returns x*R^-1 mod N.
func FromMontgomery(m Multiplier, x *Nat) Nat {
	one := One()
	return m.Mul(x, &one)
}

// reduceOnce maps t < 2N, given as Limbs+1 limbs, into [0, N). The
// subtraction is always performed and the result picked with a mask.
func reduceOnce(t []uint32, n *Nat) Nat {
	var lo Nat
	copy(lo[:], t[:Limbs])
	diff, borrow := Sub(&lo, n)
	_, under := bits.Sub32(t[Limbs], borrow, 0)
	return Select(under^1, &diff, &lo)
}

// Meter receives cost accounting events.
type Meter interface {
	Add(op string, n uint64)
}

// OpMontMul is the Meter operation recorded for each Montgomery product.
const OpMontMul = "montmul"

type metered struct {
	Multiplier
	meter Meter
}

// Metered wraps m so that every product is reported to meter.
func Metered(m Multiplier, meter Meter) Multiplier {
	if meter == nil {
		return m
	}
	return &metered{Multiplier: m, meter: meter}
}

func (m *metered) Mul(a, b *Nat) Nat {
	m.meter.Add(OpMontMul, 1)
	return m.Multiplier.Mul(a, b)
}
