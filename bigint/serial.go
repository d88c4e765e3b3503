package bigint

import "math/bits"

// limbSerial is word-by-word Montgomery multiplication (CIOS) over 32-bit
// limbs with a Limbs+2 limb accumulator.
type limbSerial struct {
	ctx *Context
}

func (s *limbSerial) Context() *Context  { return s.ctx }
func (s *limbSerial) Strategy() Strategy { return LimbSerial }

func (s *limbSerial) Mul(a, b *Nat) Nat {
	var t [Limbs + 2]uint32
	n := &s.ctx.N

	for i := 0; i < Limbs; i++ {
		// t += a[i] * b
		c := mulAddRow(t[:Limbs], b[:], a[i])
		var c2 uint32
		t[Limbs], c2 = bits.Add32(t[Limbs], c, 0)
		t[Limbs+1] = c2

		// t += m * N makes t[0] zero.
		m := t[0] * s.ctx.NPrime
		c = mulAddRow(t[:Limbs], n[:], m)
		t[Limbs], c2 = bits.Add32(t[Limbs], c, 0)
		t[Limbs+1] += c2

		// t /= 2^32
		copy(t[:Limbs+1], t[1:])
		t[Limbs+1] = 0
	}

	return reduceOnce(t[:Limbs+1], n)
}

// mulAddRow sets acc += x*y over len(x) limbs and returns the carry out.
func mulAddRow(acc, x []uint32, y uint32) uint32 {
	acc = acc[:len(x)]
	var carry uint32
	for j := range x {
		hi, lo := bits.Mul32(x[j], y)
		var c uint32
		lo, c = bits.Add32(lo, carry, 0)
		hi += c
		acc[j], c = bits.Add32(acc[j], lo, 0)
		hi += c
		carry = hi
	}
	return carry
}
