package bigint

import (
	"math/bits"

	"github.com/holiman/uint256"
)

const (
	blockLimbs   = 8
	blocksPerNat = Limbs / blockLimbs
)

var (
	zero256 uint256.Int
	max256  = *new(uint256.Int).Not(new(uint256.Int))
)

// blockAccelerated is Montgomery multiplication over 256-bit blocks. The
// accumulator is Limbs+blockLimbs+1 limbs and every block product goes
// through mulMod256.
type blockAccelerated struct {
	ctx *Context
}

func (b *blockAccelerated) Context() *Context  { return b.ctx }
func (b *blockAccelerated) Strategy() Strategy { return BlockAccelerated }

func (b *blockAccelerated) Mul(x, y *Nat) Nat {
	var t [Limbs + blockLimbs + 1]uint32
	var xb, yb [blocksPerNat]uint256.Int
	for j := 0; j < blocksPerNat; j++ {
		xb[j] = loadBlock(blockOf(x[:], j))
		yb[j] = loadBlock(blockOf(y[:], j))
	}

	var lo, hi, m uint256.Int
	for i := 0; i < blocksPerNat; i++ {
		for j := 0; j < blocksPerNat; j++ {
			wideMul(&lo, &hi, &xb[i], &yb[j])
			addWide(t[:], j*blockLimbs, &lo, &hi)
		}

		// m = t mod 2^256 * N' mod 2^256 clears the low block.
		low := loadBlock(blockOf(t[:], 0))
		mulMod256(&m, &low, &b.ctx.nPrime256, &zero256)
		for j := 0; j < blocksPerNat; j++ {
			wideMul(&lo, &hi, &m, &b.ctx.nBlocks[j])
			addWide(t[:], j*blockLimbs, &lo, &hi)
		}

		copy(t[:], t[blockLimbs:])
		clear(t[len(t)-blockLimbs:])
	}

	return reduceOnce(t[:Limbs+1], &b.ctx.N)
}

// mulMod256 sets z = x*y mod m, where m == 0 stands for 2^256.
func mulMod256(z, x, y, m *uint256.Int) *uint256.Int {
	if m.IsZero() {
		return z.Mul(x, y)
	}
	return z.MulMod(x, y, m)
}

// wideMul sets lo, hi to the 512-bit product x*y. It combines the product
// mod 2^256 with the product mod 2^256-1: since 2^256 == 1 mod 2^256-1,
// hi == r - lo mod 2^256-1.
func wideMul(lo, hi, x, y *uint256.Int) {
	var r uint256.Int
	mulMod256(lo, x, y, &zero256)
	mulMod256(&r, x, y, &max256)
	hi.Sub(&r, lo)
	if r.Lt(lo) {
		hi.SubUint64(hi, 1)
	}
}

// addWide adds the 512-bit value hi:lo into t starting at limb off and
// carries through the rest of t.
func addWide(t []uint32, off int, lo, hi *uint256.Int) {
	var c uint32
	for k := 0; k < 2*blockLimbs; k++ {
		w := lo
		if k >= blockLimbs {
			w = hi
		}
		kk := k % blockLimbs
		v := uint32(w[kk/2] >> (32 * (kk % 2)))
		t[off+k], c = bits.Add32(t[off+k], v, c)
	}
	for k := off + 2*blockLimbs; k < len(t); k++ {
		t[k], c = bits.Add32(t[k], 0, c)
	}
}

// blockOf returns block i of x as a fixed-size view.
func blockOf(x []uint32, i int) *[blockLimbs]uint32 {
	return (*[blockLimbs]uint32)(x[i*blockLimbs : (i+1)*blockLimbs])
}

func loadBlock(l *[blockLimbs]uint32) uint256.Int {
	var z uint256.Int
	for k := range z {
		z[k] = uint64(l[2*k]) | uint64(l[2*k+1])<<32
	}
	return z
}
