package bigint

import (
	"math/big"
	"math/rand/v2"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randNat(t testing.TB, r *rand.Rand, below *big.Int) Nat {
	t.Helper()
	buf := make([]byte, Bytes)
	for i := range buf {
		buf[i] = byte(r.Uint32())
	}
	v := new(big.Int).SetBytes(buf)
	if below != nil {
		v.Mod(v, below)
	}
	n, err := NatFromBig(v)
	require.NoError(t, err)
	return n
}

// montRef computes a*b*R^-1 mod N with math/big.
func montRef(ctx *Context, a, b *Nat) *big.Int {
	n := ctx.Modulus()
	rInv := new(big.Int).Lsh(big.NewInt(1), Limbs*32)
	rInv.ModInverse(rInv, n)
	p := new(big.Int).Mul(a.Big(), b.Big())
	p.Mul(p, rInv)
	return p.Mod(p, n)
}

func TestDefaultContext(t *testing.T) {
	ctx := DefaultContext()
	n := ctx.Modulus()

	t.Run("modulus", func(t *testing.T) {
		assert.Equal(t, 2048, n.BitLen())
		assert.Equal(t, ModulusHex, n.Text(16))
		assert.Equal(t, n.String(), ctx.N.String())
	})

	t.Run("n prime", func(t *testing.T) {
		assert.Equal(t, uint32(585614633), ctx.NPrime)
		// N * N' == -1 mod 2^32
		assert.Equal(t, ^uint32(0), ctx.N[0]*ctx.NPrime)
	})

	t.Run("n prime 256", func(t *testing.T) {
		assert.Equal(t, uint64(ctx.NPrime), ctx.nPrime256[0]&0xffffffff)
		prod := new(uint256.Int).Mul(&ctx.nBlocks[0], &ctx.nPrime256)
		assert.Equal(t, max256, *prod)
	})

	t.Run("r squared", func(t *testing.T) {
		want := new(big.Int).Lsh(big.NewInt(1), 4096)
		want.Mod(want, n)
		assert.Equal(t, want.String(), ctx.R2.String())
	})

	t.Run("built once", func(t *testing.T) {
		assert.Same(t, ctx, DefaultContext())
	})
}

func TestNewContextErrors(t *testing.T) {
	t.Run("even modulus", func(t *testing.T) {
		n := new(big.Int).Lsh(big.NewInt(1), 2047)
		_, err := NewContext(n)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrEvenModulus)
	})

	t.Run("short modulus", func(t *testing.T) {
		_, err := NewContext(big.NewInt(65537))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrModulusLength)
		assert.Contains(t, err.Error(), "got 17 bits")
	})
}

func TestNegInverse32(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	for i := 0; i < 1000; i++ {
		n0 := r.Uint32() | 1
		assert.Equal(t, ^uint32(0), n0*negInverse32(n0), "n0=%d", n0)
	}
}

func TestAddSub(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	mod := new(big.Int).Lsh(big.NewInt(1), Limbs*32)

	for i := 0; i < 100; i++ {
		x, y := randNat(t, r, nil), randNat(t, r, nil)

		sum, carry := Add(&x, &y)
		want := new(big.Int).Add(x.Big(), y.Big())
		assert.Equal(t, uint32(want.Rsh(want, Limbs*32).Uint64()), carry)
		want.Add(x.Big(), y.Big()).Mod(want, mod)
		assert.Equal(t, want.String(), sum.String())

		diff, borrow := Sub(&x, &y)
		wantBorrow := uint32(0)
		if x.Cmp(&y) < 0 {
			wantBorrow = 1
		}
		assert.Equal(t, wantBorrow, borrow)
		want.Sub(x.Big(), y.Big()).Mod(want, mod)
		assert.Equal(t, want.String(), diff.String())
	}
}

func TestSelect(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 4))
	x, y := randNat(t, r, nil), randNat(t, r, nil)
	assert.Equal(t, x, Select(1, &x, &y))
	assert.Equal(t, y, Select(0, &x, &y))
}

func TestConversions(t *testing.T) {
	r := rand.New(rand.NewPCG(5, 6))
	x := randNat(t, r, nil)

	t.Run("big endian", func(t *testing.T) {
		be := x.BytesBE()
		require.Len(t, be, Bytes)
		back, err := NatFromBytesBE(be)
		require.NoError(t, err)
		assert.Equal(t, x, back)
		assert.Equal(t, x.Big().Bytes(), new(big.Int).SetBytes(be).Bytes())
	})

	t.Run("little endian limbs", func(t *testing.T) {
		le := x.LimbBytesLE()
		back, err := NatFromLimbBytesLE(le)
		require.NoError(t, err)
		assert.Equal(t, x, back)
		assert.Equal(t, byte(x[0]), le[0])
	})

	t.Run("short input", func(t *testing.T) {
		v, err := NatFromBytesBE([]byte{0x01, 0x00})
		require.NoError(t, err)
		assert.Equal(t, uint32(256), v[0])

		v, err = NatFromLimbBytesLE([]byte{0x01, 0x00})
		require.NoError(t, err)
		assert.Equal(t, uint32(1), v[0])
	})

	t.Run("too long", func(t *testing.T) {
		_, err := NatFromBytesBE(make([]byte, Bytes+1))
		assert.ErrorIs(t, err, ErrOutOfRange)
		_, err = NatFromLimbBytesLE(make([]byte, Bytes+1))
		assert.ErrorIs(t, err, ErrOutOfRange)
		_, err = NatFromBig(big.NewInt(-1))
		assert.ErrorIs(t, err, ErrOutOfRange)
	})
}

func TestMultipliersMatchReference(t *testing.T) {
	ctx := DefaultContext()
	n := ctx.Modulus()
	r := rand.New(rand.NewPCG(8, 9))

	nMinusOne, err := NatFromBig(new(big.Int).Sub(n, big.NewInt(1)))
	require.NoError(t, err)
	zero, one := Nat{}, One()

	edges := []struct {
		name string
		a, b Nat
	}{
		{"zero", zero, nMinusOne},
		{"one", one, one},
		{"max", nMinusOne, nMinusOne},
		{"r squared", ctx.R2, ctx.R2},
	}

	for _, strategy := range Strategies() {
		mul, err := NewMultiplier(ctx, strategy)
		require.NoError(t, err)

		t.Run(string(strategy), func(t *testing.T) {
			for _, tc := range edges {
				got := mul.Mul(&tc.a, &tc.b)
				assert.Equal(t, montRef(ctx, &tc.a, &tc.b).String(), got.String(), tc.name)
			}
			for i := 0; i < 64; i++ {
				a, b := randNat(t, r, n), randNat(t, r, n)
				got := mul.Mul(&a, &b)
				require.Equal(t, montRef(ctx, &a, &b).String(), got.String())
				require.True(t, ctx.Reduced(&got))
			}
		})
	}
}

func TestStrategiesAgree(t *testing.T) {
	ctx := DefaultContext()
	serial, err := NewMultiplier(ctx, LimbSerial)
	require.NoError(t, err)
	block, err := NewMultiplier(ctx, BlockAccelerated)
	require.NoError(t, err)

	r := rand.New(rand.NewPCG(10, 11))
	for i := 0; i < 256; i++ {
		a, b := randNat(t, r, ctx.Modulus()), randNat(t, r, ctx.Modulus())
		require.Equal(t, serial.Mul(&a, &b), block.Mul(&a, &b))
	}
}

func TestMontgomeryRoundTrip(t *testing.T) {
	ctx := DefaultContext()
	r := rand.New(rand.NewPCG(12, 13))

	for _, strategy := range Strategies() {
		mul, err := NewMultiplier(ctx, strategy)
		require.NoError(t, err)

		t.Run(string(strategy), func(t *testing.T) {
			for i := 0; i < 32; i++ {
				x := randNat(t, r, ctx.Modulus())
				m := ToMontgomery(mul, &x)

				want := new(big.Int).Lsh(x.Big(), Limbs*32)
				want.Mod(want, ctx.Modulus())
				assert.Equal(t, want.String(), m.String())

				back := FromMontgomery(mul, &m)
				assert.Equal(t, x, back)
			}
		})
	}
}

func TestWideMul(t *testing.T) {
	r := rand.New(rand.NewPCG(14, 15))
	values := []uint256.Int{zero256, max256, *uint256.NewInt(1)}
	for i := 0; i < 32; i++ {
		var v uint256.Int
		for k := range v {
			v[k] = r.Uint64()
		}
		values = append(values, v)
	}

	for i := range values {
		for j := range values {
			var lo, hi uint256.Int
			wideMul(&lo, &hi, &values[i], &values[j])

			want := new(big.Int).Mul(values[i].ToBig(), values[j].ToBig())
			got := new(big.Int).Lsh(hi.ToBig(), 256)
			got.Add(got, lo.ToBig())
			require.Equal(t, want.String(), got.String(), "x=%s y=%s", values[i].Hex(), values[j].Hex())
		}
	}
}

func TestStrategiesIsCopy(t *testing.T) {
	list := Strategies()
	require.Equal(t, []Strategy{LimbSerial, BlockAccelerated}, list)

	list[0] = "fft"
	assert.Equal(t, LimbSerial, Strategies()[0])
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		in   string
		want Strategy
		err  bool
	}{
		{"limb-serial", LimbSerial, false},
		{"", LimbSerial, false},
		{"BLOCK", BlockAccelerated, false},
		{"accelerated", BlockAccelerated, false},
		{"karatsuba", "", true},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseStrategy(tc.in)
			if tc.err {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "unknown multiplication strategy")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	_, err := NewMultiplier(DefaultContext(), Strategy("bogus"))
	assert.Error(t, err)
	_, err = NewMultiplier(nil, LimbSerial)
	assert.Error(t, err)
}

type countingMeter map[string]uint64

func (m countingMeter) Add(op string, n uint64) { m[op] += n }

func TestMetered(t *testing.T) {
	mul, err := NewMultiplier(DefaultContext(), LimbSerial)
	require.NoError(t, err)

	assert.Same(t, mul, Metered(mul, nil))

	meter := countingMeter{}
	m := Metered(mul, meter)
	x := One()
	xm := ToMontgomery(m, &x)
	_ = FromMontgomery(m, &xm)

	assert.Equal(t, uint64(2), meter[OpMontMul])
	assert.Equal(t, LimbSerial, m.Strategy())
}

func BenchmarkMul(b *testing.B) {
	ctx := DefaultContext()
	r := rand.New(rand.NewPCG(16, 17))
	x, y := randNat(b, r, ctx.Modulus()), randNat(b, r, ctx.Modulus())

	for _, strategy := range Strategies() {
		mul, err := NewMultiplier(ctx, strategy)
		require.NoError(b, err)
		b.Run(string(strategy), func(b *testing.B) {
			for b.Loop() {
				_ = mul.Mul(&x, &y)
			}
		})
	}
}
