package bigint

import (
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/holiman/uint256"
)

// ModulusHex is the 2048-bit RSA modulus of the sc.com DKIM selector
// k06k22gbledmsml.
const ModulusHex = "" +
	"afb5ab279cc0df046f2910c763bd999f123297f96c17e1eb80337e96fcdd18b6" +
	"9212204dd8b9bdbf471e2e1e1bf13b404c63d35002037fb1609e6b91d4c0c8f5" +
	"2f42b66ebf24c2f75d4d5ad0f758ce9bdd1caf7a7dcf78942b744702a82fc97c" +
	"d240e2f563397dd15f9754481eabf0fa0742f04f4dbc69e3d2522207af1ed271" +
	"c6d77440582846fc773b17b1f44654435d99b4a811b394d78c2d2520c2adbffd" +
	"0372fcbc9904a36b85148798c4ad8309c511a2ddf10b58c6ae2c03e507123911" +
	"14b7d1e7d085b336061545570f55111a5bbc9ecc16b31b339f33ad48c338e8e4" +
	"29b7cd6f835f960dd3d01265705b8b9ba6751b0f2a53ee63d2677c95d03f58e7"

// ModulusNPrime is -N^-1 mod 2^32 for ModulusHex.
const ModulusNPrime uint32 = 585614633

var (
	ErrEvenModulus   = errors.New("modulus must be odd")
	ErrModulusLength = errors.New("modulus must be exactly 2048 bits")
)

// Context holds the per-modulus constants of the Montgomery domain. A Context
// is immutable after construction and safe for concurrent use.
type Context struct {
	// N is the modulus.
	N Nat
	// NPrime is -N^-1 mod 2^32.
	NPrime uint32
	// R2 is R^2 mod N with R = 2^2048.
	R2 Nat

	// -N^-1 mod 2^256 and N split into 256-bit blocks, for the block strategy.
	nPrime256 uint256.Int
	nBlocks   [blocksPerNat]uint256.Int

	modulus *big.Int
}

// NewContext derives the Montgomery constants for an odd 2048-bit modulus.
func NewContext(modulus *big.Int) (*Context, error) {
	if modulus.BitLen() != Limbs*32 {
		return nil, fmt.Errorf("%w: got %d bits", ErrModulusLength, modulus.BitLen())
	}
	if modulus.Bit(0) == 0 {
		return nil, ErrEvenModulus
	}

	n, err := NatFromBig(modulus)
	if err != nil {
		return nil, fmt.Errorf("failed to convert modulus: %w", err)
	}

	r2 := new(big.Int).Lsh(big.NewInt(1), 2*Limbs*32)
	r2.Mod(r2, modulus)
	r2Nat, err := NatFromBig(r2)
	if err != nil {
		return nil, fmt.Errorf("failed to convert R^2: %w", err)
	}

	ctx := &Context{
		N:       n,
		NPrime:  negInverse32(n[0]),
		R2:      r2Nat,
		modulus: new(big.Int).Set(modulus),
	}
	for j := range ctx.nBlocks {
		ctx.nBlocks[j] = loadBlock(blockOf(n[:], j))
	}
	ctx.nPrime256 = negInverse256(&ctx.nBlocks[0])
	return ctx, nil
}

// Modulus returns a copy of N.
func (c *Context) Modulus() *big.Int {
	return new(big.Int).Set(c.modulus)
}

// Reduced reports whether x < N.
func (c *Context) Reduced(x *Nat) bool {
	return x.Cmp(&c.N) < 0
}

var defaultContext = sync.OnceValue(func() *Context {
	n, ok := new(big.Int).SetString(ModulusHex, 16)
	if !ok {
		panic("bigint: invalid ModulusHex")
	}
	ctx, err := NewContext(n)
	if err != nil {
		panic(fmt.Sprintf("bigint: %v", err))
	}
	if ctx.NPrime != ModulusNPrime {
		panic("bigint: ModulusNPrime does not match ModulusHex")
	}
	return ctx
})

// DefaultContext returns the Context for ModulusHex. It is built once per
// process.
func DefaultContext() *Context {
	return defaultContext()
}

// negInverse32 returns -n0^-1 mod 2^32 by Newton iteration. Each step doubles
// the number of correct low bits, starting from 3 (n0*n0 == 1 mod 8).
func negInverse32(n0 uint32) uint32 {
	inv := n0
	for i := 0; i < 4; i++ {
		inv *= 2 - n0*inv
	}
	return -inv
}

// negInverse256 is negInverse32 widened to 256 bits.
func negInverse256(n0 *uint256.Int) uint256.Int {
	two := uint256.NewInt(2)
	inv := new(uint256.Int).Set(n0)
	t := new(uint256.Int)
	for i := 0; i < 7; i++ {
		t.Mul(n0, inv)
		t.Sub(two, t)
		inv.Mul(inv, t)
	}
	return *new(uint256.Int).Neg(inv)
}
