package cmd

import (
	"context"
	"fmt"
	"math/big"
	"math/rand/v2"
	"os"
	"runtime"
	"sync/atomic"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/weikengchen/fps-r0/bigint"
	"github.com/weikengchen/fps-r0/journal"
	"github.com/weikengchen/fps-r0/modexp"
	"github.com/weikengchen/fps-r0/testdata"
	"github.com/weikengchen/fps-r0/verify"
	"github.com/weikengchen/fps-r0/witness"
)

// SelfTestCommand creates the selftest command
func SelfTestCommand() *cli.Command {
	return &cli.Command{
		Name:  "selftest",
		Usage: "Run differential checks of the arithmetic engine against math/big",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "samples",
				Usage: "Number of random samples",
				Value: 64,
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Number of concurrent workers",
				Value: runtime.NumCPU(),
			},
			&cli.Uint64Flag{
				Name:  "seed",
				Usage: "Random seed",
				Value: 1,
			},
		},
		Action: runSelfTestCommand,
	}
}

// engines holds one multiplier per strategy.
type engines struct {
	ctx  *bigint.Context
	muls map[bigint.Strategy]bigint.Multiplier
}

func newEngines() (*engines, error) {
	e := &engines{ctx: bigint.DefaultContext(), muls: make(map[bigint.Strategy]bigint.Multiplier)}
	for _, s := range bigint.Strategies() {
		mul, err := bigint.NewMultiplier(e.ctx, s)
		if err != nil {
			return nil, err
		}
		e.muls[s] = mul
	}
	return e, nil
}

func (e *engines) randomBelowN(r *rand.Rand) bigint.Nat {
	buf := make([]byte, bigint.Bytes)
	for i := range buf {
		buf[i] = byte(r.Uint32())
	}
	v := new(big.Int).SetBytes(buf)
	v.Mod(v, e.ctx.Modulus())
	x, _ := bigint.NatFromBig(v)
	return x
}

// checkSample runs every property on one random sample.
func (e *engines) checkSample(r *rand.Rand) error {
	n := e.ctx.Modulus()
	a, b := e.randomBelowN(r), e.randomBelowN(r)
	serial, block := e.muls[bigint.LimbSerial], e.muls[bigint.BlockAccelerated]

	// Strategies agree
	if serial.Mul(&a, &b) != block.Mul(&a, &b) {
		return fmt.Errorf("strategies disagree on %s * %s", a.String(), b.String())
	}

	for _, s := range bigint.Strategies() {
		mul := e.muls[s]

		// Montgomery round trip
		am := bigint.ToMontgomery(mul, &a)
		if back := bigint.FromMontgomery(mul, &am); back != a {
			return fmt.Errorf("%s: montgomery round trip failed for %s", s, a.String())
		}

		// Fixed ladder, binary ladder and math/big agree
		fixed := modexp.Pow65537(mul, &am)
		binary, err := (&modexp.Binary{Mul: mul}).Exp(&am, big.NewInt(modexp.PublicExponent))
		if err != nil {
			return err
		}
		if fixed != binary {
			return fmt.Errorf("%s: fixed and binary exponentiation disagree", s)
		}
		plain := bigint.FromMontgomery(mul, &fixed)
		want := new(big.Int).Exp(a.Big(), big.NewInt(modexp.PublicExponent), n)
		if plain.Big().Cmp(want) != 0 {
			return fmt.Errorf("%s: exponentiation differs from math/big", s)
		}
	}
	return nil
}

// checkSampleWitness verifies the embedded receipt with every strategy.
func checkSampleWitness() error {
	w, err := witness.DecodeJSON(testdata.WitnessJSON)
	if err != nil {
		return err
	}
	for _, s := range bigint.Strategies() {
		svc, err := verify.NewService(&journal.Journal{}, verify.Config{Strategy: s})
		if err != nil {
			return err
		}
		if _, err := svc.Verify(w); err != nil {
			return fmt.Errorf("%s: sample witness rejected: %w", s, err)
		}
	}
	return nil
}

func runSelfTestCommand(ctx context.Context, cmd *cli.Command) error {
	samples := int(cmd.Int("samples"))
	workers := int(cmd.Int("workers"))
	seed := cmd.Uint64("seed")
	if samples < 1 {
		return fmt.Errorf("--samples must be positive")
	}
	if workers < 1 {
		workers = 1
	}

	e, err := newEngines()
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "\n=== STEP 1: Sample witness ===\n")
	if err := checkSampleWitness(); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "✓ Sample witness verified with %d strategies\n", len(bigint.Strategies()))

	fmt.Fprintf(os.Stderr, "\n=== STEP 2: Differential checks (%d samples, %d workers) ===\n", samples, workers)
	var done atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < samples; i++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r := rand.New(rand.NewPCG(seed, uint64(i)))
			if err := e.checkSample(r); err != nil {
				return fmt.Errorf("sample %d: %w", i, err)
			}
			done.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "✓ %d samples passed\n", done.Load())
	return nil
}
