// Package circuit expresses the RSA-2048 public-exponent check as a gnark
// circuit so the signature opening can be proven in zero knowledge.
//
// The circuit keeps the signature secret and exposes the modulus and the
// expected padded block as public inputs. It asserts
//
//	Signature^65537 mod Modulus == Expected
//
// using sixteen modular squarings and one multiplication over a 2048-bit
// emulated ring, mirroring modexp.Pow65537.
//
// Check runs the gnark test engine (fast, no proof). Prove compiles the
// circuit to R1CS over BN254, runs a Groth16 setup and produces and verifies
// a proof.
package circuit

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/consensys/gnark/std/math/emulated"
	"github.com/consensys/gnark/test"
	"github.com/rs/zerolog"
)

// Ring2048 is the emulated ring Z/(2^2048-1) holding 2048-bit values. Its
// modulus is never used for reduction; every product is reduced with ModMul
// against the RSA modulus.
type Ring2048 struct{}

func (Ring2048) NbLimbs() uint     { return 32 }
func (Ring2048) BitsPerLimb() uint { return 64 }
func (Ring2048) IsPrime() bool     { return false }
func (Ring2048) Modulus() *big.Int {
	m := new(big.Int).Lsh(big.NewInt(1), 2048)
	return m.Sub(m, big.NewInt(1))
}

// RSA65537Circuit asserts Signature^65537 mod Modulus == Expected.
type RSA65537Circuit struct {
	Modulus   emulated.Element[Ring2048] `gnark:",public"`
	Expected  emulated.Element[Ring2048] `gnark:",public"`
	Signature emulated.Element[Ring2048] `gnark:",secret"`
}

func (c *RSA65537Circuit) Define(api frontend.API) error {
	f, err := emulated.NewField[Ring2048](api)
	if err != nil {
		return fmt.Errorf("failed to create emulated field: %w", err)
	}

	acc := &c.Signature
	for range 16 {
		acc = f.ModMul(acc, acc, &c.Modulus)
	}
	acc = f.ModMul(acc, &c.Signature, &c.Modulus)

	f.AssertIsEqual(acc, &c.Expected)
	return nil
}

// NewAssignment builds a full assignment from the modulus, the big-endian
// signature and the expected padded block.
func NewAssignment(modulus *big.Int, signature, expected []byte) *RSA65537Circuit {
	return &RSA65537Circuit{
		Modulus:   emulated.ValueOf[Ring2048](modulus),
		Expected:  emulated.ValueOf[Ring2048](new(big.Int).SetBytes(expected)),
		Signature: emulated.ValueOf[Ring2048](new(big.Int).SetBytes(signature)),
	}
}

// Check reports whether assignment satisfies the circuit.
func Check(assignment *RSA65537Circuit) error {
	var circuit RSA65537Circuit
	if err := test.IsSolved(&circuit, assignment, ecc.BN254.ScalarField()); err != nil {
		return fmt.Errorf("circuit not satisfied: %w", err)
	}
	return nil
}

// ProofResult describes a generated and verified Groth16 proof.
type ProofResult struct {
	Constraints int
	Proof       []byte
}

// Prove compiles the circuit, runs a Groth16 setup, proves assignment and
// verifies the proof against the public part of the witness.
func Prove(assignment *RSA65537Circuit, logger zerolog.Logger) (*ProofResult, error) {
	var circuit RSA65537Circuit

	logger.Info().Msg("compiling circuit")
	cs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, &circuit)
	if err != nil {
		return nil, fmt.Errorf("circuit compilation failed: %w", err)
	}
	logger.Info().Int("constraints", cs.GetNbConstraints()).Msg("compiled circuit")

	logger.Info().Msg("running groth16 setup")
	pk, vk, err := groth16.Setup(cs)
	if err != nil {
		return nil, fmt.Errorf("trusted setup failed: %w", err)
	}

	witness, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField())
	if err != nil {
		return nil, fmt.Errorf("witness creation failed: %w", err)
	}
	publicWitness, err := witness.Public()
	if err != nil {
		return nil, fmt.Errorf("public witness creation failed: %w", err)
	}

	logger.Info().Msg("generating proof")
	proof, err := groth16.Prove(cs, pk, witness)
	if err != nil {
		return nil, fmt.Errorf("proof generation failed: %w", err)
	}

	logger.Info().Msg("verifying proof")
	if err := groth16.Verify(proof, vk, publicWitness); err != nil {
		return nil, fmt.Errorf("proof verification failed: %w", err)
	}

	var buf bytes.Buffer
	if _, err := proof.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to serialize proof: %w", err)
	}

	return &ProofResult{
		Constraints: cs.GetNbConstraints(),
		Proof:       buf.Bytes(),
	}, nil
}
