package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	gnarklogger "github.com/consensys/gnark/logger"
	"github.com/urfave/cli/v3"

	"github.com/weikengchen/fps-r0/bigint"
	"github.com/weikengchen/fps-r0/circuit"
	"github.com/weikengchen/fps-r0/dkim"
	"github.com/weikengchen/fps-r0/verify"
	"github.com/weikengchen/fps-r0/witness"
)

// ProveCommand creates the prove command
func ProveCommand() *cli.Command {
	flags := append(witnessFlags(), engineFlags()...)
	flags = append(flags,
		&cli.BoolFlag{
			Name:  "full",
			Usage: "Compile the circuit and produce a Groth16 proof (slow)",
		},
		&cli.StringFlag{
			Name:  "out",
			Usage: "Write the serialized proof to this path (requires --full)",
		},
	)

	return &cli.Command{
		Name:   "prove",
		Usage:  "Check or prove the RSA signature opening in a gnark circuit",
		Flags:  flags,
		Action: runProveCommand,
	}
}

func runProveCommand(ctx context.Context, cmd *cli.Command) error {
	logger, err := newLogger(cmd, os.Stderr)
	if err != nil {
		return err
	}
	gnarklogger.Set(logger)

	cfg, err := configFromFlags(cmd)
	if err != nil {
		return err
	}
	if cmd.String("out") != "" && !cmd.Bool("full") {
		return fmt.Errorf("--out requires --full")
	}

	fmt.Fprintf(os.Stderr, "\n=== STEP 1: Loading witness ===\n")
	w, err := loadWitness(ctx, cmd)
	if err != nil {
		return err
	}

	// Rejections are reported the same way as by verify.
	rejected := func(reason verify.Reason, err error) error {
		logger.Warn().Str("reason", string(reason)).Err(err).Msg("proof input rejected")
		fmt.Fprintf(os.Stderr, "✗ Verification failed\n")
		return ErrVerificationFailed
	}

	if err := witness.Validate(w); err != nil {
		return rejected(verify.ReasonFormatViolation, err)
	}
	sig, err := plainSignature(w, cfg)
	if err != nil {
		return rejected(verify.ReasonMalformedEncoding, err)
	}

	fmt.Fprintf(os.Stderr, "\n=== STEP 2: Building expected block ===\n")
	msg := dkim.Reconstruct(w)
	digests := dkim.ComputeDigests(msg)
	if err := dkim.CheckBodyHash(w.BHBase64, digests.BodyHash); err != nil {
		reason := verify.ReasonDigestInconsistency
		if errors.Is(err, dkim.ErrMalformedEncoding) {
			reason = verify.ReasonMalformedEncoding
		}
		return rejected(reason, err)
	}
	block := dkim.BuildPaddedDigest(digests.DataHash)
	fmt.Fprintf(os.Stderr, "✓ Data hash %x\n", digests.DataHash)

	assignment := circuit.NewAssignment(bigint.DefaultContext().Modulus(), sig, block[:])

	fmt.Fprintf(os.Stderr, "\n=== STEP 3: Solving circuit ===\n")
	if err := circuit.Check(assignment); err != nil {
		return rejected(verify.ReasonPaddingMismatch, err)
	}
	fmt.Fprintf(os.Stderr, "✓ Circuit satisfied\n")

	if !cmd.Bool("full") {
		return nil
	}

	fmt.Fprintf(os.Stderr, "\n=== STEP 4: Proving ===\n")
	result, err := circuit.Prove(assignment, logger)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "✓ Proof verified (%d constraints, %d bytes)\n", result.Constraints, len(result.Proof))

	if path := cmd.String("out"); path != "" {
		if err := os.WriteFile(path, result.Proof, 0o644); err != nil {
			return fmt.Errorf("failed to write proof: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Proof written to %s\n", path)
	}
	return nil
}
