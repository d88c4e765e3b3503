package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/weikengchen/fps-r0/bigint"
	"github.com/weikengchen/fps-r0/journal"
	"github.com/weikengchen/fps-r0/verify"
)

// ErrVerificationFailed is the only failure reported for a rejected witness.
var ErrVerificationFailed = errors.New("verification failed")

// VerifyCommand creates the verify command
func VerifyCommand() *cli.Command {
	flags := append(witnessFlags(), engineFlags()...)
	flags = append(flags,
		&cli.StringFlag{
			Name:  "receipt",
			Usage: "Write the CBOR receipt to this path",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output in JSON format",
		},
	)

	return &cli.Command{
		Name:   "verify",
		Usage:  "Verify the DKIM signature of an SC Pay receipt witness",
		Flags:  flags,
		Action: runVerifyCommand,
	}
}

func runVerifyCommand(ctx context.Context, cmd *cli.Command) error {
	logger, err := newLogger(cmd, os.Stderr)
	if err != nil {
		return err
	}
	cfg, err := configFromFlags(cmd)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "\n=== STEP 1: Loading witness ===\n")
	w, err := loadWitness(ctx, cmd)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "✓ Loaded %s\n", cmd.String("witness"))

	fmt.Fprintf(os.Stderr, "\n=== STEP 2: Verifying signature (%s, %s) ===\n", cfg.Strategy, cfg.Encoding)
	var j journal.Journal
	ledger := &journal.CycleLedger{}
	svc, err := verify.NewService(&j, cfg, verify.WithLogger(logger), verify.WithMeter(ledger))
	if err != nil {
		return fmt.Errorf("failed to create verifier: %w", err)
	}

	result, verifyErr := svc.Verify(w)
	if verifyErr != nil {
		if _, ok := verify.ReasonOf(verifyErr); !ok {
			return verifyErr
		}
	}
	receipt := journal.NewReceipt(&j, ledger, verifyErr == nil, string(cfg.Strategy))

	if path := cmd.String("receipt"); path != "" {
		data, err := receipt.Encode()
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("failed to write receipt: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Receipt written to %s\n", path)
	}

	if verifyErr != nil {
		fmt.Fprintf(os.Stderr, "✗ Verification failed\n")
		return ErrVerificationFailed
	}
	fmt.Fprintf(os.Stderr, "✓ Signature valid (%d Montgomery products)\n", ledger.Count(bigint.OpMontMul))

	if cmd.Bool("json") {
		formatter := verify.NewFormatter()
		output := formatter.FormatVerificationResult(result)
		output["receipt"] = receipt

		jsonBytes, err := json.MarshalIndent(output, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal output: %w", err)
		}
		fmt.Println(string(jsonBytes))
		return nil
	}

	fmt.Printf("=== Verified Payment ===\n")
	fmt.Printf("Amount: HKD %s\n", result.Amount)
	fmt.Printf("Email:  %s\n", result.Email)
	return nil
}
