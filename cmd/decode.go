package cmd

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/urfave/cli/v3"

	"github.com/weikengchen/fps-r0/bigint"
	"github.com/weikengchen/fps-r0/verify"
	"github.com/weikengchen/fps-r0/witness"
)

// WitnessCommand creates the witness commands
func WitnessCommand() *cli.Command {
	return &cli.Command{
		Name:  "witness",
		Usage: "Decode and encode witness files",
		Commands: []*cli.Command{
			decodeWitnessCommand(),
			encodeWitnessCommand(),
		},
	}
}

func decodeWitnessCommand() *cli.Command {
	return &cli.Command{
		Name:   "decode",
		Usage:  "Decode a witness and print it as JSON",
		Flags:  witnessFlags(),
		Action: runDecodeWitnessCommand,
	}
}

func runDecodeWitnessCommand(ctx context.Context, cmd *cli.Command) error {
	w, err := loadWitness(ctx, cmd)
	if err != nil {
		return err
	}

	if err := witness.Validate(w); err != nil {
		fmt.Fprintf(os.Stderr, "⚠ %v\n", err)
	} else {
		fmt.Fprintf(os.Stderr, "✓ Witness fields valid\n")
	}

	jsonBytes, err := witness.EncodeJSON(w)
	if err != nil {
		return fmt.Errorf("failed to marshal witness: %w", err)
	}
	fmt.Println(string(jsonBytes))
	return nil
}

func encodeWitnessCommand() *cli.Command {
	flags := append(witnessFlags(),
		&cli.StringFlag{
			Name:  "out",
			Usage: "Write Borsh bytes to this path (default: print base64)",
		},
		&cli.BoolFlag{
			Name:  "montgomery",
			Usage: "Store the signature in Montgomery little-endian form",
		},
	)

	return &cli.Command{
		Name:   "encode",
		Usage:  "Encode a witness as Borsh",
		Flags:  flags,
		Action: runEncodeWitnessCommand,
	}
}

func runEncodeWitnessCommand(ctx context.Context, cmd *cli.Command) error {
	w, err := loadWitness(ctx, cmd)
	if err != nil {
		return err
	}

	if cmd.Bool("montgomery") {
		mul, err := bigint.NewMultiplier(bigint.DefaultContext(), bigint.LimbSerial)
		if err != nil {
			return err
		}
		w.Signature, err = verify.EncodeMontgomerySignature(mul, w.Signature)
		if err != nil {
			return fmt.Errorf("failed to encode signature: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Signature converted to Montgomery form: %s...\n", hexutil.Encode(w.Signature[:8]))
	}

	data, err := witness.Encode(w)
	if err != nil {
		return err
	}

	if path := cmd.String("out"); path != "" {
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("failed to write witness: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Wrote %d bytes to %s\n", len(data), path)
		return nil
	}

	fmt.Println(base64.StdEncoding.EncodeToString(data))
	return nil
}
