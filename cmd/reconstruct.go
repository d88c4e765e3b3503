package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/urfave/cli/v3"

	"github.com/weikengchen/fps-r0/dkim"
	"github.com/weikengchen/fps-r0/verify"
	"github.com/weikengchen/fps-r0/witness"
)

// ReconstructCommand creates the reconstruct command
func ReconstructCommand() *cli.Command {
	flags := append(witnessFlags(),
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output in JSON format",
		},
	)

	return &cli.Command{
		Name:   "reconstruct",
		Usage:  "Print the canonical DKIM-signed streams and digests of a witness",
		Flags:  flags,
		Action: runReconstructCommand,
	}
}

func runReconstructCommand(ctx context.Context, cmd *cli.Command) error {
	w, err := loadWitness(ctx, cmd)
	if err != nil {
		return err
	}
	if err := witness.Validate(w); err != nil {
		return err
	}

	msg := dkim.Reconstruct(w)
	digests := dkim.ComputeDigests(msg)
	block := dkim.BuildPaddedDigest(digests.DataHash)
	bhErr := dkim.CheckBodyHash(w.BHBase64, digests.BodyHash)

	if cmd.Bool("json") {
		output := map[string]interface{}{
			"body":               string(msg.Body),
			"header":             string(msg.Header),
			"signedHeaderPrefix": string(msg.SignedHeaderPrefix),
			"bodyHash":           hexutil.Encode(digests.BodyHash[:]),
			"dataHash":           hexutil.Encode(digests.DataHash[:]),
			"paddedDigest":       hexutil.Encode(block[:]),
			"bodyHashMatches":    bhErr == nil,
		}
		jsonBytes, err := json.MarshalIndent(output, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal output: %w", err)
		}
		fmt.Println(string(jsonBytes))
		return nil
	}

	formatter := verify.NewFormatter()
	fmt.Printf("=== Reconstructed Message ===\n")
	fmt.Print(formatter.FormatMessage(msg))

	fmt.Printf("\n=== Digests ===\n")
	fmt.Printf("Body hash: %x\n", digests.BodyHash)
	fmt.Printf("Data hash: %x\n", digests.DataHash)
	if bhErr != nil {
		fmt.Printf("bh= check: ✗ %v\n", bhErr)
	} else {
		fmt.Printf("bh= check: ✓\n")
	}

	fmt.Printf("\n=== Padded Digest ===\n")
	fmt.Print(formatter.FormatPaddedBlock(block[:], "  "))
	return nil
}
