package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"github.com/weikengchen/fps-r0/bigint"
	"github.com/weikengchen/fps-r0/verify"
	"github.com/weikengchen/fps-r0/witness"
)

// GlobalFlags returns the flags shared by every command
func GlobalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "Log level: trace, debug, info, warn or error",
			Value:   "info",
			Sources: cli.EnvVars("FPS_LOG_LEVEL"),
		},
		&cli.StringFlag{
			Name:  "log-format",
			Usage: "Log format: console or json",
			Value: "console",
		},
	}
}

func witnessFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "witness",
			Usage:    "Path to witness file (.json, .bin or .b64)",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "format",
			Usage: "Witness format: auto, json, borsh or base64",
			Value: string(witness.FormatAuto),
		},
	}
}

func engineFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "strategy",
			Usage:   "Montgomery multiplication strategy: limb-serial or block",
			Value:   string(bigint.LimbSerial),
			Sources: cli.EnvVars("FPS_STRATEGY"),
		},
		&cli.StringFlag{
			Name:    "signature-encoding",
			Usage:   "Signature encoding in the witness: be (big-endian) or mont (Montgomery limbs)",
			Value:   string(verify.EncodingBigEndian),
			Sources: cli.EnvVars("FPS_SIGNATURE_ENCODING"),
		},
	}
}

// newLogger builds the zerolog logger from the global flags
func newLogger(cmd *cli.Command, w io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(cmd.String("log-level")))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level: %w", err)
	}

	var out io.Writer = w
	switch cmd.String("log-format") {
	case "json":
	case "", "console":
		out = zerolog.ConsoleWriter{Out: w, NoColor: w != os.Stderr}
	default:
		return zerolog.Nop(), fmt.Errorf("invalid log format %q", cmd.String("log-format"))
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger(), nil
}

func loadWitness(ctx context.Context, cmd *cli.Command) (*witness.Witness, error) {
	reader := &witness.FileReader{
		Path:   cmd.String("witness"),
		Format: witness.Format(cmd.String("format")),
	}
	w, err := reader.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load witness: %w", err)
	}
	return w, nil
}

func configFromFlags(cmd *cli.Command) (verify.Config, error) {
	strategy, err := bigint.ParseStrategy(cmd.String("strategy"))
	if err != nil {
		return verify.Config{}, err
	}
	encoding, err := verify.ParseSignatureEncoding(cmd.String("signature-encoding"))
	if err != nil {
		return verify.Config{}, err
	}
	return verify.Config{Strategy: strategy, Encoding: encoding}, nil
}

// plainSignature returns the big-endian signature regardless of encoding
func plainSignature(w *witness.Witness, cfg verify.Config) ([]byte, error) {
	if cfg.Encoding != verify.EncodingMontgomery {
		return w.Signature, nil
	}
	mul, err := bigint.NewMultiplier(bigint.DefaultContext(), cfg.Strategy)
	if err != nil {
		return nil, err
	}
	m, err := bigint.NatFromLimbBytesLE(w.Signature)
	if err != nil {
		return nil, fmt.Errorf("failed to decode montgomery signature: %w", err)
	}
	plain := bigint.FromMontgomery(mul, &m)
	return plain.BytesBE(), nil
}
