package main

import (
	"context"
	"log"
	"os"

	"github.com/urfave/cli/v3"
	"github.com/weikengchen/fps-r0/cmd"
)

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "fps-r0",
		Usage: "SC Pay receipt DKIM verifier",
		Flags: cmd.GlobalFlags(),
		Commands: []*cli.Command{
			cmd.VerifyCommand(),
			cmd.ReconstructCommand(),
			cmd.WitnessCommand(),
			cmd.SelfTestCommand(),
			cmd.BenchCommand(),
			cmd.ProveCommand(),
		},
	}
}

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
