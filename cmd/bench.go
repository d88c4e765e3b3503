package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"os"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/urfave/cli/v3"

	"github.com/weikengchen/fps-r0/bigint"
	"github.com/weikengchen/fps-r0/journal"
	"github.com/weikengchen/fps-r0/modexp"
	"github.com/weikengchen/fps-r0/testdata"
	"github.com/weikengchen/fps-r0/verify"
	"github.com/weikengchen/fps-r0/witness"
)

// BenchCommand creates the bench command
func BenchCommand() *cli.Command {
	return &cli.Command{
		Name:  "bench",
		Usage: "Time the arithmetic engine for each multiplication strategy",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "iterations",
				Usage: "Iterations per operation",
				Value: 200,
			},
			&cli.StringFlag{
				Name:  "out",
				Usage: "Write an HTML bar chart to this path",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output in JSON format",
			},
		},
		Action: runBenchCommand,
	}
}

// benchOps lists the timed operations in chart order.
var benchOps = []string{"mul", "pow65537", "binary-exp", "verify"}

// benchResult is the mean duration of one operation under one strategy.
type benchResult struct {
	Strategy bigint.Strategy `json:"strategy"`
	Op       string          `json:"op"`
	Mean     time.Duration   `json:"meanNs"`
	Products uint64          `json:"products"`
}

func timeOp(iterations int, fn func() error) (time.Duration, error) {
	start := time.Now()
	for range iterations {
		if err := fn(); err != nil {
			return 0, err
		}
	}
	return time.Since(start) / time.Duration(iterations), nil
}

func runBenchmarks(ctx context.Context, iterations int) ([]benchResult, error) {
	w, err := witness.DecodeJSON(testdata.WitnessJSON)
	if err != nil {
		return nil, err
	}
	sig, err := bigint.NatFromBytesBE(w.Signature)
	if err != nil {
		return nil, err
	}
	exponent := big.NewInt(modexp.PublicExponent)

	var results []benchResult
	for _, s := range bigint.Strategies() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ledger := &journal.CycleLedger{}
		mul, err := bigint.NewMultiplier(bigint.DefaultContext(), s)
		if err != nil {
			return nil, err
		}
		mul = bigint.Metered(mul, ledger)
		sigM := bigint.ToMontgomery(mul, &sig)

		svc, err := verify.NewService(&journal.Journal{}, verify.Config{Strategy: s}, verify.WithMeter(ledger))
		if err != nil {
			return nil, err
		}

		ops := map[string]func() error{
			"mul": func() error {
				_ = mul.Mul(&sigM, &sigM)
				return nil
			},
			"pow65537": func() error {
				_ = modexp.Pow65537(mul, &sigM)
				return nil
			},
			"binary-exp": func() error {
				_, err := (&modexp.Binary{Mul: mul}).Exp(&sigM, exponent)
				return err
			},
			"verify": func() error {
				_, err := svc.Verify(w)
				return err
			},
		}

		for _, op := range benchOps {
			before := ledger.Count(bigint.OpMontMul)
			mean, err := timeOp(iterations, ops[op])
			if err != nil {
				return nil, fmt.Errorf("%s/%s: %w", s, op, err)
			}
			products := (ledger.Count(bigint.OpMontMul) - before) / uint64(iterations)
			results = append(results, benchResult{Strategy: s, Op: op, Mean: mean, Products: products})
		}
	}
	return results, nil
}

func newBenchChart(results []benchResult, iterations int) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Montgomery engine timings",
			Subtitle: fmt.Sprintf("mean microseconds over %d iterations", iterations),
		}),
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "fps-r0 bench", Width: "1200px", Height: "600px"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(benchOps)
	for _, s := range bigint.Strategies() {
		items := make([]opts.BarData, 0, len(benchOps))
		for _, op := range benchOps {
			for _, r := range results {
				if r.Strategy == s && r.Op == op {
					items = append(items, opts.BarData{Value: float64(r.Mean.Nanoseconds()) / 1e3})
				}
			}
		}
		bar.AddSeries(string(s), items)
	}
	return bar
}

func renderBenchPage(w io.Writer, results []benchResult, iterations int) error {
	page := components.NewPage()
	page.AddCharts(newBenchChart(results, iterations))
	return page.Render(w)
}

func runBenchCommand(ctx context.Context, cmd *cli.Command) error {
	iterations := int(cmd.Int("iterations"))
	if iterations < 1 {
		return fmt.Errorf("--iterations must be positive")
	}

	fmt.Fprintf(os.Stderr, "\n=== Benchmarking %d strategies, %d iterations ===\n", len(bigint.Strategies()), iterations)
	results, err := runBenchmarks(ctx, iterations)
	if err != nil {
		return err
	}

	if path := cmd.String("out"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create chart: %w", err)
		}
		defer f.Close()
		if err := renderBenchPage(f, results, iterations); err != nil {
			return fmt.Errorf("failed to render chart: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Chart written to %s\n", path)
	}

	if cmd.Bool("json") {
		jsonBytes, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal output: %w", err)
		}
		fmt.Println(string(jsonBytes))
		return nil
	}

	for _, r := range results {
		fmt.Printf("%-12s %-11s %12v  %3d products\n", r.Strategy, r.Op, r.Mean, r.Products)
	}
	return nil
}
