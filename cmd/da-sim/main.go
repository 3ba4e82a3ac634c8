package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/someonegg/damatch/internal/logging"
)

func main() {
	app := &cli.App{
		Name:  "da-sim",
		Usage: "Deferred acceptance experiments with reserve seats",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"vv"},
				Usage:   "log every matching round",
			},
		},
		Commands: []*cli.Command{
			matchCmd,
			simulateCmd,
			generateCmd,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Println("Error: ", err)
		os.Exit(1)
	}
}

func newLogger(ctx *cli.Context) (*zap.Logger, error) {
	return logging.New(ctx.Bool("verbose"))
}

var matchCmd = &cli.Command{
	Name:    "match",
	Usage:   "Match a population file once",
	Aliases: []string{"m"},
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "input",
			Required: true,
			Usage:    "specify the input population.json",
		},
		&cli.StringFlag{
			Name:  "output",
			Usage: "specify the output report (.json, .yaml or .yml), stdout if empty",
		},
		&cli.BoolFlag{
			Name:  "reserve",
			Usage: "enable reserve seats",
		},
		&cli.Float64Flag{
			Name:  "threshold",
			Value: 61740,
			Usage: "specify the income threshold of reserve eligibility",
		},
		&cli.StringFlag{
			Name:  "policy",
			Value: "hold",
			Usage: "specify what unfilled reserve seats do (hold, release)",
		},
		&cli.IntFlag{
			Name:  "rank-limit",
			Usage: "specify how many schools a student may rank, 0 for all",
		},
		&cli.IntFlag{
			Name:  "workers",
			Usage: "specify how many schools are processed in parallel per round",
		},
	},
	Action: func(ctx *cli.Context) error {
		var (
			input     = ctx.String("input")
			output    = ctx.String("output")
			reserve   = ctx.Bool("reserve")
			threshold = ctx.Float64("threshold")
			policy    = ctx.String("policy")
			rankLimit = ctx.Int("rank-limit")
			workers   = ctx.Int("workers")
		)
		if policy != "hold" && policy != "release" {
			return errors.New("invalid policy")
		}
		if rankLimit < 0 {
			return errors.New("invalid rank-limit")
		}
		log, err := newLogger(ctx)
		if err != nil {
			return err
		}
		defer log.Sync()

		return doMatch(ctx.Context, log, input, output, matchOptions{
			reserve:   reserve,
			threshold: threshold,
			policy:    policy,
			rankLimit: rankLimit,
			workers:   workers,
		})
	},
}

var simulateCmd = &cli.Command{
	Name:    "simulate",
	Usage:   "Run a Monte-Carlo experiment",
	Aliases: []string{"s"},
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "config",
			Required: true,
			Usage:    "specify the experiment.toml",
		},
		&cli.StringFlag{
			Name:  "output",
			Usage: "specify the output report (.json, .yaml or .yml), stdout if empty",
		},
		&cli.IntFlag{
			Name:  "iters",
			Usage: "override the number of iterations",
		},
		&cli.IntFlag{
			Name:  "workers",
			Usage: "override the number of parallel iterations",
		},
		&cli.Uint64Flag{
			Name:  "seed",
			Usage: "override the base seed",
		},
	},
	Action: func(ctx *cli.Context) error {
		exp, err := loadExperiment(ctx.String("config"))
		if err != nil {
			return err
		}
		if ctx.IsSet("iters") {
			exp.Iterations = ctx.Int("iters")
		}
		if ctx.IsSet("workers") {
			exp.Workers = ctx.Int("workers")
		}
		if ctx.IsSet("seed") {
			exp.Population.Seed = ctx.Uint64("seed")
		}
		if exp.Iterations <= 0 {
			return errors.New("invalid iters")
		}

		log, err := newLogger(ctx)
		if err != nil {
			return err
		}
		defer log.Sync()

		return doSimulate(ctx.Context, log, exp, ctx.String("output"))
	},
}

var generateCmd = &cli.Command{
	Name:    "generate",
	Usage:   "Draw one population from an experiment",
	Aliases: []string{"g"},
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "config",
			Required: true,
			Usage:    "specify the experiment.toml",
		},
		&cli.StringFlag{
			Name:     "output",
			Required: true,
			Usage:    "specify the output population.json",
		},
	},
	Action: func(ctx *cli.Context) error {
		exp, err := loadExperiment(ctx.String("config"))
		if err != nil {
			return err
		}
		return doGenerate(exp, ctx.String("output"))
	},
}
