// Copyright 2026 someonegg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package batch runs many independent matches over freshly drawn
// populations and aggregates their summaries.
package batch

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/someonegg/damatch/population"
	"github.com/someonegg/damatch/school"
)

type Plan struct {
	Iterations int
	Population population.Params // iteration i uses Seed+i
	Matcher    school.Matcher
}

type Iteration struct {
	Index   int            `json:"index" yaml:"index"`
	Seed    uint64         `json:"seed" yaml:"seed"`
	Summary school.Summary `json:"summary" yaml:"summary"`
}

type Stat struct {
	Mean   float64 `json:"mean" yaml:"mean"`
	StdDev float64 `json:"stddev" yaml:"stddev"`
}

type Report struct {
	ID         string      `json:"id" yaml:"id"`
	Iterations []Iteration `json:"iterations" yaml:"iterations"`

	Utility         Stat `json:"utility" yaml:"utility"`
	UtilityBelow    Stat `json:"utility_below" yaml:"utility_below"`
	UtilityAbove    Stat `json:"utility_above" yaml:"utility_above"`
	MatchedShare    Stat `json:"matched_share" yaml:"matched_share"`
	EligibleMatched Stat `json:"eligible_matched_share" yaml:"eligible_matched_share"`
	ReserveFilled   Stat `json:"reserve_filled" yaml:"reserve_filled"`
	MeanChoice      Stat `json:"mean_choice" yaml:"mean_choice"`
}

type Runner struct {
	Workers int // 0 means GOMAXPROCS
	Log     *zap.Logger
}

// Run executes plan.Iterations matches, at most Workers at a time. The
// report lists iterations in index order whatever the scheduling.
func (r Runner) Run(ctx context.Context, plan Plan) (*Report, error) {
	if plan.Iterations <= 0 {
		return nil, errors.New("iterations must be positive")
	}
	if err := plan.Population.Validate(); err != nil {
		return nil, fmt.Errorf("population params: %w", err)
	}

	log := r.Log
	if log == nil {
		log = zap.NewNop()
	}
	workers := r.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	report := &Report{
		ID:         uuid.NewString(),
		Iterations: make([]Iteration, plan.Iterations),
	}
	log = log.With(zap.String("run", report.ID))
	log.Info("batch started",
		zap.Int("iterations", plan.Iterations),
		zap.Int("workers", workers),
		zap.Int("students", plan.Population.Students),
		zap.Int("schools", plan.Population.Schools))

	matcher := plan.Matcher
	matcher.Log = log.Named("match").WithOptions(zap.IncreaseLevel(zap.WarnLevel))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := 0; i < plan.Iterations; i++ {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			params := plan.Population
			params.Seed += uint64(i)
			pop, err := population.Draw(params)
			if err != nil {
				return fmt.Errorf("iteration %d: %w", i, err)
			}

			outcome, err := matcher.Match(pop.Students, pop.Schools)
			if err != nil {
				return fmt.Errorf("iteration %d: %w", i, err)
			}

			report.Iterations[i] = Iteration{Index: i, Seed: params.Seed, Summary: outcome.Summary}
			log.Debug("iteration done",
				zap.Int("iteration", i),
				zap.Int("matched", outcome.Summary.Matched),
				zap.Int("rounds", outcome.Summary.Rounds))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	report.aggregate()
	log.Info("batch done",
		zap.Float64("utility_mean", report.Utility.Mean),
		zap.Float64("matched_share_mean", report.MatchedShare.Mean))

	return report, nil
}

func (r *Report) aggregate() {
	n := len(r.Iterations)
	utility := make([]float64, n)
	below := make([]float64, n)
	above := make([]float64, n)
	matched := make([]float64, n)
	eligible := make([]float64, n)
	reserve := make([]float64, n)
	choice := make([]float64, n)

	for i, it := range r.Iterations {
		s := it.Summary
		utility[i] = s.Utility
		below[i] = s.UtilityBelow
		above[i] = s.UtilityAbove
		matched[i] = share(s.Matched, s.Students)
		eligible[i] = share(s.EligibleMatched, s.Eligible)
		reserve[i] = float64(s.ReserveFilled)
		choice[i] = s.MeanChoice
	}

	r.Utility = statOf(utility)
	r.UtilityBelow = statOf(below)
	r.UtilityAbove = statOf(above)
	r.MatchedShare = statOf(matched)
	r.EligibleMatched = statOf(eligible)
	r.ReserveFilled = statOf(reserve)
	r.MeanChoice = statOf(choice)
}

func share(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole)
}

func statOf(x []float64) Stat {
	if len(x) < 2 {
		return Stat{Mean: stat.Mean(x, nil)}
	}
	mean, std := stat.MeanStdDev(x, nil)
	return Stat{Mean: mean, StdDev: std}
}
