// Copyright 2026 someonegg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/someonegg/damatch/batch"
	"github.com/someonegg/damatch/population"
	"github.com/someonegg/damatch/school"
)

type matchOptions struct {
	reserve   bool
	threshold float64
	policy    string
	rankLimit int
	workers   int
}

var stdout io.Writer = os.Stdout

func doMatch(ctx context.Context, log *zap.Logger, inputFile, outputFile string, opts matchOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	pop, err := loadPopulation(inputFile)
	if err != nil {
		return fmt.Errorf("load population file failed: %w", err)
	}

	matcher := school.Matcher{
		IncomeThreshold: &opts.threshold,
		ReservePolicy:   &opts.policy,
		Reserve:         opts.reserve,
		RankLimit:       opts.rankLimit,
		Workers:         opts.workers,
		Log:             log,
	}

	outcome, err := matcher.Match(pop.Students, pop.Schools)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%+v\n", outcome.Summary)

	if err := writeReport(outputFile, outcome); err != nil {
		return fmt.Errorf("write report failed: %w", err)
	}
	return nil
}

func doSimulate(ctx context.Context, log *zap.Logger, exp experiment, outputFile string) error {
	runner := batch.Runner{Workers: exp.Workers, Log: log}

	report, err := runner.Run(ctx, batch.Plan{
		Iterations: exp.Iterations,
		Population: exp.Population,
		Matcher:    exp.Matcher,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "utility %.2f (%.2f), below %.2f, above %.2f, matched %.3f\n",
		report.Utility.Mean, report.Utility.StdDev,
		report.UtilityBelow.Mean, report.UtilityAbove.Mean,
		report.MatchedShare.Mean)

	if err := writeReport(outputFile, report); err != nil {
		return fmt.Errorf("write report failed: %w", err)
	}
	return nil
}

func doGenerate(exp experiment, outputFile string) error {
	pop, err := population.Draw(exp.Population)
	if err != nil {
		return err
	}
	if err := writeReport(outputFile, pop); err != nil {
		return fmt.Errorf("write population file failed: %w", err)
	}
	return nil
}

func loadPopulation(file string) (*population.Population, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}

	var pop population.Population

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&pop); err != nil {
		return nil, err
	}
	if len(pop.Students) == 0 || len(pop.Schools) == 0 {
		return nil, fmt.Errorf("%s: population needs students and schools", file)
	}
	for i, st := range pop.Students {
		if st == nil {
			return nil, fmt.Errorf("%s: student[%d] is null", file, i)
		}
	}
	for i, sc := range pop.Schools {
		if sc == nil {
			return nil, fmt.Errorf("%s: school[%d] is null", file, i)
		}
	}

	return &pop, nil
}

// writeReport encodes v as YAML for .yaml/.yml files and as JSON
// otherwise. An empty file name writes to stdout.
func writeReport(file string, v interface{}) error {
	var buf bytes.Buffer

	switch strings.ToLower(filepath.Ext(file)) {
	case ".yaml", ".yml":
		encoder := yaml.NewEncoder(&buf)
		encoder.SetIndent(2)
		if err := encoder.Encode(v); err != nil {
			return err
		}
		if err := encoder.Close(); err != nil {
			return err
		}
	default:
		encoder := json.NewEncoder(&buf)
		encoder.SetIndent("", "   ")
		if err := encoder.Encode(v); err != nil {
			return err
		}
	}

	if file == "" {
		_, err := stdout.Write(buf.Bytes())
		return err
	}
	return os.WriteFile(file, buf.Bytes(), 0644)
}
