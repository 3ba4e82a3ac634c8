// Copyright 2026 someonegg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/someonegg/damatch/adversity"
	"github.com/someonegg/damatch/population"
	"github.com/someonegg/damatch/school"
)

type experiment struct {
	Iterations int
	Workers    int
	Population population.Params
	Matcher    school.Matcher
}

type fileConfig struct {
	Iterations int               `toml:"iterations"`
	Workers    int               `toml:"workers"`
	Population population.Params `toml:"population"`
	Adversity  adversityConfig   `toml:"adversity"`
	Matcher    school.Matcher    `toml:"matcher"`
}

type adversityConfig struct {
	Mode string `toml:"mode"`
	adversity.Params
	Brackets []adversity.Bracket `toml:"brackets"`
}

// loadExperiment overlays the file on the defaults. Unknown keys are an
// error so that a typo cannot silently fall back to a default.
func loadExperiment(path string) (experiment, error) {
	raw := fileConfig{
		Iterations: 1,
		Population: population.DefaultParams(),
	}

	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return experiment{}, fmt.Errorf("load experiment: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return experiment{}, fmt.Errorf("load experiment: unknown keys %s", strings.Join(keys, ", "))
	}

	exp := experiment{
		Iterations: raw.Iterations,
		Workers:    raw.Workers,
		Population: raw.Population,
		Matcher:    raw.Matcher,
	}

	if meta.IsDefined("adversity") {
		scorer, err := buildScorer(raw.Adversity)
		if err != nil {
			return experiment{}, fmt.Errorf("parse adversity: %w", err)
		}
		exp.Population.Adversity = scorer
	}

	if err := validateExperiment(exp); err != nil {
		return experiment{}, err
	}
	return exp, nil
}

func buildScorer(cfg adversityConfig) (adversity.Scorer, error) {
	mode, err := adversity.ParseMode(cfg.Mode)
	if err != nil {
		return nil, err
	}
	scorer, err := adversity.New(mode, cfg.Params)
	if err != nil {
		return nil, err
	}
	if len(cfg.Brackets) > 0 {
		for i, b := range cfg.Brackets {
			if !(b.Lo < b.Hi) {
				return nil, fmt.Errorf("bracket[%d]: lo %v not below hi %v", i, b.Lo, b.Hi)
			}
		}
		scorer = adversity.NewBracketScorer(scorer, cfg.Brackets)
	}
	return scorer, nil
}

func validateExperiment(exp experiment) error {
	if exp.Iterations <= 0 {
		return errors.New("experiment iterations must be positive")
	}
	if exp.Workers < 0 {
		return errors.New("experiment workers must not be negative")
	}
	if err := exp.Population.Validate(); err != nil {
		return fmt.Errorf("experiment population: %w", err)
	}
	if exp.Matcher.RankLimit < 0 {
		return errors.New("experiment matcher rank_limit must not be negative")
	}
	return nil
}
