// Copyright 2026 someonegg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "experiment.toml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadExperimentExample(t *testing.T) {
	exp, err := loadExperiment("ex.experiment.toml")
	if err != nil {
		t.Fatalf("load experiment: %v", err)
	}
	if exp.Iterations != 20 || exp.Workers != 4 {
		t.Fatalf("unexpected iterations/workers: %d/%d", exp.Iterations, exp.Workers)
	}
	if exp.Population.Students != 200 || exp.Population.Schools != 8 || exp.Population.Seed != 7 {
		t.Fatalf("unexpected population: %+v", exp.Population)
	}
	if exp.Population.ScoreMu != 50 {
		t.Fatalf("expected default score_mu 50, got %v", exp.Population.ScoreMu)
	}
	if exp.Population.IncomeSigma != 0.9 {
		t.Fatalf("unexpected income_sigma: %v", exp.Population.IncomeSigma)
	}
	if !exp.Matcher.Reserve {
		t.Fatalf("expected reserve enabled")
	}
	if exp.Matcher.IncomeThreshold == nil || *exp.Matcher.IncomeThreshold != 61740 {
		t.Fatalf("unexpected income threshold: %v", exp.Matcher.IncomeThreshold)
	}
	if exp.Matcher.ReservePolicy == nil || *exp.Matcher.ReservePolicy != "hold" {
		t.Fatalf("unexpected reserve policy: %v", exp.Matcher.ReservePolicy)
	}

	scorer := exp.Population.Adversity
	if scorer == nil {
		t.Fatalf("expected adversity scorer")
	}
	if got := scorer.Factor(10000); got != 1.5 {
		t.Fatalf("bracket factor: got %v", got)
	}
	if got := scorer.Factor(200000); got != 1 {
		t.Fatalf("linear factor above pivot: got %v", got)
	}
}

func TestLoadExperimentDefaults(t *testing.T) {
	path := writeConfig(t, "[population]\nstudents = 10\n")

	exp, err := loadExperiment(path)
	if err != nil {
		t.Fatalf("load experiment: %v", err)
	}
	if exp.Iterations != 1 {
		t.Fatalf("expected 1 iteration, got %d", exp.Iterations)
	}
	if exp.Population.Students != 10 || exp.Population.Schools != 5 {
		t.Fatalf("unexpected population: %+v", exp.Population)
	}
	if exp.Population.Adversity != nil {
		t.Fatalf("expected no adversity scorer")
	}
	if exp.Matcher.Reserve || exp.Matcher.IncomeThreshold != nil {
		t.Fatalf("unexpected matcher: %+v", exp.Matcher)
	}
}

func TestLoadExperimentErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"Missing", "", "load experiment"},
		{"Syntax", "iterations = [", "load experiment"},
		{"UnknownKey", "iteratons = 3\n", "unknown keys"},
		{"ZeroIterations", "iterations = 0\n", "iterations"},
		{"NegativeWorkers", "workers = -1\n", "workers"},
		{"BadPopulation", "[population]\nschools = 0\n", "population"},
		{"BadMode", "[adversity]\nmode = \"cubic\"\n", "adversity"},
		{"NoPivot", "[adversity]\nmode = \"step\"\nscale = 1.0\n", "pivot"},
		{"BadBracket", "[adversity]\n[[adversity.brackets]]\nlo = 5.0\nhi = 1.0\nfactor = 2.0\n", "bracket"},
		{"BadRankLimit", "[matcher]\nrank_limit = -2\n", "rank_limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "absent.toml")
			if tt.body != "" {
				path = writeConfig(t, tt.body)
			}
			_, err := loadExperiment(path)
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}
