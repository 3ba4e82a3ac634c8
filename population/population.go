// Copyright 2026 someonegg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package population draws synthetic student and school populations.
package population

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/someonegg/damatch/adversity"
	"github.com/someonegg/damatch/school"
)

type Params struct {
	Students int    `toml:"students" json:"students"`
	Schools  int    `toml:"schools" json:"schools"`
	Seed     uint64 `toml:"seed" json:"seed"`

	// Income is log-normal: ln(income) ~ N(IncomeMu, IncomeSigma).
	IncomeMu    float64 `toml:"income_mu" json:"income_mu"`
	IncomeSigma float64 `toml:"income_sigma" json:"income_sigma"`

	ScoreMu      float64 `toml:"score_mu" json:"score_mu"`
	ScoreSigma   float64 `toml:"score_sigma" json:"score_sigma"`
	QualityMu    float64 `toml:"quality_mu" json:"quality_mu"`
	QualitySigma float64 `toml:"quality_sigma" json:"quality_sigma"`
	NoiseSigma   float64 `toml:"noise_sigma" json:"noise_sigma"`

	Capacity        int     `toml:"capacity" json:"capacity"` // 0 spreads students evenly
	ReserveFraction float64 `toml:"reserve_fraction" json:"reserve_fraction"`

	Adversity adversity.Scorer `toml:"-" json:"-"` // nil means no adjustment
}

// DefaultParams centres income on the default eligibility threshold and
// scores and qualities on 50.
func DefaultParams() Params {
	return Params{
		Students:        100,
		Schools:         5,
		Seed:            1,
		IncomeMu:        math.Log(school.DefaultIncomeThreshold),
		IncomeSigma:     0.75,
		ScoreMu:         50,
		ScoreSigma:      10,
		QualityMu:       50,
		QualitySigma:    10,
		NoiseSigma:      5,
		ReserveFraction: 0.2,
	}
}

func (p Params) Validate() error {
	if p.Students <= 0 {
		return errors.New("students must be positive")
	}
	if p.Schools <= 0 {
		return errors.New("schools must be positive")
	}
	if p.Capacity < 0 {
		return errors.New("capacity must not be negative")
	}
	for name, sigma := range map[string]float64{
		"income_sigma":  p.IncomeSigma,
		"score_sigma":   p.ScoreSigma,
		"quality_sigma": p.QualitySigma,
		"noise_sigma":   p.NoiseSigma,
	} {
		if !(sigma >= 0) {
			return fmt.Errorf("%s must not be negative, got %v", name, sigma)
		}
	}
	if !(p.ReserveFraction >= 0 && p.ReserveFraction <= 1) {
		return fmt.Errorf("reserve_fraction %v outside [0,1]", p.ReserveFraction)
	}
	return nil
}

type Population struct {
	Students []*school.Student `json:"students"`
	Schools  []*school.School  `json:"schools"`
}

// Draw samples a population. Equal params give equal populations.
func Draw(p Params) (*Population, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("population params: %w", err)
	}

	src := rand.NewPCG(p.Seed, p.Seed^0x9e3779b97f4a7c15)
	income := distuv.LogNormal{Mu: p.IncomeMu, Sigma: p.IncomeSigma, Src: src}
	score := distuv.Normal{Mu: p.ScoreMu, Sigma: p.ScoreSigma, Src: src}
	quality := distuv.Normal{Mu: p.QualityMu, Sigma: p.QualitySigma, Src: src}
	noise := distuv.Normal{Mu: 0, Sigma: p.NoiseSigma, Src: src}

	capacity := p.Capacity
	if capacity == 0 {
		capacity = (p.Students + p.Schools - 1) / p.Schools
	}

	scorer := p.Adversity
	if scorer == nil {
		scorer = adversity.MustNew(adversity.None, adversity.Params{})
	}

	pop := &Population{
		Students: make([]*school.Student, p.Students),
		Schools:  make([]*school.School, p.Schools),
	}

	for i := range pop.Students {
		pop.Students[i] = &school.Student{
			ID:     i,
			Income: income.Rand(),
			Score:  score.Rand(),
		}
	}

	for j := range pop.Schools {
		pop.Schools[j] = &school.School{
			ID:              j,
			Capacity:        capacity,
			ReserveFraction: p.ReserveFraction,
			Quality:         quality.Rand(),
		}
	}

	for _, st := range pop.Students {
		st.Utilities = make([]float64, p.Schools)
		for j, sc := range pop.Schools {
			st.Utilities[j] = sc.Quality + noise.Rand()
		}
	}

	for _, sc := range pop.Schools {
		sc.Priorities = make([]float64, p.Students)
		for i, st := range pop.Students {
			sc.Priorities[i] = st.Score*scorer.Factor(st.Income) + noise.Rand()
		}
	}

	return pop, nil
}
