// Copyright 2026 someonegg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package population_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/someonegg/damatch/adversity"
	"github.com/someonegg/damatch/population"
)

func TestDraw_Shape(t *testing.T) {
	p := population.DefaultParams()
	p.Students, p.Schools = 23, 4

	pop, err := population.Draw(p)
	require.NoError(t, err)
	require.Len(t, pop.Students, 23)
	require.Len(t, pop.Schools, 4)

	for i, st := range pop.Students {
		assert.Equal(t, i, st.ID)
		assert.Len(t, st.Utilities, 4)
		assert.Greater(t, st.Income, 0.0)
	}
	for j, sc := range pop.Schools {
		assert.Equal(t, j, sc.ID)
		assert.Equal(t, 6, sc.Capacity, "23 students over 4 schools round up")
		assert.Equal(t, p.ReserveFraction, sc.ReserveFraction)
		assert.Len(t, sc.Priorities, 23)
	}
}

func TestDraw_Deterministic(t *testing.T) {
	p := population.DefaultParams()
	p.Seed = 42

	a, err := population.Draw(p)
	require.NoError(t, err)
	b, err := population.Draw(p)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	p.Seed = 43
	c, err := population.Draw(p)
	require.NoError(t, err)
	assert.NotEqual(t, a.Students[0].Income, c.Students[0].Income)
}

func TestDraw_Adversity(t *testing.T) {
	p := population.DefaultParams()
	p.Students, p.Schools = 50, 2
	p.NoiseSigma = 0
	p.Adversity = adversity.MustNew(adversity.Step, adversity.Params{Scale: 1, Pivot: 61740})

	pop, err := population.Draw(p)
	require.NoError(t, err)

	for _, st := range pop.Students {
		want := st.Score
		if st.Income < 61740 {
			want *= 2
		}
		for _, sc := range pop.Schools {
			assert.Equal(t, want, sc.Priorities[st.ID])
			assert.Equal(t, sc.Quality, st.Utilities[sc.ID])
		}
	}
}

func TestDraw_FixedCapacity(t *testing.T) {
	p := population.DefaultParams()
	p.Capacity = 3

	pop, err := population.Draw(p)
	require.NoError(t, err)
	for _, sc := range pop.Schools {
		assert.Equal(t, 3, sc.Capacity)
	}
}

func TestParams_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*population.Params)
	}{
		{"NoStudents", func(p *population.Params) { p.Students = 0 }},
		{"NoSchools", func(p *population.Params) { p.Schools = -1 }},
		{"NegativeCapacity", func(p *population.Params) { p.Capacity = -2 }},
		{"NegativeSigma", func(p *population.Params) { p.ScoreSigma = -1 }},
		{"Fraction", func(p *population.Params) { p.ReserveFraction = 1.2 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := population.DefaultParams()
			tt.modify(&p)
			assert.Error(t, p.Validate())
			_, err := population.Draw(p)
			assert.Error(t, err)
		})
	}

	assert.NoError(t, population.DefaultParams().Validate())
}
