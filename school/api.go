// Copyright 2026 someonegg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package school uses damatch to assign students to schools.
package school

import "go.uber.org/zap"

type Student struct {
	ID        int       `json:"id" yaml:"id"`
	Income    float64   `json:"income" yaml:"income"`
	Score     float64   `json:"score" yaml:"score"`         // academic score
	Utilities []float64 `json:"utilities" yaml:"utilities"` // per school id
}

type School struct {
	ID              int       `json:"id" yaml:"id"`
	Capacity        int       `json:"capacity" yaml:"capacity"`
	ReserveFraction float64   `json:"reserve_fraction" yaml:"reserve_fraction"`
	Quality         float64   `json:"quality" yaml:"quality"`
	Priorities      []float64 `json:"priorities" yaml:"priorities"` // per student id
}

// Unassigned is the School of an Assignment without a seat.
const Unassigned = -1

type Assignment struct {
	Student int     `json:"student" yaml:"student"`
	School  int     `json:"school" yaml:"school"`
	Reserve bool    `json:"reserve,omitempty" yaml:"reserve,omitempty"`
	Choice  int     `json:"choice" yaml:"choice"` // 1-based rank of School, 0 if unassigned
	Utility float64 `json:"utility" yaml:"utility"`
}

type Roster struct {
	School       int   `json:"school" yaml:"school"`
	Capacity     int   `json:"capacity" yaml:"capacity"`
	ReserveSeats int   `json:"reserve_seats" yaml:"reserve_seats"`
	Students     []int `json:"students" yaml:"students"`
	Reserve      []int `json:"reserve,omitempty" yaml:"reserve,omitempty"`
}

type Outcome struct {
	Assignments []Assignment `json:"assignments" yaml:"assignments"`
	Rosters     []Roster     `json:"rosters" yaml:"rosters"`
	Summary     Summary      `json:"summary" yaml:"summary"`
}

// Summary aggregates an outcome. Utilities are split by the income
// threshold; unassigned students contribute nothing.
type Summary struct {
	Students int `json:"students" yaml:"students"`
	Schools  int `json:"schools" yaml:"schools"`
	Seats    int `json:"seats" yaml:"seats"`

	Matched   int `json:"matched" yaml:"matched"`
	Unmatched int `json:"unmatched" yaml:"unmatched"`
	Rounds    int `json:"rounds" yaml:"rounds"`

	Eligible        int `json:"eligible" yaml:"eligible"`
	EligibleMatched int `json:"eligible_matched" yaml:"eligible_matched"`
	ReserveSeats    int `json:"reserve_seats" yaml:"reserve_seats"`
	ReserveFilled   int `json:"reserve_filled" yaml:"reserve_filled"`

	Utility      float64 `json:"utility" yaml:"utility"`
	UtilityBelow float64 `json:"utility_below" yaml:"utility_below"`
	UtilityAbove float64 `json:"utility_above" yaml:"utility_above"`
	MeanChoice   float64 `json:"mean_choice" yaml:"mean_choice"` // over matched students
}

const (
	// DefaultIncomeThreshold is the US median household income used as
	// the reserve eligibility cutoff.
	DefaultIncomeThreshold = 61740.0
	DefaultReservePolicy   = "hold"
)

type Matcher struct {
	IncomeThreshold *float64 `toml:"income_threshold" json:"income_threshold,omitempty"`
	ReservePolicy   *string  `toml:"reserve_policy" json:"reserve_policy,omitempty"`

	// When set, schools set aside ReserveFraction of their seats for
	// students below the income threshold.
	Reserve bool `toml:"reserve" json:"reserve"`

	RankLimit int `toml:"rank_limit" json:"rank_limit,omitempty"`
	Workers   int `toml:"workers" json:"workers,omitempty"`

	Log *zap.Logger `toml:"-" json:"-"`

	threshold float64
	policy    string
}
