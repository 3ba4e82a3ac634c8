// Copyright 2026 someonegg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package adversity

// Bracket pins the factor of incomes in [Lo, Hi).
type Bracket struct {
	Lo     float64 `toml:"lo" json:"lo"`
	Hi     float64 `toml:"hi" json:"hi"`
	Factor float64 `toml:"factor" json:"factor"`
}

type bracketScorer struct {
	orig Scorer
	recs []Bracket
}

// NewBracketScorer overlays brackets on orig. Later brackets win where
// they overlap; incomes outside every bracket fall back to orig.
func NewBracketScorer(orig Scorer, brackets []Bracket) Scorer {
	recs := make([]Bracket, len(brackets))
	copy(recs, brackets)
	return &bracketScorer{
		orig: orig,
		recs: recs,
	}
}

func (s *bracketScorer) Factor(income float64) float64 {
	for i := len(s.recs) - 1; i >= 0; i-- {
		if rec := s.recs[i]; income >= rec.Lo && income < rec.Hi {
			return rec.Factor
		}
	}
	return s.orig.Factor(income)
}
