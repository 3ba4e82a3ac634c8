// Copyright 2026 someonegg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package damatch

import (
	"math"
	"sort"
)

// Rank returns the indices of signals ordered by descending value. Equal
// values keep ascending index order and NaN ranks last.
func Rank(signals []float64) []int {
	order := make([]int, len(signals))
	for i := range order {
		order[i] = i
	}

	sort.Slice(order, func(i, j int) bool {
		a, b := order[i], order[j]
		va, vb := signals[a], signals[b]
		nanA, nanB := math.IsNaN(va), math.IsNaN(vb)
		if nanA != nanB {
			return nanB
		}
		if !nanA && va != vb {
			return va > vb
		}
		return a < b
	})

	return order
}

// RankN is Rank with a length check against the expected population n.
func RankN(signals []float64, n int) ([]int, error) {
	if len(signals) != n {
		return nil, &DataShapeError{Got: len(signals), Want: n}
	}
	return Rank(signals), nil
}

// BuildRanks derives the rank lists of every agent from its signals. The
// returned lists are indexed by agent id.
func BuildRanks(proposers []Proposer, acceptors []Acceptor) (Ranks, error) {
	if err := checkPopulation(proposers, acceptors); err != nil {
		return Ranks{}, err
	}

	ranks := Ranks{
		Proposers: make([][]int, len(proposers)),
		Acceptors: make([][]int, len(acceptors)),
	}

	for _, p := range proposers {
		order, err := RankN(p.Signals, len(acceptors))
		if err != nil {
			return Ranks{}, withSide(err, ProposerSide, p.ID)
		}
		ranks.Proposers[p.ID] = order
	}

	for _, a := range acceptors {
		order, err := RankN(a.Signals, len(proposers))
		if err != nil {
			return Ranks{}, withSide(err, AcceptorSide, a.ID)
		}
		ranks.Acceptors[a.ID] = order
	}

	return ranks, nil
}

// Truncate returns ranks whose proposer lists hold at most k entries.
// The receiver is left untouched.
func (r Ranks) Truncate(k int) Ranks {
	if k <= 0 {
		return r
	}
	out := Ranks{
		Proposers: make([][]int, len(r.Proposers)),
		Acceptors: r.Acceptors,
	}
	for p, list := range r.Proposers {
		if len(list) > k {
			list = list[:k:k]
		}
		out.Proposers[p] = list
	}
	return out
}

func withSide(err error, side Side, id int) error {
	if e, ok := err.(*DataShapeError); ok {
		e.Side, e.ID = side, id
	}
	return err
}
