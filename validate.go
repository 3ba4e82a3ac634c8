// Copyright 2026 someonegg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package damatch

import (
	"fmt"
	"math"
)

func checkConfig(cfg Config) error {
	if cfg.TieBreak != AscendingID {
		return &ConfigurationError{Field: "tie_break", Reason: fmt.Sprintf("unsupported %d", cfg.TieBreak)}
	}
	if cfg.ReservePolicy != HoldReserve && cfg.ReservePolicy != ReleaseReserve {
		return &ConfigurationError{Field: "reserve_policy", Reason: fmt.Sprintf("unsupported %d", cfg.ReservePolicy)}
	}
	if math.IsNaN(cfg.EligibilityThreshold) {
		return &ConfigurationError{Field: "eligibility_threshold", Reason: "NaN"}
	}
	if cfg.RankLimit < 0 {
		return &ConfigurationError{Field: "rank_limit", Reason: "negative"}
	}
	if cfg.MaxRounds < 0 {
		return &ConfigurationError{Field: "max_rounds", Reason: "negative"}
	}
	return nil
}

// checkPopulation requires both sides to be non-empty and their ids to
// be exactly 0..n-1, since signal vectors are indexed by id.
func checkPopulation(proposers []Proposer, acceptors []Acceptor) error {
	if len(proposers) == 0 {
		return &ConfigurationError{Side: ProposerSide, ID: -1, Field: "population", Reason: "empty"}
	}
	if len(acceptors) == 0 {
		return &ConfigurationError{Side: AcceptorSide, ID: -1, Field: "population", Reason: "empty"}
	}

	seen := make([]bool, len(proposers))
	for _, p := range proposers {
		if err := checkID(ProposerSide, p.ID, seen); err != nil {
			return err
		}
	}

	seen = make([]bool, len(acceptors))
	for _, a := range acceptors {
		if err := checkID(AcceptorSide, a.ID, seen); err != nil {
			return err
		}
		if a.Cap < 0 {
			return &ConfigurationError{Side: AcceptorSide, ID: a.ID, Field: "capacity", Reason: "negative"}
		}
		if !(a.ReserveFraction >= 0 && a.ReserveFraction <= 1) {
			return &ConfigurationError{Side: AcceptorSide, ID: a.ID, Field: "reserve_fraction",
				Reason: fmt.Sprintf("%v outside [0,1]", a.ReserveFraction)}
		}
	}

	return nil
}

func checkID(side Side, id int, seen []bool) error {
	if id < 0 || id >= len(seen) {
		return &ConfigurationError{Side: side, ID: id, Field: "id",
			Reason: fmt.Sprintf("outside [0,%d)", len(seen))}
	}
	if seen[id] {
		return &ConfigurationError{Side: side, ID: id, Field: "id", Reason: "duplicate"}
	}
	seen[id] = true
	return nil
}

// checkRanks validates externally supplied rank lists. Proposer lists may
// be truncated but not repeat an acceptor; acceptor lists must order
// every proposer.
func checkRanks(ranks Ranks, nProposers, nAcceptors int) error {
	if len(ranks.Proposers) != nProposers {
		return &DataShapeError{Side: ProposerSide, ID: -1, Got: len(ranks.Proposers), Want: nProposers}
	}
	if len(ranks.Acceptors) != nAcceptors {
		return &DataShapeError{Side: AcceptorSide, ID: -1, Got: len(ranks.Acceptors), Want: nAcceptors}
	}

	for p, list := range ranks.Proposers {
		if len(list) > nAcceptors {
			return &DataShapeError{Side: ProposerSide, ID: p, Got: len(list), Want: nAcceptors}
		}
		if err := checkDistinct(ProposerSide, p, list, nAcceptors); err != nil {
			return err
		}
	}

	for a, list := range ranks.Acceptors {
		if len(list) != nProposers {
			return &DataShapeError{Side: AcceptorSide, ID: a, Got: len(list), Want: nProposers}
		}
		if err := checkDistinct(AcceptorSide, a, list, nProposers); err != nil {
			return err
		}
	}

	return nil
}

func checkDistinct(side Side, id int, list []int, n int) error {
	seen := make([]bool, n)
	for _, v := range list {
		if v < 0 || v >= n {
			return &ConfigurationError{Side: side, ID: id, Field: "rank",
				Reason: fmt.Sprintf("entry %d outside [0,%d)", v, n)}
		}
		if seen[v] {
			return &ConfigurationError{Side: side, ID: id, Field: "rank",
				Reason: fmt.Sprintf("entry %d repeated", v)}
		}
		seen[v] = true
	}
	return nil
}
