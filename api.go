// Copyright 2026 someonegg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package damatch provides a deferred acceptance matching engine for
// capacity and reserve constrained two-sided markets, such as students
// proposing to schools.
package damatch

import (
	"fmt"
	"strings"
)

type Matcher interface {
	// Match ranks the signal vectors of both sides and runs deferred
	// acceptance over the resulting rank lists.
	Match(proposers []Proposer, acceptors []Acceptor) (*Result, error)

	// MatchRanks runs deferred acceptance over precomputed rank lists.
	// Proposer lists may be truncated; signal vectors are ignored.
	MatchRanks(proposers []Proposer, acceptors []Acceptor, ranks Ranks) (*Result, error)
}

type Proposer struct {
	ID          int
	Eligibility float64   // e.g. income, decides reserve eligibility
	Signals     []float64 // value of each acceptor, indexed by acceptor id
}

func NewProposer(id int, eligibility float64) Proposer {
	return Proposer{ID: id, Eligibility: eligibility}
}

// WithSignals returns a copy of p holding its own copy of signals.
func (p Proposer) WithSignals(signals []float64) Proposer {
	p.Signals = append([]float64(nil), signals...)
	return p
}

type Acceptor struct {
	ID              int
	Cap             int
	ReserveFraction float64   // share of Cap set aside for eligible proposers
	Signals         []float64 // value of each proposer, indexed by proposer id
}

func NewAcceptor(id, cap int, reserveFraction float64) Acceptor {
	return Acceptor{ID: id, Cap: cap, ReserveFraction: reserveFraction}
}

// WithSignals returns a copy of a holding its own copy of signals.
func (a Acceptor) WithSignals(signals []float64) Acceptor {
	a.Signals = append([]float64(nil), signals...)
	return a
}

// Ranks holds the strict preference orders of both sides, most preferred
// first. Proposers[p] lists acceptor ids, Acceptors[a] lists proposer ids.
type Ranks struct {
	Proposers [][]int
	Acceptors [][]int
}

type TieBreak int

const (
	// AscendingID breaks equal signals in favour of the lower index.
	AscendingID TieBreak = iota
)

func (t TieBreak) String() string {
	switch t {
	case AscendingID:
		return "ascending-id"
	default:
		return "unknown"
	}
}

// ReservePolicy decides what happens to reserve seats left empty because
// too few eligible proposers were pooled in a round.
type ReservePolicy int

const (
	// HoldReserve keeps unfilled reserve seats empty for the round.
	HoldReserve ReservePolicy = iota
	// ReleaseReserve opens unfilled reserve seats to the general phase
	// of the same round.
	ReleaseReserve
)

func (p ReservePolicy) String() string {
	switch p {
	case HoldReserve:
		return "hold"
	case ReleaseReserve:
		return "release"
	default:
		return "unknown"
	}
}

// ParseReservePolicy accepts "hold", "release" or "" (hold).
func ParseReservePolicy(s string) (ReservePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "hold":
		return HoldReserve, nil
	case "release":
		return ReleaseReserve, nil
	default:
		return HoldReserve, fmt.Errorf("unknown reserve policy %q", s)
	}
}

type Config struct {
	ReserveEnabled       bool
	EligibilityThreshold float64 // eligible iff Eligibility < threshold
	TieBreak             TieBreak
	ReservePolicy        ReservePolicy

	RankLimit int // proposers rank only their top k acceptors, 0 means all
	MaxRounds int // 0 means proposers*acceptors+1
	Workers   int // acceptors processed in parallel within a round
}
