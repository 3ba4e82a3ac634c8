// Copyright 2026 someonegg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package damatch

import "fmt"

// Unmatched marks a proposer without an acceptor in Result.Matching.
const Unmatched = -1

// Result is the outcome of one run. It is never modified after the run
// returns; every accessor hands out a copy.
type Result struct {
	matching  []int   // proposer -> acceptor or Unmatched
	rosters   [][]int // acceptor -> proposers, acceptor preference order
	reserved  [][]int // acceptor -> proposers holding reserve seats
	remaining []int   // proposer -> final cursor
	rounds    int
	proposals int
}

func (r *Result) Matching() []int {
	return append([]int(nil), r.matching...)
}

func (r *Result) AcceptorOf(p int) (int, bool) {
	if p < 0 || p >= len(r.matching) || r.matching[p] == Unmatched {
		return Unmatched, false
	}
	return r.matching[p], true
}

func (r *Result) Rosters() [][]int {
	out := make([][]int, len(r.rosters))
	for a := range r.rosters {
		out[a] = r.Roster(a)
	}
	return out
}

func (r *Result) Roster(a int) []int {
	if a < 0 || a >= len(r.rosters) {
		return nil
	}
	return append([]int{}, r.rosters[a]...)
}

// ReserveHolders returns the members of acceptor a's roster seated on a
// reserve seat.
func (r *Result) ReserveHolders(a int) []int {
	if a < 0 || a >= len(r.reserved) {
		return nil
	}
	return append([]int{}, r.reserved[a]...)
}

// Remaining returns the final cursor of every proposer: the position in
// its rank list of the acceptor holding it, or the list length when it
// ran out of acceptors.
func (r *Result) Remaining() []int {
	return append([]int(nil), r.remaining...)
}

func (r *Result) Cursor(p int) int {
	return r.remaining[p]
}

func (r *Result) Rounds() int { return r.rounds }

// Proposals is the number of proposal events issued during the run.
func (r *Result) Proposals() int { return r.proposals }

func (r *Result) MatchedCount() int {
	n := 0
	for _, a := range r.matching {
		if a != Unmatched {
			n++
		}
	}
	return n
}

func (r *Result) UnmatchedIDs() []int {
	var ids []int
	for p, a := range r.matching {
		if a == Unmatched {
			ids = append(ids, p)
		}
	}
	return ids
}

// Verify re-checks capacity and the consistency of both views against
// the acceptors the result was computed for.
func (r *Result) Verify(acceptors []Acceptor) error {
	if len(acceptors) != len(r.rosters) {
		return &InvariantError{Round: r.rounds, Acceptor: -1, Proposer: -1,
			Reason: fmt.Sprintf("%d acceptors, result has %d rosters", len(acceptors), len(r.rosters))}
	}

	seen := make([]int, len(r.matching))
	for i := range seen {
		seen[i] = Unmatched
	}

	for _, acc := range acceptors {
		a := acc.ID
		roster := r.rosters[a]
		if len(roster) > acc.Cap {
			return &InvariantError{Round: r.rounds, Acceptor: a, Proposer: -1,
				Reason: fmt.Sprintf("roster size %d over capacity %d", len(roster), acc.Cap)}
		}
		for _, p := range roster {
			if seen[p] != Unmatched {
				return &InvariantError{Round: r.rounds, Acceptor: a, Proposer: p,
					Reason: fmt.Sprintf("also on roster of acceptor %d", seen[p])}
			}
			seen[p] = a
		}
	}

	for p, a := range r.matching {
		if seen[p] != a {
			return &InvariantError{Round: r.rounds, Acceptor: a, Proposer: p,
				Reason: fmt.Sprintf("matching says %d, rosters say %d", a, seen[p])}
		}
	}

	return nil
}
