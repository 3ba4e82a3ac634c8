// Copyright 2026 someonegg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package damatch

import (
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type deferredMatcher struct {
	cfg Config
	log *zap.Logger

	observe func(roundTrace) // tests only
}

// DeferredMatcher returns a Matcher running proposer-optimal deferred
// acceptance with optional reserve seats. A nil log discards output.
func DeferredMatcher(cfg Config, log *zap.Logger) (Matcher, error) {
	if err := checkConfig(cfg); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return deferredMatcher{cfg: cfg, log: log}, nil
}

func (m deferredMatcher) Match(proposers []Proposer, acceptors []Acceptor) (*Result, error) {
	ranks, err := BuildRanks(proposers, acceptors)
	if err != nil {
		return nil, err
	}
	return m.run(proposers, acceptors, ranks.Truncate(m.cfg.RankLimit))
}

func (m deferredMatcher) MatchRanks(proposers []Proposer, acceptors []Acceptor, ranks Ranks) (*Result, error) {
	if err := checkPopulation(proposers, acceptors); err != nil {
		return nil, err
	}
	if err := checkRanks(ranks, len(proposers), len(acceptors)); err != nil {
		return nil, err
	}
	return m.run(proposers, acceptors, ranks.Truncate(m.cfg.RankLimit))
}

// roundTrace is what one round looked like once its updates were applied.
type roundTrace struct {
	round    int
	pools    map[int][]int // acceptor -> pool in acceptor order
	rejected map[int][]int // acceptor -> proposers it rejected
	rosters  [][]int
	cursor   []int
}

type seatKind uint8

const (
	seatNone seatKind = iota
	seatReserve
	seatGeneral
)

type decision struct {
	acceptor int
	pool     []int
	accepted []int // acceptor preference order
	reserved []int
	rejected []int
}

// daRun is the working state of one run.
type daRun struct {
	cfg   Config
	ranks Ranks

	pos      [][]int // pos[a][p] is p's position in a's rank list
	eligible []bool
	caps     []int
	seats    []int // reserve seats per acceptor

	cursor   []int
	holder   []int
	rosters  [][]int
	reserved [][]int

	round     int
	proposals int
}

func (m deferredMatcher) run(proposers []Proposer, acceptors []Acceptor, ranks Ranks) (*Result, error) {
	r := &daRun{
		cfg:      m.cfg,
		ranks:    ranks,
		pos:      make([][]int, len(acceptors)),
		eligible: make([]bool, len(proposers)),
		caps:     make([]int, len(acceptors)),
		seats:    make([]int, len(acceptors)),
		cursor:   make([]int, len(proposers)),
		holder:   make([]int, len(proposers)),
		rosters:  make([][]int, len(acceptors)),
		reserved: make([][]int, len(acceptors)),
	}

	for _, p := range proposers {
		r.eligible[p.ID] = p.Eligibility < m.cfg.EligibilityThreshold
		r.holder[p.ID] = Unmatched
	}
	for _, a := range acceptors {
		r.caps[a.ID] = a.Cap
		if m.cfg.ReserveEnabled {
			r.seats[a.ID] = ReserveSeats(a.ReserveFraction, a.Cap)
		}
		pos := make([]int, len(proposers))
		for i, p := range ranks.Acceptors[a.ID] {
			pos[p] = i
		}
		r.pos[a.ID] = pos
	}

	maxRounds := m.cfg.MaxRounds
	if maxRounds == 0 {
		maxRounds = len(proposers)*len(acceptors) + 1
	}

	var unmatched []int
	for p, list := range ranks.Proposers {
		if len(list) > 0 {
			unmatched = append(unmatched, p)
		}
	}

	for len(unmatched) > 0 {
		r.round++
		if r.round > maxRounds {
			return nil, &RoundLimitError{Rounds: maxRounds}
		}

		offers := make([][]int, len(acceptors))
		var targets []int
		for _, p := range unmatched {
			list := ranks.Proposers[p]
			if r.cursor[p] >= len(list) {
				continue // exhausted, terminally unmatched
			}
			a := list[r.cursor[p]]
			if len(offers[a]) == 0 {
				targets = append(targets, a)
			}
			offers[a] = append(offers[a], p)
			r.proposals++
		}
		sort.Ints(targets)

		decisions, err := r.decideAll(targets, offers, m.cfg.Workers)
		if err != nil {
			return nil, err
		}

		next, rejections, err := r.apply(decisions)
		if err != nil {
			return nil, err
		}

		m.log.Debug("round done",
			zap.Int("round", r.round),
			zap.Int("acceptors", len(targets)),
			zap.Int("rejections", rejections),
			zap.Int("unmatched", len(next)))

		if m.observe != nil {
			m.observe(r.trace(decisions))
		}

		unmatched = next
	}

	res := &Result{
		matching:  r.holder,
		rosters:   r.rosters,
		reserved:  r.reserved,
		remaining: r.cursor,
		rounds:    r.round,
		proposals: r.proposals,
	}
	for a := range res.rosters {
		if res.rosters[a] == nil {
			res.rosters[a] = []int{}
		}
	}

	m.log.Info("matching done",
		zap.Int("rounds", res.rounds),
		zap.Int("proposals", res.proposals),
		zap.Int("matched", res.MatchedCount()),
		zap.Int("proposers", len(proposers)))

	return res, nil
}

// ReserveSeats is the number of seats set aside out of cap: fraction*cap
// rounded half away from zero, never more than cap.
func ReserveSeats(fraction float64, cap int) int {
	seats := int(math.Round(fraction * float64(cap)))
	if seats > cap {
		seats = cap
	}
	return seats
}

// decideAll runs the per-acceptor phase of a round. Decisions only read
// shared state, so they may run in parallel; results keep target order.
func (r *daRun) decideAll(targets []int, offers [][]int, workers int) ([]decision, error) {
	decisions := make([]decision, len(targets))

	if workers <= 1 || len(targets) < 2 {
		for i, a := range targets {
			d, err := r.decide(a, offers[a])
			if err != nil {
				return nil, err
			}
			decisions[i] = d
		}
		return decisions, nil
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for i, a := range targets {
		i, a := i, a
		g.Go(func() error {
			d, err := r.decide(a, offers[a])
			decisions[i] = d
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return decisions, nil
}

func (r *daRun) decide(a int, offers []int) (decision, error) {
	for _, p := range offers {
		if r.holder[p] != Unmatched {
			return decision{}, &InvariantError{Round: r.round, Acceptor: a, Proposer: p,
				Reason: fmt.Sprintf("proposed while held by acceptor %d", r.holder[p])}
		}
	}

	pool := make([]int, 0, len(offers)+len(r.rosters[a]))
	pool = append(pool, r.rosters[a]...)
	pool = append(pool, offers...)
	pos := r.pos[a]
	sort.Slice(pool, func(i, j int) bool {
		return pos[pool[i]] < pos[pool[j]]
	})

	kinds := make([]seatKind, len(pool))

	seats, filled := r.seats[a], 0
	for i, p := range pool {
		if filled == seats {
			break
		}
		if r.eligible[p] {
			kinds[i] = seatReserve
			filled++
		}
	}

	open := r.caps[a] - seats
	if r.cfg.ReservePolicy == ReleaseReserve {
		open = r.caps[a] - filled
	}
	for i := range pool {
		if open == 0 {
			break
		}
		if kinds[i] == seatNone {
			kinds[i] = seatGeneral
			open--
		}
	}

	d := decision{acceptor: a, pool: pool}
	for i, p := range pool {
		switch kinds[i] {
		case seatReserve:
			d.accepted = append(d.accepted, p)
			d.reserved = append(d.reserved, p)
		case seatGeneral:
			d.accepted = append(d.accepted, p)
		default:
			d.rejected = append(d.rejected, p)
		}
	}
	return d, nil
}

// apply commits decisions in ascending acceptor order and returns the
// proposers that must propose again.
func (r *daRun) apply(decisions []decision) (next []int, rejections int, err error) {
	for _, d := range decisions {
		a := d.acceptor
		if len(d.accepted) > r.caps[a] {
			return nil, 0, &InvariantError{Round: r.round, Acceptor: a, Proposer: -1,
				Reason: fmt.Sprintf("roster size %d over capacity %d", len(d.accepted), r.caps[a])}
		}

		for _, p := range d.accepted {
			if h := r.holder[p]; h != Unmatched && h != a {
				return nil, 0, &InvariantError{Round: r.round, Acceptor: a, Proposer: p,
					Reason: fmt.Sprintf("already on roster of acceptor %d", h)}
			}
			r.holder[p] = a
		}

		for _, p := range d.rejected {
			list := r.ranks.Proposers[p]
			if r.cursor[p] >= len(list) || list[r.cursor[p]] != a {
				return nil, 0, &InvariantError{Round: r.round, Acceptor: a, Proposer: p,
					Reason: fmt.Sprintf("cursor %d does not point at rejecting acceptor", r.cursor[p])}
			}
			r.cursor[p]++
			r.holder[p] = Unmatched
			rejections++
			if r.cursor[p] < len(list) {
				next = append(next, p)
			}
		}

		r.rosters[a] = d.accepted
		r.reserved[a] = d.reserved
	}

	sort.Ints(next)
	return next, rejections, nil
}

func (r *daRun) trace(decisions []decision) roundTrace {
	t := roundTrace{
		round:    r.round,
		pools:    make(map[int][]int, len(decisions)),
		rejected: make(map[int][]int, len(decisions)),
		rosters:  make([][]int, len(r.rosters)),
		cursor:   append([]int(nil), r.cursor...),
	}
	for _, d := range decisions {
		t.pools[d.acceptor] = d.pool
		t.rejected[d.acceptor] = d.rejected
	}
	for a, roster := range r.rosters {
		t.rosters[a] = append([]int(nil), roster...)
	}
	return t
}
