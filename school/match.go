// Copyright 2026 someonegg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package school

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/someonegg/damatch"
)

func (m *Matcher) init() {
	if m.IncomeThreshold == nil {
		m.threshold = DefaultIncomeThreshold
	} else {
		m.threshold = *m.IncomeThreshold
	}

	if m.ReservePolicy == nil {
		m.policy = DefaultReservePolicy
	} else {
		m.policy = *m.ReservePolicy
	}

	if m.Log == nil {
		m.Log = zap.NewNop()
	}
}

// Threshold is the income threshold in effect.
func (m Matcher) Threshold() float64 {
	m.init()
	return m.threshold
}

// Match assigns students to schools. Student and school ids must be
// 0..n-1; utilities and priorities are indexed by them.
func (m Matcher) Match(students []*Student, schools []*School) (*Outcome, error) {
	m.init()

	policy, err := damatch.ParseReservePolicy(m.policy)
	if err != nil {
		return nil, err
	}

	matcher, err := damatch.DeferredMatcher(damatch.Config{
		ReserveEnabled:       m.Reserve,
		EligibilityThreshold: m.threshold,
		TieBreak:             damatch.AscendingID,
		ReservePolicy:        policy,
		RankLimit:            m.RankLimit,
		Workers:              m.Workers,
	}, m.Log)
	if err != nil {
		return nil, err
	}

	res, err := matcher.Match(genProposers(students), genAcceptors(schools))
	if err != nil {
		return nil, fmt.Errorf("match students: %w", err)
	}
	if err := res.Verify(genAcceptors(schools)); err != nil {
		return nil, err
	}

	outcome := m.genOutcome(students, schools, res)

	if unmatched := res.UnmatchedIDs(); len(unmatched) > 0 {
		m.Log.Debug("students left unassigned",
			zap.Int("count", len(unmatched)),
			zap.Ints("students", unmatched))
	}
	for _, roster := range outcome.Rosters {
		if roster.ReserveSeats > len(roster.Reserve) {
			m.Log.Debug("reserve seats left empty",
				zap.Int("school", roster.School),
				zap.Int("seats", roster.ReserveSeats),
				zap.Int("filled", len(roster.Reserve)))
		}
	}

	return outcome, nil
}

func genProposers(students []*Student) []damatch.Proposer {
	proposers := make([]damatch.Proposer, len(students))

	for i, student := range students {
		proposers[i] = damatch.NewProposer(student.ID, student.Income).WithSignals(student.Utilities)
	}

	sort.Slice(proposers, func(i, j int) bool {
		return proposers[i].ID < proposers[j].ID
	})

	return proposers
}

func genAcceptors(schools []*School) []damatch.Acceptor {
	acceptors := make([]damatch.Acceptor, len(schools))

	for i, school := range schools {
		acceptors[i] = damatch.NewAcceptor(school.ID, school.Capacity, school.ReserveFraction).
			WithSignals(school.Priorities)
	}

	sort.Slice(acceptors, func(i, j int) bool {
		return acceptors[i].ID < acceptors[j].ID
	})

	return acceptors
}

func (m *Matcher) genOutcome(students []*Student, schools []*School, res *damatch.Result) *Outcome {
	outcome := &Outcome{
		Assignments: make([]Assignment, len(students)),
		Rosters:     make([]Roster, len(schools)),
	}
	summ := &outcome.Summary
	summ.Students = len(students)
	summ.Schools = len(schools)
	summ.Rounds = res.Rounds()

	reserve := make(map[int]bool)

	for _, school := range schools {
		roster := Roster{
			School:   school.ID,
			Capacity: school.Capacity,
			Students: res.Roster(school.ID),
			Reserve:  res.ReserveHolders(school.ID),
		}
		if m.Reserve {
			roster.ReserveSeats = damatch.ReserveSeats(school.ReserveFraction, school.Capacity)
		}
		for _, id := range roster.Reserve {
			reserve[id] = true
		}
		summ.Seats += roster.Capacity
		summ.ReserveSeats += roster.ReserveSeats
		summ.ReserveFilled += len(roster.Reserve)
		outcome.Rosters[school.ID] = roster
	}

	choices := 0
	for _, student := range students {
		asg := Assignment{Student: student.ID, School: Unassigned}
		eligible := student.Income < m.threshold
		if eligible {
			summ.Eligible++
		}

		if a, ok := res.AcceptorOf(student.ID); ok {
			asg.School = a
			asg.Reserve = reserve[student.ID]
			asg.Choice = res.Cursor(student.ID) + 1
			asg.Utility = student.Utilities[a]

			summ.Matched++
			choices += asg.Choice
			if eligible {
				summ.EligibleMatched++
			}
		}

		summ.Utility += asg.Utility
		if eligible {
			summ.UtilityBelow += asg.Utility
		} else {
			summ.UtilityAbove += asg.Utility
		}

		outcome.Assignments[student.ID] = asg
	}

	summ.Unmatched = summ.Students - summ.Matched
	if summ.Matched > 0 {
		summ.MeanChoice = float64(choices) / float64(summ.Matched)
	}

	return outcome
}
