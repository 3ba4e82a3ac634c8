// Copyright 2026 someonegg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package damatch

import "fmt"

type Side string

const (
	ProposerSide Side = "proposer"
	AcceptorSide Side = "acceptor"
)

// ConfigurationError reports invalid engine configuration or entity
// fields. It is returned before any round runs.
type ConfigurationError struct {
	Side   Side // empty for run configuration
	ID     int
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Side == "" {
		return fmt.Sprintf("damatch: invalid config %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("damatch: invalid %s %d %s: %s", e.Side, e.ID, e.Field, e.Reason)
}

// DataShapeError reports a signal vector or rank list whose length does
// not match the opposite side's population.
type DataShapeError struct {
	Side Side
	ID   int
	Got  int
	Want int
}

func (e *DataShapeError) Error() string {
	return fmt.Sprintf("damatch: %s %d has %d entries, want %d", e.Side, e.ID, e.Got, e.Want)
}

// InvariantError is a fatal defect found while matching. Proposer is -1
// when no single proposer is implicated.
type InvariantError struct {
	Round    int
	Acceptor int
	Proposer int
	Reason   string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("damatch: invariant violated in round %d at acceptor %d (proposer %d): %s",
		e.Round, e.Acceptor, e.Proposer, e.Reason)
}

// RoundLimitError is returned when a run exceeds Config.MaxRounds.
type RoundLimitError struct {
	Rounds int
}

func (e *RoundLimitError) Error() string {
	return fmt.Sprintf("damatch: no stable state after %d rounds", e.Rounds)
}
