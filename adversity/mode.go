// Copyright 2026 someonegg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package adversity

import (
	"fmt"
	"math"
	"strings"
)

var modeNames = map[Mode]string{
	None:   "none",
	Linear: "linear",
	Log:    "log",
	Step:   "step",
}

func (m Mode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return None, nil
	}
	for m, name := range modeNames {
		if name == s {
			return m, nil
		}
	}
	return None, fmt.Errorf("unknown adversity mode %q", s)
}

type formula struct {
	mode Mode
	p    Params
}

// New returns the Scorer of the given mode.
func New(mode Mode, p Params) (Scorer, error) {
	if _, ok := modeNames[mode]; !ok {
		return nil, fmt.Errorf("unknown adversity mode %d", int(mode))
	}
	if mode != None && !(p.Pivot > 0) {
		return nil, fmt.Errorf("adversity %s: pivot must be positive, got %v", mode, p.Pivot)
	}
	if math.IsNaN(p.Scale) || math.IsInf(p.Scale, 0) {
		return nil, fmt.Errorf("adversity %s: invalid scale %v", mode, p.Scale)
	}
	if p.Ceil > 0 && p.Floor > p.Ceil {
		return nil, fmt.Errorf("adversity %s: floor %v above ceil %v", mode, p.Floor, p.Ceil)
	}
	return formula{mode, p}, nil
}

// MustNew is New that panics on error.
func MustNew(mode Mode, p Params) Scorer {
	s, err := New(mode, p)
	if err != nil {
		panic(err)
	}
	return s
}

func (f formula) Factor(income float64) float64 {
	var v float64
	switch f.mode {
	case Linear:
		v = 1 + f.p.Scale*math.Max(0, f.p.Pivot-income)/f.p.Pivot
	case Log:
		v = 1 + f.p.Scale*math.Max(0, math.Log(f.p.Pivot)-math.Log(math.Max(income, 1)))
	case Step:
		v = 1
		if income < f.p.Pivot {
			v += f.p.Scale
		}
	default:
		v = 1
	}

	if v < f.p.Floor {
		v = f.p.Floor
	}
	if f.p.Ceil > 0 && v > f.p.Ceil {
		v = f.p.Ceil
	}
	return v
}
