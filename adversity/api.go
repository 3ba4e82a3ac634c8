// Copyright 2026 someonegg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package adversity maps an income to the factor schools apply to a
// student's academic score.
package adversity

type Scorer interface {
	Factor(income float64) float64
}

// Mode selects one adversity formula.
type Mode int

const (
	None   Mode = iota // factor is always 1
	Linear             // 1 + Scale*(Pivot-income)/Pivot below Pivot
	Log                // 1 + Scale*(ln Pivot - ln income) below Pivot
	Step               // 1 + Scale below Pivot
)

type Params struct {
	Scale float64 `toml:"scale" json:"scale"`
	Pivot float64 `toml:"pivot" json:"pivot"` // income at which the boost vanishes

	// Bounds applied to the final factor. Ceil <= 0 leaves it unbounded.
	Floor float64 `toml:"floor" json:"floor"`
	Ceil  float64 `toml:"ceil" json:"ceil"`
}
